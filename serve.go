// serve.go
//
// The serve subcommand: the solver as an HTTP API.
// Live sessions are held in memory; finished attempts land in the SQLite
// attempt log (SOLVER_DB, default ./data/solver.db). PORT picks the listen
// port; --no-db serves without history.

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ka7eh/wordle-solver/internal/history"
	"github.com/ka7eh/wordle-solver/internal/httpserver"
	"github.com/ka7eh/wordle-solver/internal/store"
	"github.com/ka7eh/wordle-solver/internal/words"
)

func newServeCmd() *cobra.Command {
	var noDB bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dict, err := words.Resolve(flagWords)
			if err != nil {
				return err
			}
			log.Info().Int("words", dict.Len()).Msg("dictionary loaded")

			var db *history.DB
			if !noDB {
				dsn := getEnv("SOLVER_DB", "./data/solver.db")
				db, err = history.Open(dsn)
				if err != nil {
					return err
				}
				defer db.Close()
				log.Info().Str("db", dsn).Msg("attempt log open")
			}

			srv := httpserver.New(store.NewMemoryStore(), dict, db)
			port := getEnv("PORT", "5175")
			log.Info().Str("port", port).Msg("starting wordle-solver api")
			return srv.Start(":" + port)
		},
	}

	cmd.Flags().BoolVar(&noDB, "no-db", false, "serve without the attempt log")
	return cmd
}
