// main.go
//
// Entry point for the wordle-solver CLI.
// Subcommands:
//   - solve: run the solver locally (ground-truth or assist mode).
//   - serve: expose the solver as an HTTP API.
//
// Configuration is environment-first (.env is loaded if present); flags
// override. LOG_LEVEL sets verbosity, --debug forces debug.

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagDebug bool
	flagWords string // dictionary file; empty means WORDS_FILE or embedded
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wordle-solver",
		Short:         "Guess a hidden five-letter word from per-letter feedback",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
			if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
				zerolog.SetGlobalLevel(lvl)
			}
			if flagDebug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "force debug logging")
	root.PersistentFlags().StringVar(&flagWords, "words", "", "dictionary file (default: WORDS_FILE or embedded list)")

	root.AddCommand(newSolveCmd())
	root.AddCommand(newServeCmd())
	return root
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
