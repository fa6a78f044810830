package words

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DailyIndex returns a deterministic index for a date using
// HMAC-SHA256(salt, YYYY-MM-DD) mod n. The same date and salt always pick
// the same word, so daily practice runs are comparable across machines.
func DailyIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Daily returns the deterministic practice word for a date.
func (d Dictionary) Daily(date time.Time, salt string) string {
	return d.list[DailyIndex(date, salt, len(d.list))]
}
