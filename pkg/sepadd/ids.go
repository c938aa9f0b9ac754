package sepadd

import (
	"crypto/md5"
	"encoding/hex"
	"math/rand/v2"
	"strconv"
	"time"
)

const (
	// msgIDLayout is DDMMYYYYSSmm: day, month, year, seconds, minutes.
	msgIDLayout = "020120060504"

	// creDtTmLayout is the group header creation timestamp, local time.
	creDtTmLayout = "2006-01-02T15:04:05"

	maxIDNameLength = 22
	suffixLength    = 12
)

// randomSuffix returns the first twelve hex characters of the md5 digest of
// a random integer.
func randomSuffix(random func() uint64) string {
	sum := md5.Sum([]byte(strconv.FormatUint(random(), 10)))
	return hex.EncodeToString(sum[:])[:suffixLength]
}

func defaultRandom() uint64 {
	return rand.Uint64()
}

// makeMsgID builds the group header message id.
func makeMsgID(now time.Time, random func() uint64) string {
	return now.Format(msgIDLayout) + "-" + randomSuffix(random)
}

// makeID builds a block id or default end-to-end id from the creditor name.
func makeID(name string, random func() uint64) string {
	return truncateRunes(name, maxIDNameLength) + "-" + randomSuffix(random)
}

// truncateRunes cuts s to at most n characters without splitting a
// multi-byte character.
func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
