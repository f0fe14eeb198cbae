package dispatch

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const suffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewRequestID mints an id like DRT-MFK3X2A1-7QPZ: millisecond timestamp in
// base36 plus a short random suffix. Sortable-ish by creation time and
// practically unique without coordination.
func NewRequestID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "DRT-" + ts + "-" + randomSuffix(4)
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = suffixAlphabet[int(b[i])%len(suffixAlphabet)]
	}
	return string(b)
}
