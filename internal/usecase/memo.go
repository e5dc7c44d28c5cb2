package usecase

import (
	"crypto/rand"
	"math/big"
	"time"
)

const (
	memoPrefix    = "VEO3"
	memoAlphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	memoSuffixLen = 4
	numberDigits  = 6
)

// NewTransferMemo builds a memo of the form "VEO3 YYYYMMDD XXXX".
func NewTransferMemo(now time.Time) string {
	return memoPrefix + " " + now.Format("20060102") + " " + randomFrom(memoAlphabet, memoSuffixLen)
}

// NewOrderNumber builds a human readable order number "ORDYYYYMMDDNNNNNN".
func NewOrderNumber(now time.Time) string {
	return "ORD" + now.Format("20060102") + randomFrom("0123456789", numberDigits)
}

func randomFrom(alphabet string, n int) string {
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}
