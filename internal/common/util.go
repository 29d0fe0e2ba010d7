package common

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
	"strings"
)

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is twice as long as size.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// RandomBase36 returns n characters drawn uniformly from [0-9a-z].
func RandomBase36(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	max := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(base36Alphabet[v.Int64()])
	}
	return sb.String(), nil
}

// WipeByteArray zeroes b in place. Used for passwords read from a terminal.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
