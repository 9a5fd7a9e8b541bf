// Package random generates cryptographically random alphanumeric strings.
package random

import (
	"crypto/rand"
	"math/big"
)

const alphanum = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Seq returns a random string of length n drawn from [0-9a-zA-Z].
func Seq(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphanum))))
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		buf[i] = alphanum[idx.Int64()]
	}
	return string(buf)
}
