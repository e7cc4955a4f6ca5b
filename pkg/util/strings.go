package util

import (
	"math/rand"
	"time"
)

var seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))

const randCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateRandStringWithUpperLowerNum returns a random alphanumeric string,
// used for collision-free temp artifact names.
func GenerateRandStringWithUpperLowerNum(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = randCharset[seededRand.Intn(len(randCharset))]
	}
	return string(b)
}
