package test

import (
	"math/rand"
	"sync"
	"time"
)

// Characters accepted in client idempotency keys.
const keyAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomIdempotencyKey returns a pseudo-random client key between minLen and maxLen
// characters long.
func RandomIdempotencyKey(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += randomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = keyAlphabet[randomIntn(len(keyAlphabet))]
	}
	return string(buf)
}

// RandomQuantity returns a cart quantity in [1, max].
func RandomQuantity(max int) int {
	if max <= 1 {
		return 1
	}
	return 1 + randomIntn(max)
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
