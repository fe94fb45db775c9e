package link

import (
	"crypto/rand"
	"fmt"
)

const (
	shortCodeLength  = 8
	shortCodeCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// generateShortCode returns an unguessable base62 code. Uniqueness is enforced
// by the database index; callers retry on collision.
//
// Bytes at or above the largest multiple of the charset size are rejected so
// every character stays equally likely.
func generateShortCode() (string, error) {
	limit := byte(256 - 256%len(shortCodeCharset))

	code := make([]byte, 0, shortCodeLength)
	buf := make([]byte, 2*shortCodeLength)
	for len(code) < shortCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if b >= limit {
				continue
			}
			code = append(code, shortCodeCharset[int(b)%len(shortCodeCharset)])
			if len(code) == shortCodeLength {
				break
			}
		}
	}

	return string(code), nil
}
