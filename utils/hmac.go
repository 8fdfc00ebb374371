package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeHMACSHA256 computes HMAC-SHA256 signature and returns hex-encoded string.
func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// TokenCacheKey derives the Redis key under which a validated access token is
// remembered. The raw token never leaves the process.
func TokenCacheKey(secretKey, token string) string {
	return "drive:auth:" + ComputeHMACSHA256(secretKey, token)
}
