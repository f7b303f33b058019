package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const upperAlphanumeric = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // no 0/O/1/I

// GenerateBookingCode produces a human-readable code like "BKG-8KQ2M7DWPZ".
// Uniqueness is enforced by the collection's unique index, not here.
func GenerateBookingCode(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, generateRandom(BookingCodeLength, upperAlphanumeric))
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}
