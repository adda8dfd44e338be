// Package idgen generates work item identifiers.
//
// IDs have the shape "<prefix>-<hash>" where the hash is a short base36
// digest of the item's creation content. IDs are unique within a batch;
// the nonce parameter disambiguates hash collisions.
package idgen

import (
	"crypto/sha256"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// DefaultLength is the default hash suffix length.
const DefaultLength = 6

// base36Alphabet is the character set for base36 encoding (0-9, a-z).
const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// EncodeBase36 converts a byte slice to a base36 string of specified length.
func EncodeBase36(data []byte, length int) string {
	num := new(big.Int).SetBytes(data)

	base := big.NewInt(36)
	zero := big.NewInt(0)
	mod := new(big.Int)

	// Build the string in reverse
	chars := make([]byte, 0, length)
	for num.Cmp(zero) > 0 {
		num.DivMod(num, base, mod)
		chars = append(chars, base36Alphabet[mod.Int64()])
	}

	var result strings.Builder
	for i := len(chars) - 1; i >= 0; i-- {
		result.WriteByte(chars[i])
	}

	str := result.String()
	if len(str) < length {
		str = strings.Repeat("0", length-len(str)) + str
	}
	// Keep least significant digits when over length
	if len(str) > length {
		str = str[len(str)-length:]
	}

	return str
}

// GenerateID creates a hash-based ID for a work item from its name and
// owner plus the creation timestamp. Include nonce to handle collisions
// within a batch.
func GenerateID(prefix, name, owner string, timestamp time.Time, length, nonce int) string {
	content := fmt.Sprintf("%s|%s|%d|%d", name, owner, timestamp.UnixNano(), nonce)
	hash := sha256.Sum256([]byte(content))

	// Bytes of entropy needed for the requested base36 width
	var numBytes int
	switch {
	case length <= 3:
		numBytes = 2
	case length <= 6:
		numBytes = 4
	default:
		numBytes = 5
	}

	return fmt.Sprintf("%s-%s", prefix, EncodeBase36(hash[:numBytes], length))
}
