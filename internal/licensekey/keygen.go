// Package licensekey generates license keys and computes plan expiry dates.
package licensekey

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Pattern is the lexical contract for a license key: four hyphen-separated
// groups of four symbols over A-Z0-9. The dashboard pre-validates user
// input against the same expression before hitting the API.
var Pattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate returns a key in the form XXXX-XXXX-XXXX-XXXX. Symbols are drawn
// independently and uniformly from the 36-character alphabet; there is no
// checksum. Collisions are accepted, not mitigated: the keyspace is 36^16.
func Generate() (string, error) {
	var sb strings.Builder
	sb.Grow(19)
	for i := 0; i < 16; i++ {
		if i > 0 && i%4 == 0 {
			sb.WriteByte('-')
		}
		c, err := randSymbol()
		if err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		sb.WriteByte(c)
	}
	return sb.String(), nil
}

// randSymbol rejects bytes >= 252 so the modulo stays unbiased.
func randSymbol() (byte, error) {
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, err
		}
		if b[0] < 252 {
			return alphabet[int(b[0])%len(alphabet)], nil
		}
	}
}
