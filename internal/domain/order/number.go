// internal/domain/order/number.go
package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

const numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var numberPattern = regexp.MustCompile(`^ORD-\d{8}-[A-Z0-9]{6}$`)

// NumberGenerator produces candidate order numbers
type NumberGenerator func(now time.Time) (string, error)

// GenerateNumber returns ORD-YYYYMMDD-XXXXXX with six random upper case
// alphanumerics.
func GenerateNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	max := big.NewInt(int64(len(numberAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate order number: %w", err)
		}
		suffix[i] = numberAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), suffix), nil
}

// IsValidNumber reports whether s has the order number format
func IsValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
