// Package code generates the short-lived numeric codes used by the email
// verification, email change and password reset flows.
package code

import (
	"crypto/rand"
	"math/big"
	"regexp"
	"strconv"
	"time"
)

// TTL is the validity window of a code, counted from issue time. A code is
// valid only while now < expiry.
const TTL = 5 * time.Minute

const (
	codeMin = 100000
	codeMax = 999999
)

var codeShape = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// Generate returns a random 6-digit code in [100000, 999999] and its expiry
// timestamp. The code comes from a cryptographically strong source.
func Generate() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", time.Time{}, err
	}

	return strconv.FormatInt(codeMin+n.Int64(), 10), time.Now().Add(TTL), nil
}

// IsWellFormed reports whether s has the shape of a generated code.
func IsWellFormed(s string) bool {
	return codeShape.MatchString(s)
}
