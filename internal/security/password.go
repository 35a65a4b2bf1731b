// Package security provides password hashing helpers.
package security

import "github.com/matthewhartstonge/argon2"

var config = argon2.DefaultConfig()

// HashPassword hashes a plaintext password with argon2id and returns the
// encoded digest, including the salt and cost parameters.
func HashPassword(password string) (string, error) {
	encoded, err := config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword reports whether the plaintext password matches the encoded
// digest.
func VerifyPassword(password, encoded string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(encoded))
}
