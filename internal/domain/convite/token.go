package convite

import (
	"crypto/rand"
	"encoding/hex"
)

const tokenBytes = 16

func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
