package usecase

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"codegate/internal/domain/model"
)

// GenerateCode creates a secure, random access code of the fixed length.
// The character set avoids ambiguous characters like O/0, I/1, l.
func GenerateCode() (string, error) {
	const chars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	buffer := make([]byte, model.CodeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := range buffer {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer), nil
}

// newSessionID returns a 128-bit random hex token identifying a session.
func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
