package model

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal identity record behind a code. It is referenced by
// Code and AccessLog rows but not otherwise mutated by the gate.
type User struct {
	ID         string
	TelegramID int64 // external identity
	CreatedAt  time.Time
}

func NewUser(tgID int64) *User {
	return &User{
		ID:         uuid.NewString(),
		TelegramID: tgID,
		CreatedAt:  time.Now(),
	}
}
