package model

import "time"

// AccessLog is an append-mostly record of a login event. LogoutTime is
// written at most once, when the session is swept.
type AccessLog struct {
	ID         string
	UserID     string
	Code       string
	IPAddress  string
	UserAgent  string
	LoginTime  time.Time
	LogoutTime *time.Time
	SessionID  string
}
