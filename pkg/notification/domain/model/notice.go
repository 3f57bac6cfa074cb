package model

import "time"

// FlashTTL is how long a notice stays visible to the shopper.
const FlashTTL = 3 * time.Second

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message about the outcome of a user action. It is never stored.
type Notice struct {
	Level     NoticeLevel `json:"type"`
	Message   string      `json:"message"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func NewNotice(level NoticeLevel, message string, now time.Time) Notice {
	return Notice{Level: level, Message: message, ExpiresAt: now.Add(FlashTTL)}
}

func (n Notice) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
