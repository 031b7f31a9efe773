package models

import "time"

// Notification is an immutable log entry recording a simulated email send.
// The log is append-only history and is never cascaded when members are
// removed.
type Notification struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}
