package mqtt

import "time"

// Notification announces that the backend has fresh pressure data.
type Notification struct {
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
}
