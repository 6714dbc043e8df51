package models

import "time"

// Notification is one workflow notification row, written alongside a
// push send so users who miss the push still see the event.
type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Message   string    `json:"message"`
	Status    string    `json:"status" example:"unread"`
	Action    string    `json:"action" example:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QuoteChange is one audit row from a quote's change history.
type QuoteChange struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	ChangeType string    `json:"change_type" example:"status"`
	OldValue   string    `json:"old_value,omitempty"`
	NewValue   string    `json:"new_value,omitempty"`
	ChangedAt  time.Time `json:"changed_at"`
}
