package models

import (
	"database/sql"
	"errors"
	"time"
)

type User struct {
	ID        int       `json:"id" example:"1"`
	Email     string    `json:"email" example:"user@example.com"`
	Password  string    `json:"password" example:""`
	FirstName string    `json:"first_name" example:"伟"`
	LastName  string    `json:"last_name" example:"张"`
	RoleName  string    `json:"role_name" example:"sales"`
	Suspended bool      `json:"suspended" example:"false"`
	CreatedAt time.Time `json:"created_at" example:"2025-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2025-01-15T10:30:00Z"`
}

type Session struct {
	UserID    int       `json:"user_id"`
	SessionID string    `json:"session_id"`
	HostName  string    `json:"host_name"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestp"`
	ExpiresAt time.Time `json:"expires_at"`
}

func GetSessionBySessionID(db *sql.DB, sessionID string) (*Session, error) {
	query := `SELECT session_id, user_id, host_name, timestp FROM session WHERE session_id = $1`

	var session Session

	err := db.QueryRow(query, sessionID).Scan(&session.SessionID, &session.UserID, &session.HostName, &session.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found")
		}
		return nil, err
	}

	return &session, nil
}
