package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserSignedUp   EventType = "user_signed_up"
	EventUserLoggedIn   EventType = "user_logged_in"
	EventTokenRefreshed EventType = "token_refreshed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// UserSignedUpPayload payload.
type UserSignedUpPayload struct {
	EmailID string `json:"email_id,omitempty"`
}

// TokenRefreshedPayload payload.
type TokenRefreshedPayload struct {
	RefreshTokenID string `json:"refresh_token_id"`
}
