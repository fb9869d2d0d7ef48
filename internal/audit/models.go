package audit

import "time"

// Event is an immutable, append-only record of an authentication event.
//
// Invariants:
// - Events are never updated or deleted.
// - Actor and IP capture are best-effort; login and logout never fail on audit errors.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorUserID is empty for failed logins of unknown users.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`
	// Username is what the client submitted, recorded for failed logins.
	Username  string `json:"username,omitempty" db:"username"`
	SessionID string `json:"session_id,omitempty" db:"session_id"`
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	Message   string    `json:"message,omitempty" db:"message"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeLogin       EventType = "login"
	EventTypeLoginFailed EventType = "login_failed"
	EventTypeLogout      EventType = "logout"
	EventTypeRefresh     EventType = "token_refresh"
)
