package domain

import "time"

// SessionEventType names a transition of a user's session.
type SessionEventType string

const (
	EventRegistered      SessionEventType = "register"
	EventLogin           SessionEventType = "login"
	EventLoginFailed     SessionEventType = "login_failed"
	EventRefreshed       SessionEventType = "refresh"
	EventRefreshRejected SessionEventType = "refresh_rejected"
	EventLogout          SessionEventType = "logout"
	EventRoleChanged     SessionEventType = "role_changed"
)

// SessionEvent is an audit record of a session transition.
type SessionEvent struct {
	UserID string
	Email  string // set when no user id is known yet, e.g. failed logins
	Type   SessionEventType
	At     time.Time
	Detail string
}
