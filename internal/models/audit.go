package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthEventKind — вид события журнала аудита.
type AuthEventKind string

const (
	EventLoginSucceeded   AuthEventKind = "login_succeeded"
	EventLoginFailed      AuthEventKind = "login_failed"
	EventTokenRefreshed   AuthEventKind = "token_refreshed"
	EventRefreshReused    AuthEventKind = "refresh_reused"
	EventLogout           AuthEventKind = "logout"
	EventPrincipalCreated AuthEventKind = "principal_created"
	EventPasswordChanged  AuthEventKind = "password_changed"
	EventRoleChanged      AuthEventKind = "role_changed"
	EventDisabledChanged  AuthEventKind = "disabled_changed"
)

// AuthEvent — запись журнала аудита.
// PrincipalID равен uuid.Nil, если учётная запись не определена
// (например, вход с несуществующим именем).
type AuthEvent struct {
	ID          uuid.UUID
	PrincipalID uuid.UUID
	Kind        AuthEventKind
	Detail      string
	OccurredAt  time.Time
}
