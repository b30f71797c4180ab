package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/datasource-portal/internal/models"
)

// maxBodyBytes — предел размера JSON-тела запроса.
const maxBodyBytes = 1 << 20

var errTrailingData = errors.New("unexpected data after json body")

// Authority — операции сервиса аутентификации, доступные по HTTP.
type Authority interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, *models.Principal, error)
	Authenticate(ctx context.Context, accessToken string) (*models.Principal, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error

	Register(ctx context.Context, username, password string, role models.Role) (*models.Principal, error)
	ChangePassword(ctx context.Context, id uuid.UUID, oldPassword, newPassword string) error
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
	SetDisabled(ctx context.Context, id uuid.UUID, disabled bool) error
	AuthEvents(ctx context.Context, id uuid.UUID, limit int) ([]models.AuthEvent, error)
}

// Handlers агрегирует зависимости REST-эндпойнтов.
type Handlers struct {
	Auth Authority
}

func New(a Authority) *Handlers {
	return &Handlers{Auth: a}
}

// writeJSON — единый ответ JSON с нужным Content-Type.
// Ошибки выводим через apierrors.WriteError.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля и хвосты.
func decodeStrict(w http.ResponseWriter, r *http.Request, value any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(value); err != nil {
		return err
	}

	if dec.More() {
		return errTrailingData
	}

	return nil
}

// TokenResponse — пара токенов для клиента.
type TokenResponse struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	TokenType        string    `json:"token_type"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

func tokenResponse(p *models.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:      p.AccessToken,
		RefreshToken:     p.RefreshToken,
		TokenType:        "Bearer",
		AccessExpiresAt:  p.AccessExpiresAt.UTC(),
		RefreshExpiresAt: p.RefreshExpiresAt.UTC(),
	}
}

// PrincipalResponse — учётная запись без хэша пароля.
type PrincipalResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func principalResponse(p *models.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:        p.ID.String(),
		Username:  p.Username,
		Role:      p.Role.String(),
		Disabled:  p.Disabled,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

// LoginResponse — ответ на вход.
type LoginResponse struct {
	TokenResponse
	Principal PrincipalResponse `json:"principal"`
}

// AuthEventResponse — запись журнала аудита.
type AuthEventResponse struct {
	ID          string    `json:"id"`
	PrincipalID string    `json:"principal_id,omitempty"`
	Kind        string    `json:"kind"`
	Detail      string    `json:"detail,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func authEventsResponse(events []models.AuthEvent) []AuthEventResponse {
	out := make([]AuthEventResponse, 0, len(events))
	for _, e := range events {
		item := AuthEventResponse{
			ID:         e.ID.String(),
			Kind:       string(e.Kind),
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt.UTC(),
		}
		if e.PrincipalID != uuid.Nil {
			item.PrincipalID = e.PrincipalID.String()
		}
		out = append(out, item)
	}

	return out
}
