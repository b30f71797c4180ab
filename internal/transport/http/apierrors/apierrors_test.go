package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/datasource-portal/internal/gate"
	"github.com/pribylovaa/datasource-portal/internal/service"
)

func TestToHTTP_Mapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"invalid_credentials", service.ErrInvalidCredentials, http.StatusUnauthorized, "unauthenticated"},
		{"invalid_signature", service.ErrInvalidSignature, http.StatusUnauthorized, "unauthenticated"},
		{"expired", service.ErrExpired, http.StatusUnauthorized, "unauthenticated"},
		{"malformed", service.ErrMalformed, http.StatusUnauthorized, "unauthenticated"},
		{"wrong_type", service.ErrWrongTokenType, http.StatusUnauthorized, "unauthenticated"},
		{"blacklisted", service.ErrBlacklisted, http.StatusUnauthorized, "unauthenticated"},
		{"already_used", service.ErrTokenAlreadyUsed, http.StatusUnauthorized, "unauthenticated"},
		{"disabled", service.ErrPrincipalDisabled, http.StatusUnauthorized, "unauthenticated"},
		{"principal_missing", service.ErrPrincipalNotFound, http.StatusUnauthorized, "unauthenticated"},
		{"store_unavailable", service.ErrStoreUnavailable, http.StatusUnauthorized, "unauthenticated"},
		{"no_principal", gate.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{"forbidden", gate.ErrForbidden, http.StatusForbidden, "permission_denied"},
		{"bad_body", ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{"weak_password", service.ErrWeakPassword, http.StatusBadRequest, "invalid_argument"},
		{"invalid_role", service.ErrInvalidRole, http.StatusBadRequest, "invalid_argument"},
		{"taken", service.ErrUsernameTaken, http.StatusConflict, "already_exists"},
		{"account_missing", service.ErrAccountNotFound, http.StatusNotFound, "not_found"},
		{"route_missing", ErrRouteNotFound, http.StatusNotFound, "not_found"},
		{"method", ErrMethodNotAllowed, http.StatusMethodNotAllowed, "method_not_allowed"},
		{"canceled", context.Canceled, StatusClientClosedRequest, "canceled"},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout, "deadline_exceeded"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"nil", nil, http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_WrappedErrors(t *testing.T) {
	status, _ := ToHTTP(fmt.Errorf("service.auth.Refresh: %w", service.ErrTokenAlreadyUsed))
	require.Equal(t, http.StatusUnauthorized, status)

	status, _ = ToHTTP(fmt.Errorf("service.accounts.Register: %w", service.ErrUsernameTaken))
	require.Equal(t, http.StatusConflict, status)
}

// Все ошибки аутентификации дают побайтно одинаковый ответ.
func TestWriteError_AuthFailuresAreOpaque(t *testing.T) {
	var bodies []string
	for _, err := range []error{
		service.ErrInvalidCredentials,
		service.ErrExpired,
		service.ErrBlacklisted,
		service.ErrPrincipalNotFound,
		service.ErrStoreUnavailable,
	} {
		rr := httptest.NewRecorder()
		WriteError(rr, httptest.NewRequest(http.MethodGet, "/", nil), err)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
		require.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
		bodies = append(bodies, rr.Body.String())
	}

	for _, b := range bodies[1:] {
		require.Equal(t, bodies[0], b)
	}
}

func TestWriteError_RequestID(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-1")

	WriteError(rr, req, gate.ErrForbidden)

	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "permission_denied", resp.Error.Code)
	require.Equal(t, "rid-1", resp.Error.RequestID)
}
