package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/offermaster-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/offermaster-service/internal/ports"
)

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Email:             "Ana@Example.com",
		Password:          "secret1",
		FirstName:         "Ana",
		LastName:          "Kovač",
		PrimaryAreaOfWork: "Keramika",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var session SessionResponse
	decode(t, w, &session)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ana@example.com", session.User.Email)
	assert.Equal(t, EnumResponse{Code: "KERAMIKA", Label: "Keramika"}, session.User.PrimaryAreaOfWork)
	assert.NotContains(t, w.Body.String(), "password")

	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{
			name:       "duplicate email ignores case",
			body:       RegisterRequest{Email: "ANA@example.com", Password: "secret1", FirstName: "A", LastName: "K", PrimaryAreaOfWork: "KERAMIKA"},
			wantStatus: http.StatusConflict,
			wantCode:   dto.ErrorCodeConflict,
		},
		{
			name:       "short password",
			body:       RegisterRequest{Email: "ivo@example.com", Password: "123", FirstName: "I", LastName: "H", PrimaryAreaOfWork: "KERAMIKA"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "unknown work area",
			body:       RegisterRequest{Email: "ivo@example.com", Password: "secret1", FirstName: "I", LastName: "H", PrimaryAreaOfWork: "STOLARIJA"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "invalid email",
			body:       RegisterRequest{Email: "not-an-email", Password: "secret1", FirstName: "I", LastName: "H", PrimaryAreaOfWork: "KERAMIKA"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeValidation,
		},
		{
			name:       "malformed body",
			body:       []string{"nope"},
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrorCodeBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(t, w))
		})
	}
}

func TestAuthHandler_LoginAndProfile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	w := env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session SessionResponse
	decode(t, w, &session)

	w = env.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/auth/profile", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile UserResponse
	decode(t, w, &profile)
	assert.Equal(t, session.User.ID, profile.ID)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "ana@example.com")
	env.register(t, "ivo@example.com")

	w := env.do(t, http.MethodPut, "/api/auth/update", token, UpdateProfileRequest{
		Email:             "ana.kovac@example.com",
		FirstName:         "Ana",
		LastName:          "Kovačić",
		PrimaryAreaOfWork: "ELEKTRIKA",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var user UserResponse
	decode(t, w, &user)
	assert.Equal(t, "Kovačić", user.LastName)
	assert.Equal(t, "ELEKTRIKA", user.PrimaryAreaOfWork.Code)

	w = env.do(t, http.MethodPut, "/api/auth/update", token, UpdateProfileRequest{
		Email:             "IVO@example.com",
		FirstName:         "Ana",
		LastName:          "Kovačić",
		PrimaryAreaOfWork: "ELEKTRIKA",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "ana@example.com")

	var issued string
	env.mailer.EXPECT().SendPasswordReset(mock.Anything, mock.Anything).
		Run(func(_ context.Context, msg ports.PasswordResetEmail) { issued = msg.Token }).
		Return(nil).
		Once()

	w := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "ana@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, issued)

	unknown := env.do(t, http.MethodPost, "/api/auth/forgot-password", "", ForgotPasswordRequest{Email: "nobody@example.com"})
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.JSONEq(t, w.Body.String(), unknown.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: "bogus", NewPassword: "newpass1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: issued, NewPassword: "newpass1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/auth/reset-password", "", ResetPasswordRequest{Token: issued, NewPassword: "newpass2"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "token is single use")

	w = env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ana@example.com", Password: "newpass1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
