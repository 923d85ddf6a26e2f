package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/pkg/transport"
)

const authBase = "/api/auth"

// AuthRepository calls the authentication endpoints.
type AuthRepository struct {
	client *transport.Client
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(client *transport.Client) *AuthRepository {
	return &AuthRepository{client: client}
}

// Shape reports how auth responses are wrapped.
func (r *AuthRepository) Shape() transport.Shape { return transport.Enveloped }

// Login exchanges credentials for tokens.
func (r *AuthRepository) Login(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error) {
	return transport.Fetch[*models.AuthResult](ctx, r.client, r.Shape(), withBody(http.MethodPost, authBase+"/login", "", req))
}

// Register creates an account and returns its tokens.
func (r *AuthRepository) Register(ctx context.Context, req dto.RegisterRequest) (*models.AuthResult, error) {
	return transport.Fetch[*models.AuthResult](ctx, r.client, r.Shape(), withBody(http.MethodPost, authBase+"/register", "", req))
}

// Logout ends the session server-side.
func (r *AuthRepository) Logout(ctx context.Context) error {
	return send(ctx, r.client, r.Shape(), transport.Request{Method: http.MethodPost, Path: authBase + "/logout"})
}

// Refresh exchanges a refresh token for a new token pair.
func (r *AuthRepository) Refresh(ctx context.Context, req dto.RefreshRequest) (*models.AuthResult, error) {
	return transport.Fetch[*models.AuthResult](ctx, r.client, r.Shape(), withBody(http.MethodPost, authBase+"/refresh", "", req))
}

// Profile returns the signed-in user.
func (r *AuthRepository) Profile(ctx context.Context) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), get(authBase+"/profile", "", nil))
}

// UpdateProfile changes the signed-in user's details.
func (r *AuthRepository) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*models.User, error) {
	return transport.Fetch[*models.User](ctx, r.client, r.Shape(), withBody(http.MethodPut, authBase+"/profile", "", req))
}

// UploadAvatar replaces the profile picture.
func (r *AuthRepository) UploadAvatar(ctx context.Context, file dto.Attachment) (*models.AvatarResult, error) {
	return transport.Fetch[*models.AvatarResult](ctx, r.client, r.Shape(), upload(authBase+"/avatar", "", "avatar", file, nil))
}

// ChangePassword updates the signed-in user's password.
func (r *AuthRepository) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	return send(ctx, r.client, r.Shape(), withBody(http.MethodPut, authBase+"/change-password", "", req))
}
