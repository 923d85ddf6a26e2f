package service

import (
	"context"
	"errors"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-console/internal/dto"
	"github.com/noah-isme/sma-adp-console/internal/models"
	"github.com/noah-isme/sma-adp-console/internal/session"
	appErrors "github.com/noah-isme/sma-adp-console/pkg/errors"
)

type authRepository interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.AuthResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context, req dto.RefreshRequest) (*models.AuthResult, error)
	Profile(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, file dto.Attachment) (*models.AvatarResult, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error
}

type sessionStore interface {
	Establish(ctx context.Context, creds session.Credentials) error
	Clear(ctx context.Context) error
	SetUser(ctx context.Context, user *models.User) error
	User(ctx context.Context) (*models.User, error)
	RefreshToken(ctx context.Context) string
	State(ctx context.Context) session.State
	Claims(ctx context.Context) (*session.Claims, error)
}

// UserState holds the signed-in user for the rest of the application.
type UserState struct {
	mu        sync.RWMutex
	user      *models.User
	listeners []func(*models.User)
}

// NewUserState returns an empty holder.
func NewUserState() *UserState {
	return &UserState{}
}

// Current returns the published user, nil when anonymous.
func (s *UserState) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Publish replaces the user and notifies listeners.
func (s *UserState) Publish(user *models.User) {
	s.mu.Lock()
	s.user = user
	listeners := append([]func(*models.User){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(user)
	}
}

// Clear publishes the anonymous state.
func (s *UserState) Clear() {
	s.Publish(nil)
}

// OnChange registers fn for every publish.
func (s *UserState) OnChange(fn func(*models.User)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// SessionInfo describes the current session.
type SessionInfo struct {
	State  session.State   `json:"state"`
	User   *models.User    `json:"user,omitempty"`
	Claims *session.Claims `json:"claims,omitempty"`
}

// AuthService drives the session state machine.
type AuthService struct {
	repo      authRepository
	session   sessionStore
	state     *UserState
	ops       *Operations
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authRepository, sess sessionStore, state *UserState, ops *Operations, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if state == nil {
		state = NewUserState()
	}
	return &AuthService{repo: repo, session: sess, state: state, ops: ops, validator: validate, logger: logger}
}

// State returns the user holder.
func (s *AuthService) State() *UserState {
	return s.state
}

// Login authenticates and persists the issued credentials.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid login payload")
	}
	res, err := s.repo.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	s.endPrevious(ctx)
	return s.establish(ctx, res, "")
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err, "invalid registration payload")
	}
	res, err := s.repo.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.endPrevious(ctx)
	return s.establish(ctx, res, "")
}

// Logout ends the session. Local credentials are cleared even when the
// backend call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.repo.Logout(ctx); err != nil && !errors.Is(err, appErrors.ErrUnauthorized) {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	return s.session.Clear(ctx)
}

// Refresh exchanges the stored refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context) (*models.User, error) {
	refresh := s.session.RefreshToken(ctx)
	if refresh == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no refresh token")
	}
	res, err := s.repo.Refresh(ctx, dto.RefreshRequest{RefreshToken: refresh})
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, res, refresh)
}

// Profile fetches the signed-in user and republishes it to the session
// cookie and the user state.
func (s *AuthService) Profile(ctx context.Context) (*models.User, error) {
	user, err := Run(ctx, s.ops, Query[struct{}, *models.User]{
		Name:  "auth.profile",
		Fetch: func(ctx context.Context, _ struct{}) (*models.User, error) { return s.repo.Profile(ctx) },
	}, struct{}{})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, user)
	return user, nil
}

// UpdateProfile changes the signed-in user's details.
func (s *AuthService) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*models.User, error) {
	user, err := Exec(ctx, s.ops, Mutation[dto.ProfileUpdateRequest, *models.User]{
		Name:   "auth.updateProfile",
		Exec:   s.repo.UpdateProfile,
		Record: func(_ dto.ProfileUpdateRequest, u *models.User) string { return userID(u) },
	}, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, user)
	return user, nil
}

// UploadAvatar replaces the profile picture.
func (s *AuthService) UploadAvatar(ctx context.Context, file dto.Attachment) (*models.AvatarResult, error) {
	if file.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "avatar file is required")
	}
	res, err := Exec(ctx, s.ops, Mutation[dto.Attachment, *models.AvatarResult]{
		Name: "auth.uploadAvatar",
		Exec: s.repo.UploadAvatar,
		Record: func(_ dto.Attachment, r *models.AvatarResult) string {
			if r == nil {
				return ""
			}
			return userID(r.User)
		},
	}, file)
	if err != nil {
		return nil, err
	}
	if res != nil && res.User != nil {
		s.publish(ctx, res.User)
	}
	return res, nil
}

// ChangePassword updates the signed-in user's password.
func (s *AuthService) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return invalid(err, "invalid password payload")
	}
	_, err := Exec(ctx, s.ops, Mutation[dto.ChangePasswordRequest, struct{}]{
		Name: "auth.changePassword",
		Exec: func(ctx context.Context, req dto.ChangePasswordRequest) (struct{}, error) {
			return struct{}{}, s.repo.ChangePassword(ctx, req)
		},
	}, req)
	return err
}

// Session reports the current session state.
func (s *AuthService) Session(ctx context.Context) SessionInfo {
	info := SessionInfo{State: s.session.State(ctx)}
	if info.State != session.StateAuthenticated {
		return info
	}
	info.User = s.state.Current()
	if info.User == nil {
		if user, err := s.session.User(ctx); err == nil {
			info.User = user
		}
	}
	if claims, err := s.session.Claims(ctx); err == nil {
		info.Claims = claims
	}
	return info
}

// Restore republishes the user stored in the session cookie, if any.
func (s *AuthService) Restore(ctx context.Context) {
	if s.session.State(ctx) != session.StateAuthenticated {
		return
	}
	if user, err := s.session.User(ctx); err == nil {
		s.state.Publish(user)
	}
}

// endPrevious drops any session still held so a new account never sees the
// previous account's credentials or cached reads.
func (s *AuthService) endPrevious(ctx context.Context) {
	if s.session.State(ctx) != session.StateAuthenticated {
		return
	}
	previous := s.state.Current()
	if err := s.session.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear previous session", zap.Error(err))
	}
	if previous != nil {
		s.logger.Info("previous session replaced", zap.String("user_id", previous.ID))
	}
}

func (s *AuthService) establish(ctx context.Context, res *models.AuthResult, previousRefresh string) (*models.User, error) {
	if res == nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "no credentials returned")
	}
	refresh := res.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	user := res.User
	if user == nil {
		user = s.state.Current()
	}
	if err := s.session.Establish(ctx, session.Credentials{Token: res.Token, RefreshToken: refresh, User: user}); err != nil {
		return nil, err
	}
	s.state.Publish(user)
	if user != nil {
		s.logger.Info("session established", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return user, nil
}

func (s *AuthService) publish(ctx context.Context, user *models.User) {
	if user == nil {
		return
	}
	if err := s.session.SetUser(ctx, user); err != nil {
		s.logger.Warn("failed to persist user cookie", zap.Error(err))
	}
	s.state.Publish(user)
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func invalid(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
