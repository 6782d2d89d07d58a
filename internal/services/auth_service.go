package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glucoguide/insulin-tracker/internal/apperrors"
	"github.com/glucoguide/insulin-tracker/internal/domain"
	"github.com/glucoguide/insulin-tracker/internal/logger"
	"github.com/glucoguide/insulin-tracker/internal/storage"
)

// SessionTTL bounds how long a login stays valid without re-authenticating.
const SessionTTL = 12 * time.Hour

// AuthService manages the registered-user list and bearer-token sessions.
// Users are appended on registration and never mutated or deleted.
type AuthService struct {
	store    storage.Store // durable: users list
	sessions storage.Store // session-scoped: token -> user, with TTL
}

func NewAuthService(store, sessions storage.Store) *AuthService {
	return &AuthService{store: store, sessions: sessions}
}

func (s *AuthService) users(ctx context.Context) []domain.User {
	var users []domain.User
	err := storage.GetJSON(ctx, s.store, storage.UsersKey, &users)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		// Treat unreadable user data as an empty registry rather than
		// blocking login or registration.
		logger.Error("failed to load users", "error", err)
		return nil
	}
	return users
}

// Register validates and appends a new user, then opens a session for it.
func (s *AuthService) Register(ctx context.Context, username, password string, role domain.Role, doctorUsername string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil, "", apperrors.NewValidationError("username and password must not be empty")
	}
	if !role.Valid() {
		return nil, "", apperrors.NewValidationError("role must be Doctor or Patient")
	}

	users := s.users(ctx)
	for _, u := range users {
		if strings.EqualFold(u.Username, username) {
			return nil, "", apperrors.NewValidationError("username is already taken")
		}
	}

	if role == domain.RolePatient {
		doctorUsername = strings.TrimSpace(doctorUsername)
		if doctorUsername == "" {
			return nil, "", apperrors.NewValidationError("patients must name their doctor")
		}
		if !doctorExists(users, doctorUsername) {
			return nil, "", apperrors.NewValidationError("no doctor with that username exists")
		}
	} else {
		doctorUsername = ""
	}

	user := domain.User{
		Username:       username,
		Password:       password,
		Role:           role,
		DoctorUsername: doctorUsername,
	}
	users = append(users, user)
	if err := storage.SetJSON(ctx, s.store, storage.UsersKey, users); err != nil {
		return nil, "", apperrors.NewStorageError(err)
	}

	token, err := s.openSession(ctx, &user)
	if err != nil {
		return nil, "", err
	}
	logger.Info("user registered", "username", username, "role", role)
	return &user, token, nil
}

// Login matches the username case-insensitively and the password exactly.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	for _, u := range s.users(ctx) {
		if strings.EqualFold(u.Username, username) {
			if u.Password != password {
				break
			}
			user := u
			token, err := s.openSession(ctx, &user)
			if err != nil {
				return nil, "", err
			}
			return &user, token, nil
		}
	}
	return nil, "", apperrors.NewAuthError("invalid username or password")
}

// Logout drops the session; the token is invalid afterwards.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Remove(ctx, storage.SessionKey(token)); err != nil {
		return apperrors.NewStorageError(err)
	}
	return nil
}

// SessionUser resolves a bearer token to its user.
func (s *AuthService) SessionUser(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, apperrors.NewAuthError("missing session token")
	}
	var user domain.User
	err := storage.GetJSON(ctx, s.sessions, storage.SessionKey(token), &user)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperrors.NewAuthError("session expired or unknown")
	}
	if err != nil {
		return nil, apperrors.NewStorageError(err)
	}
	return &user, nil
}

func (s *AuthService) openSession(ctx context.Context, user *domain.User) (string, error) {
	token := uuid.NewString()
	if err := storage.SetJSONTTL(ctx, s.sessions, storage.SessionKey(token), user, SessionTTL); err != nil {
		return "", apperrors.NewStorageError(err)
	}
	return token, nil
}

func doctorExists(users []domain.User, username string) bool {
	for _, u := range users {
		if u.Role == domain.RoleDoctor && strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}
