package service

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/da-pic/coffeepos/internal/auth"
	"github.com/da-pic/coffeepos/internal/session"
	"github.com/da-pic/coffeepos/internal/storage"
	"github.com/da-pic/coffeepos/internal/user"
)

// AuthService handles login, logout, and password changes against the
// user store.
type AuthService struct {
	store   storage.Store
	session *session.Manager
	log     *log.Logger
}

// NewAuthService wires an auth service.
func NewAuthService(store storage.Store, sess *session.Manager, logger *log.Logger) *AuthService {
	return &AuthService{store: store, session: sess, log: logger}
}

// Login verifies the credentials and binds the user's actor to the
// session. A bad username and a bad password are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", persistence(err)
	}
	if !u.CheckPassword(password) {
		return "", ErrInvalidCredentials
	}

	sessionID := s.session.Login(u.Actor())
	s.log.WithFields(log.Fields{
		"user":    u.Username,
		"role":    u.Role,
		"session": sessionID,
	}).Info("login")
	return sessionID, nil
}

// Logout clears the session. Safe to call when nobody is logged in.
func (s *AuthService) Logout(ctx context.Context) {
	if actor, ok := s.session.Current(); ok {
		s.log.WithField("user", actor.Username).Info("logout")
	}
	s.session.Logout()
}

// Register creates a staff account. Managers only.
func (s *AuthService) Register(ctx context.Context, username, password, fullName string, role auth.Role) (*user.User, error) {
	actor, ok := s.session.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	if !auth.HasCapability(actor, auth.CapManageUsers) {
		return nil, denied(auth.CapManageUsers)
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password must not be empty")
	}
	if !role.Valid() {
		return nil, errors.New("invalid role")
	}
	hash, err := user.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		Role:         role,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, err
		}
		return nil, persistence(err)
	}
	s.log.WithFields(log.Fields{
		"user": u.Username,
		"role": u.Role,
		"by":   actor.Username,
	}).Info("account created")
	return u, nil
}

// ChangePassword verifies the current actor's old password and stores
// a hash of the new one.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	actor, ok := s.session.Current()
	if !ok {
		return ErrNotAuthenticated
	}
	if newPassword == "" {
		return errors.New("new password must not be empty")
	}
	u, err := s.store.GetUserByUsername(ctx, actor.Username)
	if err != nil {
		return persistence(err)
	}
	if !u.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := user.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdateUserPassword(ctx, u.ID, hash); err != nil {
		return persistence(err)
	}
	s.log.WithField("user", u.Username).Info("password changed")
	return nil
}
