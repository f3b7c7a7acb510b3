// Package auth implements the fixed-password login. Sessions live in memory
// and are lost on restart.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"todoList/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmptyEmail         = errors.New("email is required")
	ErrEmptyPassword      = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type User struct {
	Email string `json:"email" mapstructure:"email"`
	Name  string `json:"name" mapstructure:"name"`
}

type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Authenticator struct {
	hash  []byte
	users []User

	mtx      sync.RWMutex
	sessions map[string]Session
}

func New(password string, users []User) (*Authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return &Authenticator{
		hash:     hash,
		users:    users,
		sessions: make(map[string]Session),
	}, nil
}

// Login accepts any email with the configured password.
func (a *Authenticator) Login(email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, ErrEmptyEmail
	}
	if strings.TrimSpace(password) == "" {
		return Session{}, ErrEmptyPassword
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		logger.Warn("Auth: wrong password", zap.String("email", email))
		return Session{}, ErrInvalidCredentials
	}

	s := Session{
		Token:     uuid.NewString(),
		Email:     email,
		CreatedAt: time.Now(),
	}

	a.mtx.Lock()
	a.sessions[s.Token] = s
	a.mtx.Unlock()

	logger.Info("Auth: user logged in", zap.String("email", email))
	return s, nil
}

func (a *Authenticator) Resolve(token string) (string, bool) {
	a.mtx.RLock()
	defer a.mtx.RUnlock()

	s, ok := a.sessions[token]
	return s.Email, ok
}

func (a *Authenticator) Logout(token string) {
	a.mtx.Lock()
	s, ok := a.sessions[token]
	delete(a.sessions, token)
	a.mtx.Unlock()

	if ok {
		logger.Info("Auth: user logged out", zap.String("email", s.Email))
	}
}

func (a *Authenticator) Users() []User {
	res := make([]User, len(a.users))
	copy(res, a.users)
	return res
}
