// Package auth registers users and manages bearer-token sessions.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/joelkehle/metria/internal/apperr"
	"github.com/joelkehle/metria/internal/logging"
	"github.com/joelkehle/metria/internal/models"
	"github.com/joelkehle/metria/internal/store"
)

var (
	ErrEmailTaken         = apperr.Conflict("email already registered")
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
)

type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
	JobTitle string `json:"jobTitle,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Country  string `json:"country,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      models.User `json:"user"`
}

type Service struct {
	repos  *store.Repos
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewService(repos *store.Repos, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{repos: repos, ttl: ttl, now: time.Now, logger: logging.OrNop(logger).Named("auth")}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// unusableHash is stored for accounts created without a password so that no
// password can ever match.
func unusableHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return HashPassword(hex.EncodeToString(buf))
}

// Register creates a user with the user role and signs them in.
func (s *Service) Register(ctx context.Context, p Profile) (Session, error) {
	p.Name = strings.TrimSpace(p.Name)
	email := store.NormalizeEmail(p.Email)
	if p.Name == "" {
		return Session{}, apperr.Validation("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, apperr.Validation("a valid email is required")
	}
	if len(p.Password) > 72 {
		return Session{}, apperr.Validation("password must be at most 72 bytes")
	}

	existing, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, apperr.Internal("lookup user", err)
	}
	if existing != nil {
		return Session{}, ErrEmailTaken
	}

	var hash string
	if p.Password != "" {
		hash, err = HashPassword(p.Password)
	} else {
		hash, err = unusableHash()
	}
	if err != nil {
		return Session{}, apperr.Internal("hash password", err)
	}

	avatar := p.Avatar
	if avatar == "" {
		avatar = store.AvatarURL(p.Name)
	}
	u := models.User{
		ID:           uuid.New().String(),
		Name:         p.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Company:      strings.TrimSpace(p.Company),
		Avatar:       avatar,
		Phone:        p.Phone,
		JobTitle:     p.JobTitle,
		City:         p.City,
		State:        p.State,
		Country:      p.Country,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repos.Users.Add(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return Session{}, ErrEmailTaken
		}
		return Session{}, apperr.Internal("create user", err)
	}
	s.logger.Info("user registered", zap.String("user_id", u.ID))
	return s.startSession(ctx, u)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.repos.Users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, apperr.Internal("lookup user", err)
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Info("login rejected")
		return Session{}, ErrInvalidCredentials
	}
	return s.startSession(ctx, *u)
}

// GetSession resolves a token to its user. Unknown or expired tokens yield nil.
func (s *Service) GetSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := s.repos.Sessions.Get(ctx, token)
	if err != nil {
		return nil, apperr.Internal("load session", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.Expired(s.now()) {
		if err := s.repos.Sessions.Delete(ctx, token); err != nil {
			s.logger.Warn("drop expired session", zap.Error(err))
		}
		return nil, nil
	}
	u, err := s.repos.Users.Get(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("load session user", err)
	}
	pub := u.Public()
	return &pub, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.repos.Sessions.Delete(ctx, token); err != nil {
		return apperr.Internal("delete session", err)
	}
	return nil
}

// LogoutAll ends every session of the user and returns how many were dropped.
func (s *Service) LogoutAll(ctx context.Context, userID string) (int, error) {
	sessions, err := s.repos.Sessions.ByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("list sessions", err)
	}
	for _, sess := range sessions {
		if err := s.repos.Sessions.Delete(ctx, sess.Token); err != nil {
			return 0, apperr.Internal("delete session", err)
		}
	}
	s.logger.Info("all sessions ended", zap.String("user_id", userID), zap.Int("sessions", len(sessions)))
	return len(sessions), nil
}

// UpdateProfile merges the non-empty profile fields into the stored user.
// Email, role and password are not changed here.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p Profile) (models.User, error) {
	u, err := s.repos.Users.Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Internal("load user", err)
	}
	merge := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	merge(&u.Name, p.Name)
	merge(&u.Company, p.Company)
	merge(&u.Phone, p.Phone)
	merge(&u.JobTitle, p.JobTitle)
	merge(&u.City, p.City)
	merge(&u.State, p.State)
	merge(&u.Country, p.Country)
	merge(&u.Avatar, p.Avatar)
	if err := s.repos.Users.Update(ctx, u); err != nil {
		return models.User{}, apperr.Internal("update user", err)
	}
	return u.Public(), nil
}

// Users lists every account without credentials.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.repos.Users.All(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	return users, nil
}

func (s *Service) startSession(ctx context.Context, u models.User) (Session, error) {
	now := s.now().UTC()
	sess := models.Session{
		Token:     uuid.New().String(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repos.Sessions.Add(ctx, sess); err != nil {
		return Session{}, apperr.Internal("create session", err)
	}
	return Session{Token: sess.Token, ExpiresAt: sess.ExpiresAt, User: u.Public()}, nil
}
