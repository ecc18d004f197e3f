// Package auth handles accounts: registration, password checks and access
// tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 64
	maxEmailLen    = 120
	minPasswordLen = 8

	defaultAvatarColor = "#0052CC"
)

var avatarColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type UserStore interface {
	User(ctx context.Context, id uint) (*models.User, error)
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	SaveUser(ctx context.Context, u *models.User) error
}

type Service struct {
	users UserStore
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewService(users UserStore, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		users: users,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	AvatarColor string `json:"avatar_color"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := in.validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.UserExists(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("username or email already taken: %w", models.ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	color := in.AvatarColor
	if color == "" {
		color = defaultAvatarColor
	}

	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		AvatarColor:  color,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user registered")
	return u, nil
}

func (in RegisterInput) validate() error {
	if n := utf8.RuneCountInString(in.Username); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("username must be %d-%d characters: %w", minUsernameLen, maxUsernameLen, models.ErrInvalidInput)
	}
	if in.Email == "" || len(in.Email) > maxEmailLen || !strings.Contains(in.Email, "@") {
		return fmt.Errorf("invalid email: %w", models.ErrInvalidInput)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters: %w", minPasswordLen, models.ErrInvalidInput)
	}
	if in.AvatarColor != "" && !avatarColorRe.MatchString(in.AvatarColor) {
		return fmt.Errorf("avatar color must look like #RRGGBB: %w", models.ErrInvalidInput)
	}
	return nil
}

// Authenticate checks the password and stamps last_login. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.users.UserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("login %q: %w", username, models.ErrInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.WithField("username", u.Username).Warn("failed login attempt")
		return nil, fmt.Errorf("login %q: %w", username, models.ErrInvalidCredentials)
	}
	if !u.IsActive {
		return nil, fmt.Errorf("login %q: %w", username, models.ErrInactiveUser)
	}

	now := s.now()
	u.LastLogin = &now
	if err := s.users.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ActiveUser loads the user behind a session or token. Deleted and
// deactivated accounts are rejected.
func (s *Service) ActiveUser(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.User(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrInactiveUser)
	}
	return u, nil
}
