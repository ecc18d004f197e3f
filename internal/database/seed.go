package database

import (
	"context"
	"errors"

	"gira/internal/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const defaultAdminPassword = "Admin123!"

// SeedDefaultAdmin создаёт администратора, если пользователя с таким
// именем ещё нет.
func SeedDefaultAdmin(ctx context.Context, s *Store, username, email, password string, log logrus.FieldLogger) error {
	_, err := s.UserByUsername(ctx, username)
	if err == nil {
		// админ уже есть, ничего не делаем
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return err
	}

	usedDefault := password == ""
	if usedDefault {
		password = defaultAdminPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		Email:        email,
		FirstName:    "Admin",
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.SaveUser(ctx, &admin); err != nil {
		return err
	}

	entry := log.WithField("username", username)
	if usedDefault {
		entry = entry.WithField("password", password)
	}
	entry.Info("created default admin user")
	return nil
}
