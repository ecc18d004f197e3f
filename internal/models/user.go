package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Username     string `gorm:"uniqueIndex;size:64;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:120;not null" json:"email"`
	FirstName    string `gorm:"size:64" json:"first_name"`
	LastName     string `gorm:"size:64" json:"last_name"`
	AvatarColor  string `gorm:"size:7" json:"avatar_color"`
	PasswordHash string `gorm:"not null" json:"-"`

	IsActive  bool       `gorm:"not null" json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
}

// Initials is built from first and last name, or the first two letters of
// the username when both are empty.
func (u *User) Initials() string {
	first := firstRune(u.FirstName)
	last := firstRune(u.LastName)
	if first != "" || last != "" {
		return strings.ToUpper(first + last)
	}
	name := u.Username
	if utf8.RuneCountInString(name) > 2 {
		name = string([]rune(name)[:2])
	}
	return strings.ToUpper(name)
}

func firstRune(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return ""
	}
	return string(r)
}
