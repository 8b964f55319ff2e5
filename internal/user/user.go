package user

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/da-pic/coffeepos/internal/auth"
)

// User is a staff account as stored. PasswordHash is a bcrypt hash; the
// plaintext never leaves the login path.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	FullName     string
	Role         auth.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the session identity for this account.
func (u *User) Actor() *auth.Actor {
	return &auth.Actor{
		ID:       u.ID,
		Username: u.Username,
		FullName: u.FullName,
		Role:     u.Role,
	}
}

// CheckPassword compares the plaintext password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HashPassword produces a bcrypt hash for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
