package servers

import (
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// CheckAccess verifies the password and that the server has room for another club.
func CheckAccess(s *models.Server, password string) error {
	if s.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.PasswordHash), []byte(password)); err != nil {
			return apperr.Validation("wrong password for server %s", s.Name)
		}
	}
	if s.CurrentClubs >= s.MaxCapacity {
		return apperr.Validation("server %s is full (%d clubs)", s.Name, s.MaxCapacity)
	}
	return nil
}
