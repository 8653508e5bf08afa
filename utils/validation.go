package utils

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"projectboard/models"
)

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SanitizeInput trims whitespace and strips markup characters from form
// text fields. Never used on passwords.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	replacer := strings.NewReplacer("<", "", ">", "", "\"", "", "'", "", "\\", "")
	return replacer.Replace(s)
}

func ValidateProjectInput(p models.Project) error {
	if len(p.Name) == 0 || len(p.Name) > 255 {
		return errors.New("name must be between 1 and 255 characters")
	}
	if len(p.Leader) == 0 || len(p.Leader) > 255 {
		return errors.New("leader must be between 1 and 255 characters")
	}
	if p.Budget < 0 {
		return errors.New("budget must not be negative")
	}
	if p.StartDate.IsZero() {
		return errors.New("start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return errors.New("end date must not be before start date")
	}
	return nil
}
