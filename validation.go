package fantasy11

import (
	"math"
	"regexp"
	"strings"
)

const minPasswordLength = 6

var (
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

// ValidEmail reports whether email has the shape the backend accepts.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidMobile reports whether mobile is a ten digit number.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}

func (r LoginRequest) validate() error {
	if strings.TrimSpace(r.Email) == "" && strings.TrimSpace(r.Mobile) == "" {
		return validationError("login", "Email/mobile and password are required")
	}
	if r.Password == "" {
		return validationError("login", "Email/mobile and password are required")
	}
	return nil
}

func (r RegisterRequest) validate() error {
	switch {
	case !ValidEmail(r.Email):
		return validationError("register", "Invalid email")
	case len(r.Password) < minPasswordLength:
		return validationError("register", "Password must be at least 6 characters")
	case strings.TrimSpace(r.Name) == "":
		return validationError("register", "Name is required")
	case !ValidMobile(r.Mobile):
		return validationError("register", "Invalid mobile number")
	}
	return nil
}

// validate only rejects an empty update. The backend stores whatever field values it
// is sent, so their format is left to it.
func (u ProfileUpdate) validate() error {
	if u.Name == nil && u.Email == nil && u.Mobile == nil {
		return validationError("update_profile", "No profile fields to update")
	}
	return nil
}

func validateAmount(op string, amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return validationError(op, "Invalid amount")
	}
	return nil
}

func validateID(op, what, id string) error {
	if strings.TrimSpace(id) == "" {
		return validationError(op, what+" id is required")
	}
	return nil
}
