// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinFullNameLength = 3
	MinPasswordLength = 6
	MaxPasswordLength = 128
	MaxBioLength      = 300
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Country code of one to three digits followed by a 9 to 14 digit subscriber number.
	phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,2}\d{9,14}$`)
)

// ValidateFullName checks the display name given at registration.
func ValidateFullName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinFullNameLength {
		return fmt.Errorf("full name must be at least %d characters long", MinFullNameLength)
	}
	return nil
}

// ValidateEmail checks basic email format
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	if len(email) > 254 {
		return fmt.Errorf("email must not exceed 254 characters")
	}

	return nil
}

// ValidatePassword checks if a password meets the account requirements
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}

	// bcrypt ignores everything past 72 bytes; cap well above typical passphrases
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}

	return nil
}

// ValidatePhoneNumber requires an international number such as +380501234567.
func ValidatePhoneNumber(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("phone number must start with + and a country code followed by 9 to 14 digits")
	}
	return nil
}

// ValidateBio bounds the optional profile description.
func ValidateBio(bio string) error {
	if utf8.RuneCountInString(bio) > MaxBioLength {
		return fmt.Errorf("bio must not exceed %d characters", MaxBioLength)
	}
	return nil
}

// Profile validates the editable account fields and returns one message per invalid field.
func Profile(fullName, email, phone, bio string) map[string]string {
	errs := map[string]string{}
	check(errs, "fullName", ValidateFullName(fullName))
	check(errs, "email", ValidateEmail(email))
	check(errs, "phoneNumber", ValidatePhoneNumber(phone))
	check(errs, "bio", ValidateBio(bio))
	return errs
}

func check(errs map[string]string, field string, err error) {
	if err != nil {
		if _, exists := errs[field]; !exists {
			errs[field] = err.Error()
		}
	}
}
