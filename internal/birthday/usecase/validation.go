package usecase

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"remind-candles/internal/birthday/domain"

	"github.com/go-playground/validator/v10"
)

const (
	minNameLength       = 2
	maxNameLength       = 50
	maxCustomWishLength = 500
)

var (
	phonePattern = regexp.MustCompile(`^[+]?[(]?[0-9]{3}[)]?[-\s.]?[0-9]{3}[-\s.]?[0-9]{4,6}$`)
	validate     = validator.New()
)

// birthdayInput is the trimmed form of a create or update request
type birthdayInput struct {
	Name       string
	BirthDate  string
	Email      string
	Phone      string
	CustomWish string
}

func (in *birthdayInput) trim() {
	in.Name = strings.TrimSpace(in.Name)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.CustomWish = strings.TrimSpace(in.CustomWish)
}

// validateInput checks every field and returns the parsed birth date
func validateInput(in birthdayInput, today time.Time) (date time.Time, yearKnown bool, err error) {
	fields := map[string]string{}

	switch n := utf8.RuneCountInString(in.Name); {
	case n == 0:
		fields["name"] = "Name is required"
	case n < minNameLength:
		fields["name"] = fmt.Sprintf("Name must be at least %d characters", minNameLength)
	case n > maxNameLength:
		fields["name"] = fmt.Sprintf("Name must be less than %d characters", maxNameLength)
	}

	if in.BirthDate == "" {
		fields["birth_date"] = "Birth date is required"
	} else {
		date, yearKnown, err = ParseBirthDate(in.BirthDate)
		if err != nil {
			fields["birth_date"] = "Birth date must be YYYY-MM-DD or MM-DD"
		} else if yearKnown && domain.DaysBetween(today, date) > 0 {
			fields["birth_date"] = "Birth date cannot be in the future"
		}
	}

	if in.Email != "" && validate.Var(in.Email, "email") != nil {
		fields["email"] = "Invalid email address"
	}
	if in.Phone != "" && !phonePattern.MatchString(in.Phone) {
		fields["phone"] = "Invalid phone number"
	}
	if in.Email == "" && in.Phone == "" {
		fields["contact"] = "Either email or phone is required"
	}

	if utf8.RuneCountInString(in.CustomWish) > maxCustomWishLength {
		fields["custom_wish"] = fmt.Sprintf("Custom wish must be less than %d characters", maxCustomWishLength)
	}

	if len(fields) > 0 {
		return time.Time{}, false, &domain.ValidationError{Fields: fields}
	}
	return date, yearKnown, nil
}

// ParseBirthDate accepts YYYY-MM-DD, or MM-DD when the year is unknown
func ParseBirthDate(s string) (date time.Time, yearKnown bool, err error) {
	if date, err = time.Parse(time.DateOnly, s); err == nil {
		return date, true, nil
	}
	// Parse MM-DD against a leap year so 02-29 is accepted
	if date, err = time.Parse("2006-01-02", "2000-"+s); err == nil && len(s) == len("01-02") {
		return time.Date(domain.UnknownYear, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC), false, nil
	}
	return time.Time{}, false, fmt.Errorf("invalid birth date %q", s)
}
