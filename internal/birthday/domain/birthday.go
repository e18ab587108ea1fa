package domain

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	ErrBirthdayNotFound = errors.New("birthday not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrValidation       = errors.New("validation failed")
)

// UnknownYear is stored in BirthDate when only month and day are known.
// It is a leap year so Feb 29 survives.
const UnknownYear = 4

// Birthday is a person whose birthday the user wants to be reminded of
type Birthday struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"not null"`
	BirthDate  time.Time `json:"birth_date"`
	YearKnown  bool      `json:"year_known"`
	BirthMonth int       `json:"-" gorm:"index:idx_birthdays_month_day"`
	BirthDay   int       `json:"-" gorm:"index:idx_birthdays_month_day"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CustomWish string    `json:"custom_wish,omitempty"`
	WishID     string    `json:"wish_id,omitempty"` // Optional wish template to use instead of the default
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SetBirthDate stores the date at UTC midnight and keeps the month/day index in sync
func (b *Birthday) SetBirthDate(date time.Time, yearKnown bool) {
	year := date.Year()
	if !yearKnown {
		year = UnknownYear
	}
	b.BirthDate = time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	b.YearKnown = yearKnown
	b.BirthMonth = int(date.Month())
	b.BirthDay = date.Day()
}

// OccurrenceIn returns the day the birthday is celebrated in year.
// Feb 29 birthdays fall on Feb 28 in non-leap years.
func (b *Birthday) OccurrenceIn(year int, loc *time.Location) time.Time {
	month, day := b.BirthDate.Month(), b.BirthDate.Day()
	if month == time.February && day == 29 && !IsLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// NextOccurrence returns the next celebration day on or after today
func (b *Birthday) NextOccurrence(today time.Time) time.Time {
	today = StartOfDay(today)
	next := b.OccurrenceIn(today.Year(), today.Location())
	if next.Before(today) {
		next = b.OccurrenceIn(today.Year()+1, today.Location())
	}
	return next
}

// DaysUntil is 0 on the birthday itself
func (b *Birthday) DaysUntil(today time.Time) int {
	return DaysBetween(today, b.NextOccurrence(today))
}

// IsBirthdayOn reports whether the birthday is celebrated on date
func (b *Birthday) IsBirthdayOn(date time.Time) bool {
	return b.DaysUntil(date) == 0
}

// AgeOn returns the age reached by date. ok is false when the birth year is unknown.
func (b *Birthday) AgeOn(date time.Time) (age int, ok bool) {
	if !b.YearKnown {
		return 0, false
	}
	date = StartOfDay(date)
	age = date.Year() - b.BirthDate.Year()
	if date.Before(b.OccurrenceIn(date.Year(), date.Location())) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// UpcomingAge is the age the person turns at the next occurrence
func (b *Birthday) UpcomingAge(today time.Time) (int, bool) {
	return b.AgeOn(b.NextOccurrence(today))
}

// IsLeapYear follows the Gregorian rule
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from a to b, ignoring DST shifts
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// SortByNextOccurrence orders birthdays soonest first, then by name
func SortByNextOccurrence(birthdays []*Birthday, today time.Time) {
	sort.SliceStable(birthdays, func(i, j int) bool {
		di, dj := birthdays[i].DaysUntil(today), birthdays[j].DaysUntil(today)
		if di != dj {
			return di < dj
		}
		return strings.ToLower(birthdays[i].Name) < strings.ToLower(birthdays[j].Name)
	})
}

// ValidationError carries per-field messages and matches ErrValidation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
