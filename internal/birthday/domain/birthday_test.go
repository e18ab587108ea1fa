package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newBirthday(date time.Time, yearKnown bool) *Birthday {
	b := &Birthday{Name: "Test"}
	b.SetBirthDate(date, yearKnown)
	return b
}

func TestDaysUntil(t *testing.T) {
	b := newBirthday(day(1990, time.March, 15), true)

	assert.Equal(t, 0, b.DaysUntil(day(2025, time.March, 15)))
	assert.Equal(t, 1, b.DaysUntil(day(2025, time.March, 14)))
	assert.Equal(t, 3, b.DaysUntil(day(2025, time.March, 12)))
	// Just passed: next year
	assert.Equal(t, 365, b.DaysUntil(day(2025, time.March, 16)))
	// Time of day does not matter
	assert.Equal(t, 1, b.DaysUntil(time.Date(2025, time.March, 14, 23, 59, 0, 0, time.UTC)))
}

func TestLeapDayBirthday(t *testing.T) {
	b := newBirthday(day(2000, time.February, 29), true)

	assert.True(t, b.IsBirthdayOn(day(2025, time.February, 28)))
	assert.False(t, b.IsBirthdayOn(day(2025, time.March, 1)))
	assert.True(t, b.IsBirthdayOn(day(2024, time.February, 29)))
	assert.False(t, b.IsBirthdayOn(day(2024, time.February, 28)))

	assert.Equal(t, day(2025, time.February, 28), b.NextOccurrence(day(2025, time.January, 1)))
	assert.Equal(t, day(2028, time.February, 29), b.NextOccurrence(day(2027, time.March, 1)))

	age, ok := b.AgeOn(day(2025, time.February, 28))
	assert.True(t, ok)
	assert.Equal(t, 25, age)
}

func TestAgeOn(t *testing.T) {
	b := newBirthday(day(1990, time.March, 15), true)

	age, ok := b.AgeOn(day(2025, time.March, 14))
	assert.True(t, ok)
	assert.Equal(t, 34, age)

	age, ok = b.UpcomingAge(day(2025, time.March, 14))
	assert.True(t, ok)
	assert.Equal(t, 35, age)

	unknown := newBirthday(day(1990, time.March, 15), false)
	_, ok = unknown.AgeOn(day(2025, time.March, 15))
	assert.False(t, ok)
	assert.Equal(t, UnknownYear, unknown.BirthDate.Year())
	assert.True(t, unknown.IsBirthdayOn(day(2025, time.March, 15)))
}

func TestDaysUntilAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata not available")
	}
	b := newBirthday(day(1990, time.March, 15), true)
	// DST starts on March 9 2025 in New York
	today := time.Date(2025, time.March, 1, 9, 0, 0, 0, loc)
	assert.Equal(t, 14, b.DaysUntil(today))
}

func TestSortByNextOccurrence(t *testing.T) {
	today := day(2025, time.June, 1)
	a := newBirthday(day(1990, time.May, 31), true)
	a.Name = "Last"
	bb := newBirthday(day(1990, time.June, 2), true)
	bb.Name = "bob"
	c := newBirthday(day(1990, time.June, 2), true)
	c.Name = "Alice"
	list := []*Birthday{a, bb, c}

	SortByNextOccurrence(list, today)
	assert.Equal(t, []string{"Alice", "bob", "Last"}, []string{list[0].Name, list[1].Name, list[2].Name})
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{"name": "required", "email": "invalid"}}
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "validation failed: email: invalid; name: required", err.Error())
}
