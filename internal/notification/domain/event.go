package domain

// EventKind tells the event handler what to do with a due birthday
type EventKind string

const (
	EventReminder EventKind = "reminder"
	EventWish     EventKind = "wish"
)

// BirthdayEvent is published for every due reminder or wish found by the daily check
type BirthdayEvent struct {
	Kind       EventKind `json:"kind"`
	UserID     string    `json:"user_id"`
	BirthdayID string    `json:"birthday_id"`
	Name       string    `json:"name"`
	DaysUntil  int       `json:"days_until"`
	Age        *int      `json:"age,omitempty"`
	Date       string    `json:"date"` // day of the check, YYYY-MM-DD
}
