package schedule

import "time"

// Occurrence is one upcoming meeting date. Date is the ISO calendar date
// used as the assignment key; Display is a short human label.
type Occurrence struct {
	Date    string `json:"date"`
	Display string `json:"display"`
}

// DateLayout is the ISO calendar date layout used for assignment keys.
const DateLayout = "2006-01-02"

const displayLayout = "Mon, Jan 2"

// NextOccurrences returns the next n occurrences of weekday strictly after
// the reference instant, in increasing order. When the reference falls on the
// target weekday the first occurrence is seven days later, never the same
// day.
func NextOccurrences(n int, reference time.Time, weekday time.Weekday) []Occurrence {
	if n <= 0 {
		return nil
	}

	days := (int(weekday) - int(reference.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}

	next := reference.AddDate(0, 0, days)
	occurrences := make([]Occurrence, 0, n)
	for i := 0; i < n; i++ {
		occurrences = append(occurrences, Occurrence{
			Date:    next.Format(DateLayout),
			Display: next.Format(displayLayout),
		})
		next = next.AddDate(0, 0, 7)
	}

	return occurrences
}
