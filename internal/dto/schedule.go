package dto

import "time"

// MemberSummary is the member projection embedded in schedule payloads.
type MemberSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ScheduleDay is one occurrence column of the admin schedule grid.
type ScheduleDay struct {
	Date     string          `json:"date"`
	Display  string          `json:"display"`
	Assigned []MemberSummary `json:"assigned"`
	Pending  bool            `json:"pending"`
}

// ScheduleGrid is the admin view over the upcoming occurrences.
type ScheduleGrid struct {
	Days        []ScheduleDay `json:"days"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// MemberScheduleDay is one occurrence row of the member dashboard.
type MemberScheduleDay struct {
	Date     string `json:"date"`
	Display  string `json:"display"`
	Assigned bool   `json:"assigned"`
	Notified bool   `json:"notified"`
}

// MemberSchedule is the read-only view a member sees of their own
// assignments across the upcoming occurrences.
type MemberSchedule struct {
	MemberID    string              `json:"member_id"`
	MemberName  string              `json:"member_name"`
	Days        []MemberScheduleDay `json:"days"`
	Assignments int                 `json:"assignments"`
}
