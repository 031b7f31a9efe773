package models

// Assignment pairs a member with one occurrence date. The composite key
// (Date, MemberID) is unique within the roster; Notified only ever flips
// from false to true.
type Assignment struct {
	Date     string `json:"date"`
	MemberID string `json:"member_id"`
	Notified bool   `json:"notified"`
}
