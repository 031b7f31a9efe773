package dto

// AddMemberRequest registers a new roster member.
type AddMemberRequest struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty"`
}

// AssignRequest pairs a member with an occurrence date.
type AssignRequest struct {
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	MemberID string `json:"member_id" validate:"required"`
}

// NotifyResponse reports the outcome of a send-notifications action.
type NotifyResponse struct {
	Date     string   `json:"date"`
	Notified int      `json:"notified"`
	Messages []string `json:"messages"`
}
