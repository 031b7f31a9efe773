package models

// Member is a roster member managed by the coordinator. Identity is the
// opaque ID; insertion order is display order.
type Member struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone,omitempty"`
}

// Snapshot is the full serializable roster state persisted to the
// key-value store after every mutation.
type Snapshot struct {
	Members     []Member     `json:"members"`
	Assignments []Assignment `json:"assignments"`
}
