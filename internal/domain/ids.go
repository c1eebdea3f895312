package domain

// Identifier types are distinct to prevent accidental cross-assignment.
type (
	TripID        string
	ItemID        string
	UserID        string
	ParticipantID string
)
