package domain

import "time"

type ItemType string

const (
	ItemTypeFlight   ItemType = "flight"
	ItemTypeTrain    ItemType = "train"
	ItemTypeHotel    ItemType = "hotel"
	ItemTypeActivity ItemType = "activity"
	ItemTypeOther    ItemType = "other"
)

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// TripItem is one itinerary event. The item identifier is unique only within
// its owning trip's item collection, not globally.
//
// Date and time components are stored as the raw locale strings the remote
// store carries (DD/MM/YYYY and HH:MM[:SS]). StartAt/EndAt are derived by
// ComposeInstant and are nil when either component is empty or malformed.
type TripItem struct {
	ID     ItemID
	TripID TripID

	Type        ItemType
	Description string

	StartDateRaw string
	StartTimeRaw string
	EndDateRaw   string
	EndTimeRaw   string

	StartPlace  string
	EndPlace    string
	Geolocation string

	Participants []ParticipantID

	InfoURL string
	FileURL string
	MapURL  string

	FlightNumber   string
	Reservation    string
	HandBaggage    string
	CheckedBaggage string

	Price    string
	Paid     string
	AltPrice string
	AltPaid  string

	// Derived, never stored.
	StartAt *time.Time
	EndAt   *time.Time
}

// Trip is a named collection of items plus participants, owned by one user.
// Items are never shared across trips.
type Trip struct {
	ID          TripID
	Name        string
	Description string
	OwnerID     UserID

	Items        map[ItemID]TripItem
	Participants map[ParticipantID]Participant
}

// Participant is a named trip collaborator, referenced from items by ID.
type Participant struct {
	ID        ParticipantID
	Name      string
	Color     string
	AvatarURL string
}

// UserData is the authenticated account record.
type UserData struct {
	UID   UserID
	Name  string
	Email string
	Role  Role
	Trips []TripID
}

// Snapshot is one consistent aggregated view of the session's trips.
// It is published whole; consumers must treat it as read-only.
type Snapshot struct {
	Trips        []Trip
	TripItems    []TripItem
	Participants map[ParticipantID]Participant
}

// EmptySnapshot returns a snapshot with empty (non-nil) collections,
// the shape published when no session is present.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Trips:        []Trip{},
		TripItems:    []TripItem{},
		Participants: map[ParticipantID]Participant{},
	}
}
