package types

// Booking is a booking row joined with its property, as read from Postgres.
// The booking system owns these records; this service only reads them.
// Check-in/check-out are normalized to YYYY-MM-DD strings at the repository
// boundary so the rest of the pipeline never handles driver date types.
type Booking struct {
	BookingID      int64    `json:"booking_id"`
	CheckIn        string   `json:"check_in"`
	CheckOut       string   `json:"check_out"`
	NumberOfGuests int      `json:"number_of_guests"`
	PartyType      string   `json:"party_type" example:"couple"`
	Status         string   `json:"status" example:"ACCEPTED"`
	PropertyName   string   `json:"property_name"`
	City           string   `json:"city"`
	State          string   `json:"state"`
	Address        string   `json:"address,omitempty"`
	Bedrooms       int      `json:"bedrooms,omitempty"`
	Bathrooms      int      `json:"bathrooms,omitempty"`
	Amenities      []string `json:"amenities,omitempty"`
	PropertyType   string   `json:"property_type,omitempty"`
}

// BookingSummary is the trimmed shape used for booking lists and the
// past-trip history fed into the planning context.
type BookingSummary struct {
	ID           int64  `json:"id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	PartyType    string `json:"party_type,omitempty"`
	Status       string `json:"status,omitempty"`
	PropertyName string `json:"property_name,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PropertyType string `json:"property_type,omitempty"`
}

// Destination renders the canonical "City, ST" string used in prompts,
// vector documents and responses.
func (b *Booking) Destination() string {
	return b.City + ", " + b.State
}
