package models

import "time"

// Venue codes for the two properties the business operates.
const (
	VenueGuesthouse = "guesthouse"
	VenueRestaurant = "restaurant"
)

// IsValidVenue reports whether v names one of the two venues.
func IsValidVenue(v string) bool {
	return v == VenueGuesthouse || v == VenueRestaurant
}

// GuestPage is a time-limited, token-addressed public view for one stay.
// Guests reach it by QR code in the room; it lists assigned staff and offers
// the tipping entry point. Immutable after creation except by admin edit.
type GuestPage struct {
	ID           int64     `json:"id" db:"id"`
	Token        string    `json:"token" db:"token"` // opaque uuid, used in the public URL
	GuestName    string    `json:"guest_name" db:"guest_name"`
	RoomName     *string   `json:"room_name,omitempty" db:"room_name"`
	CheckinDate  time.Time `json:"checkin_date" db:"checkin_date"`
	CheckoutDate time.Time `json:"checkout_date" db:"checkout_date"`
	Venue        string    `json:"venue" db:"venue"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Assignments []StaffAssignment `json:"assignments,omitempty"` // populated on public lookup
}

// ExpiresAt returns the moment the page stops accepting tips: the end of the
// check-out day plus the configured grace period.
func (g *GuestPage) ExpiresAt(grace time.Duration) time.Time {
	endOfCheckout := time.Date(g.CheckoutDate.Year(), g.CheckoutDate.Month(), g.CheckoutDate.Day(),
		0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return endOfCheckout.Add(grace)
}

// IsExpired reports whether the page has passed its expiry at instant now.
func (g *GuestPage) IsExpired(now time.Time, grace time.Duration) bool {
	return now.After(g.ExpiresAt(grace))
}

// StaffAssignment links a staff member to a guest page. Unique per
// (guest_page_id, staff_id).
type StaffAssignment struct {
	ID          int64     `json:"id" db:"id"`
	GuestPageID int64     `json:"guest_page_id" db:"guest_page_id"`
	StaffID     int64     `json:"staff_id" db:"staff_id"`
	RoleTag     *string   `json:"role_tag,omitempty" db:"role_tag"` // e.g. "housekeeping", "front desk"
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	StaffName  *string `json:"staff_name,omitempty"`  // joined from users
	HasWallet  bool    `json:"has_wallet"`            // joined from staff_wallets
}

// StaffWallet holds one payout address per staff member. Addresses are stored
// normalized (lowercase) and are globally unique.
type StaffWallet struct {
	ID        int64     `json:"id" db:"id"`
	StaffID   int64     `json:"staff_id" db:"staff_id"`
	Address   string    `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
