package models

import "time"

// Reservation statuses. Cancellation is a status transition, not a delete.
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusCancelled = "cancelled"
)

// IsValidReservationStatus reports whether s is a recognized status.
func IsValidReservationStatus(s string) bool {
	return s == ReservationStatusConfirmed || s == ReservationStatusCancelled
}

// Meal options for a guesthouse stay.
const (
	MealOptionNone      = "none"
	MealOptionBreakfast = "breakfast"
	MealOptionHalfBoard = "half_board"
)

func IsValidMealOption(m string) bool {
	switch m {
	case MealOptionNone, MealOptionBreakfast, MealOptionHalfBoard:
		return true
	}
	return false
}

// Payment methods accepted for stays.
const (
	PaymentMethodOnsite       = "onsite"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCard         = "card"
)

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodOnsite, PaymentMethodBankTransfer, PaymentMethodCard:
		return true
	}
	return false
}

// Meal slots served at the restaurant.
const (
	MealSlotBreakfast = "breakfast"
	MealSlotLunch     = "lunch"
	MealSlotDinner    = "dinner"
)

func IsValidMealSlot(s string) bool {
	switch s {
	case MealSlotBreakfast, MealSlotLunch, MealSlotDinner:
		return true
	}
	return false
}

// StayReservation is a multi-night booking at the guesthouse.
type StayReservation struct {
	ID            int64     `json:"id" db:"id"`
	GuestName     string    `json:"guest_name" db:"guest_name"`
	GuestContact  *string   `json:"guest_contact,omitempty" db:"guest_contact"`
	CheckinDate   time.Time `json:"checkin_date" db:"checkin_date"`
	CheckoutDate  time.Time `json:"checkout_date" db:"checkout_date"`
	GuestCount    int       `json:"guest_count" db:"guest_count"`
	MealOption    string    `json:"meal_option" db:"meal_option"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	Status        string    `json:"status" db:"status"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// MealReservation is a single-meal booking at the restaurant, optionally
// linked to a guesthouse stay.
type MealReservation struct {
	ID                int64      `json:"id" db:"id"`
	GuestName         string     `json:"guest_name" db:"guest_name"`
	Date              time.Time  `json:"date" db:"date"`
	Slot              string     `json:"slot" db:"slot"`
	ArrivalTime       *string    `json:"arrival_time,omitempty" db:"arrival_time"` // "HH:MM"
	PartySize         int        `json:"party_size" db:"party_size"`
	StayReservationID *int64     `json:"stay_reservation_id,omitempty" db:"stay_reservation_id"`
	Status            string     `json:"status" db:"status"`
	Notes             *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// Task types a staff member can be assigned to for a stay.
const (
	AssignmentTaskCleaning = "cleaning"
	AssignmentTaskSetup    = "setup"
)

func IsValidAssignmentTask(t string) bool {
	return t == AssignmentTaskCleaning || t == AssignmentTaskSetup
}

// ReservationAssignment links a stay reservation to the staff member working
// its cleaning or setup, with independently tracked reminder flags.
type ReservationAssignment struct {
	ID                    int64     `json:"id" db:"id"`
	StayReservationID     int64     `json:"stay_reservation_id" db:"stay_reservation_id"`
	StaffID               int64     `json:"staff_id" db:"staff_id"`
	Task                  string    `json:"task" db:"task"`
	ReminderDayBeforeSent bool      `json:"reminder_day_before_sent" db:"reminder_day_before_sent"`
	ReminderSameDaySent   bool      `json:"reminder_same_day_sent" db:"reminder_same_day_sent"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`

	StaffName *string `json:"staff_name,omitempty"` // joined from users
}
