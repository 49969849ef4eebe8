package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
	"venue_ops_backend/pkg/utils"
)

// --- Custom Service Errors for reservations ---
var (
	ErrReservationNotFound     = errors.New("reservation not found")
	ErrReservationValidation   = errors.New("reservation validation error")
	ErrReservationCancelled    = errors.New("reservation is already cancelled")
	ErrAssignmentNotFound      = errors.New("reservation assignment not found")
	ErrAssignmentExists        = errors.New("staff member already assigned to this task")
	ErrLinkedStayNotFound      = errors.New("linked stay reservation not found")
)

// --- Reservation DTOs ---

type CreateStayRequest struct {
	GuestName     string  `json:"guest_name" binding:"required"`
	GuestContact  *string `json:"guest_contact"`
	CheckinDate   string  `json:"checkin_date" binding:"required"`
	CheckoutDate  string  `json:"checkout_date" binding:"required"`
	GuestCount    int     `json:"guest_count" binding:"required,min=1"`
	MealOption    string  `json:"meal_option" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Notes         *string `json:"notes"`
}

type UpdateStayRequest struct {
	GuestName     *string `json:"guest_name"`
	GuestContact  *string `json:"guest_contact"`
	CheckinDate   *string `json:"checkin_date"`
	CheckoutDate  *string `json:"checkout_date"`
	GuestCount    *int    `json:"guest_count"`
	MealOption    *string `json:"meal_option"`
	PaymentMethod *string `json:"payment_method"`
	Notes         *string `json:"notes"`
}

type CreateMealRequest struct {
	GuestName         string  `json:"guest_name" binding:"required"`
	Date              string  `json:"date" binding:"required"`
	Slot              string  `json:"slot" binding:"required"`
	ArrivalTime       *string `json:"arrival_time"`
	PartySize         int     `json:"party_size" binding:"required,min=1"`
	StayReservationID *int64  `json:"stay_reservation_id"`
	Notes             *string `json:"notes"`
}

type UpdateMealRequest struct {
	GuestName         *string `json:"guest_name"`
	Date              *string `json:"date"`
	Slot              *string `json:"slot"`
	ArrivalTime       *string `json:"arrival_time"`
	PartySize         *int    `json:"party_size"`
	StayReservationID *int64  `json:"stay_reservation_id"`
	Notes             *string `json:"notes"`
}

type CreateReservationAssignmentRequest struct {
	StaffID int64  `json:"staff_id" binding:"required"`
	Task    string `json:"task" binding:"required"`
}

// --- ReservationService Interface ---
type ReservationService interface {
	CreateStay(req CreateStayRequest) (*models.StayReservation, error)
	GetStayByID(id int64) (*models.StayReservation, error)
	ListStays(from, to *time.Time, status *string) ([]models.StayReservation, error)
	UpdateStay(id int64, req UpdateStayRequest) (*models.StayReservation, error)
	CancelStay(id int64) (*models.StayReservation, error)

	CreateMeal(req CreateMealRequest) (*models.MealReservation, error)
	GetMealByID(id int64) (*models.MealReservation, error)
	ListMeals(from, to *time.Time, status *string) ([]models.MealReservation, error)
	UpdateMeal(id int64, req UpdateMealRequest) (*models.MealReservation, error)
	CancelMeal(id int64) (*models.MealReservation, error)

	CreateAssignment(stayID int64, req CreateReservationAssignmentRequest) (*models.ReservationAssignment, error)
	DeleteAssignment(id int64) error
	ListAssignmentsByStay(stayID int64) ([]models.ReservationAssignment, error)
	MarkReminderSent(id int64, dayBefore, sameDay bool) (*models.ReservationAssignment, error)
}

// --- reservationService Implementation ---
type reservationService struct {
	reservationRepo repositories.ReservationRepository
	authRepo        repositories.AuthRepository
	checklists      ChecklistService
	db              *sql.DB
}

// NewReservationService creates a new instance of ReservationService.
func NewReservationService(
	rr repositories.ReservationRepository,
	ar repositories.AuthRepository,
	cs ChecklistService,
	db *sql.DB,
) ReservationService {
	return &reservationService{
		reservationRepo: rr,
		authRepo:        ar,
		checklists:      cs,
		db:              db,
	}
}

func parseStayDates(checkinStr, checkoutStr string) (time.Time, time.Time, error) {
	checkin, err := utils.ParseDate(checkinStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrReservationValidation, err)
	}
	checkout, err := utils.ParseDate(checkoutStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %v", ErrReservationValidation, err)
	}
	if !checkout.After(checkin) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: check-out must be after check-in", ErrReservationValidation)
	}
	return checkin, checkout, nil
}

func (s *reservationService) CreateStay(req CreateStayRequest) (*models.StayReservation, error) {
	checkin, checkout, err := parseStayDates(req.CheckinDate, req.CheckoutDate)
	if err != nil {
		return nil, err
	}
	if !models.IsValidMealOption(req.MealOption) {
		return nil, fmt.Errorf("%w: unknown meal option %q", ErrReservationValidation, req.MealOption)
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrReservationValidation, req.PaymentMethod)
	}

	stay := &models.StayReservation{
		GuestName:     req.GuestName,
		GuestContact:  req.GuestContact,
		CheckinDate:   checkin,
		CheckoutDate:  checkout,
		GuestCount:    req.GuestCount,
		MealOption:    req.MealOption,
		PaymentMethod: req.PaymentMethod,
		Status:        models.ReservationStatusConfirmed,
		Notes:         req.Notes,
	}
	created, err := s.reservationRepo.CreateStay(s.db, stay)
	if err != nil {
		return nil, fmt.Errorf("failed to create stay reservation: %w", err)
	}

	s.checklists.SyncReservationChange(ReservationChange{
		Kind:       ChangeCreate,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   created.ID,
		After:      StayDateRoles(created.CheckinDate, created.CheckoutDate),
	})
	return created, nil
}

func (s *reservationService) GetStayByID(id int64) (*models.StayReservation, error) {
	stay, err := s.reservationRepo.GetStayByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get stay reservation: %w", err)
	}
	return stay, nil
}

func (s *reservationService) ListStays(from, to *time.Time, status *string) ([]models.StayReservation, error) {
	if status != nil && !models.IsValidReservationStatus(*status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrReservationValidation, *status)
	}
	stays, err := s.reservationRepo.ListStays(from, to, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list stay reservations: %w", err)
	}
	return stays, nil
}

func (s *reservationService) UpdateStay(id int64, req UpdateStayRequest) (*models.StayReservation, error) {
	stay, err := s.GetStayByID(id)
	if err != nil {
		return nil, err
	}
	if stay.Status == models.ReservationStatusCancelled {
		return nil, ErrReservationCancelled
	}
	before := StayDateRoles(stay.CheckinDate, stay.CheckoutDate)

	if req.GuestName != nil {
		stay.GuestName = *req.GuestName
	}
	if req.GuestContact != nil {
		stay.GuestContact = req.GuestContact
	}
	checkinStr := stay.CheckinDate.Format(utils.DateLayout)
	checkoutStr := stay.CheckoutDate.Format(utils.DateLayout)
	if req.CheckinDate != nil {
		checkinStr = *req.CheckinDate
	}
	if req.CheckoutDate != nil {
		checkoutStr = *req.CheckoutDate
	}
	checkin, checkout, err := parseStayDates(checkinStr, checkoutStr)
	if err != nil {
		return nil, err
	}
	datesChanged := !checkin.Equal(stay.CheckinDate) || !checkout.Equal(stay.CheckoutDate)
	stay.CheckinDate = checkin
	stay.CheckoutDate = checkout

	if req.GuestCount != nil {
		if *req.GuestCount < 1 {
			return nil, fmt.Errorf("%w: guest count must be positive", ErrReservationValidation)
		}
		stay.GuestCount = *req.GuestCount
	}
	if req.MealOption != nil {
		if !models.IsValidMealOption(*req.MealOption) {
			return nil, fmt.Errorf("%w: unknown meal option %q", ErrReservationValidation, *req.MealOption)
		}
		stay.MealOption = *req.MealOption
	}
	if req.PaymentMethod != nil {
		if !models.IsValidPaymentMethod(*req.PaymentMethod) {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrReservationValidation, *req.PaymentMethod)
		}
		stay.PaymentMethod = *req.PaymentMethod
	}
	if req.Notes != nil {
		stay.Notes = req.Notes
	}

	updated, err := s.reservationRepo.UpdateStay(s.db, stay)
	if err != nil {
		return nil, fmt.Errorf("failed to update stay reservation: %w", err)
	}

	if datesChanged {
		s.checklists.SyncReservationChange(ReservationChange{
			Kind:       ChangeUpdate,
			Venue:      models.VenueGuesthouse,
			SourceType: SourceStay,
			SourceID:   updated.ID,
			Before:     before,
			After:      StayDateRoles(updated.CheckinDate, updated.CheckoutDate),
		})
	}
	return updated, nil
}

func (s *reservationService) CancelStay(id int64) (*models.StayReservation, error) {
	stay, err := s.GetStayByID(id)
	if err != nil {
		return nil, err
	}
	if stay.Status == models.ReservationStatusCancelled {
		return nil, ErrReservationCancelled
	}
	stay.Status = models.ReservationStatusCancelled
	updated, err := s.reservationRepo.UpdateStay(s.db, stay)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel stay reservation: %w", err)
	}

	s.checklists.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   updated.ID,
		Before:     StayDateRoles(updated.CheckinDate, updated.CheckoutDate),
	})
	return updated, nil
}

func (s *reservationService) CreateMeal(req CreateMealRequest) (*models.MealReservation, error) {
	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReservationValidation, err)
	}
	if !models.IsValidMealSlot(req.Slot) {
		return nil, fmt.Errorf("%w: unknown meal slot %q", ErrReservationValidation, req.Slot)
	}
	if req.StayReservationID != nil {
		if _, err := s.reservationRepo.GetStayByID(*req.StayReservationID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrLinkedStayNotFound
			}
			return nil, fmt.Errorf("failed to validate linked stay: %w", err)
		}
	}

	meal := &models.MealReservation{
		GuestName:         req.GuestName,
		Date:              date,
		Slot:              req.Slot,
		ArrivalTime:       req.ArrivalTime,
		PartySize:         req.PartySize,
		StayReservationID: req.StayReservationID,
		Status:            models.ReservationStatusConfirmed,
		Notes:             req.Notes,
	}
	created, err := s.reservationRepo.CreateMeal(s.db, meal)
	if err != nil {
		return nil, fmt.Errorf("failed to create meal reservation: %w", err)
	}

	s.checklists.SyncReservationChange(ReservationChange{
		Kind:       ChangeCreate,
		Venue:      models.VenueRestaurant,
		SourceType: SourceMeal,
		SourceID:   created.ID,
		After:      MealDateRoles(created.Date, created.Slot),
	})
	return created, nil
}

func (s *reservationService) GetMealByID(id int64) (*models.MealReservation, error) {
	meal, err := s.reservationRepo.GetMealByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get meal reservation: %w", err)
	}
	return meal, nil
}

func (s *reservationService) ListMeals(from, to *time.Time, status *string) ([]models.MealReservation, error) {
	if status != nil && !models.IsValidReservationStatus(*status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrReservationValidation, *status)
	}
	meals, err := s.reservationRepo.ListMeals(from, to, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal reservations: %w", err)
	}
	return meals, nil
}

func (s *reservationService) UpdateMeal(id int64, req UpdateMealRequest) (*models.MealReservation, error) {
	meal, err := s.GetMealByID(id)
	if err != nil {
		return nil, err
	}
	if meal.Status == models.ReservationStatusCancelled {
		return nil, ErrReservationCancelled
	}
	before := MealDateRoles(meal.Date, meal.Slot)

	if req.GuestName != nil {
		meal.GuestName = *req.GuestName
	}
	dateChanged := false
	if req.Date != nil {
		date, parseErr := utils.ParseDate(*req.Date)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrReservationValidation, parseErr)
		}
		dateChanged = !date.Equal(meal.Date)
		meal.Date = date
	}
	if req.Slot != nil {
		if !models.IsValidMealSlot(*req.Slot) {
			return nil, fmt.Errorf("%w: unknown meal slot %q", ErrReservationValidation, *req.Slot)
		}
		dateChanged = dateChanged || *req.Slot != meal.Slot
		meal.Slot = *req.Slot
	}
	if req.ArrivalTime != nil {
		meal.ArrivalTime = req.ArrivalTime
	}
	if req.PartySize != nil {
		if *req.PartySize < 1 {
			return nil, fmt.Errorf("%w: party size must be positive", ErrReservationValidation)
		}
		meal.PartySize = *req.PartySize
	}
	if req.StayReservationID != nil {
		if _, err := s.reservationRepo.GetStayByID(*req.StayReservationID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrLinkedStayNotFound
			}
			return nil, fmt.Errorf("failed to validate linked stay: %w", err)
		}
		meal.StayReservationID = req.StayReservationID
	}
	if req.Notes != nil {
		meal.Notes = req.Notes
	}

	updated, err := s.reservationRepo.UpdateMeal(s.db, meal)
	if err != nil {
		return nil, fmt.Errorf("failed to update meal reservation: %w", err)
	}

	if dateChanged {
		s.checklists.SyncReservationChange(ReservationChange{
			Kind:       ChangeUpdate,
			Venue:      models.VenueRestaurant,
			SourceType: SourceMeal,
			SourceID:   updated.ID,
			Before:     before,
			After:      MealDateRoles(updated.Date, updated.Slot),
		})
	}
	return updated, nil
}

func (s *reservationService) CancelMeal(id int64) (*models.MealReservation, error) {
	meal, err := s.GetMealByID(id)
	if err != nil {
		return nil, err
	}
	if meal.Status == models.ReservationStatusCancelled {
		return nil, ErrReservationCancelled
	}
	meal.Status = models.ReservationStatusCancelled
	updated, err := s.reservationRepo.UpdateMeal(s.db, meal)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel meal reservation: %w", err)
	}

	s.checklists.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueRestaurant,
		SourceType: SourceMeal,
		SourceID:   updated.ID,
		Before:     MealDateRoles(updated.Date, updated.Slot),
	})
	return updated, nil
}

func (s *reservationService) CreateAssignment(stayID int64, req CreateReservationAssignmentRequest) (*models.ReservationAssignment, error) {
	if !models.IsValidAssignmentTask(req.Task) {
		return nil, fmt.Errorf("%w: unknown task %q", ErrReservationValidation, req.Task)
	}
	if _, err := s.GetStayByID(stayID); err != nil {
		return nil, err
	}
	if _, err := s.authRepo.GetUserByID(req.StaffID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to validate staff member: %w", err)
	}

	assignment := &models.ReservationAssignment{
		StayReservationID: stayID,
		StaffID:           req.StaffID,
		Task:              req.Task,
	}
	created, err := s.reservationRepo.CreateAssignment(s.db, assignment)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAssignmentExists
		}
		return nil, fmt.Errorf("failed to create reservation assignment: %w", err)
	}
	return created, nil
}

func (s *reservationService) DeleteAssignment(id int64) error {
	if err := s.reservationRepo.DeleteAssignment(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to delete reservation assignment: %w", err)
	}
	return nil
}

func (s *reservationService) ListAssignmentsByStay(stayID int64) ([]models.ReservationAssignment, error) {
	if _, err := s.GetStayByID(stayID); err != nil {
		return nil, err
	}
	assignments, err := s.reservationRepo.ListAssignmentsByStay(stayID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservation assignments: %w", err)
	}
	return assignments, nil
}

// MarkReminderSent flips the two reminder flags independently: a true only
// sets, never clears, its flag.
func (s *reservationService) MarkReminderSent(id int64, dayBefore, sameDay bool) (*models.ReservationAssignment, error) {
	assignment, err := s.reservationRepo.GetAssignmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get reservation assignment: %w", err)
	}
	newDayBefore := assignment.ReminderDayBeforeSent || dayBefore
	newSameDay := assignment.ReminderSameDaySent || sameDay
	if err := s.reservationRepo.SetReminderFlags(s.db, id, newDayBefore, newSameDay); err != nil {
		return nil, fmt.Errorf("failed to update reminder flags: %w", err)
	}
	assignment.ReminderDayBeforeSent = newDayBefore
	assignment.ReminderSameDaySent = newSameDay
	return assignment, nil
}
