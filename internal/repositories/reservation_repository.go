package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
)

// ReservationRepository covers both reservation variants plus the staff task
// assignments attached to stays.
type ReservationRepository interface {
	CreateStay(executor SQLExecutor, stay *models.StayReservation) (*models.StayReservation, error)
	GetStayByID(id int64) (*models.StayReservation, error)
	ListStays(from, to *time.Time, status *string) ([]models.StayReservation, error)
	UpdateStay(executor SQLExecutor, stay *models.StayReservation) (*models.StayReservation, error)
	CountStaysTouchingDate(date time.Time, checkin bool, excludeID int64) (int, error)

	CreateMeal(executor SQLExecutor, meal *models.MealReservation) (*models.MealReservation, error)
	GetMealByID(id int64) (*models.MealReservation, error)
	ListMeals(from, to *time.Time, status *string) ([]models.MealReservation, error)
	UpdateMeal(executor SQLExecutor, meal *models.MealReservation) (*models.MealReservation, error)
	CountMealsOnDateSlot(date time.Time, slot string, excludeID int64) (int, error)

	CreateAssignment(executor SQLExecutor, a *models.ReservationAssignment) (*models.ReservationAssignment, error)
	DeleteAssignment(executor SQLExecutor, id int64) error
	GetAssignmentByID(id int64) (*models.ReservationAssignment, error)
	ListAssignmentsByStay(stayID int64) ([]models.ReservationAssignment, error)
	SetReminderFlags(executor SQLExecutor, id int64, dayBefore, sameDay bool) error
}

type reservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a new instance of ReservationRepository.
func NewReservationRepository(db *sql.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

const stayColumns = `id, guest_name, guest_contact, checkin_date, checkout_date, guest_count, meal_option, payment_method, status, notes, created_at, updated_at`

func scanStay(row scanner) (*models.StayReservation, error) {
	var s models.StayReservation
	var contact, notes sql.NullString
	err := row.Scan(&s.ID, &s.GuestName, &contact, &s.CheckinDate, &s.CheckoutDate, &s.GuestCount,
		&s.MealOption, &s.PaymentMethod, &s.Status, &notes, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning stay reservation: %v", ErrDatabaseError, err)
	}
	if contact.Valid {
		s.GuestContact = &contact.String
	}
	if notes.Valid {
		s.Notes = &notes.String
	}
	return &s, nil
}

func (r *reservationRepository) CreateStay(executor SQLExecutor, stay *models.StayReservation) (*models.StayReservation, error) {
	query := `INSERT INTO stay_reservations
	            (guest_name, guest_contact, checkin_date, checkout_date, guest_count, meal_option, payment_method, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, stay.GuestName, stay.GuestContact, stay.CheckinDate, stay.CheckoutDate,
		stay.GuestCount, stay.MealOption, stay.PaymentMethod, stay.Status, stay.Notes).
		Scan(&stay.ID, &stay.CreatedAt, &stay.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating stay reservation: %v", ErrDatabaseError, err)
	}
	return stay, nil
}

func (r *reservationRepository) GetStayByID(id int64) (*models.StayReservation, error) {
	return scanStay(r.db.QueryRow(`SELECT `+stayColumns+` FROM stay_reservations WHERE id = $1`, id))
}

func (r *reservationRepository) ListStays(from, to *time.Time, status *string) ([]models.StayReservation, error) {
	query := `SELECT ` + stayColumns + ` FROM stay_reservations WHERE 1=1`
	args := []interface{}{}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND checkout_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND checkin_date <= $%d`, len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY checkin_date ASC, id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing stay reservations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var stays []models.StayReservation
	for rows.Next() {
		s, scanErr := scanStay(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		stays = append(stays, *s)
	}
	return stays, rows.Err()
}

func (r *reservationRepository) UpdateStay(executor SQLExecutor, stay *models.StayReservation) (*models.StayReservation, error) {
	query := `UPDATE stay_reservations
	          SET guest_name = $1, guest_contact = $2, checkin_date = $3, checkout_date = $4,
	              guest_count = $5, meal_option = $6, payment_method = $7, status = $8, notes = $9, updated_at = NOW()
	          WHERE id = $10
	          RETURNING updated_at`
	err := executor.QueryRow(query, stay.GuestName, stay.GuestContact, stay.CheckinDate, stay.CheckoutDate,
		stay.GuestCount, stay.MealOption, stay.PaymentMethod, stay.Status, stay.Notes, stay.ID).
		Scan(&stay.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating stay reservation: %v", ErrDatabaseError, err)
	}
	return stay, nil
}

// CountStaysTouchingDate counts confirmed stays whose check-in (or check-out,
// when checkin is false) falls on date, excluding one reservation. Used to
// decide whether a generated checklist also serves another reservation.
func (r *reservationRepository) CountStaysTouchingDate(date time.Time, checkin bool, excludeID int64) (int, error) {
	column := "checkout_date"
	if checkin {
		column = "checkin_date"
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM stay_reservations WHERE %s = $1 AND status = $2 AND id <> $3`, column)
	var count int
	if err := r.db.QueryRow(query, date, models.ReservationStatusConfirmed, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting stays touching date: %v", ErrDatabaseError, err)
	}
	return count, nil
}

const mealColumns = `id, guest_name, date, slot, arrival_time, party_size, stay_reservation_id, status, notes, created_at, updated_at`

func scanMeal(row scanner) (*models.MealReservation, error) {
	var m models.MealReservation
	var arrival, notes sql.NullString
	var stayID sql.NullInt64
	err := row.Scan(&m.ID, &m.GuestName, &m.Date, &m.Slot, &arrival, &m.PartySize, &stayID, &m.Status, &notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning meal reservation: %v", ErrDatabaseError, err)
	}
	if arrival.Valid {
		m.ArrivalTime = &arrival.String
	}
	if stayID.Valid {
		m.StayReservationID = &stayID.Int64
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	return &m, nil
}

func (r *reservationRepository) CreateMeal(executor SQLExecutor, meal *models.MealReservation) (*models.MealReservation, error) {
	query := `INSERT INTO meal_reservations
	            (guest_name, date, slot, arrival_time, party_size, stay_reservation_id, status, notes)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, meal.GuestName, meal.Date, meal.Slot, meal.ArrivalTime, meal.PartySize,
		meal.StayReservationID, meal.Status, meal.Notes).
		Scan(&meal.ID, &meal.CreatedAt, &meal.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating meal reservation: %v", ErrDatabaseError, err)
	}
	return meal, nil
}

func (r *reservationRepository) GetMealByID(id int64) (*models.MealReservation, error) {
	return scanMeal(r.db.QueryRow(`SELECT `+mealColumns+` FROM meal_reservations WHERE id = $1`, id))
}

func (r *reservationRepository) ListMeals(from, to *time.Time, status *string) ([]models.MealReservation, error) {
	query := `SELECT ` + mealColumns + ` FROM meal_reservations WHERE 1=1`
	args := []interface{}{}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	if status != nil {
		args = append(args, *status)
		query += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	query += ` ORDER BY date ASC, slot ASC, id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listing meal reservations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var meals []models.MealReservation
	for rows.Next() {
		m, scanErr := scanMeal(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		meals = append(meals, *m)
	}
	return meals, rows.Err()
}

func (r *reservationRepository) UpdateMeal(executor SQLExecutor, meal *models.MealReservation) (*models.MealReservation, error) {
	query := `UPDATE meal_reservations
	          SET guest_name = $1, date = $2, slot = $3, arrival_time = $4, party_size = $5,
	              stay_reservation_id = $6, status = $7, notes = $8, updated_at = NOW()
	          WHERE id = $9
	          RETURNING updated_at`
	err := executor.QueryRow(query, meal.GuestName, meal.Date, meal.Slot, meal.ArrivalTime, meal.PartySize,
		meal.StayReservationID, meal.Status, meal.Notes, meal.ID).
		Scan(&meal.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating meal reservation: %v", ErrDatabaseError, err)
	}
	return meal, nil
}

// CountMealsOnDateSlot counts confirmed meal reservations on (date, slot)
// excluding one reservation.
func (r *reservationRepository) CountMealsOnDateSlot(date time.Time, slot string, excludeID int64) (int, error) {
	query := `SELECT COUNT(*) FROM meal_reservations WHERE date = $1 AND slot = $2 AND status = $3 AND id <> $4`
	var count int
	if err := r.db.QueryRow(query, date, slot, models.ReservationStatusConfirmed, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting meal reservations: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *reservationRepository) CreateAssignment(executor SQLExecutor, a *models.ReservationAssignment) (*models.ReservationAssignment, error) {
	query := `INSERT INTO reservation_assignments (stay_reservation_id, staff_id, task)
	          VALUES ($1, $2, $3)
	          RETURNING id, reminder_day_before_sent, reminder_same_day_sent, created_at`
	err := executor.QueryRow(query, a.StayReservationID, a.StaffID, a.Task).
		Scan(&a.ID, &a.ReminderDayBeforeSent, &a.ReminderSameDaySent, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating reservation assignment: %v", ErrDatabaseError, err)
	}
	return a, nil
}

func (r *reservationRepository) DeleteAssignment(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM reservation_assignments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting reservation assignment: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *reservationRepository) GetAssignmentByID(id int64) (*models.ReservationAssignment, error) {
	query := `SELECT id, stay_reservation_id, staff_id, task, reminder_day_before_sent, reminder_same_day_sent, created_at
	          FROM reservation_assignments WHERE id = $1`
	var a models.ReservationAssignment
	err := r.db.QueryRow(query, id).
		Scan(&a.ID, &a.StayReservationID, &a.StaffID, &a.Task, &a.ReminderDayBeforeSent, &a.ReminderSameDaySent, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching reservation assignment: %v", ErrDatabaseError, err)
	}
	return &a, nil
}

func (r *reservationRepository) ListAssignmentsByStay(stayID int64) ([]models.ReservationAssignment, error) {
	query := `SELECT ra.id, ra.stay_reservation_id, ra.staff_id, ra.task,
	                 ra.reminder_day_before_sent, ra.reminder_same_day_sent, ra.created_at, u.display_name
	          FROM reservation_assignments ra
	          JOIN users u ON u.id = ra.staff_id
	          WHERE ra.stay_reservation_id = $1
	          ORDER BY ra.id ASC`
	rows, err := r.db.Query(query, stayID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing reservation assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var assignments []models.ReservationAssignment
	for rows.Next() {
		var a models.ReservationAssignment
		var staffName sql.NullString
		if err := rows.Scan(&a.ID, &a.StayReservationID, &a.StaffID, &a.Task,
			&a.ReminderDayBeforeSent, &a.ReminderSameDaySent, &a.CreatedAt, &staffName); err != nil {
			return nil, fmt.Errorf("%w: scanning reservation assignment: %v", ErrDatabaseError, err)
		}
		if staffName.Valid {
			a.StaffName = &staffName.String
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (r *reservationRepository) SetReminderFlags(executor SQLExecutor, id int64, dayBefore, sameDay bool) error {
	res, err := executor.Exec(`UPDATE reservation_assignments SET reminder_day_before_sent = $1, reminder_same_day_sent = $2 WHERE id = $3`,
		dayBefore, sameDay, id)
	if err != nil {
		return fmt.Errorf("%w: updating reminder flags: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
