package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
)

// AuthRepository defines database operations on portal users.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)
	ListUsers(activeOnly bool) ([]models.User, error)
	UpdateUser(executor SQLExecutor, user *models.User) (*models.User, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

const userColumns = `id, username, password_hash, email, display_name, role, is_active, created_at, updated_at`

func scanUser(row scanner) (*models.User, error) {
	var u models.User
	var email sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &u.DisplayName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	if email.Valid {
		u.Email = &email.String
	}
	return &u, nil
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User) (*models.User, error) {
	query := `INSERT INTO users (username, password_hash, email, display_name, role, is_active)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, user.Username, user.PasswordHash, user.Email, user.DisplayName, user.Role, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user, nil
}

func (r *authRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(query, id))
}

func (r *authRepository) GetUserByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(query, username))
}

func (r *authRepository) ListUsers(activeOnly bool) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_name ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *authRepository) UpdateUser(executor SQLExecutor, user *models.User) (*models.User, error) {
	query := `UPDATE users
	          SET email = $1, display_name = $2, role = $3, is_active = $4, password_hash = $5, updated_at = NOW()
	          WHERE id = $6
	          RETURNING updated_at`
	err := executor.QueryRow(query, user.Email, user.DisplayName, user.Role, user.IsActive, user.PasswordHash, user.ID).
		Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating user: %v", ErrDatabaseError, err)
	}
	return user, nil
}
