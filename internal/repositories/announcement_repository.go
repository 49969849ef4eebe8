package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
)

// AnnouncementRepository covers dashboard announcements.
type AnnouncementRepository interface {
	CreateAnnouncement(executor SQLExecutor, a *models.Announcement) (*models.Announcement, error)
	GetAnnouncementByID(id int64) (*models.Announcement, error)
	ListAnnouncements(publishedOnly bool) ([]models.Announcement, error)
	UpdateAnnouncement(executor SQLExecutor, a *models.Announcement) (*models.Announcement, error)
	DeleteAnnouncement(executor SQLExecutor, id int64) error
}

type announcementRepository struct {
	db *sql.DB
}

// NewAnnouncementRepository creates a new instance of AnnouncementRepository.
func NewAnnouncementRepository(db *sql.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) CreateAnnouncement(executor SQLExecutor, a *models.Announcement) (*models.Announcement, error) {
	query := `INSERT INTO announcements (title, body, priority, published, author_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, a.Title, a.Body, a.Priority, a.Published, a.AuthorID).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating announcement: %v", ErrDatabaseError, err)
	}
	return a, nil
}

const announcementSelect = `SELECT a.id, a.title, a.body, a.priority, a.published, a.author_id, a.created_at, a.updated_at, u.display_name
	FROM announcements a
	JOIN users u ON u.id = a.author_id`

func scanAnnouncement(row scanner) (*models.Announcement, error) {
	var a models.Announcement
	var authorName sql.NullString
	err := row.Scan(&a.ID, &a.Title, &a.Body, &a.Priority, &a.Published, &a.AuthorID, &a.CreatedAt, &a.UpdatedAt, &authorName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning announcement: %v", ErrDatabaseError, err)
	}
	if authorName.Valid {
		a.AuthorName = &authorName.String
	}
	return &a, nil
}

func (r *announcementRepository) GetAnnouncementByID(id int64) (*models.Announcement, error) {
	return scanAnnouncement(r.db.QueryRow(announcementSelect+` WHERE a.id = $1`, id))
}

func (r *announcementRepository) ListAnnouncements(publishedOnly bool) ([]models.Announcement, error) {
	query := announcementSelect
	if publishedOnly {
		query += ` WHERE a.published = TRUE`
	}
	query += ` ORDER BY a.priority DESC, a.created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing announcements: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var announcements []models.Announcement
	for rows.Next() {
		a, scanErr := scanAnnouncement(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		announcements = append(announcements, *a)
	}
	return announcements, rows.Err()
}

func (r *announcementRepository) UpdateAnnouncement(executor SQLExecutor, a *models.Announcement) (*models.Announcement, error) {
	query := `UPDATE announcements
	          SET title = $1, body = $2, priority = $3, published = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING updated_at`
	err := executor.QueryRow(query, a.Title, a.Body, a.Priority, a.Published, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating announcement: %v", ErrDatabaseError, err)
	}
	return a, nil
}

func (r *announcementRepository) DeleteAnnouncement(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting announcement: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
