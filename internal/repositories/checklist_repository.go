package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
)

// ChecklistRepository covers templates, their items, and the per-date daily
// checklist instances with completion entries.
type ChecklistRepository interface {
	CreateTemplate(executor SQLExecutor, t *models.ChecklistTemplate, itemTitles []string) (*models.ChecklistTemplate, error)
	GetTemplateByID(id int64) (*models.ChecklistTemplate, error)
	ListTemplates(activeOnly bool) ([]models.ChecklistTemplate, error)
	UpdateTemplate(executor SQLExecutor, t *models.ChecklistTemplate) (*models.ChecklistTemplate, error)
	ReplaceTemplateItems(executor SQLExecutor, templateID int64, itemTitles []string) error

	CreateDailyChecklist(executor SQLExecutor, c *models.DailyChecklist) (*models.DailyChecklist, error)
	GetDailyChecklistByID(id int64) (*models.DailyChecklist, error)
	GetDailyChecklistByTemplateAndDate(templateID int64, date time.Time) (*models.DailyChecklist, error)
	ListDailyChecklistsByDateRange(from, to time.Time) ([]models.DailyChecklist, error)
	DeleteDailyChecklist(executor SQLExecutor, id int64) error
	SetCompletedAt(executor SQLExecutor, checklistID int64, completedAt *time.Time) error

	CountTemplateItems(executor SQLExecutor, templateID int64) (int, error)
	CountDailyChecklistsByTemplate(executor SQLExecutor, templateID int64) (int, error)
	CountCompletedEntries(executor SQLExecutor, checklistID int64) (int, error)
	ListEntries(checklistID int64) ([]models.DailyChecklistEntry, error)
	UpsertEntryCompletion(executor SQLExecutor, checklistID, itemID int64, completedAt *time.Time, completedBy *int64) error
}

type checklistRepository struct {
	db *sql.DB
}

// NewChecklistRepository creates a new instance of ChecklistRepository.
func NewChecklistRepository(db *sql.DB) ChecklistRepository {
	return &checklistRepository{db: db}
}

func (r *checklistRepository) CreateTemplate(executor SQLExecutor, t *models.ChecklistTemplate, itemTitles []string) (*models.ChecklistTemplate, error) {
	query := `INSERT INTO checklist_templates (name, type, location, is_active)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, t.Name, t.Type, t.Location, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: creating checklist template: %v", ErrDatabaseError, err)
	}
	if err := r.insertItems(executor, t.ID, itemTitles); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *checklistRepository) insertItems(executor SQLExecutor, templateID int64, titles []string) error {
	for i, title := range titles {
		_, err := executor.Exec(`INSERT INTO checklist_items (template_id, title, sort_order) VALUES ($1, $2, $3)`,
			templateID, title, i+1)
		if err != nil {
			return fmt.Errorf("%w: inserting checklist item: %v", ErrDatabaseError, err)
		}
	}
	return nil
}

func (r *checklistRepository) listItems(templateID int64) ([]models.ChecklistItem, error) {
	rows, err := r.db.Query(`SELECT id, template_id, title, sort_order, created_at FROM checklist_items WHERE template_id = $1 ORDER BY sort_order ASC`, templateID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing checklist items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var items []models.ChecklistItem
	for rows.Next() {
		var it models.ChecklistItem
		if err := rows.Scan(&it.ID, &it.TemplateID, &it.Title, &it.SortOrder, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning checklist item: %v", ErrDatabaseError, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func scanTemplate(row scanner) (*models.ChecklistTemplate, error) {
	var t models.ChecklistTemplate
	var location sql.NullString
	err := row.Scan(&t.ID, &t.Name, &t.Type, &location, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning checklist template: %v", ErrDatabaseError, err)
	}
	if location.Valid {
		t.Location = &location.String
	}
	return &t, nil
}

const templateColumns = `id, name, type, location, is_active, created_at, updated_at`

func (r *checklistRepository) GetTemplateByID(id int64) (*models.ChecklistTemplate, error) {
	t, err := scanTemplate(r.db.QueryRow(`SELECT `+templateColumns+` FROM checklist_templates WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	items, err := r.listItems(t.ID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (r *checklistRepository) ListTemplates(activeOnly bool) ([]models.ChecklistTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM checklist_templates`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY id ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: listing checklist templates: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var templates []models.ChecklistTemplate
	for rows.Next() {
		t, scanErr := scanTemplate(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *checklistRepository) UpdateTemplate(executor SQLExecutor, t *models.ChecklistTemplate) (*models.ChecklistTemplate, error) {
	query := `UPDATE checklist_templates
	          SET name = $1, type = $2, location = $3, is_active = $4, updated_at = NOW()
	          WHERE id = $5
	          RETURNING updated_at`
	err := executor.QueryRow(query, t.Name, t.Type, t.Location, t.IsActive, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating checklist template: %v", ErrDatabaseError, err)
	}
	return t, nil
}

// ReplaceTemplateItems rewrites the item list of a template. Existing daily
// checklist entries reference items by id, so this is only permitted by the
// service when the template has no daily instances yet.
func (r *checklistRepository) ReplaceTemplateItems(executor SQLExecutor, templateID int64, itemTitles []string) error {
	if _, err := executor.Exec(`DELETE FROM checklist_items WHERE template_id = $1`, templateID); err != nil {
		return fmt.Errorf("%w: clearing checklist items: %v", ErrDatabaseError, err)
	}
	return r.insertItems(executor, templateID, itemTitles)
}

func (r *checklistRepository) CreateDailyChecklist(executor SQLExecutor, c *models.DailyChecklist) (*models.DailyChecklist, error) {
	query := `INSERT INTO daily_checklists (template_id, date, created_by)
	          VALUES ($1, $2, $3)
	          RETURNING id, created_at, updated_at`
	err := executor.QueryRow(query, c.TemplateID, c.Date, c.CreatedBy).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			// (template_id, date) is unique; concurrent generation no-ops here.
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating daily checklist: %v", ErrDatabaseError, err)
	}
	return c, nil
}

const dailyChecklistColumns = `id, template_id, date, created_by, completed_at, created_at, updated_at`

func scanDailyChecklist(row scanner) (*models.DailyChecklist, error) {
	var c models.DailyChecklist
	var completedAt sql.NullTime
	err := row.Scan(&c.ID, &c.TemplateID, &c.Date, &c.CreatedBy, &completedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning daily checklist: %v", ErrDatabaseError, err)
	}
	if completedAt.Valid {
		c.CompletedAt = &completedAt.Time
	}
	return &c, nil
}

func (r *checklistRepository) GetDailyChecklistByID(id int64) (*models.DailyChecklist, error) {
	c, err := scanDailyChecklist(r.db.QueryRow(`SELECT `+dailyChecklistColumns+` FROM daily_checklists WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	template, err := r.GetTemplateByID(c.TemplateID)
	if err != nil {
		return nil, err
	}
	c.Template = template
	entries, err := r.ListEntries(c.ID)
	if err != nil {
		return nil, err
	}
	c.Entries = entries
	return c, nil
}

func (r *checklistRepository) GetDailyChecklistByTemplateAndDate(templateID int64, date time.Time) (*models.DailyChecklist, error) {
	return scanDailyChecklist(r.db.QueryRow(
		`SELECT `+dailyChecklistColumns+` FROM daily_checklists WHERE template_id = $1 AND date = $2`, templateID, date))
}

func (r *checklistRepository) ListDailyChecklistsByDateRange(from, to time.Time) ([]models.DailyChecklist, error) {
	rows, err := r.db.Query(
		`SELECT `+dailyChecklistColumns+` FROM daily_checklists WHERE date >= $1 AND date <= $2 ORDER BY date ASC, id ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: listing daily checklists: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var checklists []models.DailyChecklist
	for rows.Next() {
		c, scanErr := scanDailyChecklist(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		checklists = append(checklists, *c)
	}
	return checklists, rows.Err()
}

func (r *checklistRepository) DeleteDailyChecklist(executor SQLExecutor, id int64) error {
	res, err := executor.Exec(`DELETE FROM daily_checklists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: deleting daily checklist: %v", ErrDatabaseError, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checklistRepository) SetCompletedAt(executor SQLExecutor, checklistID int64, completedAt *time.Time) error {
	_, err := executor.Exec(`UPDATE daily_checklists SET completed_at = $1, updated_at = NOW() WHERE id = $2`, completedAt, checklistID)
	if err != nil {
		return fmt.Errorf("%w: setting checklist completion: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *checklistRepository) CountTemplateItems(executor SQLExecutor, templateID int64) (int, error) {
	var count int
	if err := executor.QueryRow(`SELECT COUNT(*) FROM checklist_items WHERE template_id = $1`, templateID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting template items: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *checklistRepository) CountDailyChecklistsByTemplate(executor SQLExecutor, templateID int64) (int, error) {
	var count int
	if err := executor.QueryRow(`SELECT COUNT(*) FROM daily_checklists WHERE template_id = $1`, templateID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting daily checklists: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *checklistRepository) CountCompletedEntries(executor SQLExecutor, checklistID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM daily_checklist_entries WHERE daily_checklist_id = $1 AND completed_at IS NOT NULL`
	if err := executor.QueryRow(query, checklistID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting completed entries: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *checklistRepository) ListEntries(checklistID int64) ([]models.DailyChecklistEntry, error) {
	query := `SELECT id, daily_checklist_id, checklist_item_id, completed_at, completed_by
	          FROM daily_checklist_entries WHERE daily_checklist_id = $1 ORDER BY checklist_item_id ASC`
	rows, err := r.db.Query(query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("%w: listing checklist entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var entries []models.DailyChecklistEntry
	for rows.Next() {
		var e models.DailyChecklistEntry
		var completedAt sql.NullTime
		var completedBy sql.NullInt64
		if err := rows.Scan(&e.ID, &e.DailyChecklistID, &e.ChecklistItemID, &completedAt, &completedBy); err != nil {
			return nil, fmt.Errorf("%w: scanning checklist entry: %v", ErrDatabaseError, err)
		}
		if completedAt.Valid {
			e.CompletedAt = &completedAt.Time
		}
		if completedBy.Valid {
			e.CompletedBy = &completedBy.Int64
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// UpsertEntryCompletion records or clears completion of one item on one daily
// checklist. completedAt and completedBy are always written together.
func (r *checklistRepository) UpsertEntryCompletion(executor SQLExecutor, checklistID, itemID int64, completedAt *time.Time, completedBy *int64) error {
	query := `INSERT INTO daily_checklist_entries (daily_checklist_id, checklist_item_id, completed_at, completed_by)
	          VALUES ($1, $2, $3, $4)
	          ON CONFLICT (daily_checklist_id, checklist_item_id)
	          DO UPDATE SET completed_at = EXCLUDED.completed_at, completed_by = EXCLUDED.completed_by`
	if _, err := executor.Exec(query, checklistID, itemID, completedAt, completedBy); err != nil {
		return fmt.Errorf("%w: upserting checklist entry: %v", ErrDatabaseError, err)
	}
	return nil
}
