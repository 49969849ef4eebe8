package models

import "time"

// Checklist template types. Setup templates materialize on stay check-in
// days, cleaning templates on check-out days, the prep types on matching
// restaurant reservations. "other" templates are only instantiated manually.
const (
	ChecklistTypeSetup      = "setup"
	ChecklistTypeCleaning   = "cleaning"
	ChecklistTypeLunchPrep  = "lunch_prep"
	ChecklistTypeDinnerPrep = "dinner_prep"
	ChecklistTypeOther      = "other"
)

// IsValidChecklistType reports whether t names a known template type.
func IsValidChecklistType(t string) bool {
	switch t {
	case ChecklistTypeSetup, ChecklistTypeCleaning, ChecklistTypeLunchPrep, ChecklistTypeDinnerPrep, ChecklistTypeOther:
		return true
	}
	return false
}

// ChecklistTemplate is a reusable ordered list of tasks, optionally scoped to
// one venue. Location nil means the template applies at both venues.
type ChecklistTemplate struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      string    `json:"type" db:"type"`
	Location  *string   `json:"location,omitempty" db:"location"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Items []ChecklistItem `json:"items,omitempty"`
}

// AppliesTo reports whether the template is in scope for a venue.
func (t *ChecklistTemplate) AppliesTo(venue string) bool {
	return t.Location == nil || *t.Location == venue
}

// ChecklistItem is one ordered task inside a template.
type ChecklistItem struct {
	ID         int64     `json:"id" db:"id"`
	TemplateID int64     `json:"template_id" db:"template_id"`
	Title      string    `json:"title" db:"title"`
	SortOrder  int       `json:"sort_order" db:"sort_order"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// SystemActorID marks rows created by automatic generation rather than a
// logged-in user.
const SystemActorID int64 = 0

// DailyChecklist is one instance of a template for one calendar date.
// Unique per (template_id, date). CompletedAt is derived: non-null exactly
// when every item has a completed entry.
type DailyChecklist struct {
	ID          int64      `json:"id" db:"id"`
	TemplateID  int64      `json:"template_id" db:"template_id"`
	Date        time.Time  `json:"date" db:"date"`
	CreatedBy   int64      `json:"created_by" db:"created_by"` // SystemActorID for auto-generated
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`

	Template *ChecklistTemplate    `json:"template,omitempty"`
	Entries  []DailyChecklistEntry `json:"entries,omitempty"`
}

// DailyChecklistEntry records completion of one template item on one daily
// checklist. CompletedAt and CompletedBy are set together or cleared together.
type DailyChecklistEntry struct {
	ID               int64      `json:"id" db:"id"`
	DailyChecklistID int64      `json:"daily_checklist_id" db:"daily_checklist_id"`
	ChecklistItemID  int64      `json:"checklist_item_id" db:"checklist_item_id"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CompletedBy      *int64     `json:"completed_by,omitempty" db:"completed_by"`
}
