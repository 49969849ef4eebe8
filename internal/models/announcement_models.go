package models

import "time"

// Announcement priorities.
const (
	AnnouncementPriorityNormal    = "normal"
	AnnouncementPriorityImportant = "important"
)

func IsValidAnnouncementPriority(p string) bool {
	return p == AnnouncementPriorityNormal || p == AnnouncementPriorityImportant
}

// Announcement is a staff-facing notice shown on the portal dashboard.
type Announcement struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Priority  string    `json:"priority" db:"priority"`
	Published bool      `json:"published" db:"published"`
	AuthorID  int64     `json:"author_id" db:"author_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	AuthorName *string `json:"author_name,omitempty"` // joined from users
}
