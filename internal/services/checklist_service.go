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

// --- Custom Service Errors for checklists ---
var (
	ErrTemplateNotFound   = errors.New("checklist template not found")
	ErrChecklistNotFound  = errors.New("daily checklist not found")
	ErrChecklistExists    = errors.New("daily checklist already exists for this template and date")
	ErrChecklistItemUnknown = errors.New("item does not belong to this checklist's template")
	ErrTemplateValidation = errors.New("checklist template validation error")
	ErrTemplateInUse      = errors.New("checklist template has daily instances; items cannot be replaced")
)

// --- Checklist DTOs ---

type CreateTemplateRequest struct {
	Name     string   `json:"name" binding:"required"`
	Type     string   `json:"type" binding:"required"`
	Location *string  `json:"location"`
	IsActive *bool    `json:"is_active"`
	Items    []string `json:"items" binding:"required,min=1"`
}

type UpdateTemplateRequest struct {
	Name     *string  `json:"name"`
	Type     *string  `json:"type"`
	Location *string  `json:"location"`
	IsActive *bool    `json:"is_active"`
	Items    []string `json:"items"`
}

// --- ChecklistService Interface ---
type ChecklistService interface {
	CreateTemplate(req CreateTemplateRequest) (*models.ChecklistTemplate, error)
	GetTemplateByID(id int64) (*models.ChecklistTemplate, error)
	ListTemplates(activeOnly bool) ([]models.ChecklistTemplate, error)
	UpdateTemplate(id int64, req UpdateTemplateRequest) (*models.ChecklistTemplate, error)

	InstantiateChecklist(templateID int64, date time.Time, actorID int64) (*models.DailyChecklist, error)
	GetDailyChecklist(id int64) (*models.DailyChecklist, error)
	ListDailyChecklists(from, to time.Time) ([]models.DailyChecklist, error)
	ToggleEntry(checklistID, itemID, actorID int64, completed bool) (*models.DailyChecklist, error)

	// SyncReservationChange materializes or removes daily checklists in
	// reaction to a reservation lifecycle event. Failures are logged and
	// swallowed per-mutation: a reservation save must never fail because
	// checklist generation partially no-oped.
	SyncReservationChange(change ReservationChange)
}

// --- checklistService Implementation ---
type checklistService struct {
	checklistRepo   repositories.ChecklistRepository
	reservationRepo repositories.ReservationRepository
	db              *sql.DB
	now             func() time.Time
}

// NewChecklistService creates a new instance of ChecklistService.
func NewChecklistService(cr repositories.ChecklistRepository, rr repositories.ReservationRepository, db *sql.DB) ChecklistService {
	return &checklistService{
		checklistRepo:   cr,
		reservationRepo: rr,
		db:              db,
		now:             time.Now,
	}
}

func (s *checklistService) CreateTemplate(req CreateTemplateRequest) (*models.ChecklistTemplate, error) {
	if !models.IsValidChecklistType(req.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrTemplateValidation, req.Type)
	}
	if req.Location != nil && !models.IsValidVenue(*req.Location) {
		return nil, fmt.Errorf("%w: unknown location %q", ErrTemplateValidation, *req.Location)
	}
	for _, title := range req.Items {
		if utils.IsEmpty(title) {
			return nil, fmt.Errorf("%w: item titles cannot be empty", ErrTemplateValidation)
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	template := &models.ChecklistTemplate{
		Name:     req.Name,
		Type:     req.Type,
		Location: req.Location,
		IsActive: active,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := s.checklistRepo.CreateTemplate(tx, template, req.Items)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist template: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit template creation: %w", err)
	}
	return s.checklistRepo.GetTemplateByID(created.ID)
}

func (s *checklistService) GetTemplateByID(id int64) (*models.ChecklistTemplate, error) {
	template, err := s.checklistRepo.GetTemplateByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to get checklist template: %w", err)
	}
	return template, nil
}

func (s *checklistService) ListTemplates(activeOnly bool) ([]models.ChecklistTemplate, error) {
	templates, err := s.checklistRepo.ListTemplates(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist templates: %w", err)
	}
	return templates, nil
}

func (s *checklistService) UpdateTemplate(id int64, req UpdateTemplateRequest) (*models.ChecklistTemplate, error) {
	template, err := s.GetTemplateByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Type != nil {
		if !models.IsValidChecklistType(*req.Type) {
			return nil, fmt.Errorf("%w: unknown type %q", ErrTemplateValidation, *req.Type)
		}
		template.Type = *req.Type
	}
	if req.Location != nil {
		if *req.Location == "" {
			template.Location = nil
		} else if !models.IsValidVenue(*req.Location) {
			return nil, fmt.Errorf("%w: unknown location %q", ErrTemplateValidation, *req.Location)
		} else {
			template.Location = req.Location
		}
	}
	if req.IsActive != nil {
		template.IsActive = *req.IsActive
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.checklistRepo.UpdateTemplate(tx, template); err != nil {
		return nil, fmt.Errorf("failed to update checklist template: %w", err)
	}
	if req.Items != nil {
		// Items carry entry references once a daily checklist exists, so item
		// rewrites are only allowed while the template is unused.
		instances, countErr := s.checklistRepo.CountDailyChecklistsByTemplate(tx, id)
		if countErr != nil {
			return nil, fmt.Errorf("failed to count daily instances: %w", countErr)
		}
		if instances > 0 {
			return nil, ErrTemplateInUse
		}
		if err := s.checklistRepo.ReplaceTemplateItems(tx, id, req.Items); err != nil {
			return nil, fmt.Errorf("failed to replace template items: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit template update: %w", err)
	}
	return s.checklistRepo.GetTemplateByID(id)
}

func (s *checklistService) InstantiateChecklist(templateID int64, date time.Time, actorID int64) (*models.DailyChecklist, error) {
	if _, err := s.GetTemplateByID(templateID); err != nil {
		return nil, err
	}
	checklist := &models.DailyChecklist{TemplateID: templateID, Date: date, CreatedBy: actorID}
	created, err := s.checklistRepo.CreateDailyChecklist(s.db, checklist)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrChecklistExists
		}
		return nil, fmt.Errorf("failed to create daily checklist: %w", err)
	}
	return s.checklistRepo.GetDailyChecklistByID(created.ID)
}

func (s *checklistService) GetDailyChecklist(id int64) (*models.DailyChecklist, error) {
	checklist, err := s.checklistRepo.GetDailyChecklistByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrChecklistNotFound
		}
		return nil, fmt.Errorf("failed to get daily checklist: %w", err)
	}
	return checklist, nil
}

func (s *checklistService) ListDailyChecklists(from, to time.Time) ([]models.DailyChecklist, error) {
	checklists, err := s.checklistRepo.ListDailyChecklistsByDateRange(from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily checklists: %w", err)
	}
	return checklists, nil
}

// ToggleEntry marks one item complete or incomplete and rederives the
// checklist's completed_at in the same transaction: completed_at is non-null
// exactly when every template item has a completed entry.
func (s *checklistService) ToggleEntry(checklistID, itemID, actorID int64, completed bool) (*models.DailyChecklist, error) {
	checklist, err := s.GetDailyChecklist(checklistID)
	if err != nil {
		return nil, err
	}
	itemKnown := false
	for _, it := range checklist.Template.Items {
		if it.ID == itemID {
			itemKnown = true
			break
		}
	}
	if !itemKnown {
		return nil, ErrChecklistItemUnknown
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	var completedAt *time.Time
	var completedBy *int64
	if completed {
		t := s.now()
		completedAt = &t
		completedBy = &actorID
	}
	if err := s.checklistRepo.UpsertEntryCompletion(tx, checklistID, itemID, completedAt, completedBy); err != nil {
		return nil, fmt.Errorf("failed to toggle checklist entry: %w", err)
	}

	totalItems, err := s.checklistRepo.CountTemplateItems(tx, checklist.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("failed to count template items: %w", err)
	}
	completedEntries, err := s.checklistRepo.CountCompletedEntries(tx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed entries: %w", err)
	}

	var checklistDone *time.Time
	if totalItems > 0 && completedEntries >= totalItems {
		t := s.now()
		checklistDone = &t
	}
	if err := s.checklistRepo.SetCompletedAt(tx, checklistID, checklistDone); err != nil {
		return nil, fmt.Errorf("failed to update checklist completion: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit entry toggle: %w", err)
	}
	return s.checklistRepo.GetDailyChecklistByID(checklistID)
}

// SyncReservationChange plans and applies checklist mutations for a
// reservation lifecycle event. Every failure here is deliberately non-fatal.
func (s *checklistService) SyncReservationChange(change ReservationChange) {
	templates, err := s.checklistRepo.ListTemplates(true)
	if err != nil {
		utils.LogWarn(err, "checklist sync: failed to load templates, skipping")
		return
	}

	existing := func(templateID int64, date time.Time) bool {
		_, lookupErr := s.checklistRepo.GetDailyChecklistByTemplateAndDate(templateID, date)
		return lookupErr == nil
	}

	mutations := PlanChecklistMutations(change, templates, existing)
	for _, m := range mutations {
		switch m.Op {
		case MutationCreate:
			s.applyCreate(m)
		case MutationDeleteIfEmpty:
			s.applyDeleteIfEmpty(change, m)
		}
	}
}

func (s *checklistService) applyCreate(m ChecklistMutation) {
	checklist := &models.DailyChecklist{TemplateID: m.TemplateID, Date: m.Date, CreatedBy: models.SystemActorID}
	if _, err := s.checklistRepo.CreateDailyChecklist(s.db, checklist); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return // concurrent generation already materialized it
		}
		utils.LogWarn(err, "checklist sync: failed to create daily checklist")
	}
}

// applyDeleteIfEmpty removes a generated checklist only when no staff work is
// recorded on it, it was system-generated, and no other confirmed reservation
// still demands the same (template, date). Anything else stays untouched:
// cancellation must never destroy recorded work.
func (s *checklistService) applyDeleteIfEmpty(change ReservationChange, m ChecklistMutation) {
	checklist, err := s.checklistRepo.GetDailyChecklistByTemplateAndDate(m.TemplateID, m.Date)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			utils.LogWarn(err, "checklist sync: failed to load checklist for removal")
		}
		return
	}
	if checklist.CreatedBy != models.SystemActorID {
		return // staff made this one on purpose
	}

	completedEntries, err := s.checklistRepo.CountCompletedEntries(s.db, checklist.ID)
	if err != nil {
		utils.LogWarn(err, "checklist sync: failed to count completed entries")
		return
	}
	if completedEntries > 0 {
		return
	}

	stillNeeded, err := s.roleStillNeeded(change, m)
	if err != nil {
		utils.LogWarn(err, "checklist sync: failed to check other reservations, keeping checklist")
		return
	}
	if stillNeeded {
		return
	}

	if err := s.checklistRepo.DeleteDailyChecklist(s.db, checklist.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		utils.LogWarn(err, "checklist sync: failed to delete daily checklist")
	}
}

// roleStillNeeded reports whether another confirmed reservation (excluding
// the one that changed) still generates the same checklist class on the date.
func (s *checklistService) roleStillNeeded(change ReservationChange, m ChecklistMutation) (bool, error) {
	excludeStay, excludeMeal := int64(0), int64(0)
	if change.SourceType == SourceStay {
		excludeStay = change.SourceID
	} else {
		excludeMeal = change.SourceID
	}

	switch m.Role {
	case models.ChecklistTypeSetup:
		n, err := s.reservationRepo.CountStaysTouchingDate(m.Date, true, excludeStay)
		return n > 0, err
	case models.ChecklistTypeCleaning:
		n, err := s.reservationRepo.CountStaysTouchingDate(m.Date, false, excludeStay)
		return n > 0, err
	case models.ChecklistTypeLunchPrep:
		n, err := s.reservationRepo.CountMealsOnDateSlot(m.Date, models.MealSlotLunch, excludeMeal)
		return n > 0, err
	case models.ChecklistTypeDinnerPrep:
		n, err := s.reservationRepo.CountMealsOnDateSlot(m.Date, models.MealSlotDinner, excludeMeal)
		return n > 0, err
	default:
		return false, nil
	}
}
