package services

import (
	"fmt"
	"time"

	"venue_ops_backend/internal/models"
)

// Reservation change kinds fed into the planner.
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeCancel = "cancel"
)

// Reservation source types, used when deciding whether a checklist still
// serves another reservation.
const (
	SourceStay = "stay"
	SourceMeal = "meal"
)

// DateRole is one calendar date a reservation touches together with the
// checklist class that date demands.
type DateRole struct {
	Date time.Time
	Role string // one of the models.ChecklistType* constants
}

// ReservationChange is the plain-data view of a reservation lifecycle event.
// Before holds the date roles of the previous confirmed state (empty on
// create), After the date roles of the new confirmed state (empty on cancel).
type ReservationChange struct {
	Kind       string
	Venue      string
	SourceType string
	SourceID   int64
	Before     []DateRole
	After      []DateRole
}

// Checklist mutation operations emitted by the planner.
const (
	MutationCreate        = "create"
	MutationDeleteIfEmpty = "delete_if_empty"
)

// ChecklistMutation is one storage action the sync step should attempt.
type ChecklistMutation struct {
	Op         string
	TemplateID int64
	Date       time.Time
	Role       string
}

// StayDateRoles maps a guesthouse stay onto the dates it demands checklists
// for: a setup checklist on the check-in day, a cleaning checklist on the
// check-out day.
func StayDateRoles(checkin, checkout time.Time) []DateRole {
	return []DateRole{
		{Date: checkin, Role: models.ChecklistTypeSetup},
		{Date: checkout, Role: models.ChecklistTypeCleaning},
	}
}

// MealDateRoles maps a restaurant reservation onto its prep checklist date.
// Breakfast has no prep template class and generates nothing.
func MealDateRoles(date time.Time, slot string) []DateRole {
	switch slot {
	case models.MealSlotLunch:
		return []DateRole{{Date: date, Role: models.ChecklistTypeLunchPrep}}
	case models.MealSlotDinner:
		return []DateRole{{Date: date, Role: models.ChecklistTypeDinnerPrep}}
	default:
		return nil
	}
}

func pairKey(templateID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", templateID, date.Format("2006-01-02"))
}

// matchPairs expands date roles into concrete (template, date) pairs using
// the active templates whose type matches the role and whose location scope
// covers the venue.
func matchPairs(roles []DateRole, venue string, templates []models.ChecklistTemplate) map[string]ChecklistMutation {
	pairs := make(map[string]ChecklistMutation)
	for _, dr := range roles {
		for i := range templates {
			t := &templates[i]
			if !t.IsActive || t.Type != dr.Role || !t.AppliesTo(venue) {
				continue
			}
			pairs[pairKey(t.ID, dr.Date)] = ChecklistMutation{TemplateID: t.ID, Date: dr.Date, Role: dr.Role}
		}
	}
	return pairs
}

// PlanChecklistMutations computes which daily checklists a reservation change
// should create, and which it should try to remove. It is a pure function:
// existing reports whether a (template, date) checklist already exists, and
// the returned mutations are attempts, not guarantees - the applier still
// enforces emptiness and shared-use rules for deletions, and uniqueness for
// creations.
//
// On update the plan regenerates the new dates and emits delete_if_empty for
// dates the reservation no longer touches. Checklists for dropped dates with
// recorded work survive; the applier leaves them in place.
func PlanChecklistMutations(change ReservationChange, templates []models.ChecklistTemplate, existing func(templateID int64, date time.Time) bool) []ChecklistMutation {
	beforePairs := matchPairs(change.Before, change.Venue, templates)
	afterPairs := matchPairs(change.After, change.Venue, templates)

	var mutations []ChecklistMutation
	for _, m := range afterPairs {
		if existing != nil && existing(m.TemplateID, m.Date) {
			continue // idempotent: (template, date) already materialized
		}
		mutations = append(mutations, ChecklistMutation{Op: MutationCreate, TemplateID: m.TemplateID, Date: m.Date, Role: m.Role})
	}
	for key, m := range beforePairs {
		if _, stillNeeded := afterPairs[key]; stillNeeded {
			continue
		}
		if existing != nil && !existing(m.TemplateID, m.Date) {
			continue // nothing to remove
		}
		mutations = append(mutations, ChecklistMutation{Op: MutationDeleteIfEmpty, TemplateID: m.TemplateID, Date: m.Date, Role: m.Role})
	}
	return mutations
}
