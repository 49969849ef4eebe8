package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 4, d, 0, 0, 0, 0, time.UTC)
}

func plannerTemplates() []models.ChecklistTemplate {
	guesthouse := models.VenueGuesthouse
	return []models.ChecklistTemplate{
		{ID: 1, Name: "Room setup", Type: models.ChecklistTypeSetup, Location: &guesthouse, IsActive: true},
		{ID: 2, Name: "Checkout cleaning", Type: models.ChecklistTypeCleaning, Location: &guesthouse, IsActive: true},
		{ID: 3, Name: "Lunch prep", Type: models.ChecklistTypeLunchPrep, IsActive: true}, // global
		{ID: 4, Name: "Dinner prep", Type: models.ChecklistTypeDinnerPrep, IsActive: true},
		{ID: 5, Name: "Retired cleaning", Type: models.ChecklistTypeCleaning, IsActive: false},
	}
}

func noneExisting(int64, time.Time) bool { return false }

func TestStayDateRoles(t *testing.T) {
	roles := StayDateRoles(day(1), day(4))
	require.Len(t, roles, 2)
	assert.Equal(t, models.ChecklistTypeSetup, roles[0].Role)
	assert.Equal(t, day(1), roles[0].Date)
	assert.Equal(t, models.ChecklistTypeCleaning, roles[1].Role)
	assert.Equal(t, day(4), roles[1].Date)
}

func TestMealDateRoles(t *testing.T) {
	assert.Equal(t, models.ChecklistTypeLunchPrep, MealDateRoles(day(2), models.MealSlotLunch)[0].Role)
	assert.Equal(t, models.ChecklistTypeDinnerPrep, MealDateRoles(day(2), models.MealSlotDinner)[0].Role)
	assert.Nil(t, MealDateRoles(day(2), models.MealSlotBreakfast), "breakfast needs no prep checklist")
}

func TestPlan_StayCreate(t *testing.T) {
	change := ReservationChange{
		Kind:  ChangeCreate,
		Venue: models.VenueGuesthouse,
		After: StayDateRoles(day(1), day(4)),
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), noneExisting)

	require.Len(t, mutations, 2)
	byTemplate := map[int64]ChecklistMutation{}
	for _, m := range mutations {
		assert.Equal(t, MutationCreate, m.Op)
		byTemplate[m.TemplateID] = m
	}
	assert.Equal(t, day(1), byTemplate[1].Date)
	assert.Equal(t, day(4), byTemplate[2].Date)
}

func TestPlan_CreateIsIdempotent(t *testing.T) {
	change := ReservationChange{
		Kind:  ChangeCreate,
		Venue: models.VenueGuesthouse,
		After: StayDateRoles(day(1), day(4)),
	}
	allExist := func(int64, time.Time) bool { return true }
	mutations := PlanChecklistMutations(change, plannerTemplates(), allExist)
	assert.Empty(t, mutations)
}

func TestPlan_InactiveTemplateIgnored(t *testing.T) {
	change := ReservationChange{
		Kind:  ChangeCreate,
		Venue: models.VenueGuesthouse,
		After: []DateRole{{Date: day(4), Role: models.ChecklistTypeCleaning}},
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), noneExisting)
	require.Len(t, mutations, 1)
	assert.Equal(t, int64(2), mutations[0].TemplateID)
}

func TestPlan_VenueScopedTemplateSkippedForOtherVenue(t *testing.T) {
	change := ReservationChange{
		Kind:  ChangeCreate,
		Venue: models.VenueRestaurant,
		After: []DateRole{{Date: day(2), Role: models.ChecklistTypeSetup}},
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), noneExisting)
	assert.Empty(t, mutations, "guesthouse-scoped setup template must not fire for the restaurant")
}

func TestPlan_DateChangeMovesChecklist(t *testing.T) {
	existing := func(templateID int64, date time.Time) bool {
		// The original checkout cleaning checklist was materialized.
		return templateID == 2 && date.Equal(day(4))
	}
	change := ReservationChange{
		Kind:   ChangeUpdate,
		Venue:  models.VenueGuesthouse,
		Before: StayDateRoles(day(1), day(4)),
		After:  StayDateRoles(day(1), day(6)),
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), existing)

	var creates, deletes []ChecklistMutation
	for _, m := range mutations {
		if m.Op == MutationCreate {
			creates = append(creates, m)
		} else {
			deletes = append(deletes, m)
		}
	}
	// Setup on day 1 is unchanged but was never materialized, so it is
	// created; cleaning moves from day 4 to day 6.
	require.Len(t, creates, 2)
	require.Len(t, deletes, 1)
	assert.Equal(t, int64(2), deletes[0].TemplateID)
	assert.Equal(t, day(4), deletes[0].Date)
}

func TestPlan_CancelEmitsDeletesOnly(t *testing.T) {
	existing := func(templateID int64, date time.Time) bool { return true }
	change := ReservationChange{
		Kind:   ChangeCancel,
		Venue:  models.VenueGuesthouse,
		Before: StayDateRoles(day(1), day(4)),
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), existing)

	require.Len(t, mutations, 2)
	for _, m := range mutations {
		assert.Equal(t, MutationDeleteIfEmpty, m.Op)
	}
}

func TestPlan_CancelSkipsNeverMaterialized(t *testing.T) {
	change := ReservationChange{
		Kind:   ChangeCancel,
		Venue:  models.VenueGuesthouse,
		Before: StayDateRoles(day(1), day(4)),
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), noneExisting)
	assert.Empty(t, mutations)
}

func TestPlan_MealCreateUsesGlobalTemplate(t *testing.T) {
	change := ReservationChange{
		Kind:  ChangeCreate,
		Venue: models.VenueRestaurant,
		After: MealDateRoles(day(2), models.MealSlotDinner),
	}
	mutations := PlanChecklistMutations(change, plannerTemplates(), noneExisting)
	require.Len(t, mutations, 1)
	assert.Equal(t, int64(4), mutations[0].TemplateID)
	assert.Equal(t, MutationCreate, mutations[0].Op)
}
