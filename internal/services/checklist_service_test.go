package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

type fakeChecklistRepo struct {
	repositories.ChecklistRepository

	templates []models.ChecklistTemplate
	// keyed by pairKey(templateID, date)
	checklists map[string]*models.DailyChecklist
	// completed entry counts keyed by checklist ID
	completed map[int64]int

	created []models.DailyChecklist
	deleted []int64
	nextID  int64
}

func newFakeChecklistRepo(templates []models.ChecklistTemplate) *fakeChecklistRepo {
	return &fakeChecklistRepo{
		templates:  templates,
		checklists: make(map[string]*models.DailyChecklist),
		completed:  make(map[int64]int),
		nextID:     1000,
	}
}

func (f *fakeChecklistRepo) seed(templateID int64, date time.Time, createdBy int64, completedEntries int) *models.DailyChecklist {
	f.nextID++
	c := &models.DailyChecklist{ID: f.nextID, TemplateID: templateID, Date: date, CreatedBy: createdBy}
	f.checklists[pairKey(templateID, date)] = c
	f.completed[c.ID] = completedEntries
	return c
}

func (f *fakeChecklistRepo) ListTemplates(activeOnly bool) ([]models.ChecklistTemplate, error) {
	return f.templates, nil
}

func (f *fakeChecklistRepo) GetDailyChecklistByTemplateAndDate(templateID int64, date time.Time) (*models.DailyChecklist, error) {
	if c, ok := f.checklists[pairKey(templateID, date)]; ok {
		return c, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeChecklistRepo) CreateDailyChecklist(executor repositories.SQLExecutor, c *models.DailyChecklist) (*models.DailyChecklist, error) {
	if _, ok := f.checklists[pairKey(c.TemplateID, c.Date)]; ok {
		return nil, repositories.ErrDuplicateKey
	}
	f.nextID++
	c.ID = f.nextID
	f.checklists[pairKey(c.TemplateID, c.Date)] = c
	f.created = append(f.created, *c)
	return c, nil
}

func (f *fakeChecklistRepo) CountCompletedEntries(executor repositories.SQLExecutor, checklistID int64) (int, error) {
	return f.completed[checklistID], nil
}

func (f *fakeChecklistRepo) DeleteDailyChecklist(executor repositories.SQLExecutor, id int64) error {
	for key, c := range f.checklists {
		if c.ID == id {
			delete(f.checklists, key)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeReservationCounts struct {
	repositories.ReservationRepository

	staysTouching int
	mealsOnSlot   int
}

func (f *fakeReservationCounts) CountStaysTouchingDate(date time.Time, checkin bool, excludeID int64) (int, error) {
	return f.staysTouching, nil
}

func (f *fakeReservationCounts) CountMealsOnDateSlot(date time.Time, slot string, excludeID int64) (int, error) {
	return f.mealsOnSlot, nil
}

func newChecklistSyncService(cr *fakeChecklistRepo, rr *fakeReservationCounts) *checklistService {
	return NewChecklistService(cr, rr, nil).(*checklistService)
}

func TestSync_StayCreateMaterializesChecklists(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCreate,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		After:      StayDateRoles(day(1), day(4)),
	})

	require.Len(t, cr.created, 2)
	for _, c := range cr.created {
		assert.Equal(t, models.SystemActorID, c.CreatedBy, "generated checklists carry the system actor")
	}
}

func TestSync_CreateTwiceIsIdempotent(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	change := ReservationChange{
		Kind:       ChangeCreate,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		After:      StayDateRoles(day(1), day(4)),
	}
	svc.SyncReservationChange(change)
	svc.SyncReservationChange(change)

	assert.Len(t, cr.created, 2, "second sync must not duplicate checklists")
}

func TestSync_CancelDeletesEmptyGeneratedChecklist(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(1, day(1), models.SystemActorID, 0)
	cr.seed(2, day(4), models.SystemActorID, 0)
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		Before:     StayDateRoles(day(1), day(4)),
	})

	assert.Len(t, cr.deleted, 2)
	assert.Empty(t, cr.checklists)
}

func TestSync_CancelKeepsChecklistWithRecordedWork(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(2, day(4), models.SystemActorID, 3)
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		Before:     StayDateRoles(day(1), day(4)),
	})

	assert.Empty(t, cr.deleted, "completed entries pin the checklist in place")
}

func TestSync_CancelKeepsManuallyCreatedChecklist(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(2, day(4), 7, 0) // created by user 7, not the system
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		Before:     StayDateRoles(day(1), day(4)),
	})

	assert.Empty(t, cr.deleted)
}

func TestSync_CancelKeepsChecklistAnotherStayNeeds(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(2, day(4), models.SystemActorID, 0)
	// Another confirmed stay also checks out on day 4.
	svc := newChecklistSyncService(cr, &fakeReservationCounts{staysTouching: 1})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		Before:     StayDateRoles(day(1), day(4)),
	})

	assert.Empty(t, cr.deleted)
}

func TestSync_DateChangeMovesEmptyChecklist(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(1, day(1), models.SystemActorID, 0)
	cr.seed(2, day(4), models.SystemActorID, 0)
	svc := newChecklistSyncService(cr, &fakeReservationCounts{})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeUpdate,
		Venue:      models.VenueGuesthouse,
		SourceType: SourceStay,
		SourceID:   11,
		Before:     StayDateRoles(day(1), day(4)),
		After:      StayDateRoles(day(1), day(6)),
	})

	// Cleaning moved from day 4 to day 6; setup on day 1 stays.
	require.Len(t, cr.created, 1)
	assert.Equal(t, int64(2), cr.created[0].TemplateID)
	assert.Equal(t, day(6), cr.created[0].Date)
	require.Len(t, cr.deleted, 1)
	_, exists := cr.checklists[pairKey(2, day(4))]
	assert.False(t, exists)
	_, exists = cr.checklists[pairKey(1, day(1))]
	assert.True(t, exists)
}

func TestSync_MealCancelChecksRemainingMeals(t *testing.T) {
	cr := newFakeChecklistRepo(plannerTemplates())
	cr.seed(4, day(2), models.SystemActorID, 0)
	// One other confirmed dinner party remains that night.
	svc := newChecklistSyncService(cr, &fakeReservationCounts{mealsOnSlot: 1})

	svc.SyncReservationChange(ReservationChange{
		Kind:       ChangeCancel,
		Venue:      models.VenueRestaurant,
		SourceType: SourceMeal,
		SourceID:   22,
		Before:     MealDateRoles(day(2), models.MealSlotDinner),
	})

	assert.Empty(t, cr.deleted)
}
