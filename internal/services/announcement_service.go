package services

import (
	"database/sql"
	"errors"
	"fmt"

	"venue_ops_backend/internal/models"
	"venue_ops_backend/internal/repositories"
)

// --- Custom Service Errors for announcements ---
var (
	ErrAnnouncementNotFound   = errors.New("announcement not found")
	ErrAnnouncementValidation = errors.New("announcement validation error")
)

// --- Announcement DTOs ---

type CreateAnnouncementRequest struct {
	Title    string `json:"title" binding:"required"`
	Body     string `json:"body" binding:"required"`
	Priority string `json:"priority" binding:"required"`
	Publish  bool   `json:"publish"`
}

type UpdateAnnouncementRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	Priority  *string `json:"priority"`
	Published *bool   `json:"published"`
}

// --- AnnouncementService Interface ---
type AnnouncementService interface {
	CreateAnnouncement(authorID int64, req CreateAnnouncementRequest) (*models.Announcement, error)
	GetAnnouncementByID(id int64) (*models.Announcement, error)
	ListAnnouncements(publishedOnly bool) ([]models.Announcement, error)
	UpdateAnnouncement(id int64, req UpdateAnnouncementRequest) (*models.Announcement, error)
	DeleteAnnouncement(id int64) error
}

// --- announcementService Implementation ---
type announcementService struct {
	announcementRepo repositories.AnnouncementRepository
	db               *sql.DB
}

// NewAnnouncementService creates a new instance of AnnouncementService.
func NewAnnouncementService(ar repositories.AnnouncementRepository, db *sql.DB) AnnouncementService {
	return &announcementService{announcementRepo: ar, db: db}
}

func (s *announcementService) CreateAnnouncement(authorID int64, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if !models.IsValidAnnouncementPriority(req.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrAnnouncementValidation, req.Priority)
	}
	announcement := &models.Announcement{
		Title:     req.Title,
		Body:      req.Body,
		Priority:  req.Priority,
		Published: req.Publish,
		AuthorID:  authorID,
	}
	created, err := s.announcementRepo.CreateAnnouncement(s.db, announcement)
	if err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	return created, nil
}

func (s *announcementService) GetAnnouncementByID(id int64) (*models.Announcement, error) {
	announcement, err := s.announcementRepo.GetAnnouncementByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("failed to get announcement: %w", err)
	}
	return announcement, nil
}

func (s *announcementService) ListAnnouncements(publishedOnly bool) ([]models.Announcement, error) {
	announcements, err := s.announcementRepo.ListAnnouncements(publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	return announcements, nil
}

func (s *announcementService) UpdateAnnouncement(id int64, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	announcement, err := s.GetAnnouncementByID(id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		announcement.Title = *req.Title
	}
	if req.Body != nil {
		announcement.Body = *req.Body
	}
	if req.Priority != nil {
		if !models.IsValidAnnouncementPriority(*req.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrAnnouncementValidation, *req.Priority)
		}
		announcement.Priority = *req.Priority
	}
	if req.Published != nil {
		announcement.Published = *req.Published
	}
	updated, err := s.announcementRepo.UpdateAnnouncement(s.db, announcement)
	if err != nil {
		return nil, fmt.Errorf("failed to update announcement: %w", err)
	}
	return updated, nil
}

func (s *announcementService) DeleteAnnouncement(id int64) error {
	if err := s.announcementRepo.DeleteAnnouncement(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAnnouncementNotFound
		}
		return fmt.Errorf("failed to delete announcement: %w", err)
	}
	return nil
}
