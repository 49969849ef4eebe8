package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"venue_ops_backend/pkg/utils"
)

// --- Custom Service Errors for availability ---
var (
	ErrAvailabilityUnavailable = errors.New("availability feed unavailable")
)

// AvailabilityConfig controls the upstream feed and cache behavior.
type AvailabilityConfig struct {
	FeedURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// AvailabilityDay is one day of room availability as published by the
// booking channel feed.
type AvailabilityDay struct {
	Date      string `json:"date"`
	RoomsOpen int    `json:"rooms_open"`
	Closed    bool   `json:"closed"`
}

// AvailabilitySnapshot is the cached feed payload plus when it was fetched.
type AvailabilitySnapshot struct {
	FetchedAt time.Time         `json:"fetched_at"`
	Days      []AvailabilityDay `json:"days"`
}

// --- AvailabilityService Interface ---
type AvailabilityService interface {
	GetSnapshot(ctx context.Context) (*AvailabilitySnapshot, error)
	Invalidate(ctx context.Context) error
}

// --- availabilityService Implementation ---
type availabilityService struct {
	rdb    *redis.Client
	client *http.Client
	cfg    AvailabilityConfig
	now    func() time.Time
}

const availabilityCacheKey = "availability:snapshot"

// NewAvailabilityService creates a new instance of AvailabilityService.
func NewAvailabilityService(rdb *redis.Client, cfg AvailabilityConfig) AvailabilityService {
	return &availabilityService{
		rdb:    rdb,
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		now:    time.Now,
	}
}

// GetSnapshot returns the cached feed when fresh, otherwise fetches upstream
// and refills the cache. Cache failures degrade to a direct fetch.
func (s *availabilityService) GetSnapshot(ctx context.Context) (*AvailabilitySnapshot, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, availabilityCacheKey).Bytes()
		if err == nil {
			var snapshot AvailabilitySnapshot
			if unmarshalErr := json.Unmarshal(cached, &snapshot); unmarshalErr == nil {
				return &snapshot, nil
			}
			// Corrupt cache entry; fall through to a fresh fetch.
		} else if !errors.Is(err, redis.Nil) {
			utils.LogWarn(err, "availability cache read failed")
		}
	}

	snapshot, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		payload, marshalErr := json.Marshal(snapshot)
		if marshalErr == nil {
			if setErr := s.rdb.Set(ctx, availabilityCacheKey, payload, s.cfg.CacheTTL).Err(); setErr != nil {
				utils.LogWarn(setErr, "availability cache write failed")
			}
		}
	}
	return snapshot, nil
}

func (s *availabilityService) fetch(ctx context.Context) (*AvailabilitySnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.FeedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAvailabilityUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAvailabilityUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned %d", ErrAvailabilityUnavailable, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAvailabilityUnavailable, err)
	}
	var days []AvailabilityDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("%w: malformed feed: %v", ErrAvailabilityUnavailable, err)
	}
	return &AvailabilitySnapshot{FetchedAt: s.now(), Days: days}, nil
}

func (s *availabilityService) Invalidate(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, availabilityCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate availability cache: %w", err)
	}
	return nil
}
