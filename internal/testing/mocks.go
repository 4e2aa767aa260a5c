// Package testing provides shared test doubles for service and handler tests.
package testing

import (
	"context"
	"errors"
	"sync"
	"time"

	"contractor-verify/internal/models"
	"contractor-verify/pkg/events"
)

// MockPlaceProvider returns a canned canonical identity or error.
type MockPlaceProvider struct {
	Canonical *models.CanonicalIdentity
	Err       error
	Calls     int
}

func (m *MockPlaceProvider) PlaceDetails(_ context.Context, placeID string) (*models.CanonicalIdentity, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	c := *m.Canonical
	c.PlaceID = placeID
	return &c, nil
}

// MockRepository records persistence calls for assertion.
type MockRepository struct {
	Contractor *models.Contractor

	MarkVerifiedCalls int
	MarkVerifiedErr   error
	LastPlaceID       string
	LastGoogleURL     string

	HistoryCalls int
	HistoryErr   error
	LastHistory  *models.VerificationHistory
}

func (m *MockRepository) GetContractorByIDCtx(_ context.Context, _ string) (*models.Contractor, error) {
	return m.Contractor, nil
}

func (m *MockRepository) MarkVerifiedCtx(_ context.Context, _, placeID, googleURL string, _ time.Time) error {
	m.MarkVerifiedCalls++
	m.LastPlaceID = placeID
	m.LastGoogleURL = googleURL
	return m.MarkVerifiedErr
}

func (m *MockRepository) SaveVerificationHistoryCtx(_ context.Context, h *models.VerificationHistory) error {
	m.HistoryCalls++
	m.LastHistory = h
	return m.HistoryErr
}

func (m *MockRepository) GetVerificationHistoryCtx(_ context.Context, _ string, _ int) ([]models.VerificationHistory, error) {
	if m.LastHistory == nil {
		return nil, nil
	}
	return []models.VerificationHistory{*m.LastHistory}, nil
}

// FailingEventStore fails selected operations to exercise error paths.
type FailingEventStore struct {
	mu sync.Mutex

	FailAppend bool
	FailCount  bool
	FailPurge  bool

	Appended []events.Event
}

var ErrStore = errors.New("event store unavailable")

func (s *FailingEventStore) Append(_ context.Context, e events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAppend {
		return ErrStore
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	s.Appended = append(s.Appended, e)
	return nil
}

func (s *FailingEventStore) CountSince(_ context.Context, identifier, action string, since time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCount {
		return 0, ErrStore
	}
	n := 0
	for _, e := range s.Appended {
		if e.Identifier == identifier && e.Action == action && !e.At.Before(since) {
			n++
		}
	}
	return n, nil
}

func (s *FailingEventStore) PurgeBefore(_ context.Context, _ time.Time) error {
	if s.FailPurge {
		return ErrStore
	}
	return nil
}
