package verification

import (
	"context"
	"testing"

	"contractor-verify/internal/models"
	mocks "contractor-verify/internal/testing"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/logging"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	cfg := logging.DefaultLogConfig()
	cfg.Level = logging.LevelError
	cfg.EnableAsync = false
	log, err := logging.NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func canonicalJoes() *models.CanonicalIdentity {
	return &models.CanonicalIdentity{
		Name:           "Joe's Roofing",
		Address:        "123 Main Street, Springfield",
		Phone:          "+1 555-123-4567",
		Website:        "https://joesroofing.example",
		BusinessStatus: "OPERATIONAL",
		GoogleURL:      "https://maps.google.com/?cid=123",
	}
}

func TestVerifyHighConfidenceMarksVerifiedOnce(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Canonical: canonicalJoes()}
	repo := &mocks.MockRepository{}
	svc := NewService(provider, repo, newTestLogger(t))

	result, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-100",
		GooglePlaceID: "ChIJtest123",
		Claimed: models.ClaimedIdentity{
			BusinessName: "Joes Roofing",
			Address:      "123 Main St, Springfield",
			Phone:        "(555) 123-4567",
		},
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Verified {
		t.Fatalf("expected verified, score %v", result.ConfidenceScore)
	}
	if repo.MarkVerifiedCalls != 1 {
		t.Errorf("MarkVerified calls = %d, want exactly 1", repo.MarkVerifiedCalls)
	}
	if repo.LastPlaceID != "ChIJtest123" {
		t.Errorf("persisted place id = %q", repo.LastPlaceID)
	}
	if repo.HistoryCalls != 1 {
		t.Errorf("history calls = %d, want 1", repo.HistoryCalls)
	}
	if repo.LastHistory == nil || !repo.LastHistory.Verified {
		t.Error("history row should record the verified outcome")
	}
}

func TestVerifyTorontoRoofingScenario(t *testing.T) {
	// Formatting-only differences across all three fields stay above the
	// threshold and trigger exactly one contractor update.
	provider := &mocks.MockPlaceProvider{Canonical: &models.CanonicalIdentity{
		Name:           "Joes Roofing",
		Address:        "45 King Street, Toronto, ON",
		Phone:          "(416) 555-1212",
		BusinessStatus: "OPERATIONAL",
	}}
	repo := &mocks.MockRepository{}
	svc := NewService(provider, repo, newTestLogger(t))

	result, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-200",
		GooglePlaceID: "ChIJtoronto",
		Claimed: models.ClaimedIdentity{
			BusinessName: "Joe's Roofing",
			Address:      "45 King St, Toronto",
			Phone:        "4165551212",
		},
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Verified {
		t.Fatalf("expected verified, score %v", result.ConfidenceScore)
	}
	// name 12/13, address 19/27, phone exact on digits
	want := (12.0/13.0)*0.4 + (19.0/27.0)*0.4 + 1.0*0.2
	if !almostEqual(result.ConfidenceScore, want) {
		t.Errorf("ConfidenceScore = %v, want %v", result.ConfidenceScore, want)
	}
	if repo.MarkVerifiedCalls != 1 {
		t.Errorf("MarkVerified calls = %d, want exactly 1", repo.MarkVerifiedCalls)
	}
}

func TestVerifyLowConfidenceSkipsContractorUpdate(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Canonical: canonicalJoes()}
	repo := &mocks.MockRepository{}
	svc := NewService(provider, repo, newTestLogger(t))

	result, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-100",
		GooglePlaceID: "ChIJtest123",
		Claimed: models.ClaimedIdentity{
			BusinessName: "Completely Unrelated Name",
			Address:      "999 Elsewhere Blvd",
			Phone:        "000-000-0000",
		},
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Verified {
		t.Fatalf("expected unverified, score %v", result.ConfidenceScore)
	}
	if repo.MarkVerifiedCalls != 0 {
		t.Errorf("MarkVerified calls = %d, want 0 for unverified attempt", repo.MarkVerifiedCalls)
	}
	if repo.HistoryCalls != 1 {
		t.Errorf("history calls = %d, want 1 even for unverified attempt", repo.HistoryCalls)
	}
}

func TestVerifyValidation(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Canonical: canonicalJoes()}
	repo := &mocks.MockRepository{}
	svc := NewService(provider, repo, newTestLogger(t))

	cases := []struct {
		name string
		req  Request
	}{
		{"missing contractor id", Request{GooglePlaceID: "p", Claimed: models.ClaimedIdentity{BusinessName: "b"}}},
		{"missing place id", Request{ContractorID: "c", Claimed: models.ClaimedIdentity{BusinessName: "b"}}},
		{"missing business name", Request{ContractorID: "c", GooglePlaceID: "p"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Verify(context.Background(), tc.req)
			if !errs.Is(err, errs.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
	if provider.Calls != 0 {
		t.Errorf("provider called %d times for invalid requests, want 0", provider.Calls)
	}
}

func TestVerifyProviderFailurePropagates(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Err: errs.NewExternal("places.PlaceDetails", "google", "place lookup failed", nil)}
	repo := &mocks.MockRepository{}
	svc := NewService(provider, repo, newTestLogger(t))

	_, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-100",
		GooglePlaceID: "ChIJbogus",
		Claimed:       models.ClaimedIdentity{BusinessName: "Joes Roofing"},
	})
	if !errs.Is(err, errs.ErrExternal) {
		t.Fatalf("err = %v, want external API error", err)
	}
	if repo.MarkVerifiedCalls != 0 || repo.HistoryCalls != 0 {
		t.Error("nothing should be persisted when the place lookup fails")
	}
}

func TestVerifyMarkVerifiedFailurePropagates(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Canonical: canonicalJoes()}
	repo := &mocks.MockRepository{MarkVerifiedErr: errs.NewDB("repository.MarkVerified", "write failed", nil)}
	svc := NewService(provider, repo, newTestLogger(t))

	_, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-100",
		GooglePlaceID: "ChIJtest123",
		Claimed:       models.ClaimedIdentity{BusinessName: "Joe's Roofing"},
	})
	if !errs.Is(err, errs.ErrDB) {
		t.Fatalf("err = %v, want DB error", err)
	}
}

func TestVerifyHistoryFailureDoesNotFailRequest(t *testing.T) {
	provider := &mocks.MockPlaceProvider{Canonical: canonicalJoes()}
	repo := &mocks.MockRepository{HistoryErr: errs.NewDB("repository.SaveVerificationHistory", "insert failed", nil)}
	svc := NewService(provider, repo, newTestLogger(t))

	result, err := svc.Verify(context.Background(), Request{
		ContractorID:  "c-100",
		GooglePlaceID: "ChIJtest123",
		Claimed:       models.ClaimedIdentity{BusinessName: "Joe's Roofing"},
	})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !result.Verified {
		t.Errorf("expected verified despite history failure, score %v", result.ConfidenceScore)
	}
}
