package verification

import (
	"context"
	"strings"
	"time"

	"contractor-verify/internal/domain"
	"contractor-verify/internal/models"
	"contractor-verify/internal/places"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/logging"
	"contractor-verify/pkg/metrics"
)

// Service runs the full verification flow: fetch the canonical record, score
// the claim against it, persist the outcome.
type Service struct {
	provider places.Provider
	repo     domain.Repository
	logger   *logging.ComponentLogger

	mAttempts *metrics.Counter
	mVerified *metrics.Counter
	mScore    *metrics.Histogram
}

func NewService(provider places.Provider, repo domain.Repository, log *logging.Logger) *Service {
	return &Service{
		provider:  provider,
		repo:      repo,
		logger:    log.WithComponent("verification"),
		mAttempts: metrics.Default.Counter("verification_attempts_total", "Verification attempts that reached scoring"),
		mVerified: metrics.Default.Counter("verification_verified_total", "Attempts that met the confidence threshold"),
		mScore:    metrics.Default.Histogram("verification_score", "Distribution of confidence scores", []float64{0.25, 0.5, 0.7, 0.85, 0.95}),
	}
}

// Request carries one verification attempt.
type Request struct {
	ContractorID  string
	GooglePlaceID string
	Claimed       models.ClaimedIdentity
}

// Verify scores the contractor's claimed identity against the canonical
// place record. Contractor state is updated only when the attempt verifies;
// a history row is recorded either way. Persistence failures after scoring
// do not invalidate the result they record, except for the verified-state
// write itself, which must land before we report verified.
func (s *Service) Verify(ctx context.Context, req Request) (*models.VerificationResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	s.mAttempts.Inc(1)

	canonical, err := s.provider.PlaceDetails(ctx, req.GooglePlaceID)
	if err != nil {
		return nil, err
	}

	result := ScoreIdentity(req.Claimed, canonical)
	s.mScore.Observe(result.ConfidenceScore)

	now := time.Now()
	if result.Verified {
		if err := s.repo.MarkVerifiedCtx(ctx, req.ContractorID, canonical.PlaceID, canonical.GoogleURL, now); err != nil {
			return nil, err
		}
		s.mVerified.Inc(1)
	}

	history := &models.VerificationHistory{
		ContractorID:   req.ContractorID,
		PlaceID:        canonical.PlaceID,
		Score:          result.ConfidenceScore,
		Verified:       result.Verified,
		CanonicalName:  canonical.Name,
		CanonicalPhone: canonical.Phone,
		ProcessedAt:    now,
	}
	if err := s.repo.SaveVerificationHistoryCtx(ctx, history); err != nil {
		// The scoring outcome stands; losing one audit row is not worth
		// failing the request over.
		s.logger.Error("Failed to record verification history", err,
			logging.String("contractor_id", req.ContractorID),
			logging.String("place_id", canonical.PlaceID))
	}

	s.logger.Info("Verification completed",
		logging.String("contractor_id", req.ContractorID),
		logging.String("place_id", canonical.PlaceID),
		logging.Float64("score", result.ConfidenceScore),
		logging.Bool("verified", result.Verified))

	return &result, nil
}

func validate(req Request) error {
	if strings.TrimSpace(req.ContractorID) == "" {
		return errs.NewValidation("verification.Verify", "contractorId is required", nil)
	}
	if strings.TrimSpace(req.GooglePlaceID) == "" {
		return errs.NewValidation("verification.Verify", "googlePlaceId is required", nil)
	}
	if strings.TrimSpace(req.Claimed.BusinessName) == "" {
		return errs.NewValidation("verification.Verify", "businessName is required", nil)
	}
	return nil
}
