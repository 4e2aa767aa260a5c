package domain

import (
	"context"
	"time"

	"contractor-verify/internal/models"
)

// ContractorRepository defines data access for contractor records.
type ContractorRepository interface {
	GetContractorByIDCtx(ctx context.Context, contractorID string) (*models.Contractor, error)
	MarkVerifiedCtx(ctx context.Context, contractorID, placeID, googleURL string, at time.Time) error
}

// VerificationHistoryRepository defines access for the verification audit trail.
type VerificationHistoryRepository interface {
	SaveVerificationHistoryCtx(ctx context.Context, h *models.VerificationHistory) error
	GetVerificationHistoryCtx(ctx context.Context, contractorID string, limit int) ([]models.VerificationHistory, error)
}

// Repository aggregates the repos required by the verification service.
type Repository interface {
	ContractorRepository
	VerificationHistoryRepository
}
