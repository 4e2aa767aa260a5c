package repository

import (
	"context"
	"database/sql"
	"time"

	"contractor-verify/internal/domain"
	"contractor-verify/internal/models"
	"contractor-verify/pkg/database"
	errs "contractor-verify/pkg/errors"
)

// SQLRepository is a thin adapter over pkg/database.DB to satisfy domain
// repositories. It keeps business logic decoupled from the SQL layer.
type SQLRepository struct {
	db *database.DB
}

func NewSQLRepository(db *database.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

// Ensure interface compliance at compile time
var _ domain.Repository = (*SQLRepository)(nil)

func (r *SQLRepository) GetContractorByIDCtx(ctx context.Context, contractorID string) (*models.Contractor, error) {
	ctx, cancel := context.WithTimeout(ctx, r.db.ReadTimeout())
	defer cancel()

	var c models.Contractor
	err := r.db.Conn().QueryRowContext(ctx,
		`SELECT id, business_name, google_verified, google_verified_at, google_place_id, google_url
         FROM contractors WHERE id = ?`, contractorID).
		Scan(&c.ID, &c.BusinessName, &c.GoogleVerified, &c.GoogleVerifiedAt, &c.GooglePlaceID, &c.GoogleURL)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errs.NewDB("repository.GetContractorByID", "failed to fetch contractor", err)
	}
	return &c, nil
}

func (r *SQLRepository) MarkVerifiedCtx(ctx context.Context, contractorID, placeID, googleURL string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, r.db.WriteTimeout())
	defer cancel()

	_, err := r.db.Stmt("markVerified").ExecContext(ctx, at, placeID, googleURL, contractorID)
	if err != nil {
		return errs.NewDB("repository.MarkVerified", "failed to update contractor verification state", err)
	}
	return nil
}

func (r *SQLRepository) SaveVerificationHistoryCtx(ctx context.Context, h *models.VerificationHistory) error {
	ctx, cancel := context.WithTimeout(ctx, r.db.WriteTimeout())
	defer cancel()

	res, err := r.db.Stmt("insertVerificationHistory").ExecContext(ctx,
		h.ContractorID, h.PlaceID, h.Score, h.Verified,
		h.CanonicalName, h.CanonicalPhone, h.ProcessedAt)
	if err != nil {
		return errs.NewDB("repository.SaveVerificationHistory", "failed to insert verification history", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		h.ID = id
	}
	return nil
}

func (r *SQLRepository) GetVerificationHistoryCtx(ctx context.Context, contractorID string, limit int) ([]models.VerificationHistory, error) {
	ctx, cancel := context.WithTimeout(ctx, r.db.ReadTimeout())
	defer cancel()

	rows, err := r.db.Conn().QueryContext(ctx,
		`SELECT id, contractor_id, place_id, score, verified, canonical_name, canonical_phone, processed_at
         FROM contractor_verification_histories
         WHERE contractor_id = ?
         ORDER BY processed_at DESC
         LIMIT ?`, contractorID, limit)
	if err != nil {
		return nil, errs.NewDB("repository.GetVerificationHistory", "failed to query verification history", err)
	}
	defer rows.Close()

	var out []models.VerificationHistory
	for rows.Next() {
		var h models.VerificationHistory
		if err := rows.Scan(&h.ID, &h.ContractorID, &h.PlaceID, &h.Score, &h.Verified,
			&h.CanonicalName, &h.CanonicalPhone, &h.ProcessedAt); err != nil {
			return nil, errs.NewDB("repository.GetVerificationHistory", "failed to scan verification history row", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDB("repository.GetVerificationHistory", "row iteration failed", err)
	}
	return out, nil
}
