package models

import "time"

// ClaimedIdentity is the self-reported business record a contractor submits
// for verification. Built per request; never persisted on its own.
type ClaimedIdentity struct {
	BusinessName string `json:"businessName"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// CanonicalIdentity is the authoritative third-party record for a place
// identifier, fetched fresh from the place-data provider for every request.
// It is never cached here; the provider remains the source of truth.
type CanonicalIdentity struct {
	PlaceID        string `json:"placeId"`
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
	BusinessStatus string `json:"businessStatus"`
	GoogleURL      string `json:"googleUrl"`
}

// Operational reports whether the provider considers the business open.
func (c CanonicalIdentity) Operational() bool {
	return c.BusinessStatus == "OPERATIONAL"
}

// VerificationResult is the outcome of one verification attempt.
// Invariant: Verified == true iff ConfidenceScore >= constants.VerifyThreshold.
type VerificationResult struct {
	Verified        bool               `json:"verified"`
	ConfidenceScore float64            `json:"confidenceScore"`
	FieldScores     map[string]float64 `json:"fieldScores,omitempty"`
	TotalWeight     float64            `json:"totalWeight"`
	Canonical       *CanonicalIdentity `json:"canonical,omitempty"`
}

// Contractor mirrors the columns of the contractors table this service touches.
// Profile management lives elsewhere; only verification state is written here.
type Contractor struct {
	ID               string     `json:"id"`
	BusinessName     string     `json:"business_name"`
	GoogleVerified   bool       `json:"google_verified"`
	GoogleVerifiedAt *time.Time `json:"google_verified_at,omitempty"`
	GooglePlaceID    *string    `json:"google_place_id,omitempty"`
	GoogleURL        *string    `json:"google_url,omitempty"`
}

// VerificationHistory is one audit row per completed scoring attempt,
// verified or not. The contractor's verification state is only mutated on
// verified attempts; history records everything.
type VerificationHistory struct {
	ID             int64     `json:"id"`
	ContractorID   string    `json:"contractor_id"`
	PlaceID        string    `json:"place_id"`
	Score          float64   `json:"score"`
	Verified       bool      `json:"verified"`
	CanonicalName  string    `json:"canonical_name"`
	CanonicalPhone string    `json:"canonical_phone"`
	ProcessedAt    time.Time `json:"processed_at"`
}
