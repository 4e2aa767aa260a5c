package verification

import (
	"math"
	"testing"

	"contractor-verify/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreIdentityAllFields(t *testing.T) {
	claimed := models.ClaimedIdentity{
		BusinessName: "Joes Roofing",
		Address:      "123 Main St, Springfield",
		Phone:        "(555) 123-4567",
	}
	canonical := &models.CanonicalIdentity{
		Name:    "Joe's Roofing",
		Address: "123 Main Street, Springfield",
		Phone:   "+1 555-123-4567",
	}

	result := ScoreIdentity(claimed, canonical)

	if !almostEqual(result.TotalWeight, 1.0) {
		t.Errorf("TotalWeight = %v, want 1.0", result.TotalWeight)
	}
	if !almostEqual(result.FieldScores["businessName"], 12.0/13.0) {
		t.Errorf("name score = %v, want %v", result.FieldScores["businessName"], 12.0/13.0)
	}
	// claimed digits 5551234567 vs canonical 15551234567, one insertion
	if !almostEqual(result.FieldScores["phone"], 10.0/11.0) {
		t.Errorf("phone score = %v, want %v", result.FieldScores["phone"], 10.0/11.0)
	}
	if !result.Verified {
		t.Errorf("expected verified, score = %v", result.ConfidenceScore)
	}
	if result.ConfidenceScore < 0.7 {
		t.Errorf("ConfidenceScore = %v, want >= 0.7", result.ConfidenceScore)
	}
}

func TestScoreIdentityNameOnly(t *testing.T) {
	claimed := models.ClaimedIdentity{BusinessName: "Acme Plumbing"}
	canonical := &models.CanonicalIdentity{
		Name:    "Acme Plumbing",
		Address: "456 Oak Ave",
		Phone:   "555-000-1111",
	}

	result := ScoreIdentity(claimed, canonical)

	if !almostEqual(result.TotalWeight, 0.4) {
		t.Errorf("TotalWeight = %v, want 0.4", result.TotalWeight)
	}
	if !almostEqual(result.ConfidenceScore, 1.0) {
		t.Errorf("ConfidenceScore = %v, want 1.0 from name alone", result.ConfidenceScore)
	}
	if !result.Verified {
		t.Error("exact name match alone should verify")
	}
	if _, ok := result.FieldScores["address"]; ok {
		t.Error("address score should be absent when claim has no address")
	}
	if _, ok := result.FieldScores["phone"]; ok {
		t.Error("phone score should be absent when claim has no phone")
	}
}

func TestScoreIdentityNameAndPhone(t *testing.T) {
	claimed := models.ClaimedIdentity{
		BusinessName: "Acme Plumbing",
		Phone:        "5550001111",
	}
	canonical := &models.CanonicalIdentity{
		Name:  "Acme Plumbing",
		Phone: "(555) 000-1111",
	}

	result := ScoreIdentity(claimed, canonical)

	if !almostEqual(result.TotalWeight, 0.6) {
		t.Errorf("TotalWeight = %v, want 0.6", result.TotalWeight)
	}
	if !almostEqual(result.FieldScores["phone"], 1.0) {
		t.Errorf("phone score = %v, want 1.0 after digit extraction", result.FieldScores["phone"])
	}
	if !almostEqual(result.ConfidenceScore, 1.0) {
		t.Errorf("ConfidenceScore = %v, want 1.0", result.ConfidenceScore)
	}
}

func TestScoreIdentityCaseInsensitive(t *testing.T) {
	claimed := models.ClaimedIdentity{BusinessName: "ACME PLUMBING"}
	canonical := &models.CanonicalIdentity{Name: "acme plumbing"}

	result := ScoreIdentity(claimed, canonical)
	if !almostEqual(result.FieldScores["businessName"], 1.0) {
		t.Errorf("name score = %v, want 1.0 ignoring case", result.FieldScores["businessName"])
	}
}

func TestScoreIdentityMismatchBelowThreshold(t *testing.T) {
	claimed := models.ClaimedIdentity{
		BusinessName: "Totally Different Biz",
		Address:      "999 Nowhere Ln",
		Phone:        "111-111-1111",
	}
	canonical := &models.CanonicalIdentity{
		Name:    "Joe's Roofing",
		Address: "123 Main Street, Springfield",
		Phone:   "+1 555-123-4567",
	}

	result := ScoreIdentity(claimed, canonical)
	if result.Verified {
		t.Errorf("mismatched identity verified with score %v", result.ConfidenceScore)
	}
	if result.ConfidenceScore >= 0.7 {
		t.Errorf("ConfidenceScore = %v, want < 0.7", result.ConfidenceScore)
	}
}

func TestScoreIdentitySkipsFieldsMissingOnEitherSide(t *testing.T) {
	// Canonical record has no phone: the claimed phone cannot be compared
	// and must not drag the score down.
	claimed := models.ClaimedIdentity{
		BusinessName: "Acme Plumbing",
		Phone:        "555-000-1111",
	}
	canonical := &models.CanonicalIdentity{Name: "Acme Plumbing"}

	result := ScoreIdentity(claimed, canonical)
	if !almostEqual(result.TotalWeight, 0.4) {
		t.Errorf("TotalWeight = %v, want 0.4 with phone uncomparable", result.TotalWeight)
	}
	if !almostEqual(result.ConfidenceScore, 1.0) {
		t.Errorf("ConfidenceScore = %v, want 1.0", result.ConfidenceScore)
	}
}

func TestScoreIdentityCanonicalMissingName(t *testing.T) {
	// The provider record has no name: the name weight drops out and the
	// remaining fields carry the whole score.
	claimed := models.ClaimedIdentity{
		BusinessName: "Acme Plumbing",
		Address:      "123 Main St",
		Phone:        "555-000-1111",
	}
	canonical := &models.CanonicalIdentity{
		Address: "123 Main St",
		Phone:   "555-000-1111",
	}

	result := ScoreIdentity(claimed, canonical)
	if !almostEqual(result.TotalWeight, 0.6) {
		t.Errorf("TotalWeight = %v, want 0.6 (address and phone only)", result.TotalWeight)
	}
	if !almostEqual(result.ConfidenceScore, 1.0) {
		t.Errorf("ConfidenceScore = %v, want 1.0", result.ConfidenceScore)
	}
	if !result.Verified {
		t.Error("exact address and phone match must verify when the name is uncomparable")
	}
	if _, ok := result.FieldScores["businessName"]; ok {
		t.Error("name score should be absent when the canonical record has no name")
	}
}

func TestScoreIdentityNoComparableFields(t *testing.T) {
	claimed := models.ClaimedIdentity{BusinessName: "Acme Plumbing"}
	canonical := &models.CanonicalIdentity{}

	result := ScoreIdentity(claimed, canonical)
	if result.ConfidenceScore != 0.0 {
		t.Errorf("ConfidenceScore = %v, want 0.0 with nothing to compare", result.ConfidenceScore)
	}
	if result.Verified {
		t.Error("no comparable fields must not verify")
	}
	if result.TotalWeight != 0.0 {
		t.Errorf("TotalWeight = %v, want 0.0", result.TotalWeight)
	}
}

func TestScoreIdentityDissimilarNameAndAddressNoPhone(t *testing.T) {
	claimed := models.ClaimedIdentity{
		BusinessName: "Totally Different Biz",
		Address:      "999 Nowhere Ln",
	}
	canonical := &models.CanonicalIdentity{
		Name:    "Joe's Roofing",
		Address: "45 King Street, Toronto, ON",
	}

	result := ScoreIdentity(claimed, canonical)
	if !almostEqual(result.TotalWeight, 0.8) {
		t.Errorf("TotalWeight = %v, want 0.8 (name and address only)", result.TotalWeight)
	}
	if result.Verified || result.ConfidenceScore >= 0.7 {
		t.Errorf("dissimilar fields scored %v, want < 0.7 and unverified", result.ConfidenceScore)
	}
}

func TestScoreIdentityPartialPhoneMatchStillVerifies(t *testing.T) {
	claimed := models.ClaimedIdentity{
		BusinessName: "abcdefghij",
		Phone:        "12",
	}
	canonical := &models.CanonicalIdentity{
		Name:  "abcdefghij",
		Phone: "1x", // digits "1", one edit from "12", score 0.5
	}

	result := ScoreIdentity(claimed, canonical)
	// 1.0*0.4 + 0.5*0.2 over 0.6 = 0.8333...
	if !result.Verified {
		t.Errorf("score %v at or above threshold must verify", result.ConfidenceScore)
	}
}
