package verification

import (
	"strings"

	"contractor-verify/internal/constants"
	"contractor-verify/internal/models"
	"contractor-verify/internal/similarity"
	"contractor-verify/pkg/utils"
)

// ScoreIdentity compares a claimed identity against the canonical record and
// returns the weighted confidence score. A field participates only when both
// sides have a value; skipped fields re-normalize the remaining weights
// rather than penalize, so a name-only comparison is scored entirely on the
// name. With no comparable fields at all, the score is 0 and the claim is
// unverified.
func ScoreIdentity(claimed models.ClaimedIdentity, canonical *models.CanonicalIdentity) models.VerificationResult {
	fieldScores := make(map[string]float64)
	weightedSum := 0.0
	totalWeight := 0.0

	claimedName := strings.TrimSpace(claimed.BusinessName)
	canonName := strings.TrimSpace(canonical.Name)
	if claimedName != "" && canonName != "" {
		nameScore := similarity.Score(strings.ToLower(claimedName), strings.ToLower(canonName))
		fieldScores["businessName"] = nameScore
		weightedSum += nameScore * constants.WeightBusinessName
		totalWeight += constants.WeightBusinessName
	}

	claimedAddr := strings.TrimSpace(claimed.Address)
	canonAddr := strings.TrimSpace(canonical.Address)
	if claimedAddr != "" && canonAddr != "" {
		addressScore := similarity.Score(strings.ToLower(claimedAddr), strings.ToLower(canonAddr))
		fieldScores["address"] = addressScore
		weightedSum += addressScore * constants.WeightAddress
		totalWeight += constants.WeightAddress
	}

	// Digits-only comparison so formatting differences do not penalize.
	claimedPhone := utils.ExtractPhoneDigits(claimed.Phone)
	canonPhone := utils.ExtractPhoneDigits(canonical.Phone)
	if claimedPhone != "" && canonPhone != "" {
		phoneScore := similarity.Score(claimedPhone, canonPhone)
		fieldScores["phone"] = phoneScore
		weightedSum += phoneScore * constants.WeightPhone
		totalWeight += constants.WeightPhone
	}

	if totalWeight == 0 {
		return models.VerificationResult{
			FieldScores: fieldScores,
			Canonical:   canonical,
		}
	}

	confidence := weightedSum / totalWeight

	return models.VerificationResult{
		Verified:        confidence >= constants.VerifyThreshold,
		ConfidenceScore: confidence,
		FieldScores:     fieldScores,
		TotalWeight:     totalWeight,
		Canonical:       canonical,
	}
}
