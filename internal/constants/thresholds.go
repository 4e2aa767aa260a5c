package constants

// Centralized policy values used across the application.
// These are fixed business policy, not configuration knobs; use pkg/config
// for env-driven settings. Change deliberately and document why.

const (
	// Verification field weights. Name and address carry equal weight,
	// phone acts as a tie-breaker. They sum to 1.0 when all fields are
	// comparable; the aggregator re-normalizes when any are missing.
	WeightBusinessName = 0.4
	WeightAddress      = 0.4
	WeightPhone        = 0.2

	// VerifyThreshold is the confidence score at or above which a claim
	// is considered verified.
	VerifyThreshold = 0.7

	// Rate limit policy defaults, overridable per action via the policy
	// file and per request via the endpoint body.
	RateLimitDefault              = 100
	RateLimitWindowMinutesDefault = 60

	// Circuit breaker rate thresholds for the place-data provider.
	CircuitFailureRate  = 0.6
	CircuitSlowCallRate = 0.7
)
