package places

import (
	"context"

	"contractor-verify/internal/constants"
	"contractor-verify/internal/models"
	"contractor-verify/pkg/circuit"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/logging"

	"googlemaps.github.io/maps"
)

// Provider fetches the canonical business record for a place identifier.
type Provider interface {
	PlaceDetails(ctx context.Context, placeID string) (*models.CanonicalIdentity, error)
}

// Client wraps the Google Maps Places API behind a circuit breaker. Every
// lookup goes to the API; canonical records are never cached locally.
type Client struct {
	client  *maps.Client
	breaker *circuit.Breaker
	logger  *logging.ComponentLogger
}

func NewClient(apiKey string, log *logging.Logger) (*Client, error) {
	mc, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, errs.NewExternal("places.NewClient", "google", "failed to create maps client", err)
	}

	breaker := circuit.New(circuit.Config{
		Name:              "google_places",
		OperationTimeout:  constants.PlacesOperationTimeout,
		OpenFor:           constants.PlacesOpenFor,
		MaxConsecFailures: constants.PlacesMaxConsecFailures,
		FailureRate:       constants.CircuitFailureRate,
		SlowCallThreshold: constants.PlacesSlowCallThreshold,
		SlowCallRate:      constants.CircuitSlowCallRate,
	}, log)

	return &Client{
		client:  mc,
		breaker: breaker,
		logger:  log.WithComponent("places"),
	}, nil
}

var _ Provider = (*Client)(nil)

// PlaceDetails fetches the canonical identity for placeID. A lookup failure
// of any kind, including an unknown place ID, surfaces as an external API
// error; callers treat it as "place not found".
func (c *Client) PlaceDetails(ctx context.Context, placeID string) (*models.CanonicalIdentity, error) {
	var details maps.PlaceDetailsResult

	op := func(ctx context.Context) error {
		resp, err := c.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
			PlaceID: placeID,
			Fields: []maps.PlaceDetailsFieldMask{
				maps.PlaceDetailsFieldMaskName,
				maps.PlaceDetailsFieldMaskFormattedAddress,
				maps.PlaceDetailsFieldMaskFormattedPhoneNumber,
				maps.PlaceDetailsFieldMaskWebsite,
				maps.PlaceDetailsFieldMaskBusinessStatus,
				maps.PlaceDetailsFieldMaskURL,
			},
		})
		if err != nil {
			return err
		}
		details = resp
		return nil
	}

	if err := c.breaker.Do(ctx, op, nil); err != nil {
		c.logger.Warn("Place lookup failed",
			logging.String("place_id", placeID),
			logging.String("error", err.Error()))
		return nil, errs.NewExternal("places.PlaceDetails", "google", "place lookup failed", err)
	}

	return &models.CanonicalIdentity{
		PlaceID:        placeID,
		Name:           details.Name,
		Address:        details.FormattedAddress,
		Phone:          details.FormattedPhoneNumber,
		Website:        details.Website,
		BusinessStatus: details.BusinessStatus,
		GoogleURL:      details.URL,
	}, nil
}
