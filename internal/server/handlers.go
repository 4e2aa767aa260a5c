package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"contractor-verify/internal/domain"
	"contractor-verify/internal/models"
	"contractor-verify/internal/ratelimit"
	"contractor-verify/internal/verification"
	errs "contractor-verify/pkg/errors"
	"contractor-verify/pkg/logging"

	"github.com/gorilla/mux"
)

// VerifyBusinessRequest is the POST /verify-business payload.
type VerifyBusinessRequest struct {
	ContractorID  string `json:"contractorId"`
	GooglePlaceID string `json:"googlePlaceId"`
	BusinessName  string `json:"businessName"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
}

// PlaceDetailsResponse echoes the canonical record back to the caller.
type PlaceDetailsResponse struct {
	Name           string `json:"name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
	BusinessStatus string `json:"businessStatus"`
	GoogleURL      string `json:"googleUrl"`
}

// VerifyBusinessResponse is the POST /verify-business success body.
type VerifyBusinessResponse struct {
	Verified          bool                  `json:"verified"`
	VerificationScore float64               `json:"verificationScore"`
	PlaceDetails      *PlaceDetailsResponse `json:"placeDetails,omitempty"`
}

// RateLimitRequest is the POST /rate-limit payload. Window is in minutes.
type RateLimitRequest struct {
	Identifier string `json:"identifier"`
	Action     string `json:"action"`
	Limit      int    `json:"limit"`
	Window     int    `json:"window"`
}

// RateLimitResponse is the POST /rate-limit body for both outcomes.
type RateLimitResponse struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"resetTime"`
	Message   string `json:"message,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// VerifyBusinessHandler scores a contractor's claimed identity against the
// canonical Google Places record.
func VerifyBusinessHandler(svc *verification.Service, log *logging.Logger) http.HandlerFunc {
	logger := log.WithComponent("http")
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyBusinessRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		ctx := context.WithValue(r.Context(), logging.CtxContractorID, req.ContractorID)
		result, err := svc.Verify(ctx, verification.Request{
			ContractorID:  req.ContractorID,
			GooglePlaceID: req.GooglePlaceID,
			Claimed: models.ClaimedIdentity{
				BusinessName: req.BusinessName,
				Address:      req.Address,
				Phone:        req.Phone,
			},
		})
		if err != nil {
			status, msg := mapError(err)
			if status == http.StatusInternalServerError {
				logger.Error("Verification request failed", err,
					logging.String("contractor_id", req.ContractorID))
			}
			writeError(w, status, msg)
			return
		}

		resp := VerifyBusinessResponse{
			Verified:          result.Verified,
			VerificationScore: result.ConfidenceScore,
		}
		if result.Canonical != nil {
			resp.PlaceDetails = &PlaceDetailsResponse{
				Name:           result.Canonical.Name,
				Address:        result.Canonical.Address,
				Phone:          result.Canonical.Phone,
				Website:        result.Canonical.Website,
				BusinessStatus: result.Canonical.BusinessStatus,
				GoogleURL:      result.Canonical.GoogleURL,
			}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// RateLimitHandler answers sliding-window quota checks. A rejected request
// gets 429 with the same body shape as an admitted one.
func RateLimitHandler(gate *ratelimit.Gate, log *logging.Logger) http.HandlerFunc {
	logger := log.WithComponent("http")
	return func(w http.ResponseWriter, r *http.Request) {
		var req RateLimitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		decision, err := gate.Check(r.Context(), req.Identifier, req.Action, req.Limit, time.Duration(req.Window)*time.Minute)
		if err != nil {
			status, msg := mapError(err)
			if status == http.StatusInternalServerError {
				logger.Error("Rate limit check failed", err,
					logging.String("identifier", req.Identifier),
					logging.String("action", req.Action))
			}
			writeError(w, status, msg)
			return
		}

		resp := RateLimitResponse{
			Allowed:   decision.Allowed,
			Remaining: decision.Remaining,
			ResetTime: decision.ResetTime.Format(time.RFC3339),
			Message:   decision.Message,
		}
		status := http.StatusOK
		if !decision.Allowed {
			status = http.StatusTooManyRequests
		}
		writeJSON(w, status, resp)
	}
}

// VerificationHistoryHandler lists recent verification attempts for one
// contractor, newest first.
func VerificationHistoryHandler(repo domain.Repository, log *logging.Logger) http.HandlerFunc {
	logger := log.WithComponent("http")
	return func(w http.ResponseWriter, r *http.Request) {
		contractorID := mux.Vars(r)["id"]

		contractor, err := repo.GetContractorByIDCtx(r.Context(), contractorID)
		if err != nil {
			logger.Error("Contractor lookup failed", err,
				logging.String("contractor_id", contractorID))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if contractor == nil {
			writeError(w, http.StatusNotFound, "contractor not found")
			return
		}

		history, err := repo.GetVerificationHistoryCtx(r.Context(), contractorID, 50)
		if err != nil {
			logger.Error("History lookup failed", err,
				logging.String("contractor_id", contractorID))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if history == nil {
			history = []models.VerificationHistory{}
		}
		writeJSON(w, http.StatusOK, history)
	}
}

// mapError translates service errors to HTTP status codes. Place lookup
// failures are reported as a bad request since the caller supplied the
// place ID.
func mapError(err error) (int, string) {
	switch {
	case errs.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errs.Is(err, errs.ErrExternal):
		return http.StatusBadRequest, "place not found"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
