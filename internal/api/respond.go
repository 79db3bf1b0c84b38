package api

import (
	"encoding/json"
	"errors"
	"net/http"

	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/ports"
)

type errorBody struct {
	Code         string  `json:"code"`
	Message      string  `json:"message"`
	ActiveMask   *uint64 `json:"active_mask,omitempty"`
	RequiredMask *uint64 `json:"required_mask,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures to distinct, machine-readable conditions
// so callers can tell "not yet redeemable" from "already redeemed" from
// "wrong outcome" without string matching.
func writeError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	writeJSON(w, status, map[string]errorBody{"error": body})
}

func classify(err error) (int, errorBody) {
	var paused *pause.PausedError
	if errors.As(err, &paused) {
		active, required := uint64(paused.Active), uint64(paused.Required)
		return http.StatusLocked, errorBody{
			Code:         "paused",
			Message:      err.Error(),
			ActiveMask:   &active,
			RequiredMask: &required,
		}
	}
	var notPaused *pause.NotPausedError
	if errors.As(err, &notPaused) {
		active, required := uint64(notPaused.Active), uint64(notPaused.Required)
		return http.StatusConflict, errorBody{
			Code:         "not_paused",
			Message:      err.Error(),
			ActiveMask:   &active,
			RequiredMask: &required,
		}
	}

	code, status := "internal", http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrClaimNotFound), errors.Is(err, ports.ErrCoverNotFound):
		code, status = "not_found", http.StatusNotFound
	case errors.Is(err, domain.ErrNotCoverOwner):
		code, status = "not_cover_owner", http.StatusForbidden
	case errors.Is(err, domain.ErrNotClaimant):
		code, status = "not_claimant", http.StatusForbidden
	case errors.Is(err, domain.ErrNotAssessor):
		code, status = "not_assessor", http.StatusForbidden
	case errors.Is(err, domain.ErrOnlyGovernor):
		code, status = "only_governor", http.StatusForbidden
	case errors.Is(err, domain.ErrOnlyEmergencyAdmin):
		code, status = "only_emergency_admin", http.StatusForbidden
	case errors.Is(err, domain.ErrVotingPeriodEnded):
		code, status = "voting_period_ended", http.StatusConflict
	case errors.Is(err, domain.ErrClaimNotRedeemable):
		code, status = "claim_not_redeemable", http.StatusConflict
	case errors.Is(err, domain.ErrClaimNotADraw):
		code, status = "claim_not_a_draw", http.StatusConflict
	case errors.Is(err, domain.ErrClaimAlreadyOpen):
		code, status = "claim_already_open", http.StatusConflict
	case errors.Is(err, domain.ErrAssessmentExists):
		code, status = "assessment_exists", http.StatusConflict
	case errors.Is(err, pause.ErrSameAdmin):
		code, status = "same_admin", http.StatusConflict
	case errors.Is(err, pause.ErrConfirmationMismatch):
		code, status = "confirmation_mismatch", http.StatusConflict
	case errors.Is(err, pause.ErrNoProposal):
		code, status = "no_proposal", http.StatusConflict
	case errors.Is(err, domain.ErrNoSuchGroup), errors.Is(err, domain.ErrNoAssessingGroup),
		errors.Is(err, domain.ErrUnknownProduct):
		code, status = "unprocessable", http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDepositNotCovered), errors.Is(err, ports.ErrInsufficientFund):
		code, status = "deposit_not_covered", http.StatusConflict
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	return status, errorBody{Code: code, Message: msg}
}
