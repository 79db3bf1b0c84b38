package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"stakesure/internal/ports"
)

type claimResponse struct {
	ClaimID          uint64    `json:"claim_id"`
	CoverID          uint64    `json:"cover_id"`
	Claimant         string    `json:"claimant"`
	Amount           uint64    `json:"amount"`
	Asset            string    `json:"asset"`
	ProofRef         string    `json:"proof_ref"`
	Deposit          uint64    `json:"deposit"`
	PayoutRedeemed   bool      `json:"payout_redeemed"`
	DepositRetrieved bool      `json:"deposit_retrieved"`
	SubmittedAt      time.Time `json:"submitted_at"`
	Status           string    `json:"status"`
	Outcome          string    `json:"outcome"`
}

func (s *Server) handleSubmitClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CoverID  uint64 `json:"cover_id"`
		Amount   uint64 `json:"amount"`
		ProofRef string `json:"proof_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return
	}

	claimID, err := s.ledger.Submit(r.Context(), identityFrom(r), req.CoverID, req.Amount, req.ProofRef)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]uint64{"claim_id": claimID})
}

func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.ledger.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]claimResponse, 0, len(claims))
	for _, claim := range claims {
		details, err := s.ledger.Details(r.Context(), claim.ClaimID)
		if err != nil {
			writeError(w, err)
			return
		}
		items = append(items, mapClaimResponse(claim, details.Status.String(), details.Outcome.String()))
	}

	writeJSON(w, http.StatusOK, map[string]any{"claims": items})
}

func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	claim, err := s.ledger.Get(r.Context(), claimID)
	if err != nil {
		writeError(w, err)
		return
	}
	details, err := s.ledger.Details(r.Context(), claimID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapClaimResponse(claim, details.Status.String(), details.Outcome.String()))
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	assessment, err := s.engine.Get(r.Context(), claimID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"claim_id":        assessment.ClaimID,
		"group_id":        assessment.GroupID,
		"accept_votes":    assessment.AcceptWeight,
		"deny_votes":      assessment.DenyWeight,
		"voting_end":      assessment.VotingEnd,
		"cooldown_period": assessment.CooldownPeriod.String(),
	})
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	var req struct {
		Accept   bool   `json:"accept"`
		ProofRef string `json:"proof_ref"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return
	}

	if err := s.engine.CastVote(r.Context(), identityFrom(r), claimID, req.Accept, req.ProofRef); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	if err := s.ledger.Redeem(r.Context(), identityFrom(r), claimID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "redeemed"})
}

func (s *Server) handleRetrieveDeposit(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	if err := s.ledger.RetrieveDeposit(r.Context(), identityFrom(r), claimID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "retrieved"})
}

func mapClaimResponse(claim ports.Claim, status, outcome string) claimResponse {
	return claimResponse{
		ClaimID:          claim.ClaimID,
		CoverID:          claim.CoverID,
		Claimant:         claim.Claimant,
		Amount:           claim.Amount,
		Asset:            claim.Asset,
		ProofRef:         claim.ProofRef,
		Deposit:          claim.Deposit,
		PayoutRedeemed:   claim.PayoutRedeemed,
		DepositRetrieved: claim.DepositRetrieved,
		SubmittedAt:      claim.SubmittedAt,
		Status:           status,
		Outcome:          outcome,
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid " + param}})
		return 0, false
	}
	return id, true
}
