package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stakesure/internal/domain/pause"
)

func (s *Server) handleGetPause(w http.ResponseWriter, r *http.Request) {
	state, err := s.pauses.State(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]any{"active_mask": uint64(state.Active)}
	if state.Proposal != nil {
		resp["proposed_mask"] = uint64(state.Proposal.Mask)
		resp["proposer"] = state.Proposal.Proposer
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProposePause(w http.ResponseWriter, r *http.Request) {
	mask, ok := decodeMask(w, r)
	if !ok {
		return
	}

	if err := s.pauses.Propose(r.Context(), identityFrom(r), mask); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "proposed"})
}

func (s *Server) handleConfirmPause(w http.ResponseWriter, r *http.Request) {
	mask, ok := decodeMask(w, r)
	if !ok {
		return
	}

	if err := s.pauses.Confirm(r.Context(), identityFrom(r), mask); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "active"})
}

func (s *Server) handleCancelPause(w http.ResponseWriter, r *http.Request) {
	if err := s.pauses.CancelProposal(r.Context(), identityFrom(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleGroupsCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.groups.GroupsCount(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"groups_count": count})
}

func (s *Server) handleListAssessors(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupID")
	if !ok {
		return
	}

	seats, err := s.groups.ListSeats(r.Context(), groupID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"seat_ids": seats})
}

func (s *Server) handleAddAssessors(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupID")
	if !ok {
		return
	}
	seatIDs, ok := decodeSeatIDs(w, r)
	if !ok {
		return
	}

	if err := s.groups.AddAssessors(r.Context(), identityFrom(r), groupID, seatIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *Server) handleRemoveAssessor(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupID")
	if !ok {
		return
	}

	if err := s.groups.RemoveAssessor(r.Context(), identityFrom(r), groupID, chi.URLParam(r, "seatID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) handleSetAssessingGroups(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductTypeIDs []uint32 `json:"product_type_ids"`
		GroupID        uint64   `json:"group_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return
	}

	if err := s.groups.SetAssessingGroups(r.Context(), identityFrom(r), req.ProductTypeIDs, req.GroupID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "mapped"})
}

func (s *Server) handleUndoVotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SeatID   string   `json:"seat_id"`
		ClaimIDs []uint64 `json:"claim_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return
	}

	if err := s.remediation.UndoVotes(r.Context(), identityFrom(r), req.SeatID, req.ClaimIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "undone"})
}

func (s *Server) handleExtendVoting(w http.ResponseWriter, r *http.Request) {
	claimID, ok := parseID(w, r, "claimID")
	if !ok {
		return
	}

	if err := s.remediation.ExtendVotingPeriod(r.Context(), identityFrom(r), claimID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "extended"})
}

func (s *Server) handleRemediationAddAssessors(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupID")
	if !ok {
		return
	}
	seatIDs, ok := decodeSeatIDs(w, r)
	if !ok {
		return
	}

	if err := s.remediation.AddAssessors(r.Context(), identityFrom(r), groupID, seatIDs); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

func (s *Server) handleRemediationRemoveAssessor(w http.ResponseWriter, r *http.Request) {
	groupID, ok := parseID(w, r, "groupID")
	if !ok {
		return
	}

	if err := s.remediation.RemoveAssessor(r.Context(), identityFrom(r), groupID, chi.URLParam(r, "seatID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func decodeMask(w http.ResponseWriter, r *http.Request) (pause.Category, bool) {
	var req struct {
		Mask uint64 `json:"mask"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return 0, false
	}
	return pause.Category(req.Mask), true
}

func decodeSeatIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req struct {
		SeatIDs []string `json:"seat_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {Code: "bad_request", Message: "invalid JSON body"}})
		return nil, false
	}
	return req.SeatIDs, true
}
