package event

// Payload structs are what downstream consumers (payout processors,
// operator tooling) receive, so field names are part of the contract.

type ClaimSubmitted struct {
	ClaimID uint64 `json:"claim_id"`
	CoverID uint64 `json:"cover_id"`
	Amount  uint64 `json:"amount"`
	Asset   string `json:"asset"`
}

type VoteCast struct {
	ClaimID uint64 `json:"claim_id"`
	SeatID  string `json:"seat_id"`
	Accept  bool   `json:"accept"`
}

type PayoutRedeemed struct {
	ClaimID uint64 `json:"claim_id"`
	Amount  uint64 `json:"amount"`
	Asset   string `json:"asset"`
}

type DepositRetrieved struct {
	ClaimID uint64 `json:"claim_id"`
	Deposit uint64 `json:"deposit"`
	Asset   string `json:"asset"`
}

type PauseChanged struct {
	ActiveMask uint64 `json:"active_mask"`
}

type VotesUndone struct {
	SeatID   string   `json:"seat_id"`
	ClaimIDs []uint64 `json:"claim_ids"`
}

type VotingExtended struct {
	ClaimID uint64 `json:"claim_id"`
}
