// Package pause models the emergency-pause bitmask and the two-admin
// interlock that guards changes to it. The state machine is
// Idle -> Proposed(by, mask) -> Active(mask); a confirm must come from a
// different admin than the proposer and must repeat the exact mask.
package pause

import "fmt"

// Category is a bitmask of pausable subsystems. The global bit is a
// superset: when set, every gated operation is blocked regardless of the
// specific category bits.
type Category uint64

const (
	Global Category = 1 << iota
	Claims
	Assessments
	Membership
)

var categoryNames = map[Category]string{
	Global:      "global",
	Claims:      "claims",
	Assessments: "assessments",
	Membership:  "membership",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("mask(%#x)", uint64(c))
}

// Has reports whether all bits of other are set in c.
func (c Category) Has(other Category) bool {
	return c&other == other
}

// Proposal is a pending mask change awaiting confirmation by a second admin.
type Proposal struct {
	Proposer string
	Mask     Category
}

// State is the full pause configuration: the active mask plus at most one
// pending proposal. The zero value is "nothing paused, nothing proposed".
type State struct {
	Active   Category
	Proposal *Proposal
}

// Propose records a pending mask change, overwriting any unconfirmed prior
// proposal.
func (s State) Propose(admin string, mask Category) State {
	s.Proposal = &Proposal{Proposer: admin, Mask: mask}
	return s
}

// Confirm applies the pending proposal. The confirmer must differ from the
// proposer and must pass the identical mask.
func (s State) Confirm(admin string, mask Category) (State, error) {
	if s.Proposal == nil {
		return s, ErrNoProposal
	}
	if s.Proposal.Proposer == admin {
		return s, ErrSameAdmin
	}
	if s.Proposal.Mask != mask {
		return s, fmt.Errorf("%w: proposed %#x, confirmed %#x", ErrConfirmationMismatch, uint64(s.Proposal.Mask), uint64(mask))
	}

	s.Active = mask
	s.Proposal = nil
	return s, nil
}

// Cancel drops any pending proposal. Cancelling with none pending is a
// no-op so retried governance transactions stay safe.
func (s State) Cancel() State {
	s.Proposal = nil
	return s
}

// RequireNotPaused fails when the active mask blocks the given category,
// either through the global bit or the category's own bit.
func (s State) RequireNotPaused(category Category) error {
	if s.Active.Has(Global) || s.Active.Has(category) {
		return &PausedError{Active: s.Active, Required: category}
	}
	return nil
}

// RequirePaused is the inverse gate used by remediation: the category (or
// the global bit) must be actively paused before the operation may run.
func (s State) RequirePaused(category Category) error {
	if s.Active.Has(Global) || s.Active.Has(category) {
		return nil
	}
	return &NotPausedError{Active: s.Active, Required: category}
}
