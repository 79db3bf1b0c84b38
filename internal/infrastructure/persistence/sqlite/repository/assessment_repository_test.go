package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"stakesure/internal/ports"
)

func TestAssessmentRoundTrip(t *testing.T) {
	repo := NewAssessmentRepository(setupDB(t))
	ctx := context.Background()
	votingEnd := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)

	if err := repo.CreateAssessment(ctx, ports.Assessment{
		ClaimID:        1,
		GroupID:        7,
		VotingEnd:      votingEnd,
		CooldownPeriod: 24 * time.Hour,
	}); err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	got, err := repo.GetAssessment(ctx, 1)
	if err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if got.GroupID != 7 || got.CooldownPeriod != 24*time.Hour {
		t.Fatalf("assessment = %+v", got)
	}
	if !got.VotingEnd.Equal(votingEnd) {
		t.Fatalf("voting end = %s, want %s", got.VotingEnd, votingEnd)
	}

	if _, err := repo.GetAssessment(ctx, 404); !errors.Is(err, ports.ErrAssessmentNotFound) {
		t.Fatalf("missing assessment error = %v, want ErrAssessmentNotFound", err)
	}
}

func TestUpdateWeightsAndVotingEnd(t *testing.T) {
	repo := NewAssessmentRepository(setupDB(t))
	ctx := context.Background()

	if err := repo.CreateAssessment(ctx, ports.Assessment{ClaimID: 1, GroupID: 1}); err != nil {
		t.Fatalf("create assessment: %v", err)
	}

	if err := repo.UpdateWeights(ctx, 1, 3, 2); err != nil {
		t.Fatalf("update weights: %v", err)
	}
	newEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := repo.SetVotingEnd(ctx, 1, newEnd); err != nil {
		t.Fatalf("set voting end: %v", err)
	}

	got, err := repo.GetAssessment(ctx, 1)
	if err != nil {
		t.Fatalf("get assessment: %v", err)
	}
	if got.AcceptWeight != 3 || got.DenyWeight != 2 {
		t.Fatalf("weights = %d/%d", got.AcceptWeight, got.DenyWeight)
	}
	if !got.VotingEnd.Equal(newEnd) {
		t.Fatalf("voting end = %s", got.VotingEnd)
	}

	if err := repo.UpdateWeights(ctx, 404, 1, 1); !errors.Is(err, ports.ErrAssessmentNotFound) {
		t.Fatalf("update missing error = %v, want ErrAssessmentNotFound", err)
	}
	if err := repo.SetVotingEnd(ctx, 404, newEnd); !errors.Is(err, ports.ErrAssessmentNotFound) {
		t.Fatalf("set missing error = %v, want ErrAssessmentNotFound", err)
	}
}

func TestVoteUpsertAndDelete(t *testing.T) {
	repo := NewAssessmentRepository(setupDB(t))
	ctx := context.Background()
	castAt := time.Date(2026, 1, 3, 9, 0, 0, 0, time.UTC)

	if err := repo.UpsertVote(ctx, ports.Vote{ClaimID: 1, SeatID: "seat-1", Accept: true, CastAt: castAt}); err != nil {
		t.Fatalf("insert vote: %v", err)
	}
	// Upsert on the same (claim, seat) key overwrites instead of duplicating.
	if err := repo.UpsertVote(ctx, ports.Vote{ClaimID: 1, SeatID: "seat-1", Accept: false, ProofRef: "ipfs://new", CastAt: castAt}); err != nil {
		t.Fatalf("overwrite vote: %v", err)
	}

	got, err := repo.GetVote(ctx, 1, "seat-1")
	if err != nil {
		t.Fatalf("get vote: %v", err)
	}
	if got.Accept || got.ProofRef != "ipfs://new" {
		t.Fatalf("vote = %+v", got)
	}

	count, err := repo.CountVotes(ctx, 1)
	if err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != 1 {
		t.Fatalf("vote count = %d, want 1", count)
	}

	if err := repo.DeleteVote(ctx, 1, "seat-1"); err != nil {
		t.Fatalf("delete vote: %v", err)
	}
	if _, err := repo.GetVote(ctx, 1, "seat-1"); !errors.Is(err, ports.ErrVoteNotFound) {
		t.Fatalf("deleted vote error = %v, want ErrVoteNotFound", err)
	}
	// Deleting again is a no-op.
	if err := repo.DeleteVote(ctx, 1, "seat-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}
