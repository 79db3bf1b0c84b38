package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"stakesure/internal/bootstrap/config"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/event"
	"stakesure/internal/infrastructure/collaborators"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "stakesure/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "stakesure/internal/infrastructure/persistence/sqlite/uow"
	"stakesure/internal/ports"
	"stakesure/internal/usecase/assessment"
	"stakesure/internal/usecase/ledger"
	"stakesure/internal/usecase/pausegate"
	"stakesure/internal/usecase/registry"
	"stakesure/internal/usecase/remediation"
)

const (
	testCoverID  = uint64(101)
	testClaimant = "member-1"
	testDeposit  = uint64(50)
	testAmount   = uint64(1000)

	votingPeriod     = 72 * time.Hour
	cooldownPeriod   = 24 * time.Hour
	redemptionPeriod = 336 * time.Hour
)

type fixture struct {
	clock       *ports.FixedClock
	covers      *collaborators.MemoryCoverLedger
	assets      *collaborators.MemoryAssetBook
	assessments ports.AssessmentRepository
	ledger      *ledger.Service
	engine      *assessment.Service
	pauses      *pausegate.Service
	groups      *registry.Service
	remediation *remediation.Service
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "claims.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Claim{}, &model.Assessment{}, &model.Vote{},
		&model.AssessorGroup{}, &model.AssessorSeat{}, &model.ProductTypeGroup{},
		&model.PauseState{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	clock := &ports.FixedClock{Instant: time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)}
	uow := sqliteuow.NewUnitOfWork(db)
	bus := event.NewBus(prometheus.NewRegistry())

	cfg := config.Config{
		Governance: config.GovernanceConfig{
			Governors:       []string{"gov-1"},
			EmergencyAdmins: []string{"admin-1", "admin-2"},
		},
		Assessment: config.AssessmentConfig{
			ProductTypes: []config.ProductTypeConfig{{
				ID:               1,
				Asset:            "USDC",
				VotingPeriod:     votingPeriod,
				CooldownPeriod:   cooldownPeriod,
				RedemptionPeriod: redemptionPeriod,
				ClaimDeposit:     testDeposit,
			}},
		},
	}

	covers := collaborators.NewMemoryCoverLedger()
	assets := collaborators.NewMemoryAssetBook()
	covers.SetCover(testCoverID, testClaimant, 1)
	assets.Credit("USDC", testClaimant, 10_000)

	claimRepo := sqliterepo.NewClaimRepository(db)
	assessmentRepo := sqliterepo.NewAssessmentRepository(db)
	groupRepo := sqliterepo.NewGroupRepository(db)
	pauseRepo := sqliterepo.NewPauseRepository(db)

	pauses := pausegate.NewService(pauseRepo, uow, cfg.Governance, bus)
	groups := registry.NewService(groupRepo, uow, cfg.Governance)
	engine := assessment.NewService(assessmentRepo, groupRepo, pauses, clock, uow, bus)
	ledgerSvc := ledger.NewService(claimRepo, engine, groupRepo, covers, assets, pauses, clock, uow, bus, cfg)
	remediationSvc := remediation.NewService(assessmentRepo, ledgerSvc, groups, pauses, uow, cfg.Governance, bus)

	ctx := context.Background()
	if err := groups.AddAssessors(ctx, "gov-1", 1, []string{"seat-1", "seat-2", "seat-3", "seat-4"}); err != nil {
		t.Fatalf("seed assessor group: %v", err)
	}
	if err := groups.SetAssessingGroups(ctx, "gov-1", []uint32{1}, 1); err != nil {
		t.Fatalf("route product type: %v", err)
	}

	return &fixture{
		clock:       clock,
		covers:      covers,
		assets:      assets,
		assessments: assessmentRepo,
		ledger:      ledgerSvc,
		engine:      engine,
		pauses:      pauses,
		groups:      groups,
		remediation: remediationSvc,
	}
}

func (f *fixture) submit(t *testing.T) uint64 {
	t.Helper()
	claimID, err := f.ledger.Submit(context.Background(), testClaimant, testCoverID, testAmount, "ipfs://proof")
	if err != nil {
		t.Fatalf("submit claim: %v", err)
	}
	return claimID
}

func (f *fixture) vote(t *testing.T, claimID uint64, seatID string, accept bool) {
	t.Helper()
	if err := f.engine.CastVote(context.Background(), seatID, claimID, accept, ""); err != nil {
		t.Fatalf("vote %s on claim %d: %v", seatID, claimID, err)
	}
}

// setPause drives the full two-admin interlock to the given active mask.
func (f *fixture) setPause(t *testing.T, mask pause.Category) {
	t.Helper()
	ctx := context.Background()
	if err := f.pauses.Propose(ctx, "admin-1", mask); err != nil {
		t.Fatalf("propose pause %#x: %v", uint64(mask), err)
	}
	if err := f.pauses.Confirm(ctx, "admin-2", mask); err != nil {
		t.Fatalf("confirm pause %#x: %v", uint64(mask), err)
	}
}

func (f *fixture) details(t *testing.T, claimID uint64) ledger.Details {
	t.Helper()
	details, err := f.ledger.Details(context.Background(), claimID)
	if err != nil {
		t.Fatalf("claim details: %v", err)
	}
	return details
}

func TestAcceptedClaimPaysAmountPlusDeposit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	if got := f.assets.Balance("USDC", testClaimant); got != 10_000-testDeposit {
		t.Fatalf("balance after deposit = %d, want %d", got, 10_000-testDeposit)
	}

	f.vote(t, claimID, "seat-1", true)
	f.vote(t, claimID, "seat-2", true)
	f.vote(t, claimID, "seat-3", true)
	f.vote(t, claimID, "seat-4", false)

	if d := f.details(t, claimID); d.Status != domain.StatusVoting || d.Outcome != domain.OutcomeAccepted {
		t.Fatalf("mid-vote details = %s/%s", d.Status, d.Outcome)
	}
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("early redeem error = %v, want ErrClaimNotRedeemable", err)
	}

	f.clock.Advance(votingPeriod + cooldownPeriod)
	if d := f.details(t, claimID); d.Status != domain.StatusFinalized || d.Outcome != domain.OutcomeAccepted {
		t.Fatalf("finalized details = %s/%s", d.Status, d.Outcome)
	}

	if err := f.ledger.Redeem(ctx, testClaimant, claimID); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if got := f.assets.Balance("USDC", testClaimant); got != 10_000+testAmount {
		t.Fatalf("balance after redeem = %d, want %d", got, 10_000+testAmount)
	}
	if got := f.assets.Burned(testCoverID); got != testAmount {
		t.Fatalf("burned stake = %d, want %d", got, testAmount)
	}

	// Sticky flag: a second redemption must fail and move no funds.
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("double redeem error = %v, want ErrClaimNotRedeemable", err)
	}
	if got := f.assets.Balance("USDC", testClaimant); got != 10_000+testAmount {
		t.Fatalf("balance after double redeem = %d", got)
	}
}

func TestDrawRefundsOnlyDeposit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", true)
	f.vote(t, claimID, "seat-2", true)
	f.vote(t, claimID, "seat-3", false)
	f.vote(t, claimID, "seat-4", false)

	f.clock.Advance(votingPeriod + cooldownPeriod)
	if d := f.details(t, claimID); d.Outcome != domain.OutcomeDraw {
		t.Fatalf("outcome = %s, want draw", d.Outcome)
	}

	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("redeem on draw error = %v, want ErrClaimNotRedeemable", err)
	}

	if err := f.ledger.RetrieveDeposit(ctx, testClaimant, claimID); err != nil {
		t.Fatalf("retrieve deposit: %v", err)
	}
	if got := f.assets.Balance("USDC", testClaimant); got != 10_000 {
		t.Fatalf("balance after retrieval = %d, want 10000", got)
	}
	if got := f.assets.Burned(testCoverID); got != 0 {
		t.Fatalf("burned stake on draw = %d, want 0", got)
	}

	if err := f.ledger.RetrieveDeposit(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotADraw) {
		t.Fatalf("double retrieval error = %v, want ErrClaimNotADraw", err)
	}
}

func TestDeniedClaimForfeitsDeposit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", false)
	f.vote(t, claimID, "seat-2", false)
	f.vote(t, claimID, "seat-3", true)

	f.clock.Advance(votingPeriod + cooldownPeriod)
	if d := f.details(t, claimID); d.Outcome != domain.OutcomeDenied {
		t.Fatalf("outcome = %s, want denied", d.Outcome)
	}

	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("redeem error = %v, want ErrClaimNotRedeemable", err)
	}
	if err := f.ledger.RetrieveDeposit(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotADraw) {
		t.Fatalf("retrieve error = %v, want ErrClaimNotADraw", err)
	}
	if got := f.assets.Balance("USDC", testClaimant); got != 10_000-testDeposit {
		t.Fatalf("balance = %d, deposit must stay forfeited", got)
	}
}

func TestRedemptionDeadlineBoundary(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", true)

	// Land exactly on the redemption deadline: still redeemable.
	f.clock.Advance(votingPeriod + cooldownPeriod + redemptionPeriod)
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); err != nil {
		t.Fatalf("redeem at deadline: %v", err)
	}

	f2 := setupFixture(t)
	claimID = f2.submit(t)
	f2.vote(t, claimID, "seat-1", true)

	f2.clock.Advance(votingPeriod + cooldownPeriod + redemptionPeriod + time.Nanosecond)
	if err := f2.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("redeem past deadline error = %v, want ErrClaimNotRedeemable", err)
	}
}

func TestRemediationFlipsDerivedOutcome(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", true)
	f.vote(t, claimID, "seat-2", true)
	f.vote(t, claimID, "seat-3", false)

	f.clock.Advance(votingPeriod + cooldownPeriod)
	if d := f.details(t, claimID); d.Outcome != domain.OutcomeAccepted {
		t.Fatalf("pre-remediation outcome = %s, want accepted", d.Outcome)
	}

	// Remediation demands the pause first.
	if err := f.remediation.UndoVotes(ctx, "gov-1", "seat-1", []uint64{claimID}); err == nil {
		t.Fatal("undo without pause must fail")
	} else {
		var notPaused *pause.NotPausedError
		if !errors.As(err, &notPaused) {
			t.Fatalf("undo without pause error = %v, want NotPausedError", err)
		}
	}

	f.setPause(t, pause.Assessments)
	if err := f.remediation.UndoVotes(ctx, "gov-1", "seat-1", []uint64{claimID}); err != nil {
		t.Fatalf("undo votes: %v", err)
	}
	if err := f.remediation.ExtendVotingPeriod(ctx, "gov-1", claimID); err != nil {
		t.Fatalf("extend voting: %v", err)
	}
	f.setPause(t, 0)

	// Voting is open again; the replacement vote flips the tally.
	if d := f.details(t, claimID); d.Status != domain.StatusVoting {
		t.Fatalf("post-extension status = %s, want voting", d.Status)
	}
	f.vote(t, claimID, "seat-4", false)

	f.clock.Advance(votingPeriod + cooldownPeriod)
	if d := f.details(t, claimID); d.Outcome != domain.OutcomeDenied {
		t.Fatalf("post-remediation outcome = %s, want denied", d.Outcome)
	}
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("redeem on flipped claim error = %v, want ErrClaimNotRedeemable", err)
	}
}

func TestRemediationAfterRedemptionIsEconomicallyInert(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", true)
	f.clock.Advance(votingPeriod + cooldownPeriod)
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); err != nil {
		t.Fatalf("redeem: %v", err)
	}
	settled := f.assets.Balance("USDC", testClaimant)

	f.setPause(t, pause.Assessments)
	if err := f.remediation.UndoVotes(ctx, "gov-1", "seat-1", []uint64{claimID}); err != nil {
		t.Fatalf("undo votes on settled claim: %v", err)
	}
	if err := f.remediation.ExtendVotingPeriod(ctx, "gov-1", claimID); err != nil {
		t.Fatalf("extend settled claim: %v", err)
	}
	f.setPause(t, 0)

	// The tally changed but the sticky flag blocks any second payout.
	f.vote(t, claimID, "seat-2", true)
	f.clock.Advance(votingPeriod + cooldownPeriod)
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.Is(err, domain.ErrClaimNotRedeemable) {
		t.Fatalf("re-redeem error = %v, want ErrClaimNotRedeemable", err)
	}
	if got := f.assets.Balance("USDC", testClaimant); got != settled {
		t.Fatalf("balance moved from %d to %d during inert remediation", settled, got)
	}
}

func TestPauseBlocksSubmissionAndVoting(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)
	f.setPause(t, pause.Claims|pause.Assessments)

	var paused *pause.PausedError
	if _, err := f.ledger.Submit(ctx, testClaimant, testCoverID, testAmount, ""); !errors.As(err, &paused) {
		t.Fatalf("submit while paused error = %v, want PausedError", err)
	}
	if err := f.engine.CastVote(ctx, "seat-1", claimID, true, ""); !errors.As(err, &paused) {
		t.Fatalf("vote while paused error = %v, want PausedError", err)
	}

	// The global bit alone blocks everything too.
	f.setPause(t, pause.Global)
	if err := f.ledger.Redeem(ctx, testClaimant, claimID); !errors.As(err, &paused) {
		t.Fatalf("redeem under global pause error = %v, want PausedError", err)
	}

	f.setPause(t, 0)
	f.vote(t, claimID, "seat-1", true)
}

func TestSubmitRejectsNonOwnerAndLiveClaim(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Submit(ctx, "member-2", testCoverID, testAmount, ""); !errors.Is(err, domain.ErrNotCoverOwner) {
		t.Fatalf("non-owner submit error = %v, want ErrNotCoverOwner", err)
	}

	f.submit(t)
	if _, err := f.ledger.Submit(ctx, testClaimant, testCoverID, testAmount, ""); !errors.Is(err, domain.ErrClaimAlreadyOpen) {
		t.Fatalf("second live claim error = %v, want ErrClaimAlreadyOpen", err)
	}
}

func TestDeniedClaimFreesCoverForResubmission(t *testing.T) {
	f := setupFixture(t)

	claimID := f.submit(t)
	f.vote(t, claimID, "seat-1", false)
	f.clock.Advance(votingPeriod + cooldownPeriod)

	// The denial finalized; the cover takes a fresh claim.
	second := f.submit(t)
	if second == claimID {
		t.Fatalf("second submission reused claim id %d", claimID)
	}
}

func TestFailedDepositCollectionRollsBackClaim(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.covers.SetCover(202, "member-poor", 1)
	_, err := f.ledger.Submit(ctx, "member-poor", 202, testAmount, "")
	if !errors.Is(err, domain.ErrDepositNotCovered) || !errors.Is(err, ports.ErrInsufficientFund) {
		t.Fatalf("underfunded submit error = %v, want ErrDepositNotCovered wrapping ErrInsufficientFund", err)
	}

	claims, err := f.ledger.List(ctx)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	if len(claims) != 0 {
		t.Fatalf("rolled-back submission left %d claims", len(claims))
	}
}

func TestVoteRules(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	claimID := f.submit(t)

	if err := f.engine.CastVote(ctx, "outsider", claimID, true, ""); !errors.Is(err, domain.ErrNotAssessor) {
		t.Fatalf("outsider vote error = %v, want ErrNotAssessor", err)
	}

	// Re-voting replaces the old contribution instead of stacking.
	f.vote(t, claimID, "seat-1", true)
	f.vote(t, claimID, "seat-1", false)
	tally, err := f.engine.Tally(ctx, claimID)
	if err != nil {
		t.Fatalf("tally: %v", err)
	}
	if tally.AcceptWeight != 0 || tally.DenyWeight != 1 {
		t.Fatalf("tally after re-vote = %d/%d, want 0/1", tally.AcceptWeight, tally.DenyWeight)
	}

	count, err := f.assessments.CountVotes(ctx, claimID)
	if err != nil {
		t.Fatalf("count votes: %v", err)
	}
	if count != tally.AcceptWeight+tally.DenyWeight {
		t.Fatalf("weight sum %d != stored votes %d", tally.AcceptWeight+tally.DenyWeight, count)
	}

	f.clock.Advance(votingPeriod)
	if err := f.engine.CastVote(ctx, "seat-2", claimID, true, ""); !errors.Is(err, domain.ErrVotingPeriodEnded) {
		t.Fatalf("late vote error = %v, want ErrVotingPeriodEnded", err)
	}
}

func TestRemediationRequiresGovernorAndMembershipPause(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	if err := f.remediation.UndoVotes(ctx, "member-1", "seat-1", []uint64{1}); !errors.Is(err, domain.ErrOnlyGovernor) {
		t.Fatalf("non-governor undo error = %v, want ErrOnlyGovernor", err)
	}

	var notPaused *pause.NotPausedError
	if err := f.remediation.RemoveAssessor(ctx, "gov-1", 1, "seat-1"); !errors.As(err, &notPaused) {
		t.Fatalf("unpaused removal error = %v, want NotPausedError", err)
	}

	f.setPause(t, pause.Membership)
	if err := f.remediation.RemoveAssessor(ctx, "gov-1", 1, "seat-1"); err != nil {
		t.Fatalf("remove assessor under pause: %v", err)
	}
	if err := f.remediation.AddAssessors(ctx, "gov-1", 1, []string{"seat-5"}); err != nil {
		t.Fatalf("add assessor under pause: %v", err)
	}

	seats, err := f.groups.ListSeats(ctx, 1)
	if err != nil {
		t.Fatalf("list seats: %v", err)
	}
	for _, seat := range seats {
		if seat == "seat-1" {
			t.Fatal("seat-1 still present after removal")
		}
	}
}
