package pausegate_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"stakesure/internal/bootstrap/config"
	domain "stakesure/internal/domain/claims"
	"stakesure/internal/domain/pause"
	"stakesure/internal/event"
	"stakesure/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "stakesure/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "stakesure/internal/infrastructure/persistence/sqlite/uow"
	"stakesure/internal/usecase/pausegate"
)

func setupPauseGate(t *testing.T) *pausegate.Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pause.sqlite")
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
	if err := db.AutoMigrate(&model.PauseState{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	governance := config.GovernanceConfig{EmergencyAdmins: []string{"admin-1", "admin-2"}}
	bus := event.NewBus(prometheus.NewRegistry())
	return pausegate.NewService(sqliterepo.NewPauseRepository(db), sqliteuow.NewUnitOfWork(db), governance, bus)
}

func TestTwoAdminInterlock(t *testing.T) {
	svc := setupPauseGate(t)
	ctx := context.Background()

	// Nothing changes until the second admin confirms.
	if err := svc.Propose(ctx, "admin-1", pause.Claims); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if err := svc.RequireNotPaused(ctx, pause.Claims); err != nil {
		t.Fatalf("proposal alone must not pause: %v", err)
	}

	if err := svc.Confirm(ctx, "admin-1", pause.Claims); !errors.Is(err, pause.ErrSameAdmin) {
		t.Fatalf("same-admin confirm error = %v, want ErrSameAdmin", err)
	}
	if err := svc.Confirm(ctx, "admin-2", pause.Claims|pause.Assessments); !errors.Is(err, pause.ErrConfirmationMismatch) {
		t.Fatalf("mismatched confirm error = %v, want ErrConfirmationMismatch", err)
	}

	if err := svc.Confirm(ctx, "admin-2", pause.Claims); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	var paused *pause.PausedError
	if err := svc.RequireNotPaused(ctx, pause.Claims); !errors.As(err, &paused) {
		t.Fatalf("gate after activation error = %v, want PausedError", err)
	}
	if err := svc.RequireNotPaused(ctx, pause.Assessments); err != nil {
		t.Fatalf("unrelated category must stay open: %v", err)
	}
	if err := svc.RequirePaused(ctx, pause.Claims); err != nil {
		t.Fatalf("RequirePaused on active category: %v", err)
	}
}

func TestConfirmWithoutProposal(t *testing.T) {
	svc := setupPauseGate(t)

	if err := svc.Confirm(context.Background(), "admin-2", pause.Claims); !errors.Is(err, pause.ErrNoProposal) {
		t.Fatalf("confirm without proposal error = %v, want ErrNoProposal", err)
	}
}

func TestCancelDropsProposal(t *testing.T) {
	svc := setupPauseGate(t)
	ctx := context.Background()

	if err := svc.Propose(ctx, "admin-1", pause.Global); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if err := svc.CancelProposal(ctx, "admin-2"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.Confirm(ctx, "admin-2", pause.Global); !errors.Is(err, pause.ErrNoProposal) {
		t.Fatalf("confirm after cancel error = %v, want ErrNoProposal", err)
	}

	// Cancelling again stays a no-op.
	if err := svc.CancelProposal(ctx, "admin-1"); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
}

func TestOnlyEmergencyAdminsTouchThePause(t *testing.T) {
	svc := setupPauseGate(t)
	ctx := context.Background()

	if err := svc.Propose(ctx, "member-1", pause.Claims); !errors.Is(err, domain.ErrOnlyEmergencyAdmin) {
		t.Fatalf("outsider propose error = %v, want ErrOnlyEmergencyAdmin", err)
	}
	if err := svc.Confirm(ctx, "member-1", pause.Claims); !errors.Is(err, domain.ErrOnlyEmergencyAdmin) {
		t.Fatalf("outsider confirm error = %v, want ErrOnlyEmergencyAdmin", err)
	}
	if err := svc.CancelProposal(ctx, "member-1"); !errors.Is(err, domain.ErrOnlyEmergencyAdmin) {
		t.Fatalf("outsider cancel error = %v, want ErrOnlyEmergencyAdmin", err)
	}
}
