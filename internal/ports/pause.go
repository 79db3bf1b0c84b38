package ports

import (
	"context"

	"stakesure/internal/domain/pause"
)

// PauseRepository persists the single pause configuration row.
type PauseRepository interface {
	GetPauseState(ctx context.Context) (pause.State, error)
	SavePauseState(ctx context.Context, state pause.State) error
}

// PauseGate is the capability check shared by every gated component. It is
// injected rather than reached for globally so tests can substitute it.
type PauseGate interface {
	// RequireNotPaused fails with *pause.PausedError when the category (or
	// the global bit) is paused.
	RequireNotPaused(ctx context.Context, category pause.Category) error
	// RequirePaused fails with *pause.NotPausedError unless the category (or
	// the global bit) is actively paused. Remediation runs behind this gate.
	RequirePaused(ctx context.Context, category pause.Category) error
}
