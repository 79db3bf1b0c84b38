package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"stakesure/internal/api"
	"stakesure/internal/bootstrap/config"
	"stakesure/internal/bootstrap/database"
	"stakesure/internal/bootstrap/logging"
	"stakesure/internal/event"
	cacheinfra "stakesure/internal/infrastructure/cache"
	"stakesure/internal/infrastructure/collaborators"
	sqliterepo "stakesure/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "stakesure/internal/infrastructure/persistence/sqlite/uow"
	"stakesure/internal/ports"
	"stakesure/internal/usecase/assessment"
	"stakesure/internal/usecase/ledger"
	"stakesure/internal/usecase/pausegate"
	"stakesure/internal/usecase/registry"
	"stakesure/internal/usecase/remediation"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewClaimRepository,
			fx.As(new(ports.ClaimRepository)),
		),
		fx.Annotate(
			sqliterepo.NewAssessmentRepository,
			fx.As(new(ports.AssessmentRepository)),
		),
		fx.Annotate(
			sqliterepo.NewGroupRepository,
			fx.As(new(ports.GroupRepository)),
		),
		fx.Annotate(
			sqliterepo.NewPauseRepository,
			fx.As(new(ports.PauseRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideCache),
	fx.Provide(prometheus.NewRegistry),
	fx.Provide(provideBus),
	fx.Provide(func() ports.Clock { return ports.SystemClock{} }),
	fx.Provide(func(cfg config.Config) config.GovernanceConfig { return cfg.Governance }),
	fx.Provide(func(cfg config.Config) config.HTTPConfig { return cfg.HTTP }),
	fx.Provide(collaborators.NewMemoryCoverLedger),
	fx.Provide(collaborators.NewMemoryAssetBook),
	fx.Provide(provideCoverOwnership),
	fx.Provide(func(book *collaborators.MemoryAssetBook) ports.AssetTransfer { return book }),
	fx.Provide(pausegate.NewService),
	fx.Provide(func(s *pausegate.Service) ports.PauseGate { return s }),
	fx.Provide(registry.NewService),
	fx.Provide(assessment.NewService),
	fx.Provide(func(s *assessment.Service) ledger.Engine { return s }),
	fx.Provide(ledger.NewService),
	fx.Provide(func(s *ledger.Service) remediation.Ledger { return s }),
	fx.Provide(func(s *registry.Service) remediation.Registry { return s }),
	fx.Provide(remediation.NewService),
	fx.Provide(api.NewServer),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideCache() ports.Cache {
	return cacheinfra.NewMemoryCache(time.Hour, 10*time.Minute)
}

func provideBus(promRegistry *prometheus.Registry) *event.Bus {
	return event.NewBus(promRegistry)
}

func provideCoverOwnership(ledger *collaborators.MemoryCoverLedger, cache ports.Cache) ports.CoverOwnership {
	return collaborators.NewCachedCoverOwnership(ledger, cache)
}
