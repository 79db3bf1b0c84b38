package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"stakesure/internal/bootstrap/logging"
	"stakesure/internal/errs"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Governance GovernanceConfig `mapstructure:"governance"`
	Assessment AssessmentConfig `mapstructure:"assessment"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type HTTPConfig struct {
	Listen string `mapstructure:"listen"`
	// Per-identity limits on claim submission and vote casting.
	SubmitPerMinute float64 `mapstructure:"submit_per_minute"`
	VotePerMinute   float64 `mapstructure:"vote_per_minute"`
	RateBurst       int     `mapstructure:"rate_burst"`
}

type NATSConfig struct {
	// Empty URL disables event publishing.
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type GovernanceConfig struct {
	Governors       []string `mapstructure:"governors"`
	EmergencyAdmins []string `mapstructure:"emergency_admins"`
}

func (g GovernanceConfig) IsGovernor(identity string) bool {
	return contains(g.Governors, identity)
}

func (g GovernanceConfig) IsEmergencyAdmin(identity string) bool {
	return contains(g.EmergencyAdmins, identity)
}

func contains(list []string, want string) bool {
	for _, item := range list {
		if item == want {
			return true
		}
	}
	return false
}

type AssessmentConfig struct {
	ProductTypes []ProductTypeConfig `mapstructure:"product_types"`
}

// ProductTypeConfig fixes the assessment parameters for every claim
// submitted on a cover of this product type. The redemption period and
// deposit are captured on the claim at submission time.
type ProductTypeConfig struct {
	ID               uint32        `mapstructure:"id"`
	Asset            string        `mapstructure:"asset"`
	VotingPeriod     time.Duration `mapstructure:"voting_period"`
	CooldownPeriod   time.Duration `mapstructure:"cooldown_period"`
	RedemptionPeriod time.Duration `mapstructure:"redemption_period"`
	ClaimDeposit     uint64        `mapstructure:"claim_deposit"`
}

// ProductType looks up assessment parameters by product type id.
func (c Config) ProductType(id uint32) (ProductTypeConfig, bool) {
	for _, pt := range c.Assessment.ProductTypes {
		if pt.ID == id {
			return pt, true
		}
	}
	return ProductTypeConfig{}, false
}

func Load(ctx context.Context, configFile string) (Config, error) {
	if ctx == nil {
		return Config{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Config{}, errs.Wrap(err, "check context")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.config"))

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("STAKESURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Keep default and env-backed config when no file is provided.
			logging.Warn(logCtx, "config file not found, fallback to defaults and env")
		} else {
			return Config{}, errs.Wrap(err, "read config")
		}
	} else {
		logging.Info(logCtx, "using config file", slog.String("path", v.ConfigFileUsed()))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errs.Wrap(err, "unmarshal config")
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	logging.Info(
		logCtx,
		"config loaded",
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Int("product_types", len(cfg.Assessment.ProductTypes)),
	)

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}

	seen := make(map[uint32]struct{}, len(cfg.Assessment.ProductTypes))
	for _, pt := range cfg.Assessment.ProductTypes {
		if _, dup := seen[pt.ID]; dup {
			return fmt.Errorf("assessment.product_types: duplicate id %d", pt.ID)
		}
		seen[pt.ID] = struct{}{}

		if pt.VotingPeriod <= 0 || pt.CooldownPeriod <= 0 || pt.RedemptionPeriod <= 0 {
			return fmt.Errorf("assessment.product_types: id %d needs positive periods", pt.ID)
		}
		if pt.Asset == "" {
			return fmt.Errorf("assessment.product_types: id %d needs an asset", pt.ID)
		}
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stakesure")
	v.SetDefault("app.env", "local")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", ".stakesure/state/claims.sqlite")
	v.SetDefault("http.listen", ":8480")
	v.SetDefault("http.submit_per_minute", 6.0)
	v.SetDefault("http.vote_per_minute", 30.0)
	v.SetDefault("http.rate_burst", 5)
	v.SetDefault("nats.subject_prefix", "claims.events")
}
