package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/psyscore/psyscore/internal/logging"
	"github.com/psyscore/psyscore/pkg/assessment"
	"github.com/psyscore/psyscore/pkg/config"
	"github.com/psyscore/psyscore/pkg/instrument"
	"github.com/psyscore/psyscore/pkg/scoring"
)

// globalOpts holds the persistent flags shared by every subcommand.
type globalOpts struct {
	configPath   string
	catalogPath  string
	lengthPolicy string
	logLevel     string
}

// env is the wired set of components a subcommand runs against.
type env struct {
	cfg       *config.Config
	log       *zap.Logger
	catalog   *instrument.Catalog
	calc      *scoring.Calculator
	evaluator *assessment.Evaluator
}

func setup(g *globalOpts) (*env, error) {
	cfg, err := loadConfig(g.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Scoring.CatalogPath = firstNonEmpty(g.catalogPath, cfg.Scoring.CatalogPath)
	cfg.Scoring.LengthPolicy = firstNonEmpty(g.lengthPolicy, cfg.Scoring.LengthPolicy)
	cfg.Logging.Level = firstNonEmpty(g.logLevel, cfg.Logging.Level)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalog(cfg.Scoring.CatalogPath)
	if err != nil {
		return nil, err
	}

	policy, err := scoring.ParseLengthPolicy(cfg.Scoring.LengthPolicy)
	if err != nil {
		return nil, err
	}

	calc := scoring.NewCalculator(catalog,
		scoring.WithLengthPolicy(policy),
		scoring.WithLogger(log.Named("scoring")),
	)

	log.Debug("initialized",
		zap.Int("instruments", catalog.Len()),
		zap.String("length_policy", string(policy)),
	)

	return &env{
		cfg:       cfg,
		log:       log,
		catalog:   catalog,
		calc:      calc,
		evaluator: assessment.NewEvaluator(calc, log.Named("assessment")),
	}, nil
}

func (e *env) close() {
	_ = e.log.Sync()
}

// loadConfig reads an explicit config path, or discovers one from the
// working directory upward. With neither, defaults apply.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			path = config.FindConfigFile(cwd)
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func loadCatalog(path string) (*instrument.Catalog, error) {
	if path == "" {
		return instrument.Default()
	}
	return instrument.LoadFile(path)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
