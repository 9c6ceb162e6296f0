// Package recallbench provides a high-level façade over the generation
// pipeline and orchestrator for building memory-recall benchmark datasets.
// Most applications interact with this package by:
//  1. Loading a config.Config (YAML file plus flag overrides)
//  2. Creating a RecallBench via New() (optionally overriding stores, models
//     or the logger)
//  3. Calling Run() to generate and certify evidence collections, or
//     Reevaluate() to re-grade cached answers against persisted items
//
// The façade delegates generation to pipeline.Pipeline and scheduling to
// orchestrator.Orchestrator while keeping setup ergonomics concise. Defaults
// are safe for local runs; production runs typically supply an on-disk item
// store, API credentials via the environment and a structured logger.
package recallbench

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"golang.org/x/time/rate"

	"github.com/probelab/recallbench/config"
	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/logging"
	"github.com/probelab/recallbench/model"
	"github.com/probelab/recallbench/model/anthropic"
	"github.com/probelab/recallbench/model/openai"
	"github.com/probelab/recallbench/orchestrator"
	"github.com/probelab/recallbench/persona"
	"github.com/probelab/recallbench/pipeline"
	"github.com/probelab/recallbench/scenario"
	"github.com/probelab/recallbench/store"
	"github.com/probelab/recallbench/verify"
)

// Options configures the RecallBench instance beyond what config.Config
// carries. Any unset service is initialized from the config.
type Options struct {
	// Generator produces use cases, evidence cores and conversations.
	// Defaults to the provider named in the config, wrapped in retry
	// middleware.
	Generator model.Model

	// Answerer answers recall questions during verification and acts as the
	// rubric judge. Defaults to the config's answer model, or the generator's
	// provider when unset.
	Answerer model.Model

	// Items persists accepted evidence collections. Defaults to a JSONL
	// store under the config's output directory.
	Items core.ItemStore

	// Personas supplies the persona roster. Defaults to the YAML file named
	// in the config.
	Personas persona.Source

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// RecallBench is the high-level façade aggregating the pipeline, the
// orchestrator and the run-scoped statistics.
type RecallBench struct {
	cfg   config.Config
	orch  *orchestrator.Orchestrator
	judge *verify.RubricPolicy
	stats *core.RunStats
}

// New assembles a RecallBench from the config with optional overrides.
func New(cfg config.Config, optFns ...func(o *Options)) (*RecallBench, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	stats := core.NewRunStats()
	wrap := retryMiddleware(cfg, stats)

	if opts.Generator == nil {
		backend, err := providerModel(cfg.Provider, cfg.ModelID)
		if err != nil {
			return nil, err
		}
		opts.Generator = wrap(backend)
	}
	if opts.Answerer == nil {
		id := cfg.AnswerModelID
		if id == "" {
			id = cfg.ModelID
		}
		backend, err := providerModel(cfg.Provider, id)
		if err != nil {
			return nil, err
		}
		opts.Answerer = wrap(backend)
	}
	if opts.Items == nil {
		items, err := store.NewJSONLStore(cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		opts.Items = items
	}
	if opts.Personas == nil {
		opts.Personas = persona.NewFileSource(cfg.PersonasPath)
	}

	categories, err := resolveCategories(cfg.Categories)
	if err != nil {
		return nil, err
	}

	pipe := pipeline.New(opts.Generator, opts.Answerer, opts.Answerer, func(o *pipeline.Options) {
		o.MaxPlacementRetries = cfg.MaxPlacementRetries
		o.Stats = stats
		o.Logger = opts.Logger
	})

	orch := orchestrator.New(pipe, opts.Personas, opts.Items, func(o *orchestrator.Options) {
		o.Workers = cfg.Workers
		o.TargetPerPersona = cfg.TargetPerPersona
		o.UseCaseFactor = cfg.UseCaseFactor
		o.Categories = categories
		o.Short = cfg.Short
		o.Stats = stats
		o.Logger = opts.Logger
	})

	return &RecallBench{
		cfg:   cfg,
		orch:  orch,
		judge: verify.NewRubricPolicy(opts.Answerer),
		stats: stats,
	}, nil
}

// Run generates evidence items until every configured collection reaches its
// target, resuming from whatever the item store already holds.
func (rb *RecallBench) Run(ctx context.Context) error {
	return rb.orch.Run(ctx)
}

// Reevaluate grades the cached answers (item id to answer text) against the
// persisted collections and reports aggregate correctness.
func (rb *RecallBench) Reevaluate(ctx context.Context, cached map[string]string) (*orchestrator.ReevalReport, error) {
	return rb.orch.Reevaluate(ctx, cached, rb.judge)
}

// Stats exposes the run-scoped statistics shared by the pipeline and the
// orchestrator.
func (rb *RecallBench) Stats() *core.RunStats { return rb.stats }

func providerModel(provider, modelID string) (model.Model, error) {
	switch provider {
	case "anthropic":
		return anthropic.NewModel(func(o *anthropic.Options) {
			if modelID != "" {
				o.Model = anthropicsdk.Model(modelID)
			}
		}), nil
	case "openai":
		return openai.NewModel(func(o *openai.Options) {
			if modelID != "" {
				o.Model = modelID
			}
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// retryMiddleware builds the retry wrapper applied to every default backend.
// The call budget and rate limit are constructed once and shared, so
// MaxModelCalls and RequestsPerSecond bound the whole run, not each model.
func retryMiddleware(cfg config.Config, stats *core.RunStats) func(model.Model) model.Model {
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	var calls *core.CallLimiter
	if cfg.MaxModelCalls > 0 {
		calls = core.NewCallLimiter(cfg.MaxModelCalls)
	}

	return func(backend model.Model) model.Model {
		return model.NewRetryModel(backend, func(o *model.RetryOptions) {
			o.Limiter = limiter
			o.CallLimiter = calls
			o.Stats = stats
		})
	}
}

func resolveCategories(names []string) ([]scenario.Category, error) {
	registry := scenario.DefaultRegistry()
	out := make([]scenario.Category, 0, len(names))
	for _, name := range names {
		c := scenario.Category(name)
		if _, err := registry.Resolve(c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
