package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/logging"
	"github.com/probelab/recallbench/persona"
	"github.com/probelab/recallbench/pipeline"
	"github.com/probelab/recallbench/scenario"
	"github.com/probelab/recallbench/verify"
)

// Short mode bounds, applied without changing pipeline semantics.
const (
	shortMaxPersonas        = 2
	shortTargetPerPersona   = 1
	defaultWorkers          = 4
	defaultTargetPerPersona = 5
	defaultUseCaseFactor    = 2
)

// Options configures an Orchestrator.
type Options struct {
	// Workers bounds concurrent pipeline invocations.
	Workers int
	// TargetPerPersona is the accepted-item goal per collection.
	TargetPerPersona int
	// UseCaseFactor scales proposals per missing item to absorb
	// rejections and abandonments.
	UseCaseFactor int
	// Categories restricts the run; nil means every registered category.
	Categories []scenario.Category
	// Short shrinks persona and target counts for diagnostic runs.
	Short bool
	// Registry resolves scenario categories.
	Registry *scenario.Registry
	// Stats is the run-scoped statistics context.
	Stats *core.RunStats
	// Logger for run progress.
	Logger logging.Logger
}

// Orchestrator drives generation across personas. Public methods are safe
// for concurrent use, though a single Run per orchestrator is the intended
// shape.
type Orchestrator struct {
	pipe   *pipeline.Pipeline
	source persona.Source
	items  core.ItemStore

	workers          int
	targetPerPersona int
	useCaseFactor    int
	categories       []scenario.Category
	short            bool
	registry         *scenario.Registry
	stats            *core.RunStats
	logger           logging.Logger
}

// New constructs an Orchestrator with optional overrides.
func New(pipe *pipeline.Pipeline, source persona.Source, items core.ItemStore, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		Workers:          defaultWorkers,
		TargetPerPersona: defaultTargetPerPersona,
		UseCaseFactor:    defaultUseCaseFactor,
		Registry:         scenario.DefaultRegistry(),
		Stats:            core.NewRunStats(),
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	categories := opts.Categories
	if len(categories) == 0 {
		categories = opts.Registry.Categories()
	}

	return &Orchestrator{
		pipe:             pipe,
		source:           source,
		items:            items,
		workers:          opts.Workers,
		targetPerPersona: opts.TargetPerPersona,
		useCaseFactor:    opts.UseCaseFactor,
		categories:       categories,
		short:            opts.Short,
		registry:         opts.Registry,
		stats:            opts.Stats,
		logger:           opts.Logger,
	}
}

// Stats exposes the run-scoped statistics context.
func (o *Orchestrator) Stats() *core.RunStats { return o.stats }

// unit is one scheduled pipeline invocation.
type unit struct {
	persona core.Persona
	useCase core.UseCase
	budget  *atomic.Int64
	key     core.CollectionKey
}

// Run generates evidence items until every (persona, category) collection
// reached its target or its proposed use cases ran out. Fatal conditions
// abort the run; everything else is local to one unit.
func (o *Orchestrator) Run(ctx context.Context) error {
	personas, err := o.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}

	target := o.targetPerPersona
	if o.short {
		if len(personas) > shortMaxPersonas {
			personas = personas[:shortMaxPersonas]
		}
		if target > shortTargetPerPersona {
			target = shortTargetPerPersona
		}
		o.logger.Info("short mode active", "personas", len(personas), "target_per_persona", target)
	}

	units, err := o.plan(ctx, personas, target)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		o.logger.Info("all collections already at target, nothing to generate")
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, u := range units {
		g.Go(func() error {
			return o.runUnit(gctx, u)
		})
	}

	if err := g.Wait(); err != nil {
		o.logger.Error("run aborted", "error", err)
		return err
	}

	o.logger.Info("run finished\n" + o.stats.Report())
	return nil
}

// plan computes the remaining work per (persona, category) collection,
// proposing use cases only for collections below target. Resume semantics
// come from counting what the store already holds.
func (o *Orchestrator) plan(ctx context.Context, personas []core.Persona, target int) ([]unit, error) {
	var units []unit

	for _, p := range personas {
		for _, cat := range o.categories {
			spec, err := o.registry.Resolve(cat)
			if err != nil {
				return nil, err
			}

			key := spec.Key(p.ID)
			have, err := o.items.Count(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("count persisted items: %w", err)
			}

			remaining := target - have
			if remaining <= 0 {
				o.logger.Debug("collection already at target",
					"category", string(cat), "persona_id", p.ID, "have", have)
				continue
			}

			useCases, err := o.pipe.ProposeUseCases(ctx, p, spec, remaining*o.useCaseFactor)
			if err != nil {
				if core.IsFatal(err) {
					return nil, err
				}
				o.logger.Warn("use case proposal failed, skipping collection",
					"category", string(cat), "persona_id", p.ID, "error", err)
				continue
			}

			budget := &atomic.Int64{}
			budget.Store(int64(remaining))
			for _, uc := range useCases {
				units = append(units, unit{persona: p, useCase: uc, budget: budget, key: key})
			}
		}
	}

	return units, nil
}

// runUnit drives one use case through the pipeline and persists an accepted
// item if its collection still needs one.
func (o *Orchestrator) runUnit(ctx context.Context, u unit) error {
	if u.budget.Load() <= 0 {
		// Collection already filled by peer units.
		return nil
	}

	res, err := o.pipe.Run(ctx, u.persona, u.useCase)
	if err != nil {
		// Pipeline errors are fatal by contract; bubble to abort the run.
		return err
	}

	if res.Outcome != pipeline.OutcomeAccepted {
		return nil
	}

	if u.budget.Add(-1) < 0 {
		o.logger.Debug("target reached, dropping surplus item",
			"item_id", res.Item.ID, "persona_id", u.persona.ID)
		return nil
	}

	if err := o.items.Append(ctx, u.key, *res.Item); err != nil {
		return fmt.Errorf("persist evidence item %s: %w", res.Item.ID, err)
	}
	o.stats.Accepted.Add(1)

	o.logger.Info("evidence item accepted",
		"item_id", res.Item.ID, "category", res.Item.Category, "persona_id", u.persona.ID)
	return nil
}

// ReevalReport summarizes one re-evaluation sweep over persisted items.
type ReevalReport struct {
	Total   int
	Correct int
	// Incorrect holds the ids of items whose cached answer no longer grades
	// as correct against the reference.
	Incorrect []string
}

// Reevaluate grades previously cached model answers against every persisted
// item. Every persisted item id must be present in cached; a miss means the
// cache and the store have diverged, which makes any aggregate score
// meaningless, so it aborts the sweep with a fatal diagnostic.
func (o *Orchestrator) Reevaluate(ctx context.Context, cached map[string]string, judge *verify.RubricPolicy) (*ReevalReport, error) {
	personas, err := o.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}

	report := &ReevalReport{}

	for _, p := range personas {
		for _, cat := range o.categories {
			spec, err := o.registry.Resolve(cat)
			if err != nil {
				return nil, err
			}

			items, err := o.items.Load(ctx, spec.Key(p.ID))
			if err != nil {
				return nil, fmt.Errorf("load persisted items: %w", err)
			}

			policy := scenario.Policy(spec, judge)
			for _, item := range items {
				answer, ok := cached[item.ID]
				if !ok {
					return nil, core.Fatalf(
						"cached answer missing for item %s: cache holds %d answers, known ids include %v",
						item.ID, len(cached), sampleKeys(cached, 5))
				}

				graded, err := policy.Grade(ctx, item.Question, answer, item.Answer)
				if err != nil {
					return nil, fmt.Errorf("grade item %s: %w", item.ID, err)
				}

				report.Total++
				if graded.Correct {
					report.Correct++
				} else {
					report.Incorrect = append(report.Incorrect, item.ID)
				}
			}
		}
	}

	o.logger.Info("re-evaluation finished",
		"total", report.Total, "correct", report.Correct, "incorrect", len(report.Incorrect))
	return report, nil
}

func sampleKeys(m map[string]string, n int) []string {
	keys := make([]string, 0, n)
	for k := range m {
		if len(keys) == n {
			break
		}
		keys = append(keys, k)
	}
	return keys
}
