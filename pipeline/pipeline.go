package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/logging"
	"github.com/probelab/recallbench/model"
	"github.com/probelab/recallbench/placement"
	"github.com/probelab/recallbench/scenario"
	"github.com/probelab/recallbench/verify"
)

// Outcome classifies how a pipeline run for one use case ended.
type Outcome string

const (
	// OutcomeAccepted means the item passed placement and verification.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeRejected means verification failed; rejection is final, the
	// text is never regenerated to dodge a failed check.
	OutcomeRejected Outcome = "rejected"
	// OutcomeAbandoned means retries were exhausted or generation failed
	// unrecoverably before verification.
	OutcomeAbandoned Outcome = "abandoned"
)

// Result reports one pipeline run.
type Result struct {
	Item             *core.EvidenceItem
	Outcome          Outcome
	FailedCheck      string
	ValidationErrors []string
	Reason           string
}

// Distractor conversations generated for abstention items, which have no
// evidence conversations of their own.
const abstentionDistractors = 2

// Attempts to derive an evidence core before abandoning the use case.
const maxDeriveAttempts = 2

// Options configures a Pipeline.
type Options struct {
	// Registry resolves scenario categories.
	Registry *scenario.Registry
	// MaxPlacementRetries bounds conversation regeneration after a failed
	// placement validation.
	MaxPlacementRetries int
	// Accept is the diversity hook applied to proposed use cases.
	Accept func(core.UseCase) bool
	// Stats receives all counters; required for a real run.
	Stats *core.RunStats
	// Logger for per-step diagnostics.
	Logger logging.Logger
}

// Pipeline turns use cases into verified evidence items. Safe for concurrent
// use: per-call state is private until the caller persists the item.
type Pipeline struct {
	gen      model.Model
	answerer *verify.Answerer
	judge    *verify.RubricPolicy

	registry            *scenario.Registry
	maxPlacementRetries int
	accept              func(core.UseCase) bool
	stats               *core.RunStats
	logger              logging.Logger
}

// New constructs a Pipeline. gen produces scenario content; answerModel
// answers recall questions during verification; judgeModel grades free-form
// answers (falls back to answerModel when nil).
func New(gen, answerModel, judgeModel model.Model, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		Registry:            scenario.DefaultRegistry(),
		MaxPlacementRetries: 3,
		Accept:              func(core.UseCase) bool { return true },
		Stats:               core.NewRunStats(),
		Logger:              logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if judgeModel == nil {
		judgeModel = answerModel
	}

	return &Pipeline{
		gen:                 gen,
		answerer:            verify.NewAnswerer(answerModel),
		judge:               verify.NewRubricPolicy(judgeModel),
		registry:            opts.Registry,
		maxPlacementRetries: opts.MaxPlacementRetries,
		accept:              opts.Accept,
		stats:               opts.Stats,
		logger:              opts.Logger,
	}
}

// ProposeUseCases asks the generator for n scenario proposals for the persona
// under the given category, applying the diversity hook to each.
func (p *Pipeline) ProposeUseCases(ctx context.Context, persona core.Persona, spec scenario.Spec, n int) ([]core.UseCase, error) {
	prompt, err := scenario.ProposePrompt(persona, spec, n)
	if err != nil {
		return nil, err
	}

	resp, err := p.gen.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("propose use cases: %w", err)
	}

	var proposals []struct {
		ScenarioDescription string `json:"scenario_description"`
	}
	if err := model.DecodeJSON(resp.Text, &proposals); err != nil {
		return nil, fmt.Errorf("propose use cases: %w", err)
	}

	var out []core.UseCase
	for _, prop := range proposals {
		if prop.ScenarioDescription == "" {
			continue
		}
		uc := core.UseCase{
			ID:                  uuid.NewString(),
			Category:            string(spec.Category),
			ScenarioDescription: prop.ScenarioDescription,
		}
		if !p.accept(uc) {
			p.logger.Debug("use case rejected for diversity", "use_case_id", uc.ID)
			continue
		}
		p.stats.Proposed.Add(1)
		out = append(out, uc)
	}

	return out, nil
}

// Run drives one use case through the full state machine and returns how it
// ended. Only fatal conditions surface as errors; everything else is a
// Result outcome.
func (p *Pipeline) Run(ctx context.Context, persona core.Persona, uc core.UseCase) (Result, error) {
	spec, err := p.registry.Resolve(scenario.Category(uc.Category))
	if err != nil {
		return Result{}, err
	}

	logger := logging.NewRunLogger(p.logger).WithPersona(persona.ID).WithUseCase(uc.ID)

	ec, err := p.deriveCore(ctx, persona, spec, uc)
	if err != nil {
		if core.IsFatal(err) {
			return Result{}, err
		}
		p.stats.Abandoned.Add(1)
		logger.Warn("use case abandoned at core derivation", "error", err)
		return Result{Outcome: OutcomeAbandoned, Reason: err.Error()}, nil
	}
	p.stats.Drafted.Add(1)

	convs, valErrs, err := p.embedUntilValid(ctx, persona, spec, uc, ec, logger)
	if err != nil {
		if core.IsFatal(err) {
			return Result{}, err
		}
		p.stats.Abandoned.Add(1)
		logger.Warn("use case abandoned at placement", "error", err)
		return Result{Outcome: OutcomeAbandoned, ValidationErrors: valErrs, Reason: err.Error()}, nil
	}

	item := p.assemble(persona, uc, spec, ec, convs)

	policy := scenario.Policy(spec, p.judge)
	verifier := verify.NewVerifier(scenario.Checks(spec, p.answerer, policy), func(o *verify.Options) {
		o.Stats = p.stats
		o.Logger = logger
	})

	outcome, err := verifier.Verify(ctx, item)
	if err != nil {
		if core.IsFatal(err) {
			return Result{}, err
		}
		p.stats.Abandoned.Add(1)
		logger.Warn("use case abandoned during verification", "error", err)
		return Result{Outcome: OutcomeAbandoned, Reason: err.Error()}, nil
	}

	if !outcome.Accepted {
		// A failing check means the text itself is defective; regenerating
		// against a fixed verdict would not fix it.
		p.stats.Rejected.Add(1)
		logger.Info("item rejected by verification", "failed_check", outcome.FailedCheck)
		return Result{Item: &item, Outcome: OutcomeRejected, FailedCheck: outcome.FailedCheck}, nil
	}

	p.stats.Verified.Add(1)
	logger.Info("item verified", "item_id", item.ID)
	return Result{Item: &item, Outcome: OutcomeAccepted}, nil
}

// deriveCore obtains the question/answer/evidence triple for a use case. The
// question and answer are derived once per use case; only conversations are
// ever regenerated.
func (p *Pipeline) deriveCore(ctx context.Context, persona core.Persona, spec scenario.Spec, uc core.UseCase) (core.EvidenceCore, error) {
	prompt, err := scenario.DerivePrompt(persona, spec, uc)
	if err != nil {
		return core.EvidenceCore{}, err
	}

	var lastErr error
	for attempt := 0; attempt < maxDeriveAttempts; attempt++ {
		resp, err := p.gen.Generate(ctx, model.Request{Prompt: prompt})
		if err != nil {
			return core.EvidenceCore{}, fmt.Errorf("derive evidence core: %w", err)
		}

		var ec core.EvidenceCore
		if err := model.DecodeJSON(resp.Text, &ec); err != nil {
			lastErr = fmt.Errorf("derive evidence core: %w", err)
			continue
		}
		if len(ec.EvidenceMessages) != spec.EvidenceCount {
			lastErr = fmt.Errorf("derive evidence core: got %d evidence messages, want %d",
				len(ec.EvidenceMessages), spec.EvidenceCount)
			continue
		}
		if ec.Question == "" || (ec.Answer == "" && spec.Category != scenario.CategoryAbstention) {
			lastErr = fmt.Errorf("derive evidence core: missing question or answer")
			continue
		}
		return ec, nil
	}

	return core.EvidenceCore{}, lastErr
}

// embedUntilValid generates conversations for the core and validates
// placement, regenerating the conversations (never the core) up to the retry
// bound. Returns the last validation errors alongside failure.
func (p *Pipeline) embedUntilValid(
	ctx context.Context,
	persona core.Persona,
	spec scenario.Spec,
	uc core.UseCase,
	ec core.EvidenceCore,
	logger *logging.RunLogger,
) ([]core.Conversation, []string, error) {
	var lastErrs []string

	attempts := p.maxPlacementRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		convs, err := p.embedConversations(ctx, persona, spec, uc, ec)
		if err != nil {
			// An undecodable conversation response costs an attempt like a
			// failed placement; anything else (exhausted provider retries,
			// fatal) ends the use case here.
			var malformed *malformedConversationError
			if errors.As(err, &malformed) {
				lastErrs = []string{err.Error()}
				logger.Debug("conversation generation malformed",
					"attempt", attempt, "error", err)
				continue
			}
			return nil, lastErrs, err
		}

		res := placement.Validate(ec, convs)
		if res.Valid {
			return convs, nil, nil
		}

		lastErrs = res.Errors
		logger.Debug("placement validation failed",
			"attempt", attempt, "categories", res.Categories)
	}

	return nil, lastErrs, fmt.Errorf("placement validation failed after %d attempts", attempts)
}

// embedConversations produces one conversation per evidence message, or
// distractor conversations for abstention scenarios.
func (p *Pipeline) embedConversations(
	ctx context.Context,
	persona core.Persona,
	spec scenario.Spec,
	uc core.UseCase,
	ec core.EvidenceCore,
) ([]core.Conversation, error) {
	if spec.Category == scenario.CategoryAbstention {
		return p.distractorConversations(ctx, persona, ec.Question)
	}

	convs := make([]core.Conversation, 0, len(ec.EvidenceMessages))
	for i, ev := range ec.EvidenceMessages {
		prompt, err := scenario.EmbedPrompt(persona, uc, ev)
		if err != nil {
			return nil, err
		}

		conv, err := p.generateConversation(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("embed evidence message %d: %w", i, err)
		}
		conv.ContainsEvidence = true
		convs = append(convs, conv)
	}

	return convs, nil
}

func (p *Pipeline) distractorConversations(ctx context.Context, persona core.Persona, question string) ([]core.Conversation, error) {
	convs := make([]core.Conversation, 0, abstentionDistractors)
	for i := 0; i < abstentionDistractors; i++ {
		prompt, err := scenario.DistractorPrompt(persona, question)
		if err != nil {
			return nil, err
		}

		conv, err := p.generateConversation(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("generate distractor conversation %d: %w", i, err)
		}
		convs = append(convs, conv)
	}
	return convs, nil
}

// malformedConversationError marks a conversation response the model produced
// but that could not be decoded. It consumes a placement attempt instead of
// abandoning the use case outright.
type malformedConversationError struct {
	err error
}

func (e *malformedConversationError) Error() string { return e.err.Error() }

func (e *malformedConversationError) Unwrap() error { return e.err }

func (p *Pipeline) generateConversation(ctx context.Context, prompt string) (core.Conversation, error) {
	resp, err := p.gen.Generate(ctx, model.Request{Prompt: prompt})
	if err != nil {
		return core.Conversation{}, err
	}

	var payload struct {
		Messages []core.Message `json:"messages"`
	}
	if err := model.DecodeJSON(resp.Text, &payload); err != nil {
		return core.Conversation{}, &malformedConversationError{err: err}
	}
	if len(payload.Messages) == 0 {
		return core.Conversation{}, &malformedConversationError{err: fmt.Errorf("generated conversation is empty")}
	}

	return core.Conversation{ID: uuid.NewString(), Messages: payload.Messages}, nil
}

func (p *Pipeline) assemble(
	persona core.Persona,
	uc core.UseCase,
	spec scenario.Spec,
	ec core.EvidenceCore,
	convs []core.Conversation,
) core.EvidenceItem {
	return core.EvidenceItem{
		ID:                  uuid.NewString(),
		EvidenceCore:        ec,
		Conversations:       convs,
		Category:            string(spec.Category),
		ScenarioDescription: uc.ScenarioDescription,
		PersonaID:           persona.ID,
	}
}
