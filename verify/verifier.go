package verify

import (
	"context"
	"fmt"

	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/logging"
)

// Outcome aggregates the results of one verification pass over an item.
type Outcome struct {
	Accepted    bool          `json:"accepted"`
	FailedCheck string        `json:"failed_check,omitempty"`
	Results     []CheckResult `json:"results"`
}

// Options configures a Verifier.
type Options struct {
	// Stats receives (attempts, passes) per check; nil disables recording.
	Stats *core.RunStats
	// Logger for per-check diagnostics.
	Logger logging.Logger
}

// Verifier runs an ordered list of checks against an evidence item. The item
// is accepted only if every check passes; the first failing check stops the
// pass and its name is recorded for diagnostics.
type Verifier struct {
	checks []Check
	stats  *core.RunStats
	logger logging.Logger
}

// NewVerifier constructs a Verifier over an ordered check list.
func NewVerifier(checks []Check, optFns ...func(o *Options)) *Verifier {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Verifier{checks: checks, stats: opts.Stats, logger: opts.Logger}
}

// Verify runs every check in order. A returned error means a check could not
// be run at all (exhausted provider retries); it is not a rejection.
func (v *Verifier) Verify(ctx context.Context, item core.EvidenceItem) (Outcome, error) {
	outcome := Outcome{Accepted: true}

	for _, check := range v.checks {
		result, err := check.Verify(ctx, item)
		if err != nil {
			return Outcome{}, fmt.Errorf("check %s: %w", check.Name(), err)
		}

		if v.stats != nil {
			v.stats.RecordCheck(check.Name(), result.Passed)
		}
		outcome.Results = append(outcome.Results, result)

		v.logger.Debug("verification check finished",
			"check", check.Name(), "item_id", item.ID, "passed", result.Passed)

		if !result.Passed {
			outcome.Accepted = false
			outcome.FailedCheck = check.Name()
			return outcome, nil
		}
	}

	return outcome, nil
}
