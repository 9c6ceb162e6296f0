package recallbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/recallbench/config"
	"github.com/probelab/recallbench/core"
	"github.com/probelab/recallbench/model"
)

func TestRetryMiddleware_CallBudgetSpansModels(t *testing.T) {
	cfg := config.Default()
	cfg.MaxModelCalls = 1

	wrap := retryMiddleware(cfg, core.NewRunStats())
	gen := wrap(model.NewMockModel("gen", "mock"))
	ans := wrap(model.NewMockModel("ans", "mock"))

	_, err := gen.Generate(context.Background(), model.Request{Prompt: "p"})
	require.NoError(t, err)

	// The answerer draws from the same budget as the generator.
	_, err = ans.Generate(context.Background(), model.Request{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, core.IsFatal(err))
	assert.Contains(t, err.Error(), "exceeded max generator calls")
}

func TestRetryMiddleware_UnlimitedByDefault(t *testing.T) {
	wrap := retryMiddleware(config.Default(), core.NewRunStats())
	m := wrap(model.NewMockModel("gen", "mock"))

	for i := 0; i < 10; i++ {
		_, err := m.Generate(context.Background(), model.Request{Prompt: "p"})
		require.NoError(t, err)
	}
}
