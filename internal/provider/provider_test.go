package provider_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/petasbytes/toolagent/internal/config"
	"github.com/petasbytes/toolagent/internal/provider"
	"github.com/petasbytes/toolagent/memory"
	"github.com/petasbytes/toolagent/tools"
)

func TestNew_SelectsProvider(t *testing.T) {
	mc := config.Default().Model

	m, err := provider.New(mc, "k", zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &provider.Anthropic{}, m)

	mc.Provider = config.ProviderOpenRouter
	m, err = provider.New(mc, "k", nil)
	require.NoError(t, err)
	assert.IsType(t, &provider.OpenRouter{}, m)

	mc.Provider = "carrier-pigeon"
	_, err = provider.New(mc, "k", nil)
	require.Error(t, err)
}

func TestRateLimited_ZeroIsPassthrough(t *testing.T) {
	inner := provider.ModelFunc(func(context.Context, []memory.Message, []tools.Schema) (provider.Reply, error) {
		return provider.PlainAnswer{Text: "x"}, nil
	})
	m := provider.RateLimited(inner, 0)
	reply, err := m.Complete(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, provider.PlainAnswer{Text: "x"}, reply)
}

func TestRateLimited_WaitHonorsContext(t *testing.T) {
	var calls atomic.Int32
	inner := provider.ModelFunc(func(context.Context, []memory.Message, []tools.Schema) (provider.Reply, error) {
		calls.Add(1)
		return provider.PlainAnswer{}, nil
	})
	m := provider.RateLimited(inner, 1)

	_, err := m.Complete(context.Background(), nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Complete(ctx, nil, nil)
	require.Error(t, err, "second request within the minute must wait past the deadline")
	assert.EqualValues(t, 1, calls.Load())
}
