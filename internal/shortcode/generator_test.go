package shortcode

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func neverExists(context.Context, string) (bool, error) { return false, nil }

func TestGetCode_SynchronousWhenEmpty(t *testing.T) {
	g := NewGenerator(neverExists, zap.NewNop().Sugar())

	code, err := g.GetCode(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(Charset, r))
	}
}

func TestGetCode_SkipsTakenAliases(t *testing.T) {
	var calls atomic.Int32
	exists := func(context.Context, string) (bool, error) {
		// 前三次都冲突
		return calls.Add(1) <= 3, nil
	}
	g := NewGenerator(exists, zap.NewNop().Sugar())

	code, err := g.GetCode(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, CodeLength)
	assert.Equal(t, int32(4), calls.Load())
}

func TestGetCode_StorageError(t *testing.T) {
	g := NewGenerator(func(context.Context, string) (bool, error) {
		return false, errors.New("db down")
	}, zap.NewNop().Sugar())

	_, err := g.GetCode(context.Background())
	assert.Error(t, err)
}

func TestStartFillsChannel(t *testing.T) {
	g := NewGenerator(neverExists, zap.NewNop().Sugar())
	g.Start()
	defer g.Stop()

	assert.Eventually(t, func() bool {
		return len(g.codeChan) == ChannelBufferSize
	}, 2*time.Second, 10*time.Millisecond)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := g.GetCode(context.Background())
		require.NoError(t, err)
		assert.False(t, seen[code], "别名不应重复")
		seen[code] = true
	}

	g.Stop()
	g.Stop()
}
