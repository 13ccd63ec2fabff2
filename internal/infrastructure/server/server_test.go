package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"cafe-api/internal/infrastructure/config"
	"cafe-api/internal/infrastructure/database/memory"
)

func memoryConfig() *config.Config {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = time.Second
	cfg.Database.Driver = config.DriverMemory
	return cfg
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s := NewServer(WithConfig(memoryConfig()), WithLogger(zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.Equal(t, 1, logs.FilterMessage("shutting down server").Len())
}

func TestOpenStore(t *testing.T) {
	repo, closeStore, err := openStore(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer closeStore()
	assert.IsType(t, &memory.CoffeeRepository{}, repo)

	cfg := memoryConfig()
	cfg.Database.Driver = "sqlite"
	_, _, err = openStore(context.Background(), cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}
