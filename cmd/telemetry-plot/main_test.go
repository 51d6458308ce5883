package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"racing-line-follower/internal/telemetry"
)

func openStore(t *testing.T) *telemetry.Store {
	t.Helper()
	store, err := telemetry.OpenStore(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRenderSession(t *testing.T) {
	store := openStore(t)
	sink, err := telemetry.NewStoreSink(store, "test")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		sink.Emit(telemetry.Record{X: float64(i), Velocity: 100, TargetVelocity: 420})
	}
	require.Zero(t, sink.Failed())

	out := filepath.Join(t.TempDir(), "charts.html")
	n, err := renderSession(store, sink.Session(), out)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Trajectory")
}

func TestRenderSessionBadOutput(t *testing.T) {
	store := openStore(t)
	sink, err := telemetry.NewStoreSink(store, "test")
	require.NoError(t, err)

	_, err = renderSession(store, sink.Session(), filepath.Join(t.TempDir(), "missing", "charts.html"))
	assert.Error(t, err)
}
