package monitoring

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestArtifactWatcherWarnsOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	watched := filepath.Join(dir, "dt1.json")
	other := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(watched, []byte("[]"), 0o600))

	core, logs := observer.New(zapcore.WarnLevel)
	metrics := NewMetricsCollector()
	changed := make(chan string, 4)

	w, err := NewArtifactWatcher(WatcherConfig{
		Paths:    []string{watched},
		Debounce: 200 * time.Millisecond,
		Logger:   zap.New(core),
		Metrics:  metrics,
		OnChange: func(path string) { changed <- path },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte(`{"nodes": []}`), 0o600))
	require.NoError(t, os.WriteFile(watched, []byte(`{"nodes": [{}]}`), 0o600))

	select {
	case path := <-changed:
		abs, _ := filepath.Abs(watched)
		assert.Equal(t, abs, path)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	require.NoError(t, <-done)

	assert.Empty(t, changed, "writes within the debounce window are reported once")
	require.Equal(t, 1, logs.FilterMessage("artifact changed on disk; restart to load it").Len())
	assert.Equal(t, 1.0, metrics.Value(MetricArtifactChanges, map[string]string{"path": "dt1.json"}))
}

func TestNewArtifactWatcherMissingDirectory(t *testing.T) {
	_, err := NewArtifactWatcher(WatcherConfig{
		Paths: []string{filepath.Join(t.TempDir(), "missing", "dt1.json")},
	})
	assert.Error(t, err)
}
