package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stricttuple/internal/logging"
)

func TestFileWatcherReportsChange(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "records.yaml", pointRecords)
	other := writeFile(t, dir, "other.yaml", "")

	w, err := newFileWatcher([]string{target})
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.run(ctx, 10*time.Millisecond, logging.NewNop(), func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(target, []byte("- record: Point\n  values: {x: 1, y: 1}\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	_, err := newFileWatcher([]string{filepath.Join(t.TempDir(), "missing", "records.yaml")})
	require.Error(t, err)
}

func TestCheckWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	schema := writeFile(t, dir, "schema.yaml", pointSchemaYAML)
	records := writeFile(t, dir, "records.yaml", "- record: Point\n  values: {x: 1, y: 1}\n")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cmd := NewCheckCommand(&RootOptions{Format: "text"})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--watch", schema, records})

	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), "1 accepted, 0 rejected")
}
