package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAppendWritesDateNamedFile(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil)
	day := time.Date(2024, 3, 9, 10, 30, 0, 0, time.UTC)
	w.now = func() time.Time { return day }

	require.NoError(t, w.Append("term created id=1 name=Recursion"))
	require.NoError(t, w.Append("term deleted\nid=1"))

	raw, err := os.ReadFile(filepath.Join(dir, "audit-2024-03-09.log"))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09T10:30:00Z term created id=1 name=Recursion\n2024-03-09T10:30:00Z term deleted id=1\n", string(raw))
}

func TestAppendRollsOverByDay(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, nil)
	w.now = func() time.Time { return time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC) }
	require.NoError(t, w.Append("first"))
	w.now = func() time.Time { return time.Date(2024, 3, 10, 0, 1, 0, 0, time.UTC) }
	require.NoError(t, w.Append("second"))

	assert.FileExists(t, filepath.Join(dir, "audit-2024-03-09.log"))
	assert.FileExists(t, filepath.Join(dir, "audit-2024-03-10.log"))
}

func TestRecordReportsFailureWithoutPanicking(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	w := New(file, zap.New(core))
	w.Record("term created id=2")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "audit log write failed", logs.All()[0].Message)
}

func TestNilWriterIsNoop(t *testing.T) {
	var w *Writer
	assert.NotPanics(t, func() { w.Record("ignored") })
}
