// Package auditlog appends timestamped event lines to one file per day.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const fileLayout = "2006-01-02"

// Writer appends audit events to <dir>/audit-YYYY-MM-DD.log.
type Writer struct {
	dir    string
	logger *zap.Logger
	now    func() time.Time

	mu sync.Mutex
}

// New constructs a Writer. The directory is created lazily on first write.
func New(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir, logger: logger, now: time.Now}
}

// Record appends the event. Failures go to the diagnostic logger and are not returned.
func (w *Writer) Record(event string) {
	if w == nil {
		return
	}
	if err := w.Append(event); err != nil {
		w.logger.Warn("audit log write failed", zap.String("event", event), zap.Error(err))
	}
}

// Append writes one line for the event and reports any failure.
func (w *Writer) Append(event string) error {
	ts := w.now()
	line := fmt.Sprintf("%s %s\n", ts.Format(time.RFC3339), strings.ReplaceAll(event, "\n", " "))

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(w.Path(ts), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	if _, err := f.WriteString(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit line: %w", err)
	}
	return f.Close()
}

// Path returns the file that receives events logged at ts.
func (w *Writer) Path(ts time.Time) string {
	return filepath.Join(w.dir, "audit-"+ts.Format(fileLayout)+".log")
}
