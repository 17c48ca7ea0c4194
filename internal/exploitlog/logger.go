// Package exploitlog implements the per-challenge log convention shared by
// exploit scripts and the report generator: an append-only text log, an
// optional flag sidecar and an optional structured outcome record, all kept
// in one logs directory.
package exploitlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vuhung16au/DVAPI/internal/schema"
	"github.com/vuhung16au/DVAPI/pkg/utils"
)

// TimestampLayout is the layout of the bracketed prefix of every log line.
const TimestampLayout = "2006-01-02 15:04:05"

// Markers written by the logger and recognised by the classifier.
const (
	SuccessGlyph = "✅"
	FailureGlyph = "❌"
)

var (
	ErrInvalidOutcome  = errors.New("invalid outcome")
	ErrMalformedRecord = errors.New("malformed outcome record")
)

// LogPath returns the log artifact path of a challenge.
func LogPath(dir, challenge string) string {
	return filepath.Join(dir, "exploit-"+utils.SafeName(challenge)+".log")
}

// FlagPath returns the flag sidecar path of a challenge.
func FlagPath(dir, challenge string) string {
	return LogPath(dir, challenge) + ".flag"
}

// RecordPath returns the structured outcome record path of a challenge.
func RecordPath(dir, challenge string) string {
	return LogPath(dir, challenge) + ".result.json"
}

// EnsureDir creates the logs directory. Commands call it once at startup.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create logs dir: %w", err)
	}
	return nil
}

// FormatLine renders one log line without the trailing newline.
func FormatLine(ts time.Time, message string) string {
	return fmt.Sprintf("[%s] %s", ts.UTC().Format(TimestampLayout), message)
}

type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return []byte(FormatLine(e.Time, e.Message) + "\n"), nil
}

// Option customises a Logger.
type Option func(*Logger)

// WithStdout redirects the console copy of each line.
func WithStdout(w io.Writer) Option {
	return func(l *Logger) { l.console.SetOutput(w) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// Logger appends timestamped lines to one challenge's log artifact and
// echoes them to the console.
type Logger struct {
	challenge  string
	logFile    string
	flagFile   string
	recordFile string
	now        func() time.Time
	console    *logrus.Logger
}

// New returns a logger for challenge inside dir. No file is touched until
// the first write.
func New(dir, challenge string, opts ...Option) *Logger {
	console := logrus.New()
	console.SetOutput(os.Stdout)
	console.SetFormatter(lineFormatter{})
	console.SetLevel(logrus.InfoLevel)

	l := &Logger{
		challenge:  challenge,
		logFile:    LogPath(dir, challenge),
		flagFile:   FlagPath(dir, challenge),
		recordFile: RecordPath(dir, challenge),
		now:        time.Now,
		console:    console,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) Challenge() string { return l.challenge }
func (l *Logger) LogFile() string   { return l.logFile }
func (l *Logger) FlagFile() string  { return l.flagFile }

// Log appends "[timestamp] message" to the log artifact, creating it on
// first use, and prints the same line to the console.
func (l *Logger) Log(message string) error {
	ts := l.now()
	l.console.WithTime(ts).Info(message)

	f, err := os.OpenFile(l.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, FormatLine(ts, message)+"\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	return nil
}

// Logf is Log with fmt.Sprintf formatting.
func (l *Logger) Logf(format string, args ...any) error {
	return l.Log(fmt.Sprintf(format, args...))
}

// SaveFlag overwrites the flag sidecar with exactly flag and logs a success
// line. An empty flag is a no-op.
func (l *Logger) SaveFlag(flag string) error {
	if flag == "" {
		return nil
	}
	if err := os.WriteFile(l.flagFile, []byte(flag), 0o644); err != nil {
		return fmt.Errorf("write flag: %w", err)
	}
	return l.Log(fmt.Sprintf("%s FLAG FOUND: %s", SuccessGlyph, flag))
}

// Record writes the structured outcome record for this challenge,
// replacing any previous one.
func (l *Logger) Record(status schema.Outcome, flag string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOutcome, status)
	}
	rec := schema.OutcomeRecord{
		Challenge:  l.challenge,
		Status:     status,
		Flag:       flag,
		RecordedAt: l.now().UTC(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(l.recordFile, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}

// LoadRecord reads the outcome record of a challenge. ok is false when no
// record exists. A record that does not decode or carries an unknown
// status is reported as ErrMalformedRecord.
func LoadRecord(dir, challenge string) (rec schema.OutcomeRecord, ok bool, err error) {
	data, err := os.ReadFile(RecordPath(dir, challenge))
	if errors.Is(err, fs.ErrNotExist) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("read record: %w", err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, false, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	if !rec.Status.Valid() {
		return rec, false, fmt.Errorf("%w: status %q", ErrMalformedRecord, rec.Status)
	}
	return rec, true, nil
}
