package outcome

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vuhung16au/DVAPI/internal/challenges"
	"github.com/vuhung16au/DVAPI/internal/exploitlog"
	"github.com/vuhung16au/DVAPI/internal/flag"
	"github.com/vuhung16au/DVAPI/internal/schema"
)

// Where a result's status came from.
const (
	SourceRecord = "record"
	SourceLog    = "log"
	SourceNone   = "none"
)

// Collector reads challenge artifacts from one logs directory.
type Collector struct {
	LogsDir string
	log     *logrus.Entry
}

func NewCollector(logsDir string, log *logrus.Entry) *Collector {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Collector{LogsDir: logsDir, log: log.WithField("logs_dir", logsDir)}
}

// CollectAll returns one result per catalog challenge, in catalog order.
// Artifacts of unknown challenges are never read.
func (c *Collector) CollectAll() ([]schema.ChallengeResult, error) {
	all := challenges.All()
	results := make([]schema.ChallengeResult, 0, len(all))
	for _, ch := range all {
		res, err := c.Collect(ch)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Collect builds the result of one challenge. Missing files are normal;
// any other read error is returned.
//
// A challenge without a log is not_run. Otherwise the outcome record wins
// when it is at least as new as the log's last modification, and the log
// text is classified when it is not.
func (c *Collector) Collect(ch challenges.Challenge) (schema.ChallengeResult, error) {
	log := c.log.WithField("challenge", ch.ID)
	res := schema.ChallengeResult{
		Challenge:     ch.ID,
		Vulnerability: ch.Name,
		Status:        schema.OutcomeNotRun,
		Source:        SourceNone,
	}

	text, logMod, hasLog, err := readLog(exploitlog.LogPath(c.LogsDir, ch.ID))
	if err != nil {
		return res, fmt.Errorf("read log for %s: %w", ch.ID, err)
	}

	sidecar, hasSidecar, err := readOptional(exploitlog.FlagPath(c.LogsDir, ch.ID))
	if err != nil {
		return res, fmt.Errorf("read flag for %s: %w", ch.ID, err)
	}
	if hasSidecar {
		res.Flag = strings.TrimSpace(sidecar)
	}

	// Without a log the challenge was never run, whatever else is on disk.
	if !hasLog {
		log.Debug("No log, challenge not run")
		return res, nil
	}

	rec, hasRecord, err := exploitlog.LoadRecord(c.LogsDir, ch.ID)
	switch {
	case errors.Is(err, exploitlog.ErrMalformedRecord):
		log.WithError(err).Warn("Ignoring outcome record")
	case err != nil:
		return res, fmt.Errorf("load record for %s: %w", ch.ID, err)
	}
	// A record older than the last log write describes an earlier attempt.
	if hasRecord && rec.RecordedAt.Before(logMod) {
		log.WithFields(logrus.Fields{
			"recorded_at": rec.RecordedAt,
			"log_mod":     logMod,
		}).Debug("Ignoring stale outcome record")
		hasRecord = false
	}

	if hasRecord {
		res.Status = rec.Status
		res.Source = SourceRecord
	} else {
		res.Status = Classify(text)
		res.Source = SourceLog
	}

	switch {
	case hasSidecar:
	case hasRecord && rec.Flag != "":
		res.Flag = rec.Flag
	default:
		res.Flag = flag.Extract(text)
	}

	res.Notes = Notes(text)

	log.WithFields(logrus.Fields{
		"status": res.Status,
		"source": res.Source,
		"flag":   res.Flag != "",
	}).Debug("Collected challenge")
	return res, nil
}

func readLog(path string) (string, time.Time, bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, err
	}
	text, ok, err := readOptional(path)
	return text, info.ModTime(), ok, err
}

func readOptional(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}
