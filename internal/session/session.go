package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"physiobids/internal/bidspath"
	"physiobids/internal/config"
	"physiobids/internal/fileutil"
	"physiobids/internal/journal"
	"physiobids/internal/logging"
	"physiobids/internal/output"
	"physiobids/internal/physio"
	"physiobids/internal/pipeline"
	"physiobids/internal/plot"
	"physiobids/internal/recording"
	"physiobids/internal/runmeta"
	"physiobids/internal/segment"
	"physiobids/internal/trigger"
)

// lockFileName guards a physio directory against concurrent conversions.
const lockFileName = ".physiobids.lock"

// Converter orchestrates conversions for one configuration.
type Converter struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *journal.Store
}

// New builds a Converter. store may be nil when journaling is disabled.
func New(cfg *config.Config, logger *slog.Logger, store *journal.Store) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{cfg: cfg, logger: logger, store: store}
}

// Convert processes one physio directory into the BIDS tree. The returned
// Report is non-nil whenever the session progressed far enough to identify
// itself, including aborted sessions.
func (c *Converter) Convert(ctx context.Context, physioRoot, bidsRoot string) (*Report, error) {
	id, err := bidspath.ParseIdentity(physioRoot)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrValidation, "session", "parse identity", "", err)
	}

	correlationID := uuid.NewString()
	ctx = pipeline.WithSubject(ctx, id.Subject)
	ctx = pipeline.WithSession(ctx, id.Session)
	ctx = pipeline.WithCorrelationID(ctx, correlationID)
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "session")

	report := &Report{Identity: id, CorrelationID: correlationID}

	lock := flock.New(filepath.Join(physioRoot, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return report, pipeline.Wrap(pipeline.ErrTransient, "session", "acquire lock", "", err)
	}
	if !locked {
		return report, pipeline.Wrap(pipeline.ErrTransient, "session", "acquire lock",
			"another conversion holds the session lock", nil)
	}
	defer func() { _ = lock.Unlock() }()

	task := bidspath.TaskLabel(c.cfg.Runs.Task)
	recPath, err := c.findRecording(physioRoot, id, task)
	if err != nil {
		return c.abort(ctx, report, 0, err)
	}
	report.RecordingPath = recPath

	rec, err := recording.Load(recPath)
	if err != nil {
		return c.abort(ctx, report, 0,
			pipeline.Wrap(pipeline.ErrValidation, "session", "load recording", "", err))
	}
	logger.Info("recording loaded",
		logging.String(logging.FieldPath, recPath),
		logging.Int("channels", len(rec.Labels)),
		logging.Int("samples", rec.Len()),
		logging.Float64("rate", rec.Rate))

	mapping := physio.MapLabels(rec.Labels, c.cfg.Detection.TriggerLabel, logger)
	trigIndex, err := mapping.TriggerIndex()
	if err != nil {
		return c.abort(ctx, report, 0,
			pipeline.Wrap(pipeline.ErrValidation, "session", "map channels", "", err))
	}

	trace := rec.Channel(trigIndex)
	onsets, err := trigger.Detect(trace, c.cfg.Detection.TriggerThreshold)
	if err != nil {
		return c.abort(ctx, report, 0,
			pipeline.Wrap(pipeline.ErrValidation, "session", "detect triggers", "", err))
	}
	if len(onsets) == 0 {
		return c.abort(ctx, report, 0,
			pipeline.Wrap(pipeline.ErrValidation, "session", "detect triggers",
				fmt.Sprintf("no trigger pulses above threshold %g", c.cfg.Detection.TriggerThreshold), nil))
	}
	logger.Info("trigger onsets detected", logging.Int("onsets", len(onsets)))

	sessionID := c.beginJournal(ctx, logger, report)

	resolver := runmeta.NewResolver()
	scanner := segment.NewScanner(onsets)
	consecutiveMissing := 0

	for index := 1; index <= c.cfg.Runs.MaxIndex; index++ {
		runID := bidspath.RunID(index)
		runCtx := pipeline.WithRun(ctx, runID)
		runLogger := logging.WithContext(runCtx, logging.NewComponentLogger(c.logger, "session"))

		sidecarPath := bidspath.BoldSidecar(bidsRoot, id, task, index)
		result, err := resolver.Resolve(sidecarPath)
		if errors.Is(err, runmeta.ErrMetadataNotFound) {
			consecutiveMissing++
			if consecutiveMissing > c.cfg.Runs.MaxMissing {
				runLogger.Debug("run probe exhausted",
					logging.Int("consecutive_missing", consecutiveMissing))
				break
			}
			runLogger.Debug("no bold sidecar for run", logging.String(logging.FieldPath, sidecarPath))
			continue
		}
		consecutiveMissing = 0
		if err != nil {
			// Bad or incomplete metadata costs one run, not the session.
			err = pipeline.SkipRun(pipeline.Wrap(pipeline.ErrValidation, "session", "resolve metadata", "", err))
		} else if result.AlreadyResolved {
			err = pipeline.SkipRun(pipeline.Wrap(pipeline.ErrValidation, "session", "resolve metadata",
				"bold sidecar already consumed by an earlier run", nil))
		}
		if err != nil {
			if pipeline.Classify(err) == pipeline.SeveritySkipRun {
				c.skipRun(runCtx, runLogger, report, sessionID, runID, task, err)
				continue
			}
			return c.abort(ctx, report, sessionID, err)
		}

		md := result.Metadata
		if md.SamplingFrequency > 0 && md.SamplingFrequency != rec.Rate {
			runLogger.Warn("sidecar sampling frequency disagrees with recording",
				logging.Float64("sidecar_hz", md.SamplingFrequency),
				logging.Float64("recording_hz", rec.Rate))
		}

		seg, err := scanner.Next(segment.Expectation{
			NumVolumes:     md.NumVolumes,
			RepetitionTime: md.RepetitionTime,
		}, rec.Rate, rec.Len())
		if err != nil {
			// A run whose onsets never appeared is skippable; a recording
			// that ends mid-run means the data itself is short.
			wrapped := pipeline.Wrap(pipeline.ErrValidation, "session", "segment "+runID, "", err)
			if errors.Is(err, segment.ErrRunNotFound) {
				wrapped = pipeline.SkipRun(pipeline.Wrap(pipeline.ErrNotFound, "session", "segment "+runID, "", err))
			}
			if pipeline.Classify(wrapped) == pipeline.SeveritySkipRun {
				c.skipRun(runCtx, runLogger, report, sessionID, runID, task, wrapped)
				continue
			}
			report.Runs = append(report.Runs, RunReport{
				RunID: runID, Task: task, Outcome: OutcomeAborted, Message: err.Error(),
			})
			c.recordRun(runCtx, runLogger, sessionID, journal.Run{
				RunID: runID, Task: task, Status: journal.RunAborted, Message: err.Error(),
			})
			return c.abort(ctx, report, sessionID, wrapped)
		}

		tsvPath, jsonPath := bidspath.PhysioOutputs(bidsRoot, id, task, index)
		if err := output.WriteRunTSV(tsvPath, rec, mapping, seg); err != nil {
			return c.abort(ctx, report, sessionID,
				pipeline.Wrap(pipeline.ErrTransient, "session", "write outputs", "", err))
		}
		if err := output.WriteRunSidecar(jsonPath, rec.Rate, output.Columns(mapping), output.Units(rec, mapping)); err != nil {
			return c.abort(ctx, report, sessionID,
				pipeline.Wrap(pipeline.ErrTransient, "session", "write outputs", "", err))
		}

		runLogger.Info("run accepted",
			logging.Int("volumes", seg.NumVolumes),
			logging.Int("start_index", seg.StartIndex),
			logging.Int("end_index", seg.EndIndex),
			logging.String(logging.FieldPath, tsvPath))
		report.Runs = append(report.Runs, RunReport{
			RunID: runID, Task: task, Outcome: OutcomeConverted, Segment: seg, TSVPath: tsvPath,
		})
		c.recordRun(runCtx, runLogger, sessionID, journal.Run{
			RunID: runID, Task: task, Status: journal.RunConverted,
			StartIndex: seg.StartIndex, EndIndex: seg.EndIndex, NumVolumes: seg.NumVolumes,
		})
	}

	if remaining := scanner.Remaining(); remaining > 0 {
		logger.Warn("trigger onsets left unclaimed after run probe",
			logging.Int("onsets", remaining))
	}

	c.writePlot(logger, report, physioRoot, id, task, trace, rec.Rate)
	c.mirrorSourcedata(logger, report, bidsRoot, id, recPath)
	c.finishJournal(ctx, logger, sessionID, journal.SessionCompleted, "")

	logger.Info("session complete",
		logging.Int("converted", report.Converted()),
		logging.Int("skipped", report.Skipped()))
	return report, nil
}

// findRecording probes the physio root for a supported recording file.
func (c *Converter) findRecording(physioRoot string, id bidspath.Identity, task string) (string, error) {
	var candidates []string
	for _, ext := range recording.Extensions() {
		path := bidspath.Recording(physioRoot, id, task, ext)
		candidates = append(candidates, path)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", pipeline.Wrap(pipeline.ErrNotFound, "session", "find recording",
		fmt.Sprintf("no recording at %v", candidates), nil)
}

// skipRun records a run-scoped failure and moves on.
func (c *Converter) skipRun(ctx context.Context, logger *slog.Logger, report *Report, sessionID int64, runID, task string, err error) {
	logger.Warn("run skipped", logging.Error(err))
	report.Runs = append(report.Runs, RunReport{
		RunID: runID, Task: task, Outcome: OutcomeSkipped, Message: err.Error(),
	})
	c.recordRun(ctx, logger, sessionID, journal.Run{
		RunID: runID, Task: task, Status: journal.RunSkipped, Message: err.Error(),
	})
}

// abort finalizes the report and journal for a session-fatal error.
func (c *Converter) abort(ctx context.Context, report *Report, sessionID int64, err error) (*Report, error) {
	report.Aborted = true
	report.AbortReason = err.Error()
	logger := logging.NewComponentLogger(logging.WithContext(ctx, c.logger), "session")
	logger.Error("session aborted", logging.Error(err))
	c.finishJournal(ctx, logger, sessionID, journal.SessionAborted, err.Error())
	return report, err
}

// beginJournal opens the audit record. Journal failures never block a
// conversion; they are logged and the rest of the session proceeds unrecorded.
func (c *Converter) beginJournal(ctx context.Context, logger *slog.Logger, report *Report) int64 {
	if c.store == nil {
		return 0
	}
	sessionID, err := c.store.BeginSession(ctx, report.CorrelationID,
		report.Identity.Subject, report.Identity.Session, report.RecordingPath)
	if err != nil {
		logger.Warn("journal unavailable, continuing without audit trail", logging.Error(err))
		return 0
	}
	return sessionID
}

func (c *Converter) recordRun(ctx context.Context, logger *slog.Logger, sessionID int64, run journal.Run) {
	if c.store == nil || sessionID == 0 {
		return
	}
	if err := c.store.RecordRun(ctx, sessionID, run); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
}

func (c *Converter) finishJournal(ctx context.Context, logger *slog.Logger, sessionID int64, status journal.SessionStatus, message string) {
	if c.store == nil || sessionID == 0 {
		return
	}
	if err := c.store.FinishSession(ctx, sessionID, status, message); err != nil {
		logger.Warn("journal write failed", logging.Error(err))
	}
}

// writePlot renders the QA figure. Plot failures cost nothing but the figure.
func (c *Converter) writePlot(logger *slog.Logger, report *Report, physioRoot string, id bidspath.Identity, task string, trace []float64, rate float64) {
	if !c.cfg.Plot.Enabled {
		return
	}
	spans := make([]plot.RunSpan, 0, len(report.Runs))
	for _, run := range report.Runs {
		if run.Outcome != OutcomeConverted {
			continue
		}
		spans = append(spans, plot.RunSpan{
			Label:      run.RunID,
			StartIndex: run.Segment.StartIndex,
			EndIndex:   run.Segment.EndIndex,
		})
	}
	path := bidspath.QAPlot(physioRoot, id, task)
	if err := plot.WriteSessionPlot(path, trace, rate, spans); err != nil {
		logger.Warn("qa plot failed", logging.Error(err))
		return
	}
	report.PlotPath = path
	logger.Info("qa plot written", logging.String(logging.FieldPath, path))
}

// mirrorSourcedata copies the raw recording into the BIDS sourcedata tree
// with hash verification.
func (c *Converter) mirrorSourcedata(logger *slog.Logger, report *Report, bidsRoot string, id bidspath.Identity, recPath string) {
	if !c.cfg.Sourcedata.Mirror {
		return
	}
	dir := bidspath.SourcedataDir(bidsRoot, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("sourcedata mirror failed", logging.Error(err))
		return
	}
	dst := filepath.Join(dir, filepath.Base(recPath))
	if err := fileutil.CopyFileVerified(recPath, dst); err != nil {
		logger.Warn("sourcedata mirror failed", logging.Error(err))
		return
	}
	report.MirroredTo = dst
	logger.Info("sourcedata mirrored", logging.String(logging.FieldPath, dst))
}
