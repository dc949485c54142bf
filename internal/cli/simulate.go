package cli

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/erkkaervice/philosophers/internal/engine"
	"github.com/erkkaervice/philosophers/internal/ir"
	"github.com/erkkaervice/philosophers/internal/store"
)

// SimulateOptions holds flags for running a simulation.
type SimulateOptions struct {
	*RootOptions
	Database  string
	Timeout   time.Duration
	Poll      time.Duration
	NoStagger bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// configureLogging installs the diagnostic logger. Diagnostics go to w,
// never to the event stream. Without --verbose only warnings are shown.
func configureLogging(verbose bool, w io.Writer) *slog.Logger {
	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func runSimulation(opts *SimulateOptions, args []string, cmd *cobra.Command) error {
	cfg, err := parseConfig(args)
	if err != nil {
		return err
	}

	logger := configureLogging(opts.Verbose, cmd.ErrOrStderr())

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, stopping", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, opts.Timeout)
		defer timeoutCancel()
	}

	// Event lines are the product. In JSON mode each event is printed as
	// one JSON object per line instead.
	var out io.Writer = cmd.OutOrStdout()
	var sinks []engine.EventSink
	if opts.Format == "json" {
		sinks = append(sinks, newJSONLineSink(out))
		out = io.Discard
	}

	var rec *runRecording
	if opts.Database != "" {
		rec, err = startRecording(ctx, opts, cfg, logger)
		if err != nil {
			return err
		}
		defer rec.close()
		sinks = append(sinks, rec.recorder)
	}

	simOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithPollInterval(opts.Poll),
		engine.WithStagger(!opts.NoStagger),
	}
	if len(sinks) > 0 {
		simOpts = append(simOpts, engine.WithSink(engine.MultiSink(sinks...)))
	}

	sim, err := engine.New(cfg, out, simOpts...)
	if err != nil {
		return usageError("%v", err)
	}

	res, runErr := sim.Run(ctx)
	if runErr != nil && res == nil {
		return WrapExitError(ExitFailure, "simulation failed", runErr)
	}

	if rec != nil {
		if err := rec.finish(res); err != nil {
			return WrapExitError(ExitFailure, "failed to record run", err)
		}
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "failed to write event log", runErr)
	}
	return nil
}

// runRecording ties a store to the recorder of one run.
type runRecording struct {
	store    *store.Store
	runID    string
	recorder *engine.Recorder
	logger   *slog.Logger
	closed   bool
}

func startRecording(ctx context.Context, opts *SimulateOptions, cfg ir.Config, logger *slog.Logger) (*runRecording, error) {
	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	// Default to UUIDv7 run ids
	ids := opts.RunIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	run := ir.Run{ID: ids.Generate(), Config: cfg, StartedAt: time.Now()}
	if err := st.WriteRun(ctx, run); err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to record run", err)
	}

	// Writes outlive ctx: a run interrupted by a signal is still recorded
	// in full.
	rec := engine.NewRecorder(run.ID, st)
	rec.Start(context.WithoutCancel(ctx))

	logger.Info("recording run", "run", run.ID, "db", opts.Database)
	return &runRecording{store: st, runID: run.ID, recorder: rec, logger: logger}, nil
}

// finish drains the recorder and stores the summary.
func (r *runRecording) finish(res *engine.Result) error {
	r.closed = true
	recErr := r.recorder.Close()

	digest := ir.LogDigest(r.recorder.Events())
	finishErr := r.store.FinishRun(context.Background(), r.runID, res.Summary(digest))
	return errors.Join(recErr, finishErr)
}

// close releases the store. Safe after finish.
func (r *runRecording) close() {
	if !r.closed {
		r.closed = true
		if err := r.recorder.Close(); err != nil {
			r.logger.Error("error draining recorder", "error", err)
		}
	}
	if err := r.store.Close(); err != nil {
		r.logger.Error("error closing database", "error", err)
	}
}

// jsonLineSink prints each event as one JSON object per line.
type jsonLineSink struct {
	enc *json.Encoder
}

func newJSONLineSink(w io.Writer) *jsonLineSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonLineSink{enc: enc}
}

// Record implements engine.EventSink.
func (s *jsonLineSink) Record(ev ir.Event) {
	if err := s.enc.Encode(ev); err != nil {
		slog.Error("failed to print event", "seq", ev.Seq, "error", err)
	}
}
