package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"modes1090/internal/adsb"
	"modes1090/internal/aircraft"
	"modes1090/internal/basestation"
	"modes1090/internal/bds"
	"modes1090/internal/beast"
	"modes1090/internal/dispatch"
	"modes1090/internal/logging"
	"modes1090/internal/sink"
)

// Application wires a frame source through the dispatcher into the outputs.
//
// Frames are read on one goroutine and queued to the dispatch loop, which is
// the only goroutine touching the store and the outputs.
type Application struct {
	config Config
	logger *logrus.Logger

	store      *aircraft.Store
	dispatcher *dispatch.Dispatcher
	limiter    *rate.Limiter

	sbs      *basestation.Writer
	sbsFile  *logging.DailyFile
	nats     *sink.NATS
	snapshot *sink.Snapshot
	closers  []io.Closer

	frames    chan *adsb.Frame
	received  atomic.Uint64
	dropped   atomic.Uint64
	lastFrame time.Time
}

// NewApplication creates the decoding core and the file outputs. Network
// sinks are attached with UseNATS and UseRedis.
func NewApplication(config Config, logger *logrus.Logger) (*Application, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	receiver, err := ParseReceiver(config.Receiver)
	if err != nil {
		return nil, err
	}

	store := aircraft.NewStore()
	resolver := adsb.NewCPRResolver(config.Policy.CPR, receiver, logger)
	disambiguator := bds.NewDisambiguator(config.Policy.Tolerances)
	if p := resolver.Receiver(); p != nil {
		logger.WithFields(logrus.Fields{
			"lat": p.Lat,
			"lon": p.Lon,
		}).Info("Using receiver location for position decoding")
	}

	app := &Application{
		config:     config,
		logger:     logger,
		store:      store,
		dispatcher: dispatch.New(store, resolver, disambiguator, config.Policy.Dispatch, logger),
		frames:     make(chan *adsb.Frame, config.QueueSize),
	}

	if config.MaxRate > 0 {
		burst := int(config.MaxRate)
		if burst < 1 {
			burst = 1
		}
		app.limiter = rate.NewLimiter(rate.Limit(config.MaxRate), burst)
	}

	var outputs []io.Writer
	if config.SBSDir != "" {
		app.sbsFile, err = logging.NewDailyFile(config.SBSDir, DefaultSBSPrefix, config.SBSUTC, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize basestation output: %w", err)
		}
		app.closers = append(app.closers, app.sbsFile)
		outputs = append(outputs, app.sbsFile)
	}
	if config.SBSStdout {
		outputs = append(outputs, os.Stdout)
	}
	if len(outputs) > 0 {
		app.sbs = basestation.NewWriter(io.MultiWriter(outputs...), store, logger)
	}

	return app, nil
}

// Store returns the aircraft store. It must only be read while Run is not active.
func (app *Application) Store() *aircraft.Store {
	return app.store
}

// Dispatcher returns the dispatcher
func (app *Application) Dispatcher() *dispatch.Dispatcher {
	return app.dispatcher
}

// UseNATS publishes store events through n
func (app *Application) UseNATS(n *sink.NATS) {
	app.nats = n
	app.store.Subscribe(n.Handle)
	app.closers = append(app.closers, n)
}

// UseRedis keeps aircraft snapshots in client
func (app *Application) UseRedis(client sink.RedisClient) {
	app.snapshot = sink.NewSnapshot(client, app.store, app.config.SnapshotTTL, app.logger)
	app.store.Subscribe(app.snapshot.Handle)
	app.closers = append(app.closers, app.snapshot)
}

// Received returns the number of frames read from the input
func (app *Application) Received() uint64 {
	return app.received.Load()
}

// Dropped returns the number of frames dropped by the rate limit
func (app *Application) Dropped() uint64 {
	return app.dropped.Load()
}

// Start connects the configured sinks, reads the configured input and runs
// until the input ends or SIGINT/SIGTERM is received.
func (app *Application) Start() error {
	app.logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	}).Info("Starting Mode S decoder")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case sig := <-sigChan:
			app.logger.WithField("signal", sig.String()).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	defer app.shutdown()

	if err := app.connectSinks(ctx); err != nil {
		return fmt.Errorf("failed to initialize components: %w", err)
	}

	input, err := OpenInput(ctx, app.config.Input, app.logger)
	if err != nil {
		return err
	}
	defer input.Close()

	// Closing the input interrupts a blocked read
	go func() {
		<-ctx.Done()
		input.Close()
	}()

	return app.Run(ctx, input)
}

func (app *Application) connectSinks(ctx context.Context) error {
	if app.config.NATSURL != "" {
		n, err := sink.ConnectNATS(app.config.NATSURL, app.config.NATSSubject, app.logger)
		if err != nil {
			return err
		}
		app.UseNATS(n)
	}
	if app.config.RedisAddr != "" {
		client, err := sink.ConnectRedis(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
		if err != nil {
			return err
		}
		app.logger.WithField("address", app.config.RedisAddr).Info("Connected to Redis")
		app.UseRedis(client)
	}
	return nil
}

// Run decodes frames from r until EOF or until ctx is done. It returns nil
// on EOF and on cancellation. Run may be called once.
func (app *Application) Run(ctx context.Context, r io.Reader) error {
	dec, err := NewFrameDecoder(app.config.Format, app.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var inputErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(app.frames)
		inputErr = beast.Stream(ctx, r, dec, func(f *adsb.Frame) {
			app.enqueue(ctx, f)
		})
	}()

	app.loop(ctx)
	wg.Wait()

	app.flush(context.Background())
	app.reportStatistics()

	if inputErr != nil && !errors.Is(inputErr, context.Canceled) {
		if ctx.Err() != nil {
			// A read interrupted by closing the input during shutdown
			app.logger.WithError(inputErr).Debug("Input closed")
			return nil
		}
		return inputErr
	}
	return nil
}

func (app *Application) enqueue(ctx context.Context, f *adsb.Frame) {
	app.received.Add(1)
	if app.limiter != nil && !app.limiter.Allow() {
		app.dropped.Add(1)
		return
	}
	select {
	case app.frames <- f:
	case <-ctx.Done():
	}
}

// loop dispatches queued frames until the input goroutine closes the queue
func (app *Application) loop(ctx context.Context) {
	flush := time.NewTicker(app.config.FlushInterval)
	defer flush.Stop()
	stats := time.NewTicker(app.config.StatsInterval)
	defer stats.Stop()

	for {
		select {
		case f, ok := <-app.frames:
			if !ok {
				return
			}
			app.dispatch(f)
		case <-flush.C:
			app.flush(ctx)
		case <-stats.C:
			app.reportStatistics()
		}
	}
}

func (app *Application) dispatch(f *adsb.Frame) {
	app.dispatcher.Dispatch(f)
	if f.Timestamp.After(app.lastFrame) {
		app.lastFrame = f.Timestamp
	}

	if app.sbs != nil {
		if err := app.sbs.Flush(); err != nil {
			app.logger.WithError(err).Debug("Failed to write SBS message")
		}
	}
}

// flush evicts silent aircraft and pushes snapshots
func (app *Application) flush(ctx context.Context) {
	if app.config.EvictAfter > 0 && !app.lastFrame.IsZero() {
		if n := app.store.Evict(app.lastFrame.Add(-app.config.EvictAfter)); n > 0 {
			app.logger.WithField("count", n).Debug("Evicted silent aircraft")
		}
		if app.sbs != nil {
			if err := app.sbs.Flush(); err != nil {
				app.logger.WithError(err).Debug("Failed to write SBS message")
			}
		}
	}

	if app.snapshot != nil && app.snapshot.Pending() > 0 {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := app.snapshot.Flush(ctx); err != nil {
			app.logger.WithError(err).Debug("Snapshot flush failed")
		}
	}

	if app.sbsFile != nil && app.config.SBSRetentionDays > 0 {
		if _, err := app.sbsFile.Cleanup(app.config.SBSRetentionDays); err != nil {
			app.logger.WithError(err).Warn("Failed to clean up basestation files")
		}
	}
}

// reportStatistics logs the processing counters
func (app *Application) reportStatistics() {
	snap := app.dispatcher.Stats().Snapshot()

	fields := logrus.Fields{
		"received":    app.received.Load(),
		"dropped":     app.dropped.Load(),
		"dispatched":  snap.Frames,
		"applied":     snap.Results[dispatch.ResultApplied.String()],
		"unsupported": snap.Results[dispatch.ResultUnsupported.String()],
		"rejected":    snap.Results[dispatch.ResultRejected.String()],
		"ambiguous":   snap.Results[dispatch.ResultAmbiguous.String()],
		"implausible": snap.Results[dispatch.ResultImplausible.String()],
		"aircraft":    app.store.Len(),
	}
	if app.sbs != nil {
		fields["sbs_lines"] = app.sbs.Written()
	}
	if app.nats != nil {
		fields["published"] = app.nats.Published()
		fields["publish_failed"] = app.nats.Failed()
	}

	app.logger.WithFields(fields).Info("Processing statistics")
}

// shutdown closes every output
func (app *Application) shutdown() {
	app.logger.Info("Shutting down application")

	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i].Close(); err != nil {
			app.logger.WithError(err).Warn("Failed to close output")
		}
	}
	app.closers = nil

	app.logger.Info("Shutdown completed")
}

// Close releases the outputs of an application that was not started
func (app *Application) Close() {
	app.shutdown()
}
