package app

import (
	"log/slog"

	"github.com/camsentry/camsentry/config"
	"github.com/camsentry/camsentry/domain/action"
	"github.com/camsentry/camsentry/domain/capture"
	"github.com/camsentry/camsentry/domain/detect"
	"github.com/camsentry/camsentry/domain/focus"
	"github.com/camsentry/camsentry/domain/monitor"
	"github.com/camsentry/camsentry/events"
	"github.com/camsentry/camsentry/preview"
)

// Container assembles the adapters, event sinks and the controller.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Source     *capture.ScreenSource
	Detector   *detect.Client
	Focus      focus.Query
	Dispatcher action.Dispatcher
	Fanout     *events.Fanout
	History    *events.History
	Store      *events.Store
	Preview    *preview.Publisher
	Controller *monitor.Controller
}

// BuildContainer constructs all components. The event store is optional: a
// blank EventDBPath disables persistence, and an open failure is logged and
// tolerated.
func BuildContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	c.Source = capture.NewScreenSource(logger)
	c.Detector = detect.NewClient(cfg.DetectorURL, logger)
	fq, err := focus.New(logger)
	if err != nil {
		return nil, err
	}
	c.Focus = fq
	c.Dispatcher = action.New(logger)
	c.Preview = preview.NewPublisher(cfg.PreviewMaxWidth, cfg.PreviewMaxHeight)

	c.Fanout = events.NewFanout()
	history, err := events.NewHistory(cfg.HistorySize)
	if err != nil {
		return nil, err
	}
	c.History = history

	sinks := events.Tee{
		c.Fanout,
		c.History,
		events.LogSink{Logger: logger},
	}
	if cfg.EventDBPath != "" {
		store, err := events.OpenStore(cfg.EventDBPath, logger)
		if err != nil {
			logger.Warn("event store disabled", "path", cfg.EventDBPath, "error", err)
		} else {
			c.Store = store
			sinks = append(sinks, store)
		}
	}

	c.Controller = monitor.NewController(logger, monitor.Deps{
		Source:     c.Source,
		Detector:   c.Detector,
		Focus:      c.Focus,
		Dispatcher: c.Dispatcher,
		Events:     sinks,
		Frames:     c.Preview,
	}, monitor.Options{
		PollPeriod:   cfg.PollPeriod(),
		FocusDelay:   cfg.FocusDelay(),
		AbsenceDelay: cfg.AbsenceDelay(),
	})
	if err := c.Controller.SetMacroKeys(cfg.MacroKeys); err != nil {
		return nil, err
	}
	return c, nil
}
