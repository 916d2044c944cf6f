package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/trailcast/api/trail"
	"github.com/kilianp07/trailcast/config"
	coremetrics "github.com/kilianp07/trailcast/core/metrics"
	"github.com/kilianp07/trailcast/core/model"
	"github.com/kilianp07/trailcast/core/predlog"
	"github.com/kilianp07/trailcast/core/prediction"
	"github.com/kilianp07/trailcast/core/track"
	"github.com/kilianp07/trailcast/core/tracker"
	"github.com/kilianp07/trailcast/infra/logger"
	"github.com/kilianp07/trailcast/infra/metrics"
	"github.com/kilianp07/trailcast/infra/mqtt"
	"github.com/kilianp07/trailcast/sample"
)

// SourceMQTT labels observations received from the broker.
const SourceMQTT = "mqtt"

// Service runs the tracker behind the HTTP API and the optional MQTT client.
type Service struct {
	Tracker  *tracker.Tracker
	server   *http.Server
	client   *mqtt.PahoClient
	sink     coremetrics.MetricsSink
	plog     predlog.Store
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	plog, err := predlog.Open(cfg.PredLog)
	if err != nil {
		return nil, fmt.Errorf("prediction log: %w", err)
	}

	store := track.New(cfg.Track.MaxLen)
	if cfg.Track.SeedSample {
		if err := store.Append(sample.Trail(cfg.Sample)...); err != nil {
			_ = plog.Close()
			return nil, fmt.Errorf("seed sample trail: %w", err)
		}
		logg.Infof("track seeded with %d sample observations", store.Len())
	}
	engine := prediction.NewTrajectoryPredictor(cfg.Prediction.Radius.NewPolicy())
	tr, err := tracker.New(store, engine, sink, plog, nil, logger.New("tracker"))
	if err != nil {
		_ = plog.Close()
		return nil, err
	}
	tr.SetAuto(cfg.Prediction.Auto)

	svc := &Service{Tracker: tr, sink: sink, plog: plog, log: logg}
	if cfg.Metrics.HasSink("prometheus") {
		svc.promAddr = cfg.Metrics.PrometheusAddr
	}

	if cfg.MQTT.Enabled() {
		client, err := mqtt.NewPahoClient(cfg.MQTT, svc.onObservation)
		if err != nil {
			_ = plog.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.client = client
		if cfg.MQTT.PredictionTopic != "" {
			tr.SetPublisher(client)
		}
	}

	handler := trail.NewHandler(tr, engine, cfg.Prediction.Segments, cfg.HTTP.Token, logger.New("api"))
	svc.server = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return svc, nil
}

func (s *Service) onObservation(obs model.Observation) {
	if _, err := s.Tracker.Ingest(context.Background(), SourceMQTT, []model.Observation{obs}); err != nil {
		s.log.Warnf("ingest mqtt observation: %v", err)
	}
}

// Handler returns the HTTP handler of the API.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Run starts the service and blocks until the context is cancelled or the
// HTTP listener fails.
func (s *Service) Run(ctx context.Context) error {
	go s.Tracker.Run(ctx)
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("listening on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	s.Tracker.Store().Close()
	var errs []error
	if err := s.plog.Close(); err != nil {
		errs = append(errs, fmt.Errorf("prediction log: %w", err))
	}
	if c, ok := s.sink.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("metrics sink: %w", err))
		}
	}
	return errors.Join(errs...)
}
