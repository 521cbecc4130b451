/*
scheduler.go - Periodic anomaly scan

PURPOSE:
  Periodically scans all active users over the lookback window and logs
  the anomaly counts per rule. The scan is read-only; results are also
  available on demand via GET /api/anomalies.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on start
  - Start while running is a no-op; Stop then Start resumes scanning
  - Keeps the summary of the last run for inspection

CONFIGURATION:
  - CheckInterval: How often to scan (default: 1 hour)
  - Enabled: Whether the scanner is active (default: true)

USAGE:
  scanner := NewAnomalyScanner(handler)
  scanner.Start()
  // ... later
  scanner.Stop()

SEE ALSO:
  - handlers.go: AllAnomalies endpoint (manual scan)
  - tracking/anomaly.go: Detector
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/warp/worktime-engine/generic"
	"github.com/warp/worktime-engine/tracking"
)

// ScanSummary describes one completed scan.
type ScanSummary struct {
	At     time.Time
	Period generic.Period
	Users  int
	Counts map[tracking.AnomalyType]int
}

// AnomalyScanner runs the detector over all users on a ticker.
type AnomalyScanner struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	last   *ScanSummary
}

// NewAnomalyScanner creates a new scanner.
func NewAnomalyScanner(handler *Handler) *AnomalyScanner {
	return &AnomalyScanner{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
	}
}

// Start begins the scanner.
func (s *AnomalyScanner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Handler.Log.Info("anomaly scanner disabled, not starting")
		return
	}
	if s.ticker != nil {
		s.Handler.Log.Warn("anomaly scanner already running")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.stop = make(chan struct{})
	s.wg.Add(1)

	go s.run(s.ticker, s.stop)

	s.Handler.Log.WithField("interval", s.CheckInterval).Info("anomaly scanner started")
}

// Stop stops the scanner.
func (s *AnomalyScanner) Stop() {
	s.mu.Lock()
	ticker, stop := s.ticker, s.stop
	s.ticker, s.stop = nil, nil
	s.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(stop)
		s.wg.Wait()
		s.Handler.Log.Info("anomaly scanner stopped")
	}
}

// Last returns the summary of the most recent scan, or nil.
func (s *AnomalyScanner) Last() *ScanSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Running reports whether the background loop is active.
func (s *AnomalyScanner) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticker != nil
}

func (s *AnomalyScanner) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer s.wg.Done()

	// Run immediately on start
	s.Scan(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Scan(context.Background())
		case <-stop:
			return
		}
	}
}

// Scan runs one pass over the lookback window ending today.
func (s *AnomalyScanner) Scan(ctx context.Context) (*ScanSummary, error) {
	h := s.Handler
	now := h.Now()
	today := generic.Today(now, h.Location)
	period := generic.Period{Start: today.AddDays(-h.LookbackDays), End: today}
	log := h.Log.WithField("period", period.String())

	anomalies, users, err := h.scanAll(ctx, period, h.DefaultRegion)
	if err != nil {
		log.WithError(err).Error("anomaly scan failed")
		return nil, err
	}
	summary := &ScanSummary{At: now, Period: period, Users: users, Counts: tracking.CountByType(anomalies)}

	fields := logrus.Fields{"users": users, "anomalies": len(anomalies)}
	for typ, n := range summary.Counts {
		fields[string(typ)] = n
	}
	log.WithFields(fields).Info("anomaly scan completed")

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()
	return summary, nil
}
