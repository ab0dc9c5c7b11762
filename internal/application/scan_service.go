package application

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/phishguard/phishguard/internal/domain"
	"github.com/phishguard/phishguard/internal/domain/detection"
	"github.com/phishguard/phishguard/internal/domain/emailscan"
	"github.com/phishguard/phishguard/internal/domain/imagescan"
	"github.com/phishguard/phishguard/internal/ports"
)

// persistTimeout bounds a single background persistence attempt.
const persistTimeout = 5 * time.Second

// ScanService orchestrates the three scan entry points and the asynchronous
// persistence of scan history.
//
// Persistence is deliberately decoupled from the scan path: the service
// produces a result synchronously and hands it to a fire-and-forget write
// that may complete after the caller already has the response. A persistence
// failure is logged and never affects a scan that has returned.
type ScanService struct {
	detector *detection.Detector
	emails   *emailscan.Analyzer
	images   *imagescan.Analyzer

	// store is optional; nil disables scan history entirely.
	store ports.ScanStore

	pending sync.WaitGroup
}

// NewScanService creates a scan service with dependency injection. store may
// be nil when persistence is disabled.
func NewScanService(
	detector *detection.Detector,
	emails *emailscan.Analyzer,
	images *imagescan.Analyzer,
	store ports.ScanStore,
) *ScanService {
	return &ScanService{
		detector: detector,
		emails:   emails,
		images:   images,
		store:    store,
	}
}

// ScanURL classifies a URL and hands the result to the persistence sink
// without awaiting it.
func (s *ScanService) ScanURL(url string) domain.ScanResult {
	result := s.detector.ScanURL(url)
	s.persistAsync(result)
	return result
}

// ScanEmail analyzes a raw email message.
func (s *ScanService) ScanEmail(rawContent string) domain.EmailScanResult {
	return s.emails.Analyze(rawContent)
}

// ScanImage analyzes raw image bytes.
func (s *ScanService) ScanImage(content []byte, filename string) domain.ImageScanResult {
	return s.images.Analyze(content, filename)
}

// History returns the most recent persisted scans. Without a store it returns
// an empty history rather than an error, matching the scan path's
// "always answer" posture.
func (s *ScanService) History(ctx context.Context, limit int) ([]domain.ScanRecord, error) {
	if s.store == nil {
		return []domain.ScanRecord{}, nil
	}
	return s.store.RecentScans(ctx, limit)
}

// Wait blocks until all in-flight persistence writes finish. Intended for
// process shutdown; callers of the scan methods never need it.
func (s *ScanService) Wait() {
	s.pending.Wait()
}

func (s *ScanService) persistAsync(result domain.ScanResult) {
	if s.store == nil {
		return
	}

	record := domain.NewScanRecord(result, time.Now().UTC())

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()

		// Detached from the request: the scan response must not depend on
		// this write in any way.
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.store.SaveScan(ctx, record); err != nil {
			log.Printf("Failed to persist scan %s: %v", record.ID, err)
		}
	}()
}
