package cleanup

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/killallgit/wortschatz-api/internal/metrics"
)

// Service removes uploads left behind in the temp directory by crashed or
// killed requests
type Service struct {
	tempDir         string
	maxAge          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	cancel          context.CancelFunc
	wg              sync.WaitGroup
}

// NewService creates a new cleanup service
func NewService(tempDir string, maxAge, cleanupInterval time.Duration) *Service {
	if cleanupInterval <= 0 {
		cleanupInterval = 15 * time.Minute
	}
	return &Service{
		tempDir:         tempDir,
		maxAge:          maxAge,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Start runs one sweep immediately and then one per interval until ctx ends or Stop is called
func (s *Service) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.Sweep()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-ctx.Done():
				log.Println("[INFO] Cleanup service stopped")
				return
			}
		}
	}()

	log.Printf("[INFO] Cleanup service started (interval: %v, max age: %v)", s.cleanupInterval, s.maxAge)
}

// Stop stops the cleanup service and waits for the sweeper to exit
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Sweep removes regular files in the temp directory older than maxAge and
// returns how many were removed
func (s *Service) Sweep() int {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[ERROR] Cleanup failed to read %s: %v", s.tempDir, err)
		}
		return 0
	}

	removed := 0
	cutoff := s.now().Add(-s.maxAge)
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.tempDir, entry.Name())
		log.Printf("[DEBUG] Removing stale temp upload: %s", path)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[WARN] Failed to remove temp file %s: %v", path, err)
			continue
		}
		removed++
		metrics.TempFilesRemovedTotal.Inc()
	}

	if removed > 0 {
		log.Printf("[INFO] Cleanup removed %d stale temp upload(s)", removed)
	}
	return removed
}

// RemoveFile deletes a single temp file. A missing file is not an error;
// any other failure is logged and the file is left for the sweeper.
func RemoveFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] Failed to remove temp file %s: %v", path, err)
	}
}
