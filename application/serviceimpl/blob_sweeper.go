package serviceimpl

import (
	"context"
	"sync"
	"time"

	"taskhub/domain/ports"
	"taskhub/domain/repositories"
	"taskhub/pkg/logger"
	"taskhub/pkg/scheduler"
)

const sweeperJobID = "blob-sweeper"

// BlobSweeper reclaims stored payloads that no attachment references any
// more, such as blobs stranded by a cascade user delete or by a lost race
// on the attachment list. A blob must stay unreferenced across the grace
// period before it is removed, so in-flight uploads are never touched.
type BlobSweeper struct {
	taskRepo repositories.TaskRepository
	blobs    ports.BlobStore
	grace    time.Duration

	mu        sync.Mutex
	firstSeen map[string]time.Time
}

func NewBlobSweeper(taskRepo repositories.TaskRepository, blobs ports.BlobStore, grace time.Duration) *BlobSweeper {
	return &BlobSweeper{
		taskRepo:  taskRepo,
		blobs:     blobs,
		grace:     grace,
		firstSeen: make(map[string]time.Time),
	}
}

// Register schedules the sweep on the given cron expression.
func (s *BlobSweeper) Register(sched scheduler.EventScheduler, cronExpr string) error {
	return sched.AddJob(sweeperJobID, cronExpr, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		removed, err := s.Sweep(ctx)
		if err != nil {
			logger.Error("Blob sweep failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Info("Blob sweep completed", "removed", removed)
		}
	})
}

// Sweep deletes blobs that have been unreferenced since before the grace
// period and returns how many were removed.
func (s *BlobSweeper) Sweep(ctx context.Context) (int, error) {
	stored, err := s.blobs.List(ctx)
	if err != nil {
		return 0, err
	}

	referenced, err := s.taskRepo.AllBlobIDs(ctx)
	if err != nil {
		return 0, err
	}
	refs := make(map[string]bool, len(referenced))
	for _, id := range referenced {
		refs[id] = true
	}

	now := time.Now()
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	present := make(map[string]bool, len(stored))
	for _, blobID := range stored {
		present[blobID] = true

		if refs[blobID] {
			delete(s.firstSeen, blobID)
			continue
		}

		seen, ok := s.firstSeen[blobID]
		if !ok {
			// Candidate. It survives until the next sweep past the grace
			// period, so a Put racing this sweep stays safe.
			s.firstSeen[blobID] = now
			continue
		}
		if now.Sub(seen) < s.grace {
			continue
		}

		if err := s.blobs.Delete(ctx, blobID); err != nil {
			logger.WarnContext(ctx, "Failed to delete orphaned blob", "blob_id", blobID, "error", err)
			continue
		}
		delete(s.firstSeen, blobID)
		removed++
	}

	for blobID := range s.firstSeen {
		if !present[blobID] {
			delete(s.firstSeen, blobID)
		}
	}

	return removed, nil
}
