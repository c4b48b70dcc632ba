package serviceimpl

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/models"
	"taskhub/infrastructure/memory"
)

func TestSweepRemovesOrphansAfterGrace(t *testing.T) {
	tasks := memory.NewTaskRepository()
	blobs := memory.NewBlobStore()
	ctx := context.Background()

	orphanID, err := blobs.Put(ctx, bytes.NewReader([]byte("orphan")), 6, "o.bin", "application/octet-stream")
	require.NoError(t, err)

	referencedID, err := blobs.Put(ctx, bytes.NewReader([]byte("kept")), 4, "k.bin", "application/octet-stream")
	require.NoError(t, err)
	require.NoError(t, tasks.Create(ctx, &models.Task{
		Title:   "holder",
		OwnerID: uuid.New(),
		Attachments: models.AttachmentList{{
			ID:     "att-1",
			BlobID: referencedID,
		}},
	}))

	sweeper := NewBlobSweeper(tasks, blobs, 0)

	// First pass only marks candidates.
	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, blobs.Len())

	// Second pass reclaims the orphan but never the referenced blob.
	removed, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, blobs.Len())

	_, _, err = blobs.Get(ctx, referencedID)
	assert.NoError(t, err)
	_, _, err = blobs.Get(ctx, orphanID)
	assert.Error(t, err)
}

func TestSweepRespectsGracePeriod(t *testing.T) {
	tasks := memory.NewTaskRepository()
	blobs := memory.NewBlobStore()
	ctx := context.Background()

	_, err := blobs.Put(ctx, bytes.NewReader([]byte("fresh")), 5, "f.bin", "application/octet-stream")
	require.NoError(t, err)

	sweeper := NewBlobSweeper(tasks, blobs, time.Hour)

	// Both passes fall inside the grace window, so nothing is removed.
	for i := 0; i < 2; i++ {
		removed, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	}
	assert.Equal(t, 1, blobs.Len())
}

func TestSweepForgetsReferencedCandidates(t *testing.T) {
	tasks := memory.NewTaskRepository()
	blobs := memory.NewBlobStore()
	ctx := context.Background()

	blobID, err := blobs.Put(ctx, bytes.NewReader([]byte("racing")), 6, "r.bin", "application/octet-stream")
	require.NoError(t, err)

	sweeper := NewBlobSweeper(tasks, blobs, 0)

	// Marked as a candidate while the upload's metadata write is in flight.
	_, err = sweeper.Sweep(ctx)
	require.NoError(t, err)

	// The metadata write lands before the next sweep.
	require.NoError(t, tasks.Create(ctx, &models.Task{
		Title:   "late arrival",
		OwnerID: uuid.New(),
		Attachments: models.AttachmentList{{
			ID:     "att-1",
			BlobID: blobID,
		}},
	}))

	removed, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 1, blobs.Len())
}
