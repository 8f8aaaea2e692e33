package store

import (
	"context"

	"mediaroll/internal/media"
)

const mirrorBatchSize = 500

// Mirror copies every asset from src into dst, keeping ids, in chunks of
// mirrorBatchSize. It returns the number of records copied.
func Mirror(ctx context.Context, dst, src Datastore) (int, error) {
	copied := 0
	for offset := 0; ; offset += mirrorBatchSize {
		batch, err := src.Query(ctx, media.And{}, media.NewestFirst, offset, mirrorBatchSize)
		if err != nil {
			return copied, err
		}
		if len(batch) > 0 {
			if err := dst.InsertBatch(ctx, batch); err != nil {
				return copied, err
			}
			copied += len(batch)
		}
		if len(batch) < mirrorBatchSize {
			return copied, nil
		}
	}
}
