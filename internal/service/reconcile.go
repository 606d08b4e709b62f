package service

import (
	"context"
	"fmt"
	"slices"
)

// reconcile replaces the requested ids by the stored records they point at.
// It never creates records, and the result is ordered by id so that running it
// twice with the same ids yields the same set.
func reconcile[T any](
	ctx context.Context,
	kind string,
	ids []uint,
	policy ReconcilePolicy,
	find func(ctx context.Context, ids []uint) ([]*T, error),
	idOf func(*T) uint,
) ([]T, error) {
	wanted := uniqueIDs(ids)

	found, err := find(ctx, wanted)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", kind, err)
	}

	byID := make(map[uint]*T, len(found))
	for _, item := range found {
		byID[idOf(item)] = item
	}

	resolved := make([]T, 0, len(found))
	for _, id := range wanted {
		item, ok := byID[id]
		if !ok {
			if policy == ReconcileStrict {
				return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
			}
			continue
		}
		resolved = append(resolved, *item)
	}

	return resolved, nil
}

func uniqueIDs(ids []uint) []uint {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
