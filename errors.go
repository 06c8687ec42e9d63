package geoquad

import (
	"errors"
	"fmt"

	"github.com/hupe1980/geoquad/quadtree"
	"github.com/hupe1980/geoquad/snapshot"
)

var (
	// ErrNoSnapshot is returned by Load when the store holds no
	// snapshot. Callers fall back to ingestion.
	ErrNoSnapshot = errors.New("no snapshot available")

	// ErrInvalidCapacity is returned when the leaf capacity is below 1.
	ErrInvalidCapacity = quadtree.ErrInvalidCapacity

	// ErrInvalidMaxDepth is returned when the subdivision ceiling is negative.
	ErrInvalidMaxDepth = quadtree.ErrInvalidMaxDepth
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Snapshot absence unification.
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		return fmt.Errorf("%w: %w", ErrNoSnapshot, err)
	}

	return err
}
