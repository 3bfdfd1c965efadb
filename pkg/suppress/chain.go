// Package suppress removes recognised blend chains from a solid, one chain
// at a time, rebuilding the adjacency graph after every change.
package suppress

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/dihedral"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// ErrChainSuppressionFailed is returned when the kernel cannot excise a
// chain. It is expected and recoverable: the driver quarantines the chain.
var ErrChainSuppressionFailed = errors.New("chain suppression failed")

// DefaultChainRadiusTolerance bounds the radius difference between adjacent
// blend faces that still belong to one chain.
const DefaultChainRadiusTolerance = 1e-3

// ChainResult is the outcome of one chain suppression. On failure only the
// chain fields are set.
type ChainResult struct {
	Shape   kernel.Shape
	History *kernel.History
	// ChainFaceIDs are the graph ids of the chain, ascending.
	ChainFaceIDs []int
	// ChainFaces are the kernel faces of the chain, in id order.
	ChainFaces []kernel.Face
	// NumChainsSuppressed is 1 when the kernel returned a shape with fewer
	// faces, 0 otherwise.
	NumChainsSuppressed int
}

// ChainSuppressor collects the blend chain around a seed face and asks the
// kernel to excise it.
type ChainSuppressor struct {
	// RadiusTolerance is the accepted radius difference between chained
	// blends. Zero means DefaultChainRadiusTolerance.
	RadiusTolerance float64
}

// Chain walks outward from seed across smooth arcs to neighbours carrying a
// compatible aag.BlendCandidate and returns the chain ids in ascending order.
// Quarantined faces are not entered. A seed without a candidate attribute is
// a chain of one.
func (c ChainSuppressor) Chain(g *aag.Graph, seed int) ([]int, error) {
	if _, err := g.Face(seed); err != nil {
		return nil, err
	}
	tol := c.RadiusTolerance
	if tol <= 0 {
		tol = DefaultChainRadiusTolerance
	}
	chain := aag.NewIDSet(seed)
	seedAttr, ok := aag.Attr[aag.BlendCandidate](g, seed)
	if !ok {
		return chain.Sorted(), nil
	}

	q := linkedlistqueue.New()
	q.Enqueue(seed)
	for !q.Empty() {
		v, _ := q.Dequeue()
		id := v.(int)
		nbs, err := g.Neighbors(id)
		if err != nil {
			return nil, err
		}
		for _, nb := range nbs.Sorted() {
			if chain.Has(nb) {
				continue
			}
			if info, _ := g.Arc(id, nb); info.Angle != dihedral.Smooth {
				continue
			}
			if _, bad := aag.Attr[aag.Quarantined](g, nb); bad {
				continue
			}
			bc, ok := aag.Attr[aag.BlendCandidate](g, nb)
			if !ok || bc.Kind != seedAttr.Kind || bc.Convex != seedAttr.Convex ||
				math.Abs(bc.Radius-seedAttr.Radius) > tol {
				continue
			}
			chain.Add(nb)
			q.Enqueue(nb)
		}
	}
	return chain.Sorted(), nil
}

// Suppress excises the chain containing seed. When the kernel fails the
// error wraps ErrChainSuppressionFailed and the result still lists the chain
// that was attempted. Cancellation of ctx is returned as is.
func (c ChainSuppressor) Suppress(ctx context.Context, g *aag.Graph, seed int) (*ChainResult, error) {
	ids, err := c.Chain(g, seed)
	if err != nil {
		return nil, err
	}
	res := &ChainResult{ChainFaceIDs: ids}
	for _, id := range ids {
		f, err := g.Face(id)
		if err != nil {
			return nil, err
		}
		res.ChainFaces = append(res.ChainFaces, f)
	}

	k := g.Kernel()
	shape, hist, err := k.Excise(ctx, g.Shape(), res.ChainFaces)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return res, err
		}
		return res, fmt.Errorf("%w: chain %v from face %d: %w", ErrChainSuppressionFailed, ids, seed, err)
	}

	res.Shape = shape
	res.History = hist
	if len(k.Faces(shape)) < len(k.Faces(g.Shape())) {
		res.NumChainsSuppressed = 1
	}
	return res, nil
}
