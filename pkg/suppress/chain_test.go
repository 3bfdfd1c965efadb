package suppress

import (
	"context"
	"testing"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/kernel/analytic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChainWalksSegments(t *testing.T) {
	g := recognized(t, fillet(t, block(t), topFront, 2, 3), 2)

	for _, seed := range []int{7, 8, 9} {
		chain, err := ChainSuppressor{}.Chain(g, seed)
		require.NoError(t, err)
		assert.Equal(t, []int{7, 8, 9}, chain, "seed %d", seed)
	}
}

func TestChainKeepsSeparateFilletsApart(t *testing.T) {
	g := recognized(t, fillet(t, fillet(t, block(t), topFront, 2, 1), bottomBack, 2, 1), 2)

	chain, err := ChainSuppressor{}.Chain(g, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, chain)
}

func TestChainSeedWithoutCandidate(t *testing.T) {
	g := graphOf(t, analytic.New(), fillet(t, block(t), topFront, 2, 3))

	chain, err := ChainSuppressor{}.Chain(g, 8)
	require.NoError(t, err)
	assert.Equal(t, []int{8}, chain)
}

func TestChainSkipsQuarantined(t *testing.T) {
	g := recognized(t, fillet(t, block(t), topFront, 2, 3), 2)
	_, err := g.SetNodeAttribute(9, aag.Quarantined{Reason: "test"})
	require.NoError(t, err)

	chain, err := ChainSuppressor{}.Chain(g, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, chain)
}

func TestChainUnknownSeed(t *testing.T) {
	g := recognized(t, fillet(t, block(t), topFront, 2, 1), 2)
	_, err := ChainSuppressor{}.Suppress(context.Background(), g, 42)
	assert.ErrorIs(t, err, aag.ErrUnknownFace)
}

func TestSuppressSingleFillet(t *testing.T) {
	s := fillet(t, block(t), topFront, 2, 1)
	g := recognized(t, s, 2)
	blend, err := g.Face(7)
	require.NoError(t, err)

	res, err := ChainSuppressor{}.Suppress(context.Background(), g, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumChainsSuppressed)
	assert.Equal(t, []int{7}, res.ChainFaceIDs)
	assert.Equal(t, []kernel.Face{blend}, res.ChainFaces)

	out := res.Shape.(*analytic.Solid)
	assert.Equal(t, 6, out.NumFaces())
	assert.Equal(t, 12, out.NumEdges())
	assert.False(t, containsFace(out, blend))

	assert.True(t, res.History.IsDeleted(blend))
	gen := res.History.Generated(blend)
	require.Len(t, gen, 1, "one sharp edge replaces the blend")
	assert.Equal(t, kernel.TopoEdge, gen[0].TopoKind())

	// The two tangent edges bounding the blend are gone.
	deletedEdges := 0
	for _, e := range s.Edges() {
		if res.History.IsDeleted(e) && !e.IsArc() {
			deletedEdges++
		}
	}
	assert.Equal(t, 2, deletedEdges)
}

func TestSuppressFailureReportsChain(t *testing.T) {
	g := recognized(t, lockedScenario(t), 2)
	want, err := g.Face(9)
	require.NoError(t, err)

	res, err := ChainSuppressor{}.Suppress(context.Background(), g, 9)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrChainSuppressionFailed)
	assert.ErrorIs(t, err, kernel.ErrExcisionFailed)
	require.NotNil(t, res)
	assert.Equal(t, []int{9}, res.ChainFaceIDs)
	assert.Equal(t, []kernel.Face{want}, res.ChainFaces)
	assert.Nil(t, res.Shape)
}

func TestSuppressNoProgress(t *testing.T) {
	k := hookKernel{excise: func(_ context.Context, s kernel.Shape, _ []kernel.Face) (kernel.Shape, *kernel.History, error) {
		return s, kernel.NewHistory(), nil
	}}
	g := graphOf(t, k, fillet(t, block(t), topFront, 2, 1))

	res, err := ChainSuppressor{}.Suppress(context.Background(), g, 7)
	require.NoError(t, err)
	assert.Zero(t, res.NumChainsSuppressed)
}

func TestSuppressCancelled(t *testing.T) {
	g := recognized(t, fillet(t, block(t), topFront, 2, 1), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ChainSuppressor{}.Suppress(ctx, g, 7)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrChainSuppressionFailed)
}
