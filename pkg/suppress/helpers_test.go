package suppress

import (
	"context"
	"testing"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/kernel/analytic"
	"github.com/chazu/defillet/pkg/recognize"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/require"
)

var (
	topFront   = v3.Vec{X: 20, Y: 0, Z: 10}
	topBack    = v3.Vec{X: 20, Y: 20, Z: 10}
	bottomBack = v3.Vec{X: 20, Y: 20, Z: 0}
)

func block(t *testing.T) *analytic.Solid {
	t.Helper()
	s, err := analytic.Block(v3.Vec{}, v3.Vec{X: 40, Y: 20, Z: 10})
	require.NoError(t, err)
	return s
}

func fillet(t *testing.T, s *analytic.Solid, near v3.Vec, r float64, segments int) *analytic.Solid {
	t.Helper()
	out, _, err := analytic.Fillet(s, s.NearestEdge(near), r, segments)
	require.NoError(t, err)
	return out
}

func lock(t *testing.T, s *analytic.Solid, name string) *analytic.Solid {
	t.Helper()
	for _, f := range s.Faces() {
		if f.Name == name {
			out, _, err := analytic.Lock(s, f)
			require.NoError(t, err)
			return out
		}
	}
	t.Fatalf("no face %q", name)
	return nil
}

func graphOf(t *testing.T, k kernel.Kernel, s kernel.Shape) *aag.Graph {
	t.Helper()
	g, err := aag.Build(k, s)
	require.NoError(t, err)
	return g
}

// recognized builds the graph of s and tags blend candidates of radius r.
func recognized(t *testing.T, s kernel.Shape, r float64) *aag.Graph {
	t.Helper()
	g := graphOf(t, analytic.New(), s)
	_, err := recognize.Recognizer{}.Recognize(context.Background(), g, r)
	require.NoError(t, err)
	return g
}

// lockedScenario has three radius-2 fillets. Ids 7 (bottom-back) and 8
// (top-back) can be removed; id 9 (top-front) rests on a locked face.
func lockedScenario(t *testing.T) *analytic.Solid {
	t.Helper()
	s := fillet(t, block(t), bottomBack, 2, 1)
	s = fillet(t, s, topBack, 2, 1)
	s = lock(t, s, "front")
	return fillet(t, s, topFront, 2, 1)
}

// hookKernel is the analytic kernel with a replaceable Excise.
type hookKernel struct {
	analytic.Kernel
	excise func(ctx context.Context, s kernel.Shape, chain []kernel.Face) (kernel.Shape, *kernel.History, error)
}

func (k hookKernel) Excise(ctx context.Context, s kernel.Shape, chain []kernel.Face) (kernel.Shape, *kernel.History, error) {
	return k.excise(ctx, s, chain)
}

func numFaces(s kernel.Shape) int { return s.(*analytic.Solid).NumFaces() }

func containsFace(s kernel.Shape, f kernel.Face) bool {
	for _, g := range s.(*analytic.Solid).Faces() {
		if kernel.Face(g) == f {
			return true
		}
	}
	return false
}
