package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/config"
	"github.com/chazu/defillet/pkg/engine"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/kernel/analytic"
	"github.com/chazu/defillet/pkg/recognize"
	"github.com/chazu/defillet/pkg/suppress"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/plan-systems/klog"
)

// App wires the model script engine, the analytic kernel, the adjacency graph
// and the suppression driver behind the CLI commands.
type App struct {
	cfg      config.Config
	engine   *engine.Engine
	kernel   analytic.Kernel
	registry *prometheus.Registry
	metrics  *suppress.Metrics
}

// EvalErrorData is a JSON-serializable script error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ScriptError reports that a model script did not produce a shape.
type ScriptError struct {
	Errors []EvalErrorData
}

func (e *ScriptError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, d := range e.Errors {
		if d.Line > 0 {
			msgs[i] = fmt.Sprintf("line %d: %s", d.Line, d.Message)
		} else {
			msgs[i] = d.Message
		}
	}
	return "script: " + strings.Join(msgs, "; ")
}

// RunSummary is the JSON result of the suppress command.
type RunSummary struct {
	RunID            string             `json:"run_id"`
	Outcome          suppress.Outcome   `json:"outcome"`
	Radius           float64            `json:"radius"`
	FacesBefore      int                `json:"faces_before"`
	FacesAfter       int                `json:"faces_after"`
	EdgesAfter       int                `json:"edges_after"`
	SuppressedChains int                `json:"suppressed_chains"`
	Quarantined      []string           `json:"quarantined"`
	Attempts         []suppress.Attempt `json:"attempts"`
	History          map[string]int     `json:"history"`
	Elapsed          string             `json:"elapsed"`
	Error            string             `json:"error,omitempty"`
}

// CandidateData describes one recognised blend face.
type CandidateData struct {
	ID     int           `json:"id"`
	Chain  int           `json:"chain"`
	Kind   aag.BlendKind `json:"kind"`
	Radius float64       `json:"radius"`
	Convex bool          `json:"convex"`
}

// RecognizeSummary is the JSON result of the recognize command.
type RecognizeSummary struct {
	Radius     float64         `json:"radius"`
	Faces      int             `json:"faces"`
	Chains     int             `json:"chains"`
	Candidates []CandidateData `json:"candidates"`
}

// NewApp creates an App for cfg with its own metrics registry.
func NewApp(cfg config.Config) *App {
	reg := prometheus.NewRegistry()
	return &App{
		cfg:      cfg,
		engine:   engine.NewEngine(),
		kernel:   analytic.New(),
		registry: reg,
		metrics:  suppress.NewMetrics(reg),
	}
}

// Load evaluates a model script into a solid.
func (a *App) Load(source string) (*analytic.Solid, error) {
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return nil, err
	}
	if len(evalErrs) > 0 {
		se := &ScriptError{Errors: make([]EvalErrorData, len(evalErrs))}
		for i, e := range evalErrs {
			se.Errors[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return nil, se
	}
	return s, nil
}

// Graph builds the adjacency graph of s with the configured settings.
func (a *App) Graph(s *analytic.Solid) (*aag.Graph, error) {
	return aag.Build(a.kernel, s,
		aag.WithAllowSmooth(a.cfg.Graph.AllowSmooth),
		aag.WithSmoothTolerance(a.cfg.Graph.SmoothTolerance))
}

func (a *App) loadGraph(source string) (*analytic.Solid, *aag.Graph, error) {
	s, err := a.Load(source)
	if err != nil {
		return nil, nil, err
	}
	g, err := a.Graph(s)
	if err != nil {
		return nil, nil, err
	}
	return s, g, nil
}

// Suppress removes all blends of the configured radius from the script's
// solid. A cancelled run yields a summary with outcome "cancelled" and no
// error; a failed run yields both the summary and the error.
func (a *App) Suppress(ctx context.Context, source string) (*RunSummary, *analytic.Solid, error) {
	s, g, err := a.loadGraph(source)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	rep, runErr := a.cfg.Driver(a.metrics).Run(ctx, g, a.cfg.Recognition.Radius)

	sum := &RunSummary{
		RunID:            rep.RunID.String(),
		Outcome:          rep.Outcome,
		Radius:           a.cfg.Recognition.Radius,
		FacesBefore:      s.NumFaces(),
		SuppressedChains: rep.NumSuppressedChains,
		Quarantined:      []string{},
		Attempts:         rep.Attempts,
		History:          historyCounts(rep.History),
		Elapsed:          time.Since(start).Round(time.Microsecond).String(),
	}
	if sum.Attempts == nil {
		sum.Attempts = []suppress.Attempt{}
	}
	out, _ := rep.Shape.(*analytic.Solid)
	if out != nil {
		sum.FacesAfter, sum.EdgesAfter = out.NumFaces(), out.NumEdges()
	}
	for _, f := range rep.Quarantined {
		sum.Quarantined = append(sum.Quarantined, faceLabel(f))
	}
	if runErr != nil {
		sum.Error = runErr.Error()
	}
	klog.Infof("run %s: %s, %d chains suppressed, %d -> %d faces",
		sum.RunID, sum.Outcome, sum.SuppressedChains, sum.FacesBefore, sum.FacesAfter)
	return sum, out, runErr
}

// Recognize marks blend candidates of the configured radius and reports
// them with their chain numbers.
func (a *App) Recognize(ctx context.Context, source string) (*RecognizeSummary, error) {
	_, g, err := a.loadGraph(source)
	if err != nil {
		return nil, err
	}
	ids, err := a.cfg.Driver(nil).Recognizer.Recognize(ctx, g, a.cfg.Recognition.Radius)
	if err != nil {
		return nil, err
	}
	sum := &RecognizeSummary{
		Radius:     a.cfg.Recognition.Radius,
		Faces:      g.NumNodes(),
		Candidates: []CandidateData{},
	}
	for _, id := range ids.Sorted() {
		bc, ok := aag.Attr[aag.BlendCandidate](g, id)
		if !ok {
			continue
		}
		sum.Candidates = append(sum.Candidates, CandidateData{
			ID: id, Chain: bc.Chain, Kind: bc.Kind, Radius: bc.Radius, Convex: bc.Convex,
		})
		if bc.Chain > sum.Chains {
			sum.Chains = bc.Chain
		}
	}
	return sum, nil
}

// SmoothEdges returns the sorted ids of the solid's smooth edges.
func (a *App) SmoothEdges(source string) ([]int, error) {
	_, g, err := a.loadGraph(source)
	if err != nil {
		return nil, err
	}
	return recognize.FindSmoothEdges(g).Sorted(), nil
}

// DumpAAG writes the adjacency graph as JSON. With withCandidates set, blend
// recognition runs first so candidate attributes appear in the dump.
func (a *App) DumpAAG(ctx context.Context, source string, withCandidates bool, w io.Writer) error {
	_, g, err := a.loadGraph(source)
	if err != nil {
		return err
	}
	if withCandidates {
		if _, err := a.cfg.Driver(nil).Recognizer.Recognize(ctx, g, a.cfg.Recognition.Radius); err != nil {
			return err
		}
	}
	for _, v := range g.Validate() {
		klog.Warningf("aag: %v", v)
	}
	return g.DumpJSON(w)
}

// WriteMetrics writes the run metrics in Prometheus text format to path.
func (a *App) WriteMetrics(path string) error {
	return prometheus.WriteToTextfile(path, a.registry)
}

func historyCounts(h *kernel.History) map[string]int {
	counts := map[string]int{}
	for _, r := range h.Records() {
		counts[r.Kind.String()]++
	}
	return counts
}

func faceLabel(f kernel.Face) string {
	if af, ok := f.(*analytic.Face); ok && af.Name != "" {
		return af.Name
	}
	return fmt.Sprintf("%p", f)
}
