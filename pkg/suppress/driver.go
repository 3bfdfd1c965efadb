package suppress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/defillet/pkg/aag"
	"github.com/chazu/defillet/pkg/kernel"
	"github.com/chazu/defillet/pkg/recognize"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Outcome is the terminal state of a driver run.
type Outcome int

const (
	Done      Outcome = iota // nothing left to suppress, or no further progress
	Failed                   // recognition or graph rebuild failed
	Cancelled                // ctx was cancelled; partial results are valid
)

func (o Outcome) String() string {
	switch o {
	case Done:
		return "done"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome name in JSON summaries.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses a name written by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	for _, v := range []Outcome{Done, Failed, Cancelled} {
		if v.String() == string(b) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", b)
}

// Attempt records one call to the chain suppressor.
type Attempt struct {
	// FaceID is the selected seed, valid in the graph of that iteration.
	FaceID int `json:"face_id"`
	// Chain lists the chain ids attempted.
	Chain []int `json:"chain"`
	// Suppressed is true when the chain was removed.
	Suppressed bool   `json:"suppressed"`
	Err        string `json:"error,omitempty"`
}

// Report is the result of a driver run.
type Report struct {
	RunID   uuid.UUID
	Outcome Outcome
	// Shape is the final (or, when cancelled, latest) shape.
	Shape kernel.Shape
	// History merges the history of every successful suppression.
	History             *kernel.History
	NumSuppressedChains int
	// Quarantined lists the faces the kernel failed to excise, in the order
	// they were quarantined.
	Quarantined []kernel.Face
	Attempts    []Attempt
	// Err is the failure reason when Outcome is Failed.
	Err error
}

// Driver runs incremental blend suppression.
type Driver struct {
	Recognizer recognize.Recognizer
	Suppressor ChainSuppressor
	// Metrics is optional.
	Metrics *Metrics
}

type phase int

const (
	phaseRecognizing phase = iota
	phaseSelecting
	phaseSuppressing
	phaseUpdating
	phaseTerminal
)

func (p phase) String() string {
	return [...]string{"recognizing", "selecting", "suppressing", "updating", "terminal"}[p]
}

// runState is the state threaded through the driver loop.
type runState struct {
	phase     phase
	graph     *aag.Graph
	fids      *treeset.Set // candidate ids in the current graph
	fid       int          // selected seed
	recognize bool

	quarantine map[kernel.Face]struct{}
	report     *Report
}

func (st *runState) quarantined(f kernel.Face) bool {
	_, ok := st.quarantine[f]
	return ok
}

func (st *runState) addQuarantine(f kernel.Face) {
	if f == nil || st.quarantined(f) {
		return
	}
	st.quarantine[f] = struct{}{}
	st.report.Quarantined = append(st.report.Quarantined, f)
}

func (st *runState) finish(o Outcome, err error) {
	st.phase = phaseTerminal
	st.report.Outcome = o
	st.report.Err = err
}

// Run suppresses blend chains of radius from g's shape until none remain or
// no progress is possible. The graph is never modified structurally: after
// each successful suppression a fresh graph is built from the new shape with
// the same construction settings. Faces whose chain fails to excise are
// quarantined by identity and never selected again in this run.
//
// Run returns a non-nil error only when the outcome is Failed. A cancelled
// run returns the partial result with a nil error.
func (d *Driver) Run(ctx context.Context, g *aag.Graph, radius float64) (*Report, error) {
	start := time.Now()
	st := &runState{
		phase:      phaseRecognizing,
		graph:      g,
		fids:       treeset.NewWithIntComparator(),
		recognize:  true,
		quarantine: make(map[kernel.Face]struct{}),
		report: &Report{
			RunID:   uuid.New(),
			Shape:   g.Shape(),
			History: kernel.NewHistory(),
		},
	}
	klog.V(1).Infof("suppress[%s]: start, radius %g, %d faces", st.report.RunID, radius, g.NumNodes())

	for st.phase != phaseTerminal {
		klog.V(2).Infof("suppress[%s]: %s", st.report.RunID, st.phase)
		switch st.phase {
		case phaseRecognizing:
			d.recognizing(ctx, st, radius)
		case phaseSelecting:
			d.selecting(st)
		case phaseSuppressing:
			d.suppressing(ctx, st)
		case phaseUpdating:
			d.updating(st)
		}
	}

	rep := st.report
	d.Metrics.finish(rep.Outcome, time.Since(start).Seconds())
	klog.V(1).Infof("suppress[%s]: %s, %d chains suppressed, %d faces quarantined",
		rep.RunID, rep.Outcome, rep.NumSuppressedChains, len(rep.Quarantined))
	if rep.Outcome == Failed {
		return rep, rep.Err
	}
	return rep, nil
}

func (d *Driver) recognizing(ctx context.Context, st *runState, radius float64) {
	if st.recognize {
		ids, err := d.Recognizer.Recognize(ctx, st.graph, radius)
		if err != nil {
			if ctx.Err() != nil {
				st.finish(Cancelled, nil)
				return
			}
			st.finish(Failed, pkgerrors.Wrap(err, "recognize"))
			return
		}
		st.fids.Clear()
		for id := range ids {
			st.fids.Add(id)
		}
	}
	if ctx.Err() != nil {
		st.finish(Cancelled, nil)
		return
	}
	st.phase = phaseSelecting
}

func (d *Driver) selecting(st *runState) {
	if st.fids.Empty() {
		st.finish(Done, nil)
		return
	}
	it := st.fids.Iterator()
	it.Last()
	fid := it.Value().(int)

	f, err := st.graph.Face(fid)
	if err != nil {
		st.finish(Failed, err)
		return
	}
	if st.quarantined(f) {
		klog.V(2).Infof("suppress[%s]: face %d is quarantined, skipping", st.report.RunID, fid)
		st.fids.Remove(fid)
		st.recognize = false
		return
	}
	st.fid = fid
	st.phase = phaseSuppressing
}

func (d *Driver) suppressing(ctx context.Context, st *runState) {
	res, err := d.Suppressor.Suppress(ctx, st.graph, st.fid)
	switch {
	case err == nil:
	case ctx.Err() != nil:
		st.finish(Cancelled, nil)
		return
	case errors.Is(err, ErrChainSuppressionFailed):
		d.Metrics.attempt(false)
		st.report.Attempts = append(st.report.Attempts, Attempt{
			FaceID: st.fid, Chain: res.ChainFaceIDs, Err: err.Error(),
		})
		klog.Warningf("suppress[%s]: quarantining chain %v: %v", st.report.RunID, res.ChainFaceIDs, err)

		reason := err.Error()
		f, _ := st.graph.Face(st.fid)
		st.addQuarantine(f)
		st.fids.Remove(st.fid)
		for i, id := range res.ChainFaceIDs {
			st.addQuarantine(res.ChainFaces[i])
			st.fids.Remove(id)
			// The graph is kept until the next success, so mark it too.
			if _, serr := st.graph.SetNodeAttribute(id, aag.Quarantined{Reason: reason}); serr != nil {
				st.finish(Failed, serr)
				return
			}
		}
		st.recognize = false
		st.phase = phaseRecognizing
		return
	default:
		st.finish(Failed, err)
		return
	}

	st.report.Attempts = append(st.report.Attempts, Attempt{
		FaceID: st.fid, Chain: res.ChainFaceIDs, Suppressed: res.NumChainsSuppressed > 0,
	})
	if res.NumChainsSuppressed == 0 {
		klog.V(1).Infof("suppress[%s]: chain %v made no progress", st.report.RunID, res.ChainFaceIDs)
		st.finish(Done, nil)
		return
	}

	d.Metrics.attempt(true)
	st.report.NumSuppressedChains += res.NumChainsSuppressed
	st.report.Shape = res.Shape
	st.report.History.Concatenate(res.History)
	st.fids.Remove(st.fid)
	for _, id := range res.ChainFaceIDs {
		st.fids.Remove(id)
	}
	klog.V(1).Infof("suppress[%s]: removed chain %v seeded at face %d", st.report.RunID, res.ChainFaceIDs, st.fid)
	st.phase = phaseUpdating
}

func (d *Driver) updating(st *runState) {
	if st.fids.Empty() {
		st.finish(Done, nil)
		return
	}
	g, err := aag.Build(st.graph.Kernel(), st.report.Shape,
		aag.WithAllowSmooth(st.graph.AllowSmooth()),
		aag.WithSmoothTolerance(st.graph.SmoothTolerance()))
	if err != nil {
		st.finish(Failed, pkgerrors.Wrap(err, "rebuild graph"))
		return
	}
	d.Metrics.rebuild()
	st.graph = g
	st.recognize = true
	st.phase = phaseRecognizing
}

// SuppressBlendsIncrementally runs a Driver with default settings and returns
// the final shape, merged history and number of suppressed chains. A
// cancelled run returns its partial result and ctx's error.
func SuppressBlendsIncrementally(ctx context.Context, g *aag.Graph, radius float64) (kernel.Shape, *kernel.History, int, error) {
	rep, err := (&Driver{}).Run(ctx, g, radius)
	if err != nil {
		return rep.Shape, rep.History, rep.NumSuppressedChains, err
	}
	if rep.Outcome == Cancelled {
		return rep.Shape, rep.History, rep.NumSuppressedChains, ctx.Err()
	}
	return rep.Shape, rep.History, rep.NumSuppressedChains, nil
}
