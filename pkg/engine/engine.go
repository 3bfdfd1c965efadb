// Package engine evaluates model scripts: a sandboxed zygomys Lisp dialect
// whose builtins construct and edit analytic solids. The value of the last
// expression in a script is the resulting solid.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/defillet/pkg/kernel/analytic"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/plan-systems/klog"
)

// EvalError is a non-fatal error in user code, such as a parse error or a
// builtin rejecting its arguments.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine evaluates model scripts. It is safe for concurrent use; each call to
// Evaluate runs in a fresh sandbox.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs source and returns the solid it evaluates to.
//
// Return semantics:
//   - On success: solid + nil errors + nil error
//   - On parse/eval failure, or a script not ending in a shape: nil + eval errors + nil
//   - On fatal failure (timeout, panic, superseded): nil + nil + error
func (e *Engine) Evaluate(source string) (*analytic.Solid, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		s, evalErrs, err := e.evaluate(source)
		ch <- evalResult{solid: s, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

func (e *Engine) evaluate(source string) (*analytic.Solid, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, []EvalError{{Message: "script is empty"}}, nil
	}

	// Sandbox mode keeps scripts away from the filesystem and syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	v, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	s, ok := v.(*sexpSolid)
	if !ok {
		return nil, []EvalError{{Message: fmt.Sprintf("script must end with a shape, got %s", v.SexpString(nil))}}, nil
	}
	klog.V(2).Infof("engine: script produced %d faces, %d edges", s.solid.NumFaces(), s.solid.NumEdges())
	return s.solid, nil, nil
}

// linePattern matches "Error on line N: ..." as reported by zygomys.
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches "line N: ...".
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalErrors, extracting the
// line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
