package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

const blockScript = `(block :min (vec3 0 0 0) :max (vec3 20 20 10))`

func TestEvaluateEmptyString(t *testing.T) {
	eng := NewEngine()

	for _, src := range []string{"", "   \n\t  \n  "} {
		s, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
		if s != nil {
			t.Fatal("expected nil solid for empty script")
		}
		if len(evalErrs) != 1 || !strings.Contains(evalErrs[0].Message, "empty") {
			t.Fatalf("expected empty-script error, got %v", evalErrs)
		}
	}
}

func TestEvaluateBlock(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate(blockScript)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected non-nil solid")
	}
	if s.NumFaces() != 6 || s.NumEdges() != 12 {
		t.Errorf("expected 6 faces and 12 edges, got %d and %d", s.NumFaces(), s.NumEdges())
	}
}

func TestEvaluateMultipleExpressions(t *testing.T) {
	eng := NewEngine()

	source := `
(def lo (vec3 0 0 0))
(def hi (vec3 20 20 10))
(def b (block :min lo :max hi))
b
`
	s, evalErrs, err := eng.Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if s == nil || s.NumFaces() != 6 {
		t.Fatalf("expected a 6-face block, got %v", s)
	}
}

func TestEvaluateNonShapeResult(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate("(+ 1 2)")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil solid")
	}
	if len(evalErrs) == 0 || !strings.Contains(evalErrs[0].Message, "must end with a shape") {
		t.Fatalf("expected shape error, got %v", evalErrs)
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate("(+ 1 2")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil solid on syntax error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for syntax error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error message should not be empty")
	}
}

func TestEvaluateUndefinedSymbol(t *testing.T) {
	eng := NewEngine()

	s, evalErrs, err := eng.Evaluate("(block :min undefined-symbol :max (vec3 1 1 1))")
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil solid on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error for undefined symbol")
	}
}

func TestEvalErrorImplementsError(t *testing.T) {
	e := EvalError{Line: 5, Message: "something went wrong"}
	s := e.Error()
	if !strings.Contains(s, "line 5") || !strings.Contains(s, "something went wrong") {
		t.Errorf("Error() should contain line and message, got: %s", s)
	}

	e2 := EvalError{Message: "no location"}
	if strings.Contains(e2.Error(), "line") {
		t.Errorf("Error() with no line should not contain 'line', got: %s", e2.Error())
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	eng := NewEngine()

	src := blockScript + "\n" + `(fillet (block :min (vec3 0 0 0) :max (vec3 20 20 10)) :near (vec3 10 0 10) :radius 2 :segments 3)`
	for i := 0; i < 5; i++ {
		s, evalErrs, err := eng.Evaluate(src)
		if err != nil {
			t.Fatalf("iteration %d: unexpected fatal error: %v", i, err)
		}
		if len(evalErrs) > 0 {
			t.Fatalf("iteration %d: unexpected eval errors: %v", i, evalErrs)
		}
		if s.NumFaces() != 9 {
			t.Errorf("iteration %d: expected 9 faces, got %d", i, s.NumFaces())
		}
	}
}

func TestEvaluateTimeout(t *testing.T) {
	// A channel that never sends exercises the timeout path without needing a
	// script that runs forever.
	var mu sync.Mutex
	var gen uint64 = 1
	ch := make(chan evalResult)

	done := make(chan struct{})
	var resultErr error
	go func() {
		defer close(done)
		_, _, resultErr = waitWithTimeout(ch, 1, &mu, &gen)
	}()

	select {
	case <-done:
		if resultErr == nil {
			t.Fatal("expected timeout error, got nil")
		}
		if !strings.Contains(resultErr.Error(), "timed out") {
			t.Errorf("expected timeout error message, got: %v", resultErr)
		}
	case <-time.After(EvalTimeout + 2*time.Second):
		t.Fatal("test itself timed out waiting for evaluation timeout")
	}
}

func TestEvaluateGenerationDiscardsStale(t *testing.T) {
	var mu sync.Mutex
	gen := uint64(2)

	ch := make(chan evalResult, 1)
	ch <- evalResult{}

	_, _, err := waitWithTimeout(ch, 1, &mu, &gen)
	if err == nil {
		t.Fatal("expected error for stale generation")
	}
	if !strings.Contains(err.Error(), "superseded") {
		t.Errorf("expected superseded error, got: %v", err)
	}
}

func TestParseZygomysError(t *testing.T) {
	tests := []struct {
		name     string
		msg      string
		wantLine int
		wantMsg  string
	}{
		{"error on line format", "Error on line 5: unexpected token\n", 5, "unexpected token"},
		{"no line info", "some generic error", 0, "some generic error"},
		{"line format lowercase", "error on line 12: missing paren", 12, "missing paren"},
		{"short line format", "line 3: bad vec3", 3, "bad vec3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := parseZygomysError(errString(tt.msg))
			if len(errs) == 0 {
				t.Fatal("expected at least one error")
			}
			if errs[0].Line != tt.wantLine {
				t.Errorf("line = %d, want %d", errs[0].Line, tt.wantLine)
			}
			if !strings.Contains(errs[0].Message, tt.wantMsg) {
				t.Errorf("message = %q, want containing %q", errs[0].Message, tt.wantMsg)
			}
		})
	}
}

type errString string

func (e errString) Error() string { return string(e) }
