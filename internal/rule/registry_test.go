package rule

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

// nopEvaluator returns nil for every evaluation.
var nopEvaluator = EvaluatorFunc(func(_ *Context, _ Options) (Result, error) {
	return nil, nil
})

// TestRegistryAdd tests definition registration.
func TestRegistryAdd(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     *Definition
		wantErr error
	}{
		{name: "valid definition", def: &Definition{ID: "image-alt", Evaluator: nopEvaluator}},
		{name: "nil definition", def: nil, wantErr: ErrNilDefinition},
		{name: "empty id", def: &Definition{Evaluator: nopEvaluator}, wantErr: ErrEmptyID},
		{name: "nil evaluator", def: &Definition{ID: "image-alt"}, wantErr: ErrNilEvaluator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewRegistry()
			err := r.Add(tt.def)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}

			wantLen := 1
			if tt.wantErr != nil {
				wantLen = 0
			}
			if r.Len() != wantLen {
				t.Errorf("expected %d definitions, got %d", wantLen, r.Len())
			}
		})
	}
}

// TestRegistryFind tests lookup by identifier.
func TestRegistryFind(t *testing.T) {
	t.Parallel()

	t.Run("empty registry reports absence", func(t *testing.T) {
		t.Parallel()

		def, ok := NewRegistry().Find("aria-roles")
		if ok || def != nil {
			t.Errorf("expected absence, got %v, %v", def, ok)
		}
	})

	t.Run("unknown id reports absence", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustAdd(&Definition{ID: "image-alt", Evaluator: nopEvaluator})

		if _, ok := r.Find("aria-roles"); ok {
			t.Error("expected absence for unknown id")
		}
	})

	t.Run("matches exactly", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		r.MustAdd(&Definition{ID: "aria-roles", Evaluator: nopEvaluator})

		for _, id := range []string{"ARIA-ROLES", "aria-roles ", "aria"} {
			if _, ok := r.Find(id); ok {
				t.Errorf("expected %q not to match", id)
			}
		}
	})

	t.Run("returns the registered definition itself", func(t *testing.T) {
		t.Parallel()

		r := NewRegistry()
		want := &Definition{ID: "aria-roles", Evaluator: nopEvaluator}
		r.MustAdd(want)

		got, ok := r.Find("aria-roles")
		if !ok || got != want {
			t.Errorf("expected the registered pointer, got %p", got)
		}
	})

	t.Run("first match wins on duplicates", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		r := NewRegistry(WithRegistryLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		first := &Definition{ID: "dup", Evaluator: nopEvaluator}
		second := &Definition{ID: "dup", Evaluator: nopEvaluator}
		r.MustAdd(first, second)

		got, _ := r.Find("dup")
		if got != first {
			t.Error("expected the first registered definition")
		}
		if r.Len() != 2 {
			t.Errorf("expected both definitions kept, got %d", r.Len())
		}
		if !strings.Contains(logs.String(), "duplicate rule id") {
			t.Errorf("expected duplicate warning, got %q", logs.String())
		}
	})
}

// TestRegistryList tests listing and tag filtering.
func TestRegistryList(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	r.MustAdd(
		&Definition{ID: "b", Tags: []string{"wcag2a"}, Evaluator: nopEvaluator},
		&Definition{ID: "a", Tags: []string{"best-practice"}, Evaluator: nopEvaluator},
		&Definition{ID: "c", Tags: []string{"wcag2a", "wcag111"}, Evaluator: nopEvaluator},
	)

	t.Run("keeps registration order", func(t *testing.T) {
		t.Parallel()

		var ids []string
		for _, d := range r.List() {
			ids = append(ids, d.ID)
		}
		if strings.Join(ids, ",") != "b,a,c" {
			t.Errorf("got %v", ids)
		}
	})

	t.Run("returns a copy of the list", func(t *testing.T) {
		t.Parallel()

		list := r.List()
		list[0] = nil
		if r.List()[0] == nil {
			t.Error("expected List to return a copy")
		}
	})

	t.Run("filters by tag", func(t *testing.T) {
		t.Parallel()

		tagged := r.WithTag("wcag2a")
		if len(tagged) != 2 || tagged[0].ID != "b" || tagged[1].ID != "c" {
			t.Errorf("unexpected tagged rules: %v", tagged)
		}
		if got := r.WithTag("missing"); len(got) != 0 {
			t.Errorf("expected no rules, got %v", got)
		}
	})
}

// TestMustAddPanics tests that MustAdd panics on invalid definitions.
func TestMustAddPanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	NewRegistry().MustAdd(&Definition{ID: "no-evaluator"})
}
