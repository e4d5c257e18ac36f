package scope

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/lumodev/lumo/intercept"
	"github.com/lumodev/lumo/kit/genericsutil"
	"github.com/lumodev/lumo/response"
)

func TestConfigResolution(t *testing.T) {
	parent := New(Config{
		Timeout: genericsutil.Ptr(5 * time.Second),
		Retries: genericsutil.Ptr(2),
	})
	parent.SetOrigin("https://example.com")
	child := parent.Child(Config{
		Retries: genericsutil.Ptr(0),
	})

	t.Run("ChildOverrideWins", func(t *testing.T) {
		if v, ok := child.Retries(); !ok || v != 0 {
			t.Errorf("Expected child retries 0, got %d (%v)", v, ok)
		}
	})

	t.Run("ParentFillsGaps", func(t *testing.T) {
		if v, ok := child.Timeout(); !ok || v != 5*time.Second {
			t.Errorf("Expected inherited timeout, got %v (%v)", v, ok)
		}
		if o := child.Origin(); o != "https://example.com" {
			t.Errorf("Expected inherited origin, got %q", o)
		}
	})

	t.Run("UnsetIsAbsent", func(t *testing.T) {
		if _, ok := child.RetryDelay(); ok {
			t.Error("Unset retry delay should report absent")
		}
		if _, ok := child.SSREnabled(); ok {
			t.Error("Unset SSR flag should report absent")
		}
	})

	t.Run("DataNotInherited", func(t *testing.T) {
		parent.PutResponse("k", "v")
		if len(child.Responses()) != 0 {
			t.Error("Child must not see parent's collected responses")
		}
		if child.Interceptors == parent.Interceptors {
			t.Error("Child must own an independent interceptor registry")
		}
	})
}

func TestScopeIsolation(t *testing.T) {
	// Two concurrent flows, each with its own scope and interceptor set,
	// must never observe each other's registrations or responses.
	var wg sync.WaitGroup
	results := make([]int, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := New(Config{})
			s.Interceptors.Use("**", func(req *http.Request, next intercept.Next) (*response.Response, error) {
				return next(req)
			})
			for j := 0; j <= i; j++ {
				s.PutResponse("r", i)
			}
			err := Run(context.Background(), s, func(ctx context.Context) error {
				got := FromContext(ctx)
				if got != s {
					t.Error("FromContext returned a different scope")
				}
				results[i] = got.Interceptors.Len()
				return nil
			})
			if err != nil {
				t.Errorf("Run failed: %v", err)
			}
			if s.Responses()["r"] != i {
				t.Errorf("Scope %d saw foreign response data", i)
			}
		}()
	}
	wg.Wait()
	if results[0] != 1 || results[1] != 1 {
		t.Errorf("Each scope should see exactly its own interceptor, got %v", results)
	}
}

func TestNestedScopes(t *testing.T) {
	outer := New(Config{Timeout: genericsutil.Ptr(time.Second)})
	ctx := Context(context.Background(), outer)

	inner := outer.Child(Config{Timeout: genericsutil.Ptr(2 * time.Second)})
	ictx := Context(ctx, inner)

	if got := FromContext(ictx); got != inner {
		t.Error("Inner context should carry the inner scope")
	}
	// The outer context is untouched; unwinding is implicit.
	if got := FromContext(ctx); got != outer {
		t.Error("Outer context lost its scope")
	}
	if outer.ID() == inner.ID() {
		t.Error("Scopes must have distinct IDs")
	}
}

func TestFromContextNil(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("Expected nil for bare context, got %v", got)
	}
	if got := FromContext(nil); got != nil {
		t.Errorf("Expected nil for nil context, got %v", got)
	}
}

func TestPendingWork(t *testing.T) {
	t.Run("RunWaitsForGo", func(t *testing.T) {
		s := New(Config{})
		done := false
		err := Run(context.Background(), s, func(ctx context.Context) error {
			s.Go(func() error {
				time.Sleep(10 * time.Millisecond)
				s.PutResponse("late", true)
				done = true
				return nil
			})
			return nil
		})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if !done {
			t.Error("Run returned before tracked work settled")
		}
		if s.Responses()["late"] != true {
			t.Error("Late response missing from snapshot")
		}
	})

	t.Run("RunSurfacesGoError", func(t *testing.T) {
		s := New(Config{})
		boom := errors.New("boom")
		err := Run(context.Background(), s, func(ctx context.Context) error {
			s.Go(func() error { return boom })
			return nil
		})
		if !errors.Is(err, boom) {
			t.Errorf("Expected tracked work error, got %v", err)
		}
	})
}

func TestOrdinals(t *testing.T) {
	s := New(Config{})
	if a, b := s.NextOrdinal(), s.NextOrdinal(); a != 1 || b != 2 {
		t.Errorf("Expected 1,2 got %d,%d", a, b)
	}
	// A child starts its own counter.
	c := s.Child(Config{})
	if got := c.NextOrdinal(); got != 1 {
		t.Errorf("Expected child counter to start fresh, got %d", got)
	}
}
