package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Layout hooks
	l := NoopLayoutHooks{}
	l.OnLayoutStart("main", 12, "standard")
	l.OnLayoutComplete("main", LayoutSummary{Passes: 1, Direct: 10}, time.Millisecond, nil)
	l.OnSolve("main", 8, 14, 0, false)
	l.OnMeasure("button", true)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "login.toml")
	p.OnLoadComplete(ctx, "login.toml", 7, time.Second, nil)
	p.OnRenderStart(ctx, []string{"png"})
	p.OnRenderComplete(ctx, []string{"png"}, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "frames")
	c.OnCacheMiss(ctx, "frames")
	c.OnCacheSet(ctx, "frames", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Layout() should return NoopLayoutHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	// Set custom hooks
	customLayout := &recordingLayoutHooks{}
	SetLayoutHooks(customLayout)
	if Layout() != customLayout {
		t.Error("SetLayoutHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("Reset() should restore NoopLayoutHooks")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testPipelineHooks{}
	SetPipelineHooks(custom)

	// Setting nil should be ignored
	SetPipelineHooks(nil)
	SetLayoutHooks(nil)
	SetCacheHooks(nil)

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}
	if _, ok := Layout().(NoopLayoutHooks); !ok {
		t.Error("SetLayoutHooks(nil) should be ignored")
	}

	Reset()
}

func TestLayoutHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	rec := &recordingLayoutHooks{}
	SetLayoutHooks(rec)

	Layout().OnLayoutStart("form", 3, "none")
	Layout().OnMeasure("label", false)
	Layout().OnMeasure("label", true)
	Layout().OnLayoutComplete("form", LayoutSummary{MeasureCalls: 1, CacheHits: 1}, time.Millisecond, errors.New("boom"))

	if rec.starts != 1 || rec.measures != 2 || rec.cached != 1 {
		t.Fatalf("got starts=%d measures=%d cached=%d", rec.starts, rec.measures, rec.cached)
	}
	if rec.last.CacheHits != 1 || rec.lastErr == nil {
		t.Errorf("summary not forwarded: %+v err=%v", rec.last, rec.lastErr)
	}
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }

type recordingLayoutHooks struct {
	NoopLayoutHooks
	mu       sync.Mutex
	starts   int
	measures int
	cached   int
	last     LayoutSummary
	lastErr  error
}

func (r *recordingLayoutHooks) OnLayoutStart(string, int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
}

func (r *recordingLayoutHooks) OnMeasure(_ string, cached bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.measures++
	if cached {
		r.cached++
	}
}

func (r *recordingLayoutHooks) OnLayoutComplete(_ string, s LayoutSummary, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.last, r.lastErr = s, err
}
