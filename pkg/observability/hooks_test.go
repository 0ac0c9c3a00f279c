package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnIngestStart(ctx, "graph.json")
	p.OnIngestComplete(ctx, "graph.json", 100, time.Second, nil)
	p.OnLayoutStart(ctx, "dot", 100)
	p.OnLayoutComplete(ctx, "dot", time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)

	// State hooks
	s := NoopStateHooks{}
	s.OnCollapse(ctx, "loc0", 2)
	s.OnExpand(ctx, "loc0", 0)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "layout")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Server hooks
	h := NoopServerHooks{}
	h.OnRequest(ctx, "GET", "/api/documents")
	h.OnResponse(ctx, "GET", "/api/documents", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := State().(NoopStateHooks); !ok {
		t.Error("State() should return NoopStateHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Server().(NoopServerHooks); !ok {
		t.Error("Server() should return NoopServerHooks by default")
	}

	// Set custom hooks
	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customState := &testStateHooks{}
	SetStateHooks(customState)
	if State() != customState {
		t.Error("SetStateHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServer := &testServerHooks{}
	SetServerHooks(customServer)
	if Server() != customServer {
		t.Error("SetServerHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
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

	if Pipeline() != custom {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testPipelineHooks struct{ NoopPipelineHooks }
type testStateHooks struct{ NoopStateHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServerHooks struct{ NoopServerHooks }
