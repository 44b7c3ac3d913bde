// Package observability provides hooks for metrics around sheet generation.
//
// Libraries emit events through the registered hooks; the binary decides what
// receives them. The defaults are no-ops, so the core packages never depend
// on a metrics backend. See the prom subpackage for a Prometheus
// implementation.
//
// # Usage
//
// Register hooks at startup:
//
//	m := prom.New()
//	m.Register() // installs m as pipeline, cache and HTTP hooks
//
// Emit events from library code:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageFit)
//	// ... fit the photo ...
//	observability.Pipeline().OnStageComplete(ctx, observability.StageFit, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names a step of the sheet pipeline.
type Stage string

// Pipeline stages in execution order.
const (
	StageResolve Stage = "resolve"
	StageFit     Stage = "fit"
	StagePlan    Stage = "plan"
	StageCompose Stage = "compose"
	StageEncode  Stage = "encode"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageResolve, StageFit, StagePlan, StageCompose, StageEncode}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the sheet pipeline.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage)
	OnStageComplete(ctx context.Context, stage Stage, duration time.Duration, err error)

	// OnQualityWarning records a non-fatal warning such as a large upscale.
	OnQualityWarning(ctx context.Context, kind string)

	// OnSheet records a finished sheet.
	OnSheet(ctx context.Context, format string, copies, size int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache lookups. keyType is "photo" or
// "artifact".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server. route is the matched
// pattern, not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks discards pipeline events.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, Stage, time.Duration, error) {}
func (NoopPipelineHooks) OnQualityWarning(context.Context, string)                     {}
func (NoopPipelineHooks) OnSheet(context.Context, string, int, int)                    {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op hooks. Tests use it to isolate registrations.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
