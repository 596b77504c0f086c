package shared

import (
	"go.uber.org/zap"

	scriptbridge "github.com/wippyai/script-bridge"
)

// Source identifies which side of the boundary reported a disposal.
type Source uint8

const (
	// SourceNative is host-side finalization of the native half.
	SourceNative Source = iota
	// SourceScript is the engine collector or explicit script-side release.
	SourceScript
)

func (s Source) String() string {
	if s == SourceNative {
		return "native"
	}
	return "script"
}

// Invalidator removes a reference cache entry for a native identity key.
type Invalidator interface {
	Invalidate(key any)
}

// Coordinator sequences disposal notifications from both sides of the
// boundary onto the engine's execution context. Whichever side reports
// first wins; the registry's release idempotence absorbs the second,
// redundant signal. The coordinator also guarantees no reference cache
// entry outlives its shared object: it subscribes to the registry and
// invalidates the entry matching every released id.
type Coordinator struct {
	disp  scriptbridge.Dispatcher
	reg   *Registry
	cache Invalidator
	log   *zap.Logger
}

// NewCoordinator wires a coordinator to the registry and cache and
// subscribes it for release events. cache may be nil when no reference
// cache is in play.
func NewCoordinator(disp scriptbridge.Dispatcher, reg *Registry, cache Invalidator, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Coordinator{disp: disp, reg: reg, cache: cache, log: log}
	reg.Subscribe(c)
	return c
}

// ObjectDisposed reports that one side of shared object id is gone. The
// release is posted onto the execution context, so this is safe to call
// from native finalizers, script callbacks, and any goroutine. Signals
// arriving after teardown are dropped.
func (c *Coordinator) ObjectDisposed(id uint64, source Source) {
	posted := c.disp.Post(func() {
		if err := c.reg.Release(id); err != nil {
			// Only unknown ids error here; redundant signals no-op above.
			c.log.Warn("disposal signal for unknown shared object",
				zap.Uint64("id", id),
				zap.String("source", source.String()))
			return
		}
		c.log.Debug("shared object disposed",
			zap.Uint64("id", id),
			zap.String("source", source.String()))
	})
	if !posted {
		c.log.Debug("disposal signal after teardown dropped", zap.Uint64("id", id))
	}
}

// OnSharedObjectEvent implements Observer. Runs on the execution context.
func (c *Coordinator) OnSharedObjectEvent(e Event) {
	if e.Type != EventReleased {
		return
	}
	if c.cache != nil && e.Key != nil {
		c.cache.Invalidate(e.Key)
	}
}
