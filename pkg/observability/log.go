package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level. It implements both
// SolverHooks and CacheHooks.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{Logger: l.WithPrefix("hooks")}
}

func (h *LogHooks) OnSolveStart(_ context.Context, scene string, nodes, constraints int) {
	h.Logger.Debug("solve start", "scene", scene, "nodes", nodes, "constraints", constraints)
}

func (h *LogHooks) OnSolveComplete(_ context.Context, scene string, frames int, energy float64, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("solve failed", "scene", scene, "err", err)
		return
	}
	h.Logger.Debug("solve done", "scene", scene, "frames", frames, "energy", energy, "duration", d)
}

func (h *LogHooks) OnSettle(_ context.Context, scene string, frames int, settled bool) {
	h.Logger.Debug("settle", "scene", scene, "frames", frames, "settled", settled)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.Logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.Logger.Debug("render done", "formats", formats, "duration", d, "err", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ SolverHooks = (*LogHooks)(nil)
	_ CacheHooks  = (*LogHooks)(nil)
)
