package scene

import (
	"context"
	"time"

	"github.com/matzehuels/modelsketch/pkg/geom"
)

// Run defaults.
const (
	DefaultFrames    = 300
	DefaultFrameRate = 60
	DefaultEpsilon   = 1e-3
)

// settleChunk is how many frames Settle runs between context checks.
const settleChunk = 30

// RunOptions controls a headless run.
type RunOptions struct {
	// Frames is the number of frames after the scripted drags. When Settle
	// is set it is the upper bound.
	Frames int

	// FrameRate sets the frame length to 1s/FrameRate.
	FrameRate int

	// Settle stops early once the kinetic energy drops below Epsilon.
	Settle  bool
	Epsilon float64
}

// SetDefaults fills zero fields.
func (o *RunOptions) SetDefaults() {
	if o.Frames == 0 {
		o.Frames = DefaultFrames
	}
	if o.FrameRate == 0 {
		o.FrameRate = DefaultFrameRate
	}
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
}

// FrameDuration returns the length of one frame.
func (o RunOptions) FrameDuration() time.Duration {
	return time.Second / time.Duration(o.FrameRate)
}

// RunResult summarizes a run.
type RunResult struct {
	Frames  int
	Settled bool
	Energy  float64
}

// Step advances the model one frame.
func (m *Model) Step(dt time.Duration) {
	m.graph.Step(dt)
	m.frame++
	m.settled = false
}

// Run replays the scene's drags, once per model, and then steps the
// remaining frames. It stops with ctx.Err() if ctx is cancelled.
func (m *Model) Run(ctx context.Context, opts RunOptions) (RunResult, error) {
	opts.SetDefaults()
	dt := opts.FrameDuration()
	start := m.frame

	if !m.replayed {
		m.replayed = true
		for _, d := range m.drags {
			if err := m.replay(ctx, d, dt); err != nil {
				return m.result(start), err
			}
		}
	}

	if opts.Settle {
		for left := opts.Frames; left > 0; {
			if err := ctx.Err(); err != nil {
				return m.result(start), err
			}
			n, ok := m.graph.Settle(dt, min(left, settleChunk), opts.Epsilon)
			m.frame += n
			left -= n
			if ok {
				m.settled = true
				break
			}
		}
		return m.result(start), nil
	}

	for range opts.Frames {
		if err := ctx.Err(); err != nil {
			return m.result(start), err
		}
		m.Step(dt)
	}
	return m.result(start), nil
}

// replay pulls the drag's node in a straight line to its target, one
// follow-pencil update per frame, then releases it.
func (m *Model) replay(ctx context.Context, d DragDef, dt time.Duration) error {
	id, ok := m.NodeID(d.Node)
	if !ok {
		return nil
	}
	frames := d.Frames
	if frames == 0 {
		frames = DefaultDragFrames
	}
	cg := m.Construction()
	from, to := cg.Position(id), geom.Pt(d.ToX, d.ToY)
	sid := cg.BeginDrag(id, from)
	defer cg.EndDrag(sid)

	for i := 1; i <= frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		cg.Drag(sid, from.Lerp(to, float64(i)/float64(frames)))
		m.Step(dt)
	}
	return nil
}

func (m *Model) result(start int) RunResult {
	return RunResult{
		Frames:  m.frame - start,
		Settled: m.settled,
		Energy:  m.Construction().KineticEnergy(),
	}
}
