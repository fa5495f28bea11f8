package construction

import (
	"time"

	apperr "github.com/matzehuels/modelsketch/pkg/errors"
)

// Default tuning values. These were found by experimentation and are not the
// result of a stability analysis.
const (
	DefaultStiffness      = 250.0
	DefaultDamping        = 31.6
	DefaultRigidStiffness = 5000.0
	DefaultRigidDamping   = 94.0
	DefaultFriction       = 8.0
	DefaultSubsteps       = 25
	DefaultLengthSlack    = 10.0
)

// MaxStableSubstep is the longest sub-step the integrator takes. Rigid
// springs diverge once a sub-step grows much past it, so long frames are
// split into more sub-steps than Substeps or MaxSubstep ask for.
const MaxStableSubstep = 5 * time.Millisecond

// Tuning holds the physical constants of a graph.
//
// Soft springs (distance constraints) use Stiffness/Damping. Springs that pin
// a node to a point (affix, follow-pencil, rail) use the rigid pair.
type Tuning struct {
	Stiffness      float64 `toml:"stiffness" json:"stiffness"`
	Damping        float64 `toml:"damping" json:"damping"`
	RigidStiffness float64 `toml:"rigid_stiffness" json:"rigid_stiffness"`
	RigidDamping   float64 `toml:"rigid_damping" json:"rigid_damping"`
	Friction       float64 `toml:"friction" json:"friction"`

	// Substeps is the fixed number of integration steps per Update.
	Substeps int `toml:"substeps" json:"substeps"`

	// MaxSubstep, when positive, replaces the fixed count: Update uses as
	// many sub-steps as needed to keep each one at or below this duration.
	MaxSubstep time.Duration `toml:"max_substep" json:"max_substep"`

	// LengthSlack caps how far past a violated bound the spring length is
	// allowed to count when computing force.
	LengthSlack float64 `toml:"length_slack" json:"length_slack"`
}

// DefaultTuning returns the default constants.
func DefaultTuning() Tuning {
	return Tuning{
		Stiffness:      DefaultStiffness,
		Damping:        DefaultDamping,
		RigidStiffness: DefaultRigidStiffness,
		RigidDamping:   DefaultRigidDamping,
		Friction:       DefaultFriction,
		Substeps:       DefaultSubsteps,
		LengthSlack:    DefaultLengthSlack,
	}
}

// WithDefaults returns t with every zero field replaced by its default.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	if t.Stiffness == 0 {
		t.Stiffness = d.Stiffness
	}
	if t.Damping == 0 {
		t.Damping = d.Damping
	}
	if t.RigidStiffness == 0 {
		t.RigidStiffness = d.RigidStiffness
	}
	if t.RigidDamping == 0 {
		t.RigidDamping = d.RigidDamping
	}
	if t.Friction == 0 {
		t.Friction = d.Friction
	}
	if t.Substeps == 0 {
		t.Substeps = d.Substeps
	}
	if t.LengthSlack == 0 {
		t.LengthSlack = d.LengthSlack
	}
	return t
}

// Merge returns t with every non-zero field of o applied on top. It lets
// command-line flags override a scene's tuning table.
func (t Tuning) Merge(o Tuning) Tuning {
	set := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	set(&t.Stiffness, o.Stiffness)
	set(&t.Damping, o.Damping)
	set(&t.RigidStiffness, o.RigidStiffness)
	set(&t.RigidDamping, o.RigidDamping)
	set(&t.Friction, o.Friction)
	set(&t.LengthSlack, o.LengthSlack)
	if o.Substeps != 0 {
		t.Substeps = o.Substeps
	}
	if o.MaxSubstep != 0 {
		t.MaxSubstep = o.MaxSubstep
	}
	return t
}

// Validate reports negative or otherwise unusable constants.
func (t Tuning) Validate() error {
	switch {
	case t.Stiffness < 0 || t.RigidStiffness < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "stiffness must not be negative")
	case t.Damping < 0 || t.RigidDamping < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "damping must not be negative")
	case t.Friction < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "friction must not be negative")
	case t.Substeps < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "substeps must not be negative")
	case t.MaxSubstep < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "max_substep must not be negative")
	case t.LengthSlack < 0:
		return apperr.New(apperr.ErrCodeInvalidTuning, "length_slack must not be negative")
	}
	return nil
}

// substeps returns the number of sub-steps to use for a frame of length dt.
// No sub-step is longer than MaxStableSubstep.
func (t Tuning) substeps(dt time.Duration) int {
	limit := MaxStableSubstep
	n := max(t.Substeps, 1)
	if t.MaxSubstep > 0 {
		limit = min(limit, t.MaxSubstep)
		n = 1
	}
	return max(n, int((dt+limit-1)/limit))
}
