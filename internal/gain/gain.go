// Package gain models per-link amplitude control for the mixer: scalar
// source/destination gain in decibels, mute state, linear-scale ramps,
// and the piecewise-linear volume-to-decibel curve.
package gain

import (
	"math"
	"sync"
	"time"

	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

// Scale is a linear amplitude multiplier applied per sample.
type Scale = float32

const (
	// UnityGainDB is no amplification or attenuation.
	UnityGainDB = 0.0

	// MinGainDB is the floor below which gain is treated as silence.
	MinGainDB = -160.0

	// MaxGainDB bounds amplification.
	MaxGainDB = 24.0

	// UnityScale is the linear equivalent of UnityGainDB.
	UnityScale Scale = 1.0

	// MuteScale silences entirely.
	MuteScale Scale = 0.0

	// MaxRampFrames bounds the per-frame scale array produced for a
	// ramping mix call. A Mix call is truncated to this many
	// destination frames while a ramp is active.
	MaxRampFrames = 1024
)

// DBToScale converts decibels to a linear scale factor.
func DBToScale(db float64) Scale {
	if db <= MinGainDB {
		return MuteScale
	}
	return Scale(math.Pow(10.0, db/20.0))
}

// ScaleToDB converts a linear scale factor to decibels.
func ScaleToDB(scale Scale) float64 {
	if scale <= 0 {
		return MinGainDB
	}
	return 20.0 * math.Log10(float64(scale))
}

// Gain combines a source (renderer) and destination (device) gain
// stage. Setters may be called from any thread; the scale queries and
// ramp advancement are called by the mix thread once per Mix call,
// never per sample.
type Gain struct {
	mu sync.Mutex

	sourceGainDB float64
	destGainDB   float64
	sourceMuted  bool
	destMuted    bool

	// Active ramp on the source stage, linear in scale units.
	ramp *rampState
}

type rampState struct {
	startScale   Scale
	endScale     Scale
	duration     time.Duration
	framesRamped int64
	totalFrames  int64 // resolved lazily from the destination frame rate
	frameRateSet bool
}

// NewGain returns a Gain at unity with nothing muted.
func NewGain() *Gain {
	return &Gain{sourceGainDB: UnityGainDB, destGainDB: UnityGainDB}
}

// SetSourceGain sets the source stage gain, clamped to
// [MinGainDB, MaxGainDB]. Cancels any ramp in progress.
func (g *Gain) SetSourceGain(db float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sourceGainDB = clampDB(db)
	g.ramp = nil
}

// SetSourceMute mutes or unmutes the source stage.
func (g *Gain) SetSourceMute(muted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sourceMuted = muted
}

// SetDestGain sets the destination stage gain, clamped.
func (g *Gain) SetDestGain(db float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destGainDB = clampDB(db)
}

// SetDestMute mutes or unmutes the destination stage.
func (g *Gain) SetDestMute(muted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.destMuted = muted
}

// SetSourceGainWithRamp moves the source stage to db over duration,
// linearly in scale units. A non-positive duration applies immediately.
func (g *Gain) SetSourceGainWithRamp(db float64, duration time.Duration) {
	if duration <= 0 {
		g.SetSourceGain(db)
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	start := DBToScale(g.sourceGainDB)
	g.sourceGainDB = clampDB(db)
	g.ramp = &rampState{
		startScale: start,
		endScale:   DBToScale(g.sourceGainDB),
		duration:   duration,
	}
}

// SourceGainDB returns the current (or ramp-target) source gain.
func (g *Gain) SourceGainDB() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sourceGainDB
}

// DestGainDB returns the current destination gain.
func (g *Gain) DestGainDB() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.destGainDB
}

// GetGainScale returns the combined linear scale of both stages,
// ignoring any ramp in progress (use GetScaleArray while ramping).
func (g *Gain) GetGainScale() Scale {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.combinedScaleLocked()
}

func (g *Gain) combinedScaleLocked() Scale {
	if g.sourceMuted || g.destMuted {
		return MuteScale
	}
	combined := g.sourceGainDB + g.destGainDB
	if combined >= UnityGainDB && g.sourceGainDB == UnityGainDB && g.destGainDB == UnityGainDB {
		return UnityScale
	}
	return DBToScale(combined)
}

// IsUnity reports whether the fast copy path applies: no mute, no ramp,
// combined gain exactly unity.
func (g *Gain) IsUnity() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.sourceMuted && !g.destMuted && g.ramp == nil &&
		g.sourceGainDB == UnityGainDB && g.destGainDB == UnityGainDB
}

// IsSilent reports whether no audible output can result: muted, or
// gain at the silence floor with no upward ramp.
func (g *Gain) IsSilent() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sourceMuted || g.destMuted {
		return true
	}
	if g.ramp != nil {
		return g.ramp.startScale == MuteScale && g.ramp.endScale == MuteScale
	}
	return g.sourceGainDB+g.destGainDB <= MinGainDB
}

// IsRamping reports whether a ramp is active (and not muted out).
func (g *Gain) IsRamping() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ramp != nil && !g.sourceMuted && !g.destMuted
}

// GetScaleArray fills scaleArr with one combined scale per destination
// frame, resolving the ramp against the destination frames-per-
// nanosecond rate. Returns the number of entries filled, at most
// MaxRampFrames. With no ramp active every entry is the constant scale.
func (g *Gain) GetScaleArray(scaleArr []Scale, framesPerNanosecond timeline.Rate) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(scaleArr)
	if n > MaxRampFrames {
		n = MaxRampFrames
	}

	if g.ramp == nil {
		constant := g.combinedScaleLocked()
		for i := 0; i < n; i++ {
			scaleArr[i] = constant
		}
		return n
	}

	r := g.ramp
	if !r.frameRateSet {
		r.totalFrames = framesPerNanosecond.Scale(r.duration.Nanoseconds(), timeline.RoundUp)
		if r.totalFrames < 1 {
			r.totalFrames = 1
		}
		r.frameRateSet = true
	}

	destScale := destStageScale(g.destGainDB, g.destMuted)
	span := float64(r.endScale - r.startScale)
	for i := 0; i < n; i++ {
		frame := r.framesRamped + int64(i)
		var src Scale
		if frame >= r.totalFrames {
			src = r.endScale
		} else {
			src = r.startScale + Scale(span*float64(frame)/float64(r.totalFrames))
		}
		scaleArr[i] = src * destScale
	}
	return n
}

// Advance moves ramp progress forward by frames destination frames,
// retiring the ramp once complete.
func (g *Gain) Advance(frames int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ramp == nil {
		return
	}
	g.ramp.framesRamped += frames
	if g.ramp.frameRateSet && g.ramp.framesRamped >= g.ramp.totalFrames {
		g.ramp = nil
	}
}

func destStageScale(db float64, muted bool) Scale {
	if muted {
		return MuteScale
	}
	if db == UnityGainDB {
		return UnityScale
	}
	return DBToScale(db)
}

func clampDB(db float64) float64 {
	if db < MinGainDB {
		return MinGainDB
	}
	if db > MaxGainDB {
		return MaxGainDB
	}
	return db
}
