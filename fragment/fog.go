package fragment

import (
	"math"

	"github.com/gogpu/rix/internal/mathx"
)

// FogEntries is the number of segments of a fog table.
const FogEntries = 32

// FogEntry is one linear segment: factor = M*frac + B, where frac is the
// position of w inside [2^i, 2^(i+1)).
type FogEntry struct {
	M, B float32
}

// FogLUT is the piecewise linear fog table. Entry i covers w in
// [2^i, 2^(i+1)). The factor is the fog amount: 0 keeps the fragment color,
// 1 replaces it with the fog color.
type FogLUT struct {
	// Below Lower there is no fog, above Upper the fragment is fully fogged.
	Lower, Upper float32

	Entries [FogEntries]FogEntry
}

// Factor returns the fog amount at distance w.
func (l *FogLUT) Factor(w float32) float32 {
	if w < l.Lower {
		return 0
	}
	if w > l.Upper {
		return 1
	}
	i, frac, ok := mathx.Log2Floor(w)
	switch {
	case !ok:
		return 0
	case i < 0:
		i, frac = 0, 0
	case i >= FogEntries:
		return 1
	}
	e := l.Entries[i]
	return mathx.Saturate(e.M*frac + e.B)
}

// FogMode selects the fog equation NewFogLUT approximates.
type FogMode uint8

const (
	FogLinear FogMode = iota
	FogExp
	FogExp2
)

// NewFogLUT builds a table for the classic fog equations. For FogLinear, fog
// starts at start and is complete at end; the exponential modes use density.
func NewFogLUT(mode FogMode, start, end, density float32) FogLUT {
	amount := func(w float64) float64 {
		var f float64 // fraction of the fragment color that survives
		switch mode {
		case FogExp:
			f = math.Exp(-float64(density) * w)
		case FogExp2:
			d := float64(density) * w
			f = math.Exp(-d * d)
		default:
			if end == start {
				f = 0
			} else {
				f = (float64(end) - w) / float64(end-start)
			}
		}
		return 1 - mathx.Clamp(f, 0, 1)
	}

	l := FogLUT{Lower: 0, Upper: math.MaxFloat32}
	if mode == FogLinear {
		l.Lower, l.Upper = start, end
	}
	for i := range l.Entries {
		w0 := math.Ldexp(1, i)
		f0, f1 := amount(w0), amount(2*w0)
		l.Entries[i] = FogEntry{M: float32(f1 - f0), B: float32(f0)}
	}
	return l
}
