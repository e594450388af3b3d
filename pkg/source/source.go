package source

import (
	"fmt"
	"math"
)

// Source is the sending-end voltage u(t) driving the line.
type Source interface {
	Voltage(t float64) float64
}

type SourceType int

const (
	DC SourceType = iota
	STEP
	SIN
	PULSE
	PWL
)

func (s SourceType) String() string {
	switch s {
	case DC:
		return "DC"
	case STEP:
		return "STEP"
	case SIN:
		return "SIN"
	case PULSE:
		return "PULSE"
	case PWL:
		return "PWL"
	default:
		return fmt.Sprintf("SourceType(%d)", int(s))
	}
}

// Constant holds a fixed value for all t.
type Constant struct {
	Value float64
}

func (c Constant) Voltage(float64) float64 { return c.Value }

// Zero is the null input.
var Zero Source = Constant{}

// Step is 0 before Delay and Value from Delay on.
type Step struct {
	Value float64
	Delay float64
}

func (s Step) Voltage(t float64) float64 {
	if t < s.Delay {
		return 0
	}
	return s.Value
}

// Sin is Offset + Amplitude·sin(2π·Freq·t + Phase), Phase in degrees.
type Sin struct {
	Offset    float64
	Amplitude float64
	Freq      float64
	Phase     float64
}

func (s Sin) Voltage(t float64) float64 {
	phaseRad := s.Phase * math.Pi / 180.0
	return s.Offset + s.Amplitude*math.Sin(2.0*math.Pi*s.Freq*t+phaseRad)
}

type Pulse struct {
	V1     float64
	V2     float64
	Delay  float64
	Rise   float64
	Fall   float64
	Width  float64
	Period float64
}

func (p Pulse) Voltage(t float64) float64 {
	if t < p.Delay {
		return p.V1
	}

	t = t - p.Delay
	if p.Period > 0 {
		t = math.Mod(t, p.Period)
	}

	if t < p.Rise {
		return p.V1 + (p.V2-p.V1)*t/p.Rise
	}

	if t < p.Rise+p.Width {
		return p.V2
	}

	fallStart := p.Rise + p.Width
	if t < fallStart+p.Fall {
		return p.V2 - (p.V2-p.V1)*(t-fallStart)/p.Fall
	}

	return p.V1
}

// PiecewiseLinear interpolates between (time, value) points and holds the end
// values outside them.
type PiecewiseLinear struct {
	times  []float64
	values []float64
}

func NewPWL(times, values []float64) (*PiecewiseLinear, error) {
	if len(times) == 0 || len(times) != len(values) {
		return nil, fmt.Errorf("PWL needs matching non-empty time and value lists (%d, %d)",
			len(times), len(values))
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}
	return &PiecewiseLinear{
		times:  append([]float64(nil), times...),
		values: append([]float64(nil), values...),
	}, nil
}

func (p *PiecewiseLinear) Voltage(t float64) float64 {
	if t <= p.times[0] {
		return p.values[0]
	}

	lastIdx := len(p.times) - 1
	if t >= p.times[lastIdx] {
		return p.values[lastIdx]
	}

	for i := 1; i < len(p.times); i++ {
		if t <= p.times[i] {
			t1, t2 := p.times[i-1], p.times[i]
			v1, v2 := p.values[i-1], p.values[i]
			slope := (v2 - v1) / (t2 - t1)
			return v1 + slope*(t-t1)
		}
	}

	return p.values[lastIdx]
}

// Func adapts a plain function.
type Func func(t float64) float64

func (f Func) Voltage(t float64) float64 { return f(t) }
