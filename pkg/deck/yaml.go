package deck

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/ode"
	"github.com/edp1096/piline/pkg/source"
)

// Value is a number in YAML that also accepts engineering suffixes, "0.556u".
type Value float64

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", node.Line)
	}
	f, err := ParseValue(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*v = Value(f)
	return nil
}

func values(vs []Value) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = float64(v)
	}
	return out
}

type yamlScenario struct {
	Title      string      `yaml:"title,omitempty"`
	Line       yamlLine    `yaml:"line"`
	Source     yamlSource  `yaml:"source"`
	Tran       yamlTran    `yaml:"tran"`
	Options    yamlOptions `yaml:"options,omitempty"`
	Probes     []string    `yaml:"probes,flow,omitempty"`
	SampleRate Value       `yaml:"sample_rate,omitempty"`
}

type yamlLine struct {
	Sections    Value      `yaml:"sections"` // checked for an integer value
	Length      Value      `yaml:"length"`
	Conductance Value      `yaml:"conductance"`
	Capacitance Value      `yaml:"capacitance"`
	Formulation string     `yaml:"formulation,omitempty"`
	Rungs       []yamlRung `yaml:"rungs"`
}

type yamlRung struct {
	R Value `yaml:"r"`
	L Value `yaml:"l"`
}

type yamlSource struct {
	Type      string  `yaml:"type"` // dc, step, sin, pulse, pwl
	Value     Value   `yaml:"value,omitempty"`
	Delay     Value   `yaml:"delay,omitempty"`
	Offset    Value   `yaml:"offset,omitempty"`
	Amplitude Value   `yaml:"amplitude,omitempty"`
	Freq      Value   `yaml:"freq,omitempty"`
	Phase     Value   `yaml:"phase,omitempty"`
	V1        Value   `yaml:"v1,omitempty"`
	V2        Value   `yaml:"v2,omitempty"`
	Rise      Value   `yaml:"rise,omitempty"`
	Fall      Value   `yaml:"fall,omitempty"`
	Width     Value   `yaml:"width,omitempty"`
	Period    Value   `yaml:"period,omitempty"`
	Times     []Value `yaml:"times,flow,omitempty"`
	Values    []Value `yaml:"values,flow,omitempty"`
}

type yamlTran struct {
	Step  Value `yaml:"step"`
	Stop  Value `yaml:"stop"`
	Start Value `yaml:"start,omitempty"`
	Max   Value `yaml:"max,omitempty"`
	OP    bool  `yaml:"from_op,omitempty"`
}

type yamlOptions struct {
	Method string `yaml:"method,omitempty"`
	AbsTol Value  `yaml:"abstol,omitempty"`
	RelTol Value  `yaml:"reltol,omitempty"`
}

// ParseYAML reads the YAML form of a scenario. Unknown keys are rejected.
func ParseYAML(content []byte) (*Scenario, error) {
	var doc yamlScenario
	dec := yaml.NewDecoder(strings.NewReader(string(content)))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}

	sections, err := line.SectionsFromFloat(float64(doc.Line.Sections))
	if err != nil {
		return nil, err
	}
	form, err := line.ParseFormulation(doc.Line.Formulation)
	if err != nil {
		return nil, err
	}

	sc := &Scenario{
		Title: doc.Title,
		Line: line.LineSpec{
			Conductance: float64(doc.Line.Conductance),
			Capacitance: float64(doc.Line.Capacitance),
			Sections:    sections,
			Length:      float64(doc.Line.Length),
		},
		Formulation: form,
		Tran: TranParam{
			TStep:  float64(doc.Tran.Step),
			TStop:  float64(doc.Tran.Stop),
			TStart: float64(doc.Tran.Start),
			TMax:   float64(doc.Tran.Max),
			FromOP: doc.Tran.OP,
		},
		Method:     ode.GearMethod,
		AbsTol:     float64(doc.Options.AbsTol),
		RelTol:     float64(doc.Options.RelTol),
		Probes:     doc.Probes,
		SampleRate: float64(doc.SampleRate),
	}
	for _, r := range doc.Line.Rungs {
		sc.Line.Resistance = append(sc.Line.Resistance, float64(r.R))
		sc.Line.Inductance = append(sc.Line.Inductance, float64(r.L))
	}

	if doc.Options.Method != "" {
		m, ok := ode.ParseMethod(doc.Options.Method)
		if !ok {
			return nil, fmt.Errorf("unknown integration method: %s", doc.Options.Method)
		}
		sc.Method = m
	}

	if sc.Source, err = doc.Source.spec(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (s yamlSource) spec() (SourceSpec, error) {
	var spec SourceSpec
	switch strings.ToLower(s.Type) {
	case "dc", "":
		spec.Type = source.DC
		spec.Value = float64(s.Value)
	case "step":
		spec.Type = source.STEP
		spec.Value = float64(s.Value)
		spec.Delay = float64(s.Delay)
	case "sin":
		spec.Type = source.SIN
		spec.Sin = source.Sin{
			Offset:    float64(s.Offset),
			Amplitude: float64(s.Amplitude),
			Freq:      float64(s.Freq),
			Phase:     float64(s.Phase),
		}
	case "pulse":
		spec.Type = source.PULSE
		spec.Pulse = source.Pulse{
			V1:     float64(s.V1),
			V2:     float64(s.V2),
			Delay:  float64(s.Delay),
			Rise:   float64(s.Rise),
			Fall:   float64(s.Fall),
			Width:  float64(s.Width),
			Period: float64(s.Period),
		}
	case "pwl":
		spec.Type = source.PWL
		spec.PWLTimes = values(s.Times)
		spec.PWLValues = values(s.Values)
	default:
		return spec, fmt.Errorf("unsupported source type: %s", s.Type)
	}
	return spec, nil
}

// MarshalYAML writes the scenario back in the YAML form ParseYAML reads.
func (sc *Scenario) MarshalYAML() (any, error) {
	doc := yamlScenario{
		Title: sc.Title,
		Line: yamlLine{
			Sections:    Value(sc.Line.Sections),
			Length:      Value(sc.Line.Length),
			Conductance: Value(sc.Line.Conductance),
			Capacitance: Value(sc.Line.Capacitance),
		},
		Tran: yamlTran{
			Step:  Value(sc.Tran.TStep),
			Stop:  Value(sc.Tran.TStop),
			Start: Value(sc.Tran.TStart),
			Max:   Value(sc.Tran.TMax),
			OP:    sc.Tran.FromOP,
		},
		Options: yamlOptions{
			Method: sc.Method.String(),
			AbsTol: Value(sc.AbsTol),
			RelTol: Value(sc.RelTol),
		},
		Probes:     sc.Probes,
		SampleRate: Value(sc.SampleRate),
	}
	if sc.Formulation != line.Literal {
		doc.Line.Formulation = sc.Formulation.String()
	}
	for i := range sc.Line.Resistance {
		doc.Line.Rungs = append(doc.Line.Rungs, yamlRung{R: Value(sc.Line.Resistance[i]), L: Value(sc.Line.Inductance[i])})
	}

	src := &doc.Source
	src.Type = strings.ToLower(sc.Source.Type.String())
	switch sc.Source.Type {
	case source.DC:
		src.Value = Value(sc.Source.Value)
	case source.STEP:
		src.Value = Value(sc.Source.Value)
		src.Delay = Value(sc.Source.Delay)
	case source.SIN:
		s := sc.Source.Sin
		src.Offset, src.Amplitude, src.Freq, src.Phase = Value(s.Offset), Value(s.Amplitude), Value(s.Freq), Value(s.Phase)
	case source.PULSE:
		p := sc.Source.Pulse
		src.V1, src.V2, src.Delay = Value(p.V1), Value(p.V2), Value(p.Delay)
		src.Rise, src.Fall, src.Width, src.Period = Value(p.Rise), Value(p.Fall), Value(p.Width), Value(p.Period)
	case source.PWL:
		for i := range sc.Source.PWLTimes {
			src.Times = append(src.Times, Value(sc.Source.PWLTimes[i]))
			src.Values = append(src.Values, Value(sc.Source.PWLValues[i]))
		}
	}
	return doc, nil
}
