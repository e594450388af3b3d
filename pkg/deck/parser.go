package deck

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/edp1096/piline/pkg/line"
	"github.com/edp1096/piline/pkg/ode"
	"github.com/edp1096/piline/pkg/source"
)

var unitMap = map[string]float64{
	"T":   1e12,  // tera
	"G":   1e9,   // giga
	"meg": 1e6,   // mega
	"K":   1e3,   // kilo
	"k":   1e3,   // kilo
	"M":   1e-3,  // milli
	"m":   1e-3,  // milli
	"u":   1e-6,  // micro
	"n":   1e-9,  // nano
	"p":   1e-12, // pico
	"f":   1e-15, // femto
}

var valuePattern = regexp.MustCompile(`^([-+]?\d*\.?\d+(?:[eE][-+]?\d+)?)(meg|[TGMKkmunpf])?s?$`)

var spaces = regexp.MustCompile(`\s+`)

// ParseValue reads a number with an optional engineering suffix. 20k -> 20000
func ParseValue(val string) (float64, error) {
	matches := valuePattern.FindStringSubmatch(strings.TrimSpace(val))
	if matches == nil {
		return 0, fmt.Errorf("invalid value format: %s", val)
	}

	num, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, err
	}

	if matches[2] != "" {
		num *= unitMap[matches[2]]
	}
	return num, nil
}

// Load reads a scenario file; .yaml and .yml files are YAML, anything else is a
// deck.
func Load(path string) (*Scenario, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(content)
	default:
		return Parse(string(content))
	}
}

type parser struct {
	sc       *Scenario
	sections float64
	hasLine  bool
	hasShunt bool
	hasTran  bool
	hasVS    bool
}

// Parse reads a deck. The first line is the title; '*' starts a comment and
// '+' continues the previous line.
func Parse(input string) (*Scenario, error) {
	scanner := bufio.NewScanner(strings.NewReader(input))
	p := &parser{sc: &Scenario{Method: ode.GearMethod}}

	if scanner.Scan() {
		p.sc.Title = strings.TrimSpace(strings.TrimPrefix(scanner.Text(), "*"))
	}

	var currentLine string
	currentNo, lineNo := 0, 1
	flush := func() error {
		if currentLine == "" {
			return nil
		}
		err := p.parseLine(currentLine)
		currentLine = ""
		if err != nil {
			return fmt.Errorf("line %d: %w", currentNo, err)
		}
		return nil
	}

	for scanner.Scan() {
		lineNo++
		text := strings.TrimSpace(scanner.Text())

		if idx := strings.Index(text, "*"); idx >= 0 {
			text = strings.TrimSpace(text[:idx])
		}
		if text == "" {
			continue
		}

		if strings.HasPrefix(text, "+") {
			if currentLine == "" {
				return nil, fmt.Errorf("line %d: continuation without a statement", lineNo)
			}
			currentLine += " " + strings.TrimSpace(text[1:])
			continue
		}

		if err := flush(); err != nil {
			return nil, err
		}
		currentLine, currentNo = text, lineNo
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}

	if err := p.finish(); err != nil {
		return nil, err
	}
	return p.sc, nil
}

func (p *parser) parseLine(text string) error {
	text = spaces.ReplaceAllString(text, " ")
	fields := strings.Fields(text)

	if strings.HasPrefix(text, ".") {
		return p.parseDotOperator(fields)
	}

	if strings.HasPrefix(strings.ToUpper(fields[0]), "V") {
		if p.hasVS {
			return fmt.Errorf("only one source is supported, got %s", fields[0])
		}
		spec, err := parseVoltageSource(fields)
		if err != nil {
			return err
		}
		p.sc.Source = *spec
		p.hasVS = true
		return nil
	}

	return fmt.Errorf("unsupported statement: %s", fields[0])
}

func (p *parser) parseDotOperator(fields []string) error {
	switch strings.ToLower(fields[0]) {
	case ".line":
		return p.parseLineCard(fields[1:])
	case ".shunt":
		return p.parseShunt(fields[1:])
	case ".rung":
		return p.parseRung(fields[1:])
	case ".tran":
		return p.parseTran(fields[1:])
	case ".options":
		return p.parseOptions(fields[1:])
	case ".probe":
		p.sc.Probes = append(p.sc.Probes, fields[1:]...)
		return nil
	case ".sample":
		if len(fields) != 2 {
			return fmt.Errorf(".sample needs a rate")
		}
		rate, err := ParseValue(fields[1])
		if err != nil {
			return fmt.Errorf("invalid sample rate: %v", err)
		}
		p.sc.SampleRate = rate
		return nil
	case ".end":
		return nil
	default:
		return fmt.Errorf("unsupported control statement: %s", fields[0])
	}
}

// params splits name=value pairs; names are lower-cased.
func params(fields []string) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		pair := strings.SplitN(f, "=", 2)
		if len(pair) != 2 || pair[0] == "" {
			return nil, fmt.Errorf("expected name=value, got %q", f)
		}
		out[strings.ToLower(pair[0])] = pair[1]
	}
	return out, nil
}

func (p *parser) parseLineCard(fields []string) error {
	kv, err := params(fields)
	if err != nil {
		return err
	}
	for name, raw := range kv {
		switch name {
		case "sections", "n":
			if p.sections, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid sections: %v", err)
			}
		case "length", "len":
			if p.sc.Line.Length, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid length: %v", err)
			}
		case "formulation":
			if p.sc.Formulation, err = line.ParseFormulation(raw); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown .line parameter: %s", name)
		}
	}
	p.hasLine = true
	return nil
}

func (p *parser) parseShunt(fields []string) error {
	kv, err := params(fields)
	if err != nil {
		return err
	}
	for name, raw := range kv {
		switch name {
		case "g":
			if p.sc.Line.Conductance, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid conductance: %v", err)
			}
		case "c":
			if p.sc.Line.Capacitance, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid capacitance: %v", err)
			}
		default:
			return fmt.Errorf("unknown .shunt parameter: %s", name)
		}
	}
	p.hasShunt = true
	return nil
}

func (p *parser) parseRung(fields []string) error {
	kv, err := params(fields)
	if err != nil {
		return err
	}
	rs, ok := kv["r"]
	if !ok {
		return fmt.Errorf(".rung needs r=")
	}
	ls, ok := kv["l"]
	if !ok {
		return fmt.Errorf(".rung needs l=")
	}
	if len(kv) != 2 {
		return fmt.Errorf(".rung takes only r= and l=")
	}

	r, err := ParseValue(rs)
	if err != nil {
		return fmt.Errorf("invalid rung resistance: %v", err)
	}
	l, err := ParseValue(ls)
	if err != nil {
		return fmt.Errorf("invalid rung inductance: %v", err)
	}
	p.sc.Line.Resistance = append(p.sc.Line.Resistance, r)
	p.sc.Line.Inductance = append(p.sc.Line.Inductance, l)
	return nil
}

// .tran tstep tstop [tstart [tmax]] [op]
//
// The line starts de-energized unless the trailing op keyword asks for the
// operating point at t=0.
func (p *parser) parseTran(fields []string) error {
	if n := len(fields); n > 0 && strings.EqualFold(fields[n-1], "op") {
		p.sc.Tran.FromOP = true
		fields = fields[:n-1]
	}
	if len(fields) < 2 {
		return fmt.Errorf("insufficient tran parameters, need at least tstep and tstop")
	}
	if len(fields) > 4 {
		return fmt.Errorf("too many tran parameters")
	}

	targets := []*float64{&p.sc.Tran.TStep, &p.sc.Tran.TStop, &p.sc.Tran.TStart, &p.sc.Tran.TMax}
	names := []string{"tstep", "tstop", "tstart", "tmax"}
	for i, f := range fields {
		v, err := ParseValue(f)
		if err != nil {
			return fmt.Errorf("invalid %s: %v", names[i], err)
		}
		*targets[i] = v
	}
	p.hasTran = true
	return nil
}

func (p *parser) parseOptions(fields []string) error {
	kv, err := params(fields)
	if err != nil {
		return err
	}
	for name, raw := range kv {
		switch name {
		case "method":
			m, ok := ode.ParseMethod(raw)
			if !ok {
				return fmt.Errorf("unknown integration method: %s", raw)
			}
			p.sc.Method = m
		case "abstol":
			if p.sc.AbsTol, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid abstol: %v", err)
			}
		case "reltol":
			if p.sc.RelTol, err = ParseValue(raw); err != nil {
				return fmt.Errorf("invalid reltol: %v", err)
			}
		default:
			return fmt.Errorf("unknown option: %s", name)
		}
	}
	return nil
}

func (p *parser) finish() error {
	switch {
	case !p.hasLine:
		return fmt.Errorf("missing .line statement")
	case !p.hasShunt:
		return fmt.Errorf("missing .shunt statement")
	case !p.hasTran:
		return fmt.Errorf("missing .tran statement")
	case !p.hasVS:
		return fmt.Errorf("missing source statement")
	}

	n, err := line.SectionsFromFloat(p.sections)
	if err != nil {
		return err
	}
	p.sc.Line.Sections = n
	return p.sc.Validate()
}

// VS DC 20k | VS STEP 20k [delay] | VS SIN(...) | VS PULSE(...) | VS PWL(...)
func parseVoltageSource(fields []string) (*SourceSpec, error) {
	if len(fields) < 2 {
		return nil, fmt.Errorf("insufficient voltage source parameters")
	}

	remaining := strings.Join(fields[1:], " ")
	remaining = strings.ReplaceAll(remaining, "(", " ( ")
	remaining = strings.ReplaceAll(remaining, ")", " ) ")
	words := strings.Fields(remaining)

	spec := &SourceSpec{}
	args := strings.Trim(strings.Join(words[1:], " "), "() ")

	switch strings.ToUpper(words[0]) {
	case "DC":
		spec.Type = source.DC
		if len(words) != 2 {
			return nil, fmt.Errorf("DC source needs one value")
		}
		value, err := ParseValue(words[1])
		if err != nil {
			return nil, err
		}
		spec.Value = value

	case "STEP":
		spec.Type = source.STEP
		vals := strings.Fields(args)
		if len(vals) < 1 || len(vals) > 2 {
			return nil, fmt.Errorf("STEP source needs a value and an optional delay")
		}
		value, err := ParseValue(vals[0])
		if err != nil {
			return nil, fmt.Errorf("invalid STEP value: %v", err)
		}
		spec.Value = value
		if len(vals) == 2 {
			if spec.Delay, err = ParseValue(vals[1]); err != nil {
				return nil, fmt.Errorf("invalid STEP delay: %v", err)
			}
		}

	case "SIN":
		spec.Type = source.SIN
		offset, amplitude, freq, phase, err := parseSinParams(args)
		if err != nil {
			return nil, err
		}
		spec.Sin = source.Sin{Offset: offset, Amplitude: amplitude, Freq: freq, Phase: phase}

	case "PULSE":
		spec.Type = source.PULSE
		v1, v2, delay, rise, fall, width, period, err := parsePulseParams(args)
		if err != nil {
			return nil, err
		}
		spec.Pulse = source.Pulse{V1: v1, V2: v2, Delay: delay, Rise: rise, Fall: fall, Width: width, Period: period}

	case "PWL":
		spec.Type = source.PWL
		times, values, err := parsePWLParams(args)
		if err != nil {
			return nil, err
		}
		spec.PWLTimes, spec.PWLValues = times, values

	default:
		// a bare value is a DC level
		value, err := ParseValue(words[0])
		if err != nil || len(words) != 1 {
			return nil, fmt.Errorf("unsupported voltage source type: %s", words[0])
		}
		spec.Type = source.DC
		spec.Value = value
	}

	return spec, nil
}

func parseSinParams(params string) (offset, amplitude, freq, phase float64, err error) {
	sinParams := strings.Fields(params)
	if len(sinParams) < 3 || len(sinParams) > 4 {
		return 0, 0, 0, 0, fmt.Errorf("SIN needs offset, amplitude, frequency and an optional phase")
	}

	values := make([]float64, 4)
	names := []string{"offset", "amplitude", "frequency", "phase"}
	for i, s := range sinParams {
		if values[i], err = ParseValue(s); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid SIN %s: %v", names[i], err)
		}
	}
	return values[0], values[1], values[2], values[3], nil
}

func parsePulseParams(params string) (v1, v2, delay, rise, fall, width, period float64, err error) {
	pulseParams := strings.Fields(params)
	if len(pulseParams) != 7 {
		return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("PULSE needs v1 v2 delay rise fall width period")
	}

	values := make([]float64, 7)
	names := []string{"V1", "V2", "delay", "rise", "fall", "width", "period"}
	for i, s := range pulseParams {
		if values[i], err = ParseValue(s); err != nil {
			return 0, 0, 0, 0, 0, 0, 0, fmt.Errorf("invalid PULSE %s: %v", names[i], err)
		}
	}
	return values[0], values[1], values[2], values[3], values[4], values[5], values[6], nil
}

func parsePWLParams(params string) (times []float64, values []float64, err error) {
	pwlParams := strings.Fields(params)
	if len(pwlParams) < 2 || len(pwlParams)%2 != 0 {
		return nil, nil, fmt.Errorf("invalid PWL parameters, need time-value pairs")
	}

	numPoints := len(pwlParams) / 2
	times = make([]float64, numPoints)
	values = make([]float64, numPoints)

	for i := 0; i < numPoints; i++ {
		if times[i], err = ParseValue(pwlParams[2*i]); err != nil {
			return nil, nil, fmt.Errorf("invalid PWL time[%d]: %v", i, err)
		}
		if values[i], err = ParseValue(pwlParams[2*i+1]); err != nil {
			return nil, nil, fmt.Errorf("invalid PWL value[%d]: %v", i, err)
		}
		if i > 0 && times[i] <= times[i-1] {
			return nil, nil, fmt.Errorf("PWL time points must be strictly increasing")
		}
	}

	return times, values, nil
}
