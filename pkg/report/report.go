package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/edp1096/piline/pkg/ode"
)

// Columns resolves probe labels to state indices. No probes selects every
// state; "all" does the same.
func Columns(tr *ode.Trajectory, probes []string) ([]int, error) {
	if len(probes) == 0 || (len(probes) == 1 && strings.EqualFold(probes[0], "all")) {
		cols := make([]int, tr.Order())
		for i := range cols {
			cols[i] = i
		}
		return cols, nil
	}

	cols := make([]int, 0, len(probes))
	for _, p := range probes {
		i, ok := tr.Index(strings.ToUpper(p))
		if !ok {
			return nil, fmt.Errorf("unknown probe %q", p)
		}
		cols = append(cols, i)
	}
	return cols, nil
}

// sortedLabels puts the voltage columns first and the currents after them,
// keeping the probe order within each group.
func sortedLabels(tr *ode.Trajectory, cols []int) []int {
	out := append([]int(nil), cols...)
	sort.SliceStable(out, func(a, b int) bool {
		ua, ub := Unit(tr.Label(out[a])), Unit(tr.Label(out[b]))
		return ua == "V" && ub != "V"
	})
	return out
}

// PrintTrajectory writes one line per time point with the probed states in
// engineering units.
func PrintTrajectory(w io.Writer, tr *ode.Trajectory, probes []string) error {
	cols, err := Columns(tr, probes)
	if err != nil {
		return err
	}
	cols = sortedLabels(tr, cols)

	fmt.Fprintf(w, "\nTransient Analysis Results (%d time points):\n", tr.Len())
	fmt.Fprintln(w, "Time        Node Voltages        Branch Currents")
	fmt.Fprintln(w, "------------------------------------------------")

	for k, t := range tr.Times {
		fmt.Fprintf(w, "%9s  ", FormatValueFactor(t, "s"))
		for _, i := range cols {
			label := tr.Label(i)
			fmt.Fprintf(w, "%s=%s  ", label, FormatValueFactor(tr.States[k][i], Unit(label)))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// WriteCSV writes a header row "time,<labels>" followed by one row per point.
func WriteCSV(w io.Writer, tr *ode.Trajectory, probes []string) error {
	cols, err := Columns(tr, probes)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := make([]string, 0, len(cols)+1)
	header = append(header, "time")
	for _, i := range cols {
		header = append(header, tr.Label(i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for k, t := range tr.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for c, i := range cols {
			row[c+1] = strconv.FormatFloat(tr.States[k][i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type SignalSummary struct {
	Label      string
	Min, Max   float64
	TMin, TMax float64
	Final      float64
}

func Summarize(tr *ode.Trajectory, i int) (SignalSummary, error) {
	col, err := tr.Column(i)
	if err != nil {
		return SignalSummary{}, err
	}
	s := SignalSummary{Label: tr.Label(i), Min: math.Inf(1), Max: math.Inf(-1)}
	for k, v := range col {
		if v < s.Min {
			s.Min, s.TMin = v, tr.Times[k]
		}
		if v > s.Max {
			s.Max, s.TMax = v, tr.Times[k]
		}
	}
	s.Final = col[len(col)-1]
	return s, nil
}

// Summary prints min, max and final value of each probed state along with the
// integrator statistics.
func Summary(w io.Writer, tr *ode.Trajectory, probes []string) error {
	cols, err := Columns(tr, probes)
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("empty trajectory")
	}

	fmt.Fprintf(w, "\nSummary (%d points, %d steps, %d rejected, %d factorizations):\n",
		tr.Len(), tr.Stats.Steps, tr.Stats.Rejected, tr.Stats.Factorizations)
	for _, i := range sortedLabels(tr, cols) {
		s, err := Summarize(tr, i)
		if err != nil {
			return err
		}
		unit := Unit(s.Label)
		fmt.Fprintf(w, "%-10s min=%s @ %s  max=%s @ %s  final=%s\n", s.Label,
			FormatValueFactor(s.Min, unit), FormatValueFactor(s.TMin, "s"),
			FormatValueFactor(s.Max, unit), FormatValueFactor(s.TMax, "s"),
			FormatValueFactor(s.Final, unit))
	}
	return nil
}
