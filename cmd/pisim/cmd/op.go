package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/edp1096/piline/pkg/report"
	"github.com/spf13/cobra"
)

var opCmd = &cobra.Command{
	Use:   "op <deck|yaml>",
	Short: "Print the DC operating point of the line",
	Long: `Solve 0 = A·X + B·u for the source value at tstop and print the
steady state of the probed states, or of every state when no probe is set.

Examples:
  pisim op testdata/short.cir
  pisim op --formulation literal -p "V(4)" testdata/short.cir`,
	Args: cobra.ExactArgs(1),
	RunE: runOP,
}

func init() {
	rootCmd.AddCommand(opCmd)

	opCmd.Flags().StringVar(&formulation, "formulation", "", "shunt formulation: literal or nodal")
	opCmd.Flags().StringSliceVarP(&probes, "probe", "p", nil, "states to report, e.g. V(30); default: all states")
}

func runOP(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}
	names := sc.Probes
	if cmd.Flags().Changed("probe") {
		names = probes
	}

	m, op, err := sc.OperatingPoint()
	if err != nil {
		return fmt.Errorf("operating point failed: %w", err)
	}
	logger.Info("operating point done",
		slog.Int("states", m.Order()),
		slog.Float64("input", op.Input()))

	if len(names) == 0 || (len(names) == 1 && strings.EqualFold(names[0], "all")) {
		names = m.StateLabels()
	}
	results := op.GetResults()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Operating Point (source %s)\n", report.FormatValueFactor(op.Input(), "V"))
	for _, probe := range names {
		name := strings.ToUpper(probe)
		v, ok := results[name]
		if !ok {
			return fmt.Errorf("unknown probe %q", probe)
		}
		fmt.Fprintf(out, "  %s = %s\n", name, report.FormatValueFactor(v[0], report.Unit(name)))
	}
	return nil
}
