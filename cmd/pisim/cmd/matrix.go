package cmd

import (
	"fmt"

	"github.com/edp1096/piline/pkg/matrix"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"
)

var (
	showDense  bool
	showSystem bool
)

var matrixCmd = &cobra.Command{
	Use:   "matrix <deck|yaml>",
	Short: "Show the assembled state-space matrices",
	Long: `Build the line model of a scenario and print the sizes of A and B, the
per-section parameters and optionally the dense matrices or the step matrix
(c0·I - A) handed to the sparse solver, with c0 = 1/tstep.

Examples:
  pisim matrix testdata/short.cir
  pisim matrix --dense testdata/short.cir
  pisim matrix --system --formulation nodal line.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)

	matrixCmd.Flags().BoolVarP(&showDense, "dense", "d", false, "print A and B as dense matrices")
	matrixCmd.Flags().BoolVar(&showSystem, "system", false, "print the step matrix equations")
	matrixCmd.Flags().StringVar(&formulation, "formulation", "", "shunt formulation: literal or nodal")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	sc, err := loadScenario(cmd, args[0])
	if err != nil {
		return err
	}
	m, err := sc.Model()
	if err != nil {
		return err
	}
	ss, err := m.StateSpace()
	if err != nil {
		return err
	}
	sys, err := ss.System()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := m.Section()
	fmt.Fprintf(out, "Sections: %d, rungs: %d, formulation: %s\n", m.Sections(), m.Rungs(), m.Formulation())
	fmt.Fprintf(out, "Section length: %g\n", p.Length)
	fmt.Fprintf(out, "  G = %g S, C = %g F\n", p.Conductance, p.Capacitance)
	for i := range p.Resistance {
		fmt.Fprintf(out, "  rung %d: R = %g Ohm, L = %g H\n", i, p.Resistance[i], p.Inductance[i])
	}
	fmt.Fprintf(out, "A: %dx%d, %d contributions, %d stored\n", ss.A.Rows(), ss.A.Cols(), ss.A.Len(), sys.A.NNZ())
	fmt.Fprintf(out, "B: %dx%d, %d contributions\n", ss.B.Rows(), ss.B.Cols(), ss.B.Len())

	if showDense {
		fmt.Fprintf(out, "\nA =\n%v\n", mat.Formatted(ss.A.Dense(), mat.Prefix("    "), mat.Squeeze()))
		fmt.Fprintf(out, "\nB =\n%v\n", mat.Formatted(ss.B.Dense(), mat.Prefix("    "), mat.Squeeze()))
	}

	if showSystem {
		sm, err := matrix.NewSystemMatrix(sys.Order())
		if err != nil {
			return err
		}
		defer sm.Destroy()
		if err := sm.Load(sys.A, 1/sc.Tran.TStep); err != nil {
			return err
		}
		sm.Print(out)
	}
	return nil
}
