package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	// Reset flags to prevent accumulation between tests
	verbose, csvFile, method, formulation = false, "", "", ""
	sampleRate, probes, summaryOnly = 0, nil, false
	showDense, showSystem = false, false
	for _, c := range []*cobra.Command{rootCmd, runCmd, matrixCmd, opCmd} {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRunE2E(t *testing.T) {
	out, logs, err := execute(t, "run", "../testdata/short.cir")
	require.NoError(t, err, logs)

	assert.Contains(t, out, "2 km line, 4 pi sections")
	assert.Contains(t, out, "Transient Analysis Results (20 time points)")
	assert.Contains(t, out, "V(4)=")
	assert.Contains(t, out, "Summary (20 points")
	assert.Contains(t, logs, "simulation done")
	assert.NotContains(t, logs, "integration done")
}

func TestRunVerboseCSV(t *testing.T) {
	csvPath := filepath.Join(t.TempDir(), "out.csv")
	out, logs, err := execute(t, "run", "-v", "--summary", "--method", "trap", "--csv", csvPath, "../testdata/short.cir")
	require.NoError(t, err, logs)

	assert.NotContains(t, out, "Transient Analysis Results")
	assert.Contains(t, logs, "method=trap")
	assert.Contains(t, logs, "integration done")

	content, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "time,V(4)\n0,0\n")
}

func TestRunErrors(t *testing.T) {
	_, _, err := execute(t, "run", "../testdata/bad.cir")
	assert.ErrorContains(t, err, "sections")

	_, _, err = execute(t, "run", "../testdata/missing.cir")
	assert.Error(t, err)

	_, _, err = execute(t, "run", "--method", "euler", "../testdata/short.cir")
	assert.ErrorContains(t, err, "euler")

	_, _, err = execute(t, "run")
	assert.Error(t, err)
}

func TestMatrixE2E(t *testing.T) {
	out, _, err := execute(t, "matrix", "--dense", "--system", "../testdata/short.cir")
	require.NoError(t, err)

	// M=2, N=4: (3M+1)N + 2(N-1) literal contributions plus N + N-1 nodal ones
	assert.Contains(t, out, "Sections: 4, rungs: 2, formulation: nodal")
	assert.Contains(t, out, "A: 12x12, 41 contributions, 34 stored")
	assert.Contains(t, out, "B: 12x1, 1 contributions")
	assert.Contains(t, out, "A =")
	assert.Contains(t, out, "Step Equations (12x12)")
	assert.Contains(t, out, "Equation 12:")
}

func TestOPE2E(t *testing.T) {
	out, logs, err := execute(t, "op", "../testdata/short.cir")
	require.NoError(t, err, logs)

	assert.Contains(t, out, "Operating Point (source 20.000 kV)")
	assert.Contains(t, out, "V(4) = 20.000 kV")
	assert.NotContains(t, out, "I(1)")
	assert.Contains(t, logs, "operating point done")

	out, _, err = execute(t, "op", "--formulation", "literal", "-p", "I(1),V(1)", "../testdata/short.cir")
	require.NoError(t, err)
	assert.Contains(t, out, "I(1) =")
	assert.Contains(t, out, "V(1) = 20.000 kV")

	// probe names are case-insensitive, as in run
	out, _, err = execute(t, "op", "-p", "v(4)", "../testdata/short.cir")
	require.NoError(t, err)
	assert.Contains(t, out, "V(4) = 20.000 kV")

	_, _, err = execute(t, "op", "-p", "V(9)", "../testdata/short.cir")
	assert.ErrorContains(t, err, "V(9)")
}
