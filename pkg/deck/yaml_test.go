package deck_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/edp1096/piline/pkg/deck"
	"github.com/edp1096/piline/pkg/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestYAMLMatchesDeck(t *testing.T) {
	fromDeck, err := deck.Load("testdata/reference.cir")
	require.NoError(t, err)
	fromYAML, err := deck.Load("testdata/reference.yaml")
	require.NoError(t, err)

	assert.Equal(t, fromDeck.Title, fromYAML.Title)
	assert.Equal(t, fromDeck.Line, fromYAML.Line)
	assert.Equal(t, fromDeck.Formulation, fromYAML.Formulation)
	assert.Equal(t, fromDeck.Source, fromYAML.Source)
	assert.Equal(t, fromDeck.Tran, fromYAML.Tran)
	assert.Equal(t, fromDeck.Method, fromYAML.Method)
	assert.Equal(t, fromDeck.RelTol, fromYAML.RelTol)
	assert.Equal(t, fromDeck.Probes, fromYAML.Probes)
}

func TestYAMLRoundTrip(t *testing.T) {
	sc, err := deck.Load("testdata/reference.yaml")
	require.NoError(t, err)

	out, err := yaml.Marshal(sc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "again.yml")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	again, err := deck.Load(path)
	require.NoError(t, err)
	assert.Equal(t, sc, again)
}

func TestYAMLErrors(t *testing.T) {
	valid := `
line: {sections: %s, length: 10, conductance: 1u, capacitance: 1n, rungs: [{r: 1, l: 1m}]}
source: {type: dc, value: 1}
tran: {step: 1u, stop: 10u}
`
	_, err := deck.ParseYAML([]byte(fmt.Sprintf(valid, "2.5")))
	assert.ErrorIs(t, err, line.ErrValidation)

	_, err = deck.ParseYAML([]byte(fmt.Sprintf(valid, "0")))
	assert.ErrorIs(t, err, line.ErrValidation)

	_, err = deck.ParseYAML([]byte(fmt.Sprintf(valid, "abc")))
	assert.Error(t, err)

	_, err = deck.ParseYAML([]byte(fmt.Sprintf(valid, "3") + "colour: red\n"))
	assert.Error(t, err)

	_, err = deck.ParseYAML([]byte(fmt.Sprintf(valid, "3") + "options: {method: euler}\n"))
	assert.Error(t, err)

	sc, err := deck.ParseYAML([]byte(fmt.Sprintf(valid, "3")))
	require.NoError(t, err)
	assert.Equal(t, 3, sc.Line.Sections)
	assert.Equal(t, line.Literal, sc.Formulation)
}
