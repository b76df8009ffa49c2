package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/manakau-com/node-nlopt/internal/optimization"
)

const sphereProblem = `
algorithm: LD_LBFGS
numberOfParameters: 2
minObjectiveFunction:
  value: pow(x0 - 1, 2) + pow(x1 + 2, 2)
  gradient: ["2 * (x0 - 1)", "2 * (x1 + 2)"]
initialGuess: [10, 10]
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProblem(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "problem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "nlopt version "+version)
}

func TestAlgorithms(t *testing.T) {
	out, err := execute(t, "algorithms")
	require.NoError(t, err)
	assert.Contains(t, out, "LN_NELDERMEAD")
	assert.Contains(t, out, "GD_STOGO")
	assert.Contains(t, out, "gonum")
}

func TestRunJSON(t *testing.T) {
	path := writeProblem(t, sphereProblem)
	metrics := filepath.Join(t.TempDir(), "metrics.prom")
	t.Setenv("METRICS_OUTPUT", metrics)

	out, err := execute(t, "run", "--backend", "gonum", "--output", "json", path)
	require.NoError(t, err)

	var rep optimization.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotNil(t, rep.OutputValue)
	assert.InDelta(t, 0, *rep.OutputValue, 1e-6)
	require.Len(t, rep.ParameterValues, 2)
	assert.InDelta(t, 1, rep.ParameterValues[0], 1e-3)
	assert.InDelta(t, -2, rep.ParameterValues[1], 1e-3)
	assert.NotEmpty(t, rep.RunID)
	assert.Contains(t, rep.Status, "status")

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), "nlopt_runs_total")
}

func TestRunYAML(t *testing.T) {
	path := writeProblem(t, sphereProblem)

	out, err := execute(t, "run", "--backend", "gonum", "--output", "yaml", path)
	require.NoError(t, err)

	var rep optimization.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &rep))
	assert.Len(t, rep.ParameterValues, 2)
}

func TestRunErrors(t *testing.T) {
	path := writeProblem(t, sphereProblem)

	_, err := execute(t, "run", "--backend", "nope", "--output", "json", path)
	assert.Error(t, err)

	_, err = execute(t, "run", "--backend", "gonum", "--output", "xml", path)
	assert.Error(t, err)

	_, err = execute(t, "run", "--backend", "gonum", "--output", "json", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	rejected := writeProblem(t, "algorithm: LN_NELDERMEAD\nnumberOfParameters: 1\n")
	out, err := execute(t, "run", "--backend", "gonum", "--output", "json", rejected)
	assert.Error(t, err, "no objective")
	assert.Contains(t, out, "objective")
}
