package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compmesh/assembly"
)

var calculatorYAML = filepath.Join("..", "..", "assembly", "testdata", "calculator.yaml")

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestTypesCmd(t *testing.T) {
	out, err := run(t, "types")
	require.NoError(t, err)

	assert.Contains(t, out, "TYPE")
	for _, typ := range []string{"ComponentFramework", "Adder", "Subtractor", "Calculator", "Accept"} {
		assert.Contains(t, out, typ)
	}
	assert.Contains(t, out, "ICalculator")
}

func TestValidateCmd(t *testing.T) {
	out, err := run(t, "validate", calculatorYAML)
	require.NoError(t, err)
	assert.Contains(t, out, "ok (5 components, 0 connections)")
}

func TestValidateCmd_UnregisteredType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("components:\n  - {name: A, type: Multiplier}\n"), 0o600))

	_, err := run(t, "validate", path)
	require.ErrorIs(t, err, assembly.ErrInvalid)
	assert.Contains(t, err.Error(), "Multiplier")
}

func TestValidateCmd_MissingArg(t *testing.T) {
	_, err := run(t, "validate")
	require.Error(t, err)
}

func TestInspectCmd(t *testing.T) {
	out, err := run(t, "inspect", calculatorYAML)
	require.NoError(t, err)

	assert.Contains(t, out, "Components:")
	assert.Contains(t, out, "Framework CF:")
	assert.Contains(t, out, "member Calculator")
	assert.Contains(t, out, "exposes interface ICalculator of Calculator")
	assert.Contains(t, out, "IAdd pre=[Pre0] post=[Post0]")
	assert.Contains(t, out, "interface IAdd: Variation int = 8")
	assert.Contains(t, out, "Accept (IAccept)")
}

func TestInspectCmd_UnknownFormat(t *testing.T) {
	_, err := run(t, "inspect", "graph.json")
	require.ErrorIs(t, err, assembly.ErrUnknownFormat)
}
