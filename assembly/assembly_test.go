package assembly

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/compmesh/core"
	"github.com/hupe1980/compmesh/internal/calculator"
	"github.com/hupe1980/compmesh/internal/testutil"
	"github.com/hupe1980/compmesh/kernel"
)

func newRuntime(t *testing.T) *kernel.Kernel {
	return testutil.NewKernel(t, nil)
}

func TestLoadAndApply(t *testing.T) {
	for _, file := range []string{"calculator.yaml", "calculator.toml"} {
		t.Run(file, func(t *testing.T) {
			a, err := Load(filepath.Join("testdata", file))
			require.NoError(t, err)
			assert.Equal(t, 5, a.ComponentCount())

			k := newRuntime(t)

			res, err := Apply(context.Background(), k, a, func(o *Options) {
				o.Hosts = map[string]any{"samples": calculator.NewInterceptors(k, "Adder", nil)}
			})
			require.NoError(t, err)

			require.NotNil(t, res.Framework)
			assert.Len(t, res.Bindings, 2)
			assert.Len(t, res.Components, 5)

			adder, ok := res.Component("adder")
			require.True(t, ok)

			d, ok := k.Delegator(adder, calculator.IAdd)
			require.True(t, ok)

			v, ok := d.AttributeValue(calculator.VariationAttr)
			require.True(t, ok)
			assert.Equal(t, core.IntAttr(8), v)
			assert.Equal(t, []string{"Pre0"}, d.ViewPreMethods())

			calc, ok := res.Framework.QueryInterface(calculator.ICalculator).(calculator.Calc)
			require.True(t, ok)

			got, err := calc.Add(18, 19)
			require.NoError(t, err)
			assert.Equal(t, 37, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing name", "components:\n  - type: Adder\n"},
		{"missing type", "components:\n  - name: A\n"},
		{"duplicate name", "components:\n  - {name: A, type: Adder}\n  - {name: a, type: Adder}\n"},
		{"unknown sink", "components:\n  - {name: A, type: Calculator}\nconnections:\n  - {source: A, sink: B, interface: IAdd}\n"},
		{"missing interface", "components:\n  - {name: A, type: Calculator}\n  - {name: B, type: Adder}\nconnections:\n  - {source: A, sink: B}\n"},
		{"bad attribute kind", "components:\n  - name: A\n    type: Adder\n    attributes:\n      - {interface: IAdd, name: x, kind: complex, value: 1}\n"},
		{"bad attribute value", "components:\n  - name: A\n    type: Adder\n    attributes:\n      - {interface: IAdd, name: x, kind: int, value: abc}\n"},
		{"bad scope", "components:\n  - name: A\n    type: Adder\n    attributes:\n      - {scope: global, interface: IAdd, name: x, kind: int, value: 1}\n"},
		{"validator inside framework", "framework:\n  name: CF\n  validator: V\n  components:\n    - {name: V, type: Accept}\n"},
		{"expose unknown", "framework:\n  name: CF\n  expose:\n    interfaces:\n      - {component: X, interface: IAdd}\n"},
		{"bad receptacle kind", "framework:\n  name: CF\n  components:\n    - {name: C, type: Calculator}\n  expose:\n    receptacles:\n      - {component: C, interface: IAdd, kind: many}\n"},
		{"interceptor without hooks", "components:\n  - {name: A, type: Adder}\ninterceptors:\n  - {component: A, interface: IAdd, host: h}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml), FormatYAML)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestParse_UnknownKeys(t *testing.T) {
	_, err := Parse([]byte("components:\n  - {name: A, type: Adder, colour: red}\n"), FormatYAML)
	require.Error(t, err)

	_, err = Parse([]byte("[[components]]\nname = \"A\"\ntype = \"Adder\"\ncolour = \"red\"\n"), FormatTOML)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParse_Empty(t *testing.T) {
	a, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 0, a.ComponentCount())
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("a/b.YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	f, err = FormatFromPath("x.toml")
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, f)

	_, err = FormatFromPath("x.json")
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Parse([]byte("{}"), Format("json"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestApply_RejectedCommitCleansUp(t *testing.T) {
	a, err := Parse([]byte(`
components:
  - {name: Accept, type: Accept}
framework:
  name: CF
  validator: Accept
  components:
    - {name: Calculator, type: Calculator}
`), FormatYAML)
	require.NoError(t, err)

	k := newRuntime(t)

	_, err = Apply(context.Background(), k, a)
	require.ErrorIs(t, err, ErrCommitRejected)

	var step *StepError
	require.True(t, errors.As(err, &step))
	assert.Contains(t, step.Step, "commit framework")

	assert.Empty(t, k.EnumComponents())
	assert.Empty(t, k.Connections())
}

func TestApply_UnknownType(t *testing.T) {
	a, err := Parse([]byte("components:\n  - {name: A, type: Adder}\n  - {name: B, type: Nope}\n"), FormatYAML)
	require.NoError(t, err)

	k := newRuntime(t)

	_, err = Apply(context.Background(), k, a)
	require.ErrorIs(t, err, core.ErrInvalidComponentType)
	assert.Empty(t, k.EnumComponents())
}

func TestApply_UnknownHost(t *testing.T) {
	a, err := Parse([]byte(`
components:
  - {name: A, type: Adder}
interceptors:
  - {component: A, interface: IAdd, host: missing, pre: [Pre0]}
`), FormatYAML)
	require.NoError(t, err)

	k := newRuntime(t)

	_, err = Apply(context.Background(), k, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown hook host")
	assert.Empty(t, k.EnumComponents())
}

func TestApply_FrameworkFailureRollsBack(t *testing.T) {
	a, err := Parse([]byte(`
framework:
  name: CF
  components:
    - {name: Calculator, type: Calculator}
    - {name: Adder, type: Adder}
  bindings:
    - {source: Adder, sink: Calculator, interface: IAdd}
`), FormatYAML)
	require.NoError(t, err)

	k := newRuntime(t)

	_, err = Apply(context.Background(), k, a)

	var step *StepError
	require.True(t, errors.As(err, &step))
	assert.Contains(t, step.Step, "bind Adder -> Calculator")
	assert.Empty(t, k.EnumComponents())
}

func TestApply_ExposedReceptacleAndTopLevelConnection(t *testing.T) {
	a, err := Parse([]byte(`
components:
  - {name: Adder, type: Adder}
framework:
  name: CF
  components:
    - {name: Calculator, type: Calculator}
  expose:
    interfaces:
      - {component: Calculator, interface: ICalculator}
    receptacles:
      - {component: Calculator, interface: IAdd}
connections:
  - {source: CF, sink: Adder, interface: IAdd}
`), FormatYAML)
	require.NoError(t, err)

	k := newRuntime(t)

	res, err := Apply(context.Background(), k, a)
	require.NoError(t, err)
	require.Len(t, res.Connections, 1)

	calc := res.Framework.QueryInterface(calculator.ICalculator).(calculator.Calc)

	got, err := calc.Add(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}
