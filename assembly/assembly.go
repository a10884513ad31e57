// Package assembly describes a component graph in a YAML or TOML file and
// builds it against a runtime.
//
// An assembly lists top-level components with their attributes, the
// connections between them, optional interceptors, and at most one
// framework whose internal graph is built inside a single reconfiguration
// transaction:
//
//	components:
//	  - name: Accept
//	    type: Accept
//	framework:
//	  name: CF
//	  validator: Accept
//	  components:
//	    - {name: Calculator, type: Calculator}
//	    - {name: Adder, type: Adder}
//	  bindings:
//	    - {source: Calculator, sink: Adder, interface: IAdd}
//	  expose:
//	    interfaces:
//	      - {component: Calculator, interface: ICalculator}
package assembly

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/compmesh/core"
)

// Format is an assembly file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var (
	// ErrUnknownFormat is returned for unsupported file encodings.
	ErrUnknownFormat = errors.New("unknown assembly format")
	// ErrInvalid is returned when an assembly references unknown names or
	// carries malformed values.
	ErrInvalid = errors.New("invalid assembly")
)

// Attribute is a meta-data value set on a freshly created component.
type Attribute struct {
	Scope     string `yaml:"scope" toml:"scope"`
	Interface string `yaml:"interface" toml:"interface"`
	Name      string `yaml:"name" toml:"name"`
	Kind      string `yaml:"kind" toml:"kind"`
	Value     any    `yaml:"value" toml:"value"`
}

// Component is one component instance.
type Component struct {
	Name       string      `yaml:"name" toml:"name"`
	Type       string      `yaml:"type" toml:"type"`
	Attributes []Attribute `yaml:"attributes,omitempty" toml:"attributes,omitempty"`
}

// Connection binds Source's receptacle to Sink's interface.
type Connection struct {
	Source    string `yaml:"source" toml:"source"`
	Sink      string `yaml:"sink" toml:"sink"`
	Interface string `yaml:"interface" toml:"interface"`
}

// Interceptor attaches named hooks from a registered hook host to the
// delegator of one component interface.
type Interceptor struct {
	Component string   `yaml:"component" toml:"component"`
	Interface string   `yaml:"interface" toml:"interface"`
	Host      string   `yaml:"host" toml:"host"`
	Pre       []string `yaml:"pre,omitempty" toml:"pre,omitempty"`
	Post      []string `yaml:"post,omitempty" toml:"post,omitempty"`
}

// ExposedInterface names an interface a framework publishes.
type ExposedInterface struct {
	Component string `yaml:"component" toml:"component"`
	Interface string `yaml:"interface" toml:"interface"`
}

// ExposedReceptacle names a receptacle a framework publishes.
type ExposedReceptacle struct {
	Component string `yaml:"component" toml:"component"`
	Interface string `yaml:"interface" toml:"interface"`
	Kind      string `yaml:"kind,omitempty" toml:"kind,omitempty"`
}

// Expose groups a framework's published interfaces and receptacles.
type Expose struct {
	Interfaces  []ExposedInterface  `yaml:"interfaces,omitempty" toml:"interfaces,omitempty"`
	Receptacles []ExposedReceptacle `yaml:"receptacles,omitempty" toml:"receptacles,omitempty"`
}

// Framework describes a framework instance and its internal graph.
type Framework struct {
	Name       string       `yaml:"name" toml:"name"`
	Type       string       `yaml:"type,omitempty" toml:"type,omitempty"`
	Validator  string       `yaml:"validator,omitempty" toml:"validator,omitempty"`
	Components []Component  `yaml:"components,omitempty" toml:"components,omitempty"`
	Bindings   []Connection `yaml:"bindings,omitempty" toml:"bindings,omitempty"`
	Expose     Expose       `yaml:"expose,omitempty" toml:"expose,omitempty"`
}

// Assembly is a parsed assembly file.
type Assembly struct {
	Components   []Component   `yaml:"components,omitempty" toml:"components,omitempty"`
	Connections  []Connection  `yaml:"connections,omitempty" toml:"connections,omitempty"`
	Interceptors []Interceptor `yaml:"interceptors,omitempty" toml:"interceptors,omitempty"`
	Framework    *Framework    `yaml:"framework,omitempty" toml:"framework,omitempty"`
}

// FormatFromPath picks the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Load reads and validates the assembly file at path.
func Load(path string) (*Assembly, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading assembly %s: %w", path, err)
	}

	a, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing assembly %s: %w", path, err)
	}

	return a, nil
}

// Parse decodes and validates an assembly.
func Parse(data []byte, format Format) (*Assembly, error) {
	var a Assembly

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&a); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decoding YAML: %w", err)
		}
	case FormatTOML:
		meta, err := toml.Decode(string(data), &a)
		if err != nil {
			return nil, fmt.Errorf("decoding TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return &a, nil
}

// Validate checks names, references and value encodings without touching
// a runtime. Component types are not checked.
func (a *Assembly) Validate() error {
	names := map[string]bool{}

	add := func(where, name, typ string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: %s: component name is required", ErrInvalid, where)
		}
		if strings.TrimSpace(typ) == "" {
			return fmt.Errorf("%w: %s: component %q needs a type", ErrInvalid, where, name)
		}
		key := strings.ToLower(name)
		if names[key] {
			return fmt.Errorf("%w: %s: duplicate component name %q", ErrInvalid, where, name)
		}
		names[key] = true
		return nil
	}

	for _, c := range a.Components {
		if err := add("components", c.Name, c.Type); err != nil {
			return err
		}
		if err := validateAttributes(c); err != nil {
			return err
		}
	}

	inner := map[string]bool{}

	if f := a.Framework; f != nil {
		typ := f.Type
		if typ == "" {
			typ = "framework"
		}
		if err := add("framework", f.Name, typ); err != nil {
			return err
		}

		for _, c := range f.Components {
			if err := add("framework.components", c.Name, c.Type); err != nil {
				return err
			}
			if err := validateAttributes(c); err != nil {
				return err
			}
			inner[strings.ToLower(c.Name)] = true
		}

		if f.Validator != "" && (!names[strings.ToLower(f.Validator)] || inner[strings.ToLower(f.Validator)]) {
			return fmt.Errorf("%w: framework.validator: %q is not a top-level component", ErrInvalid, f.Validator)
		}

		for _, b := range f.Bindings {
			if err := checkConnection("framework.bindings", b, inner); err != nil {
				return err
			}
		}

		for _, e := range f.Expose.Interfaces {
			if !inner[strings.ToLower(e.Component)] || e.Interface == "" {
				return fmt.Errorf("%w: framework.expose.interfaces: %s.%s does not name a framework component interface", ErrInvalid, e.Component, e.Interface)
			}
		}

		for _, e := range f.Expose.Receptacles {
			if !inner[strings.ToLower(e.Component)] || e.Interface == "" {
				return fmt.Errorf("%w: framework.expose.receptacles: %s.%s does not name a framework component receptacle", ErrInvalid, e.Component, e.Interface)
			}
			if e.Kind != "" {
				if _, err := core.ParseReceptacleKind(e.Kind); err != nil {
					return fmt.Errorf("%w: framework.expose.receptacles: %v", ErrInvalid, err)
				}
			}
		}
	}

	for _, c := range a.Connections {
		if err := checkConnection("connections", c, names); err != nil {
			return err
		}
	}

	for _, ic := range a.Interceptors {
		if !names[strings.ToLower(ic.Component)] {
			return fmt.Errorf("%w: interceptors: unknown component %q", ErrInvalid, ic.Component)
		}
		if ic.Interface == "" || ic.Host == "" {
			return fmt.Errorf("%w: interceptors: %s needs an interface and a host", ErrInvalid, ic.Component)
		}
		if len(ic.Pre) == 0 && len(ic.Post) == 0 {
			return fmt.Errorf("%w: interceptors: %s.%s attaches no hooks", ErrInvalid, ic.Component, ic.Interface)
		}
	}

	return nil
}

// ComponentCount returns the number of components the assembly creates,
// the framework included.
func (a *Assembly) ComponentCount() int {
	n := len(a.Components)
	if a.Framework != nil {
		n += 1 + len(a.Framework.Components)
	}
	return n
}

func checkConnection(where string, c Connection, known map[string]bool) error {
	if !known[strings.ToLower(c.Source)] {
		return fmt.Errorf("%w: %s: unknown source %q", ErrInvalid, where, c.Source)
	}
	if !known[strings.ToLower(c.Sink)] {
		return fmt.Errorf("%w: %s: unknown sink %q", ErrInvalid, where, c.Sink)
	}
	if c.Interface == "" {
		return fmt.Errorf("%w: %s: %s -> %s needs an interface", ErrInvalid, where, c.Source, c.Sink)
	}
	return nil
}

func validateAttributes(c Component) error {
	for _, at := range c.Attributes {
		if _, err := attribute(at); err != nil {
			return fmt.Errorf("%w: component %q attribute %q: %v", ErrInvalid, c.Name, at.Name, err)
		}
	}
	return nil
}

type attrSpec struct {
	scope core.AttributeScope
	value core.TypedAttribute
}

func attribute(at Attribute) (attrSpec, error) {
	if at.Name == "" || at.Interface == "" {
		return attrSpec{}, errors.New("name and interface are required")
	}

	scope, err := core.ParseAttributeScope(at.Scope)
	if err != nil {
		return attrSpec{}, err
	}

	kind, err := core.ParseAttrKind(at.Kind)
	if err != nil {
		return attrSpec{}, err
	}

	v, err := core.NewAttr(kind, at.Value)
	if err != nil {
		return attrSpec{}, err
	}

	return attrSpec{scope: scope, value: v}, nil
}
