package core

import (
	"fmt"
	"strings"
)

// ReceptacleKind is the cardinality of a receptacle.
type ReceptacleKind int

const (
	// ReceptacleSingle holds zero or one connection.
	ReceptacleSingle ReceptacleKind = iota + 1
	// ReceptacleMulti holds an ordered list of connections.
	ReceptacleMulti
	// ReceptacleMultiContext is a multi receptacle with attribute lookup.
	ReceptacleMultiContext
)

// String returns the kind name used in assembly files and listings.
func (k ReceptacleKind) String() string {
	switch k {
	case ReceptacleSingle:
		return "single"
	case ReceptacleMulti:
		return "multi"
	case ReceptacleMultiContext:
		return "multi-context"
	default:
		return "unknown"
	}
}

// ParseReceptacleKind maps a kind name back to its ReceptacleKind.
func ParseReceptacleKind(s string) (ReceptacleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return ReceptacleSingle, nil
	case "multi", "multiple":
		return ReceptacleMulti, nil
	case "multi-context", "context":
		return ReceptacleMultiContext, nil
	default:
		return 0, fmt.Errorf("unknown receptacle kind %q", s)
	}
}

// AttributeScope selects where a meta-data attribute lives: on the
// component's Delegator for an interface, or on one of its receptacles.
type AttributeScope int

const (
	// ScopeInterface stores attributes on the interface's Delegator.
	ScopeInterface AttributeScope = iota + 1
	// ScopeReceptacle stores attributes on the receptacle itself.
	ScopeReceptacle
)

// String returns the scope name.
func (s AttributeScope) String() string {
	switch s {
	case ScopeInterface:
		return "interface"
	case ScopeReceptacle:
		return "receptacle"
	default:
		return "unknown"
	}
}

// ParseAttributeScope maps a scope name back to its AttributeScope.
func ParseAttributeScope(s string) (AttributeScope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "interface", "":
		return ScopeInterface, nil
	case "receptacle":
		return ScopeReceptacle, nil
	default:
		return 0, fmt.Errorf("unknown attribute scope %q", s)
	}
}

// Receptacle is a connection endpoint owned by a component. Receptacles only
// hold references and connection ids; they are mutated exclusively through
// the kernel's connect/disconnect protocol.
type Receptacle interface {
	InterfaceType() string
	Kind() ReceptacleKind
	ConnectTo(sink Unknown, id ConnID) bool
	DisconnectFrom(id ConnID) bool
	PutData(name string, attr TypedAttribute) bool
	Value(name string) (TypedAttribute, bool)
	Values() map[string]TypedAttribute
}
