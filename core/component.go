package core

import "strings"

// Well known capability names. Matching of capability names is always
// case-insensitive.
const (
	// IUnknown is the base capability every component must answer.
	IUnknown = "IUnknown"
	// IConnections is the optional connection capability (receptacle owner).
	IConnections = "IConnections"
	// ILifeCycle is the optional start/shutdown capability.
	ILifeCycle = "ILifeCycle"
	// IMetaInterface is the component introspection capability.
	IMetaInterface = "IMetaInterface"
	// ICFMetaInterface is the reconfiguration capability of a component framework.
	ICFMetaInterface = "ICFMetaInterface"
	// IAccept is the validator capability consulted at framework commit time.
	IAccept = "IAccept"

	// IRuntime is answered by the kernel itself.
	IRuntime = "IRuntime"
	// IMetaArchitecture is answered by the kernel itself.
	IMetaArchitecture = "IMetaArchitecture"
	// IMetaInterception is answered by the kernel itself.
	IMetaInterception = "IMetaInterception"
)

// IsCoreInterface reports whether name is one of the connection, life-cycle or
// introspection capabilities that are never wrapped in a Delegation Proxy.
func IsCoreInterface(name string) bool {
	for _, c := range []string{IConnections, ILifeCycle, IMetaInterface, ICFMetaInterface} {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// ConnID identifies a connection. Ids are issued by the kernel starting at 1,
// strictly increasing and never reused.
type ConnID uint64

// ComponentID identifies a graph node inside a kernel.
type ComponentID uint64

// Unknown is the base capability: capability query by name. A nil result
// means the capability is not supported.
type Unknown interface {
	QueryInterface(name string) any
}

// LifeCycle is the optional start/shutdown capability.
type LifeCycle interface {
	Startup(data any) bool
	Shutdown() bool
}

// Disposer is implemented by components that own other components. The
// kernel calls Dispose once the component's node has left the graph, after
// its shutdown; unlike Shutdown it is never undone.
type Disposer interface {
	Dispose()
}

// Connections is the optional capability through which the kernel performs
// the physical bind of a receptacle to a sink interface.
type Connections interface {
	Connect(sink Unknown, iid string, id ConnID) bool
	Disconnect(iid string, id ConnID) bool
}

// ReceptacleInfo describes one receptacle declared by a component.
type ReceptacleInfo struct {
	InterfaceType string
	Kind          ReceptacleKind
}

// MetaInterface is the per-component introspection capability.
type MetaInterface interface {
	EnumInterfaces() []string
	EnumReceptacles() []ReceptacleInfo
	SetAttributeValue(iid string, scope AttributeScope, name string, attr TypedAttribute) bool
	AttributeValue(iid string, scope AttributeScope, name string) (TypedAttribute, bool)
	AllValues(scope AttributeScope, iid string) map[string]TypedAttribute
}

// ExposedInterface records an interface a framework makes available to its
// outside. Ref is the reference handed out by the framework's capability
// query (the intercepting proxy, or a nested framework's exposed reference).
type ExposedInterface struct {
	Component     *Handle
	InterfaceType string
	Ref           any
}

// ExposedReceptacle records a receptacle a framework makes available to its
// outside.
type ExposedReceptacle struct {
	Component     *Handle
	InterfaceType string
	Kind          ReceptacleKind
}

// Validator is the optional framework collaborator consulted at commit time.
type Validator interface {
	IsValid(components []*Handle, exposed []ExposedInterface) bool
}
