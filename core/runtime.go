package core

// ConnInfo describes one connection: the receptacle owner (Source), the
// interface owner (Sink) and the interface type bound.
type ConnInfo struct {
	ID            ConnID
	Source        *Handle
	Sink          *Handle
	InterfaceType string
}

// MetaArchitecture exposes connection introspection over the system graph.
type MetaArchitecture interface {
	// EnumConnsToIntf lists connection ids bound to c's interface iid.
	EnumConnsToIntf(c Unknown, iid string) []ConnID
	// EnumConnsFromRecp lists connection ids leaving c's receptacle iid.
	EnumConnsFromRecp(c Unknown, iid string) []ConnID
	// EnumConns lists every connection of c, whatever its interface type,
	// interface side first. A connection from c to itself appears once.
	EnumConns(c Unknown) []ConnID
}

// MetaInterception grants access to the Delegators installed around
// component capabilities.
type MetaInterception interface {
	// Delegator returns the proxy registered for (c, iid). Absence is a
	// normal outcome for core interfaces and undeclared capabilities.
	Delegator(c Unknown, iid string) (Delegator, bool)
}

// Runtime is the kernel contract handed to every component constructor.
//
// Graph mutations (CreateInstance, Connect, Disconnect, DeleteInstance) are
// not synchronized against each other. Reconfiguring the same runtime from
// several goroutines at once is unsupported; frameworks serialize their own
// reconfiguration through transactions.
type Runtime interface {
	Unknown
	MetaArchitecture
	MetaInterception

	CreateInstance(typeName, name string) (*Handle, error)
	DeleteInstance(c Unknown) bool
	// ShutdownInstance runs c's life-cycle shutdown but keeps it in the
	// graph; a later DeleteInstance skips the shutdown.
	ShutdownInstance(c Unknown) bool
	// StartupInstance runs c's life-cycle startup with data.
	StartupInstance(c Unknown, data any) bool
	// RenameInstance changes c's instance name; "" makes it anonymous.
	RenameInstance(c Unknown, name string) bool
	Connect(source, sink Unknown, iid string) (ConnID, bool)
	Disconnect(id ConnID) bool

	EnumComponents() []*Handle
	Lookup(c Unknown) (*Handle, bool)
	ComponentName(c Unknown) (string, bool)
	ComponentType(c Unknown) (string, bool)
	ComponentByName(name string) (*Handle, bool)
	ConnectionInfo(id ConnID) (ConnInfo, bool)
}

// Delegator is the intercepting wrapper around one capability of one
// component. Hooks run in insertion order.
type Delegator interface {
	InterfaceType() string
	// Outer returns the intercepting reference callers use.
	Outer() any

	AddPreMethod(host any, name string) bool
	AddPostMethod(host any, name string) bool
	DelPreMethod(name string) bool
	DelPostMethod(name string) bool
	// AddInterceptor appends enter as a pre-hook and exit as a post-hook.
	// When a later pre-hook aborts a call, exit still runs for every
	// interceptor whose enter already ran, in reverse order.
	AddInterceptor(host any, enter, exit string) bool
	// DelInterceptor removes a pair added by AddInterceptor.
	DelInterceptor(enter, exit string) bool
	ViewPreMethods() []string
	ViewPostMethods() []string

	SetAttributeValue(name string, attr TypedAttribute) bool
	AttributeValue(name string) (TypedAttribute, bool)
	AttributeValues() map[string]TypedAttribute
}
