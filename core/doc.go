// Package core provides the foundational contracts of the compmesh component
// runtime. It defines:
//
//   - The component variant contract (Unknown, LifeCycle, Connections,
//     MetaInterface) and the static capability table (Registration)
//   - Runtime contracts implemented by the kernel (Runtime,
//     MetaArchitecture, MetaInterception)
//   - Handle, the opaque identity of an instantiated component
//   - Interception contracts (Delegator, HookFunc, HookHost, Invoker)
//   - TypedAttribute, the tagged meta-data value
//   - Receptacle, the connection endpoint contract
//   - The error taxonomy and the Observer event sink
//
// The package holds no implementation of the graph itself; see package
// kernel for the registry and package framework for composite components.
package core
