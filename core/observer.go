package core

import "time"

// TransactionOutcome is how a framework transaction ended.
type TransactionOutcome string

const (
	// Committed means the transaction was accepted.
	Committed TransactionOutcome = "committed"
	// Rejected means the validator refused the commit and state was restored.
	Rejected TransactionOutcome = "rejected"
	// RolledBack means the caller rolled the transaction back explicitly.
	RolledBack TransactionOutcome = "rolled_back"
)

// Observer receives runtime events. Implementations must be safe for
// concurrent use and must not call back into the runtime.
type Observer interface {
	ComponentCreated(typeName, name string, h *Handle)
	ComponentDeleted(typeName, name string, h *Handle)
	Connected(info ConnInfo)
	ConnectFailed(source, sink *Handle, iid string)
	Disconnected(info ConnInfo)
	InvocationAborted(iid, method, hook string)
	TransactionFinished(framework string, outcome TransactionOutcome, d time.Duration)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) ComponentCreated(string, string, *Handle)                      {}
func (NopObserver) ComponentDeleted(string, string, *Handle)                      {}
func (NopObserver) Connected(ConnInfo)                                            {}
func (NopObserver) ConnectFailed(*Handle, *Handle, string)                        {}
func (NopObserver) Disconnected(ConnInfo)                                         {}
func (NopObserver) InvocationAborted(string, string, string)                      {}
func (NopObserver) TransactionFinished(string, TransactionOutcome, time.Duration) {}

var _ Observer = NopObserver{}

// Observers fans every event out to each member in order.
type Observers []Observer

func (o Observers) ComponentCreated(typeName, name string, h *Handle) {
	for _, ob := range o {
		ob.ComponentCreated(typeName, name, h)
	}
}

func (o Observers) ComponentDeleted(typeName, name string, h *Handle) {
	for _, ob := range o {
		ob.ComponentDeleted(typeName, name, h)
	}
}

func (o Observers) Connected(info ConnInfo) {
	for _, ob := range o {
		ob.Connected(info)
	}
}

func (o Observers) ConnectFailed(source, sink *Handle, iid string) {
	for _, ob := range o {
		ob.ConnectFailed(source, sink, iid)
	}
}

func (o Observers) Disconnected(info ConnInfo) {
	for _, ob := range o {
		ob.Disconnected(info)
	}
}

func (o Observers) InvocationAborted(iid, method, hook string) {
	for _, ob := range o {
		ob.InvocationAborted(iid, method, hook)
	}
}

func (o Observers) TransactionFinished(framework string, outcome TransactionOutcome, d time.Duration) {
	for _, ob := range o {
		ob.TransactionFinished(framework, outcome, d)
	}
}

var _ Observer = Observers(nil)
