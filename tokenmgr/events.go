// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tokenmgr

import "fmt"

// EventType identifies the kind of a ledger event.
type EventType uint8

const (
	// EventTransfer is emitted when value moves between accounts.
	EventTransfer EventType = iota

	// EventApproval describes an allowance granted by an owner to a
	// spender.
	EventApproval

	// EventUtxoCreated is emitted for every UTXO appended to the set.
	EventUtxoCreated

	// EventUtxoSpent is emitted for every UTXO consumed.
	EventUtxoSpent
)

// Event is a notification produced by the ledger.  Which fields are set
// depends on Type.
type Event struct {
	Type   EventType
	From   string
	To     string
	Amount Amount
	UtxoID uint32
}

// TransferEvent returns an event for value moved from one address to another.
func TransferEvent(from, to string, amount Amount) Event {
	return Event{Type: EventTransfer, From: from, To: to, Amount: amount}
}

// ApprovalEvent returns an event for an allowance of amount granted by owner
// to spender.
func ApprovalEvent(owner, spender string, amount Amount) Event {
	return Event{Type: EventApproval, From: owner, To: spender, Amount: amount}
}

// UtxoCreatedEvent returns an event for the creation of UTXO id by creator.
func UtxoCreatedEvent(id uint32, creator string) Event {
	return Event{Type: EventUtxoCreated, From: creator, UtxoID: id}
}

// UtxoSpentEvent returns an event for UTXO id being spent by spender.
func UtxoSpentEvent(id uint32, spender string) Event {
	return Event{Type: EventUtxoSpent, From: spender, UtxoID: id}
}

// String returns the human readable text of the event.
func (e Event) String() string {
	switch e.Type {
	case EventTransfer:
		return fmt.Sprintf("Transfer of %d from %s to %s is now "+
			"successful", e.Amount, e.From, e.To)
	case EventApproval:
		return fmt.Sprintf("Allowance of %d by %s to %s is now "+
			"approved", e.Amount, e.From, e.To)
	case EventUtxoCreated:
		return fmt.Sprintf("UTXO %d by %s is successfully created",
			e.UtxoID, e.From)
	case EventUtxoSpent:
		return fmt.Sprintf("UTXO %d is successfully spent by %s",
			e.UtxoID, e.From)
	default:
		return fmt.Sprintf("unknown event type %d", e.Type)
	}
}

// EventSink receives events as the ledger produces them.
type EventSink interface {
	Notify(Event)
}

// EventLog is an EventSink that keeps every event in order.
type EventLog struct {
	Events []Event
}

// Notify implements EventSink.
func (l *EventLog) Notify(e Event) {
	l.Events = append(l.Events, e)
}

// Strings returns the text of all recorded events.
func (l *EventLog) Strings() []string {
	s := make([]string, len(l.Events))
	for i, e := range l.Events {
		s[i] = e.String()
	}
	return s
}
