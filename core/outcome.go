package core

import (
	"fmt"

	"github.com/ayourtch/fabricsim/packet"
	"github.com/ayourtch/fabricsim/state"
)

// OutcomeKind tags the result of one processing pipeline run.
type OutcomeKind int

const (
	// KindDelivered means the packet reached its egress router.
	KindDelivered OutcomeKind = iota
	// KindForwarded is an intermediate result: the packet moved one hop
	// and the engine continues internally. It is never returned from
	// Process, only from a single hop step.
	KindForwarded
	// KindIcmpGenerated means the journey ended with a synthesized ICMP
	// error reply, to be re-submitted toward the original source.
	KindIcmpGenerated
	// KindDropped is a terminal drop, see DropReason.
	KindDropped
)

func (k OutcomeKind) String() string {
	switch k {
	case KindDelivered:
		return "delivered"
	case KindForwarded:
		return "forwarded"
	case KindIcmpGenerated:
		return "icmp_generated"
	case KindDropped:
		return "dropped"
	}
	return "unknown"
}

// DropReason enumerates why a packet's journey ended without delivery.
type DropReason int

const (
	DropNone DropReason = iota
	DropMalformedPacket
	DropTtlExpired
	DropMtuExceeded
	DropSimulatedLoss
	DropNoRoute
	DropSelfLoopDetected
)

func (r DropReason) String() string {
	switch r {
	case DropMalformedPacket:
		return "malformed_packet"
	case DropTtlExpired:
		return "ttl_expired"
	case DropMtuExceeded:
		return "mtu_exceeded"
	case DropSimulatedLoss:
		return "simulated_loss"
	case DropNoRoute:
		return "no_route"
	case DropSelfLoopDetected:
		return "self_loop_detected"
	}
	return "none"
}

// Outcome is the terminal result of processing one packet. Hops counts
// completed forwarding hops, starting at 0 for a packet that never left its
// ingress router.
type Outcome struct {
	Kind    OutcomeKind
	Reason  DropReason
	Bytes   []byte
	Egress  state.RouterId // Delivered: egress boundary router
	NextHop state.RouterId // Forwarded: where the packet moved
	Origin  state.RouterId // IcmpGenerated: the router that replied
	Icmp    packet.Kind
	Hops    int
}

func (o Outcome) String() string {
	switch o.Kind {
	case KindDelivered:
		return fmt.Sprintf("delivered at %s after %d hops", o.Egress, o.Hops)
	case KindIcmpGenerated:
		return fmt.Sprintf("icmp %s generated at %s after %d hops", o.Icmp, o.Origin, o.Hops)
	case KindDropped:
		return fmt.Sprintf("dropped (%s) after %d hops", o.Reason, o.Hops)
	}
	return fmt.Sprintf("forwarded to %s", o.NextHop)
}
