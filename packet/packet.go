package packet

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"net/netip"
)

// IP protocol numbers understood by the parser.
const (
	ProtoHopByHop = 0
	ProtoICMP     = 1
	ProtoTCP      = 6
	ProtoUDP      = 17
	ProtoICMPv6   = 58
)

const (
	ipv4MinHeaderLen = 20
	ipv6HeaderLen    = 40
)

// MalformedError reports a datagram that could not be parsed. Packets that
// fail to parse are dropped, never fatal.
type MalformedError struct {
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed packet: %s", e.Reason)
}

func malformed(format string, args ...any) error {
	return &MalformedError{Reason: fmt.Sprintf(format, args...)}
}

// Packet is the parsed view of one IP datagram. The raw buffer it was parsed
// from is kept alongside and mutated in place on TTL decrement, so Serialize
// is cheap and byte-exact.
type Packet struct {
	Version     int
	Src         netip.Addr
	Dst         netip.Addr
	Protocol    uint8
	Ttl         uint8
	SrcPort     uint16
	DstPort     uint16
	TotalLength int

	headerLen    int
	transportOff int
	raw          []byte
}

// FlowKey identifies one traffic flow for consistent hashing. It is
// directional: the reverse direction of the same connection hashes
// independently.
type FlowKey struct {
	Src      netip.Addr
	Dst      netip.Addr
	Protocol uint8
	SrcPort  uint16
	DstPort  uint16
}

// Hash returns a deterministic hash of the flow key. FNV-1a is used rather
// than maphash so that the same flow maps to the same path across runs.
func (k FlowKey) Hash() uint64 {
	h := fnv.New64a()
	src := k.Src.As16()
	dst := k.Dst.As16()
	h.Write(src[:])
	h.Write(dst[:])
	var tail [5]byte
	tail[0] = k.Protocol
	binary.BigEndian.PutUint16(tail[1:3], k.SrcPort)
	binary.BigEndian.PutUint16(tail[3:5], k.DstPort)
	h.Write(tail[:])
	return h.Sum64()
}

// Parse decodes a raw IPv4 or IPv6 datagram. It validates only what the
// simulator needs: header lengths, addresses, TTL, protocol and, where a
// transport header is present, the port pair.
func Parse(raw []byte) (*Packet, error) {
	if len(raw) == 0 {
		return nil, malformed("empty buffer")
	}
	switch raw[0] >> 4 {
	case 4:
		return parseIPv4(raw)
	case 6:
		return parseIPv6(raw)
	default:
		return nil, malformed("unrecognized IP version %d", raw[0]>>4)
	}
}

func parseIPv4(raw []byte) (*Packet, error) {
	if len(raw) < ipv4MinHeaderLen {
		return nil, malformed("IPv4 header truncated: %d bytes", len(raw))
	}
	hdrLen := int(raw[0]&0x0f) * 4
	if hdrLen < ipv4MinHeaderLen {
		return nil, malformed("IPv4 IHL %d below minimum", hdrLen)
	}
	if len(raw) < hdrLen {
		return nil, malformed("IPv4 options truncated: IHL %d, %d bytes", hdrLen, len(raw))
	}
	p := &Packet{
		Version:      4,
		Src:          netip.AddrFrom4([4]byte(raw[12:16])),
		Dst:          netip.AddrFrom4([4]byte(raw[16:20])),
		Protocol:     raw[9],
		Ttl:          raw[8],
		TotalLength:  int(binary.BigEndian.Uint16(raw[2:4])),
		headerLen:    hdrLen,
		transportOff: hdrLen,
		raw:          raw,
	}
	if (p.Protocol == ProtoTCP || p.Protocol == ProtoUDP) && len(raw) >= hdrLen+4 {
		p.SrcPort = binary.BigEndian.Uint16(raw[hdrLen : hdrLen+2])
		p.DstPort = binary.BigEndian.Uint16(raw[hdrLen+2 : hdrLen+4])
	}
	return p, nil
}

func parseIPv6(raw []byte) (*Packet, error) {
	if len(raw) < ipv6HeaderLen {
		return nil, malformed("IPv6 header truncated: %d bytes", len(raw))
	}
	p := &Packet{
		Version:     6,
		Src:         netip.AddrFrom16([16]byte(raw[8:24])),
		Dst:         netip.AddrFrom16([16]byte(raw[24:40])),
		Ttl:         raw[7],
		TotalLength: ipv6HeaderLen + int(binary.BigEndian.Uint16(raw[4:6])),
		headerLen:   ipv6HeaderLen,
		raw:         raw,
	}
	next := raw[6]
	offset := ipv6HeaderLen
	// Hop-by-Hop Options must be skipped by their declared length to reach
	// the transport header. The length field counts 8-octet units beyond
	// the mandatory first 8 octets.
	for next == ProtoHopByHop {
		if len(raw) < offset+8 {
			return nil, malformed("IPv6 extension header truncated at offset %d", offset)
		}
		extLen := (int(raw[offset+1]) + 1) * 8
		if len(raw) < offset+extLen {
			return nil, malformed("IPv6 extension header length %d exceeds buffer", extLen)
		}
		next = raw[offset]
		offset += extLen
	}
	p.Protocol = next
	p.transportOff = offset
	if (next == ProtoTCP || next == ProtoUDP) && len(raw) >= offset+4 {
		p.SrcPort = binary.BigEndian.Uint16(raw[offset : offset+2])
		p.DstPort = binary.BigEndian.Uint16(raw[offset+2 : offset+4])
	}
	return p, nil
}

// IsIcmpError reports whether the packet is itself an ICMP error message.
// Routers never answer an ICMP error with another ICMP error.
func (p *Packet) IsIcmpError() bool {
	if len(p.raw) <= p.transportOff {
		return false
	}
	t := p.raw[p.transportOff]
	switch p.Protocol {
	case ProtoICMP:
		return t == 3 || t == 4 || t == 5 || t == 11 || t == 12
	case ProtoICMPv6:
		return t < 128
	}
	return false
}

// DecrementTtl lowers the TTL / hop limit by one, keeping the raw buffer and
// the IPv4 header checksum consistent. It returns false, without mutating
// anything, when the value was already at or below 1.
func (p *Packet) DecrementTtl() bool {
	if p.Ttl <= 1 {
		return false
	}
	p.Ttl--
	if p.Version == 4 {
		p.raw[8] = p.Ttl
		binary.BigEndian.PutUint16(p.raw[10:12], 0)
		binary.BigEndian.PutUint16(p.raw[10:12], Checksum(p.raw[:p.headerLen]))
	} else {
		p.raw[7] = p.Ttl
	}
	return true
}

func (p *Packet) FlowKey() FlowKey {
	return FlowKey{
		Src:      p.Src,
		Dst:      p.Dst,
		Protocol: p.Protocol,
		SrcPort:  p.SrcPort,
		DstPort:  p.DstPort,
	}
}

// Serialize returns the datagram in wire form. The buffer is shared with the
// packet; it reflects any TTL decrement applied since parsing.
func (p *Packet) Serialize() []byte {
	return p.raw
}

// Size is the on-wire size used for MTU checks.
func (p *Packet) Size() int {
	return len(p.raw)
}

func (p *Packet) String() string {
	return fmt.Sprintf("v%d %s:%d -> %s:%d proto=%d ttl=%d len=%d",
		p.Version, p.Src, p.SrcPort, p.Dst, p.DstPort, p.Protocol, p.Ttl, p.Size())
}

// Checksum computes the ones'-complement checksum over b. The checksum
// field inside b must already be zeroed.
func Checksum(b []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(b); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
	}
	if len(b)%2 == 1 {
		sum += uint32(b[len(b)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
