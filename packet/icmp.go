package packet

import (
	"encoding/binary"
)

// Kind classifies a synthesized ICMP error reply.
type Kind int

const (
	KindTimeExceeded Kind = iota
	KindFragmentationNeeded
	KindDestinationUnreachable
)

func (k Kind) String() string {
	switch k {
	case KindTimeExceeded:
		return "time_exceeded"
	case KindFragmentationNeeded:
		return "fragmentation_needed"
	case KindDestinationUnreachable:
		return "destination_unreachable"
	}
	return "unknown"
}

const (
	icmpHopLimit = 64
	// ICMPv6 replies carry as much of the offending datagram as fits in
	// the IPv6 minimum MTU.
	ipv6MinMtu = 1280
	// IPv4 replies quote the offending header plus the first 8 payload
	// bytes, per RFC 792.
	ipv4QuoteLen = 8
)

// TimeExceeded builds an ICMP Time Exceeded reply for orig, addressed back
// toward its source. The reply source address is the original destination,
// which keeps the synthesis independent of router addressing.
func TimeExceeded(orig *Packet) []byte {
	if orig.Version == 6 {
		return buildICMPv6(orig, 3, 0, 0)
	}
	return buildICMPv4(orig, 11, 0, 0)
}

// FragmentationNeeded builds an ICMP Fragmentation Needed (IPv4) or Packet
// Too Big (IPv6) reply carrying the MTU of the violated link.
func FragmentationNeeded(orig *Packet, mtu uint32) []byte {
	if orig.Version == 6 {
		return buildICMPv6(orig, 2, 0, mtu)
	}
	return buildICMPv4(orig, 3, 4, mtu)
}

// DestinationUnreachable builds an ICMP Destination Unreachable reply.
func DestinationUnreachable(orig *Packet) []byte {
	if orig.Version == 6 {
		return buildICMPv6(orig, 1, 0, 0)
	}
	return buildICMPv4(orig, 3, 0, 0)
}

func buildICMPv4(orig *Packet, icmpType, code uint8, mtu uint32) []byte {
	quote := orig.headerLen + ipv4QuoteLen
	if quote > len(orig.raw) {
		quote = len(orig.raw)
	}
	total := ipv4MinHeaderLen + 8 + quote
	buf := make([]byte, total)

	buf[0] = 0x45
	binary.BigEndian.PutUint16(buf[2:4], uint16(total))
	buf[8] = icmpHopLimit
	buf[9] = ProtoICMP
	src := orig.Dst.As4()
	dst := orig.Src.As4()
	copy(buf[12:16], src[:])
	copy(buf[16:20], dst[:])
	binary.BigEndian.PutUint16(buf[10:12], Checksum(buf[:ipv4MinHeaderLen]))

	icmp := buf[ipv4MinHeaderLen:]
	icmp[0] = icmpType
	icmp[1] = code
	if mtu != 0 {
		// next-hop MTU lives in the low half of the 4-byte rest field
		binary.BigEndian.PutUint16(icmp[6:8], uint16(mtu))
	}
	copy(icmp[8:], orig.raw[:quote])
	binary.BigEndian.PutUint16(icmp[2:4], Checksum(icmp))
	return buf
}

func buildICMPv6(orig *Packet, icmpType, code uint8, mtu uint32) []byte {
	quote := len(orig.raw)
	if quote > ipv6MinMtu-ipv6HeaderLen-8 {
		quote = ipv6MinMtu - ipv6HeaderLen - 8
	}
	total := ipv6HeaderLen + 8 + quote
	buf := make([]byte, total)

	buf[0] = 0x60
	binary.BigEndian.PutUint16(buf[4:6], uint16(total-ipv6HeaderLen))
	buf[6] = ProtoICMPv6
	buf[7] = icmpHopLimit
	src := orig.Dst.As16()
	dst := orig.Src.As16()
	copy(buf[8:24], src[:])
	copy(buf[24:40], dst[:])

	icmp := buf[ipv6HeaderLen:]
	icmp[0] = icmpType
	icmp[1] = code
	if mtu != 0 {
		// Packet Too Big carries the MTU in the full 4-byte field
		binary.BigEndian.PutUint32(icmp[4:8], mtu)
	}
	copy(icmp[8:], orig.raw[:quote])
	binary.BigEndian.PutUint16(icmp[2:4], icmpv6Checksum(src, dst, icmp))
	return buf
}

// icmpv6Checksum computes the ICMPv6 checksum including the IPv6
// pseudo-header.
func icmpv6Checksum(src, dst [16]byte, icmp []byte) uint16 {
	var sum uint32
	for i := 0; i < 16; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(src[i : i+2]))
		sum += uint32(binary.BigEndian.Uint16(dst[i : i+2]))
	}
	sum += uint32(len(icmp) >> 16)
	sum += uint32(len(icmp) & 0xffff)
	sum += ProtoICMPv6
	for i := 0; i+1 < len(icmp); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(icmp[i : i+2]))
	}
	if len(icmp)%2 == 1 {
		sum += uint32(icmp[len(icmp)-1]) << 8
	}
	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}
