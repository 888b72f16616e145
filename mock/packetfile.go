package mock

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// ReplayEntry is one datagram read from a packet file. Ingress is empty when
// the line did not name an interface, in which case the replayer infers it
// from the source address.
type ReplayEntry struct {
	Ingress string
	Data    []byte
}

// ReadPacketFile reads hex-encoded mock packets, one per line. Blank lines
// and lines starting with '#' are ignored. A line may optionally be prefixed
// with an interface name separated by whitespace:
//
//	# comment
//	450000140000000040060000c0a80101c0a80102
//	tunB 450000140000000040060000c0a80001c0a80102
func ReadPacketFile(path string) ([]ReplayEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries := make([]ReplayEntry, 0)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		var entry ReplayEntry
		var raw string
		switch len(fields) {
		case 1:
			raw = fields[0]
		case 2:
			entry.Ingress = fields[0]
			raw = fields[1]
		default:
			return nil, fmt.Errorf("%s:%d: expected [interface] hexbytes, got %d fields", path, lineNo, len(fields))
		}
		data, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		entry.Data = data
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
