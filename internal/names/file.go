package names

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"firestige.xyz/atalkdump/internal/core"
)

const maxNameLen = 256

// readFile feeds every valid record of the names file at path to insert.
func readFile(path string, insert func(key uint32, name string)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return parse(f, insert)
}

// parse reads `net.host name` and `net name` records. Blank lines, comments
// and malformed lines are skipped.
func parse(r io.Reader, insert func(key uint32, name string)) (int, error) {
	n := 0
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if key, name, ok := parseLine(strings.TrimRight(line, "\r\n")); ok {
			insert(key, name)
			n++
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read names: %w", err)
		}
	}
}

func parseLine(line string) (uint32, string, bool) {
	if line == "" || line[0] == '#' {
		return 0, "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, "", false
	}
	addr, err := ParseAddr(fields[0])
	if err != nil {
		return 0, "", false
	}
	name := fields[1]
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return addr.Key(), name, true
}

// ParseAddr parses "net.host" or "net". A bare network number yields the
// whole-network address (host 255).
func ParseAddr(s string) (core.Addr, error) {
	netPart, hostPart, hasHost := strings.Cut(s, ".")
	net, err := strconv.ParseUint(netPart, 10, 16)
	if err != nil {
		return core.Addr{}, fmt.Errorf("%w: %q", core.ErrInvalidAddress, s)
	}
	if !hasHost {
		return core.Addr{Net: uint16(net), Node: core.BroadcastNode}, nil
	}
	host, err := strconv.ParseUint(hostPart, 10, 8)
	if err != nil {
		return core.Addr{}, fmt.Errorf("%w: %q", core.ErrInvalidAddress, s)
	}
	return core.Addr{Net: uint16(net), Node: uint8(host)}, nil
}
