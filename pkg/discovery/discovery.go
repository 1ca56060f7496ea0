// Package discovery listens for the simulator's UDP broadcast announcement
// and extracts a usable IPv4 address from it. It is skipped entirely by
// pkg/client when the embedder supplies an explicit host.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/skybound-dev/ifconnect/pkg/protocol"
)

// BroadcastPort is the fixed UDP port the simulator broadcasts its presence
// on.
const BroadcastPort = 15000

// DefaultTimeout is how long Discover waits for a datagram before giving up.
const DefaultTimeout = 5 * time.Second

// announcement is the JSON shape of the discovery datagram. Unknown fields
// are ignored; only Addresses is consumed.
type announcement struct {
	Addresses []string
}

// Discover listens on BroadcastPort and returns the first IPv4 address found
// in an incoming announcement. It closes the socket as soon as an
// acceptable datagram arrives — it does not wait out the full timeout once
// satisfied.
//
// Discover returns protocol.ErrDiscoveryTimeout if ctx is cancelled, or the
// deadline derived from timeout elapses, before any acceptable datagram
// arrives. A datagram that is not valid JSON, or whose Addresses contains no
// dotted-quad IPv4 string, is silently skipped in favor of the next one.
func Discover(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	laddr := &net.UDPAddr{Port: BroadcastPort}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return "", fmt.Errorf("ifconnect: discovery listen: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-readDone:
		}
	}()

	buf := make([]byte, 4096)
	for {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return "", fmt.Errorf("ifconnect: discovery set deadline: %w", err)
		}

		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			return "", fmt.Errorf("%w: %v", protocol.ErrDiscoveryTimeout, err)
		}

		addr, ok := extractIPv4(buf[:n])
		if !ok {
			continue
		}
		return addr, nil
	}
}

// extractIPv4 parses raw as a JSON announcement and returns the first
// dotted-quad IPv4 address among its Addresses, if any.
func extractIPv4(raw []byte) (string, bool) {
	var a announcement
	if err := json.Unmarshal(raw, &a); err != nil {
		return "", false
	}
	for _, candidate := range a.Addresses {
		if ip := net.ParseIP(candidate); ip != nil && ip.To4() != nil {
			return candidate, true
		}
	}
	return "", false
}
