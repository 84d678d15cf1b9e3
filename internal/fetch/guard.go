package fetch

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"syscall"
)

// ErrInternalAddress is returned when a guarded client is asked to connect
// to a loopback, private or link-local address.
var ErrInternalAddress = errors.New("fetch: refusing to connect to internal address")

// IsInternal reports whether addr must not be reached on behalf of a client:
// loopback, RFC 1918 / ULA private, link-local (cloud metadata lives there),
// multicast and unspecified addresses.
func IsInternal(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified()
}

// denyInternal is a net.Dialer Control hook. It runs after DNS resolution,
// so names that resolve to internal addresses are caught too.
func denyInternal(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return fmt.Errorf("fetch: unexpected dial address %q: %w", address, err)
	}
	if IsInternal(addr) {
		return fmt.Errorf("%w: %s", ErrInternalAddress, addr)
	}
	return nil
}
