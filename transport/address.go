package transport

import (
	"fmt"
	"net"
)

// Addr is a Bluetooth device address (BD_ADDR) in display order: the most
// significant byte first, as printed in "AA:BB:CC:DD:EE:FF".
type Addr [6]byte

// AnyAddr is the all-zero address, used to bind to the default adapter.
var AnyAddr Addr

// ParseAddr parses a colon-separated Bluetooth address string.
func ParseAddr(s string) (Addr, error) {
	var a Addr
	hw, err := net.ParseMAC(s)
	if err != nil {
		return a, fmt.Errorf("invalid bluetooth address %q: %w", s, err)
	}
	if len(hw) != 6 {
		return a, fmt.Errorf("invalid bluetooth address %q: not 48 bits", s)
	}
	copy(a[:], hw)
	return a, nil
}

// String formats the address in display order.
func (a Addr) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X",
		a[0], a[1], a[2], a[3], a[4], a[5])
}

// IsZero reports whether the address is all zeroes.
func (a Addr) IsZero() bool {
	return a == AnyAddr
}

// wire returns the address in the byte order the Linux kernel stores
// BD_ADDRs, which is the reverse of display order.
func (a Addr) wire() [6]byte {
	var b [6]byte
	for i := 0; i < 6; i++ {
		b[i] = a[5-i]
	}
	return b
}

// addrFromWire converts a kernel-order BD_ADDR to display order.
func addrFromWire(b [6]byte) Addr {
	var a Addr
	for i := 0; i < 6; i++ {
		a[i] = b[5-i]
	}
	return a
}
