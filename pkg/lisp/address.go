package lisp

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"
)

var (
	// ErrInvalidAddress is returned for address literals that are not plain IPv4 or IPv6 addresses.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidRecord is returned for EID records that violate the record invariants.
	ErrInvalidRecord = errors.New("invalid eid record")
	// ErrInvalidDeviceID is returned for malformed device identifiers.
	ErrInvalidDeviceID = errors.New("invalid device id")
)

// AFI is the address family indicator of a LISP address.
type AFI uint16

// IANA address family numbers.
const (
	AFIIPv4 AFI = 1
	AFIIPv6 AFI = 2
)

// String returns the name used for the afi leaf of the lispsimple model.
func (a AFI) String() string {
	switch a {
	case AFIIPv4:
		return "ipv4"
	case AFIIPv6:
		return "ipv6"
	}
	return fmt.Sprintf("afi-%d", uint16(a))
}

// AFIOf returns the address family of addr.
func AFIOf(addr netip.Addr) AFI {
	if addr.Is4() {
		return AFIIPv4
	}
	return AFIIPv6
}

// ParseAddress parses an IPv4 or IPv6 literal. Zoned addresses are rejected
// and IPv4-mapped IPv6 addresses are returned as IPv4.
func ParseAddress(s string) (netip.Addr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if addr.Zone() != "" {
		return netip.Addr{}, fmt.Errorf("%w: zoned address %q", ErrInvalidAddress, s)
	}
	return addr.Unmap(), nil
}

// CanonicalAddress parses s and returns its canonical text form.
func CanonicalAddress(s string) (string, error) {
	addr, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return addr.String(), nil
}
