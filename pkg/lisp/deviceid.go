package lisp

import (
	"fmt"
	"strconv"
	"strings"
)

const deviceIDScheme = "netconf"

// DeviceID identifies a NETCONF managed LISP device, in the form netconf:<address>:<port>.
type DeviceID string

// NewDeviceID builds the DeviceID of the device reachable on address and port.
func NewDeviceID(address string, port uint32) (DeviceID, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return "", err
	}
	if port == 0 || port > 65535 {
		return "", fmt.Errorf("%w: port %d out of range", ErrInvalidDeviceID, port)
	}
	return DeviceID(fmt.Sprintf("%s:%s:%d", deviceIDScheme, addr.String(), port)), nil
}

// ParseDeviceID validates s and returns it as a DeviceID.
func ParseDeviceID(s string) (DeviceID, error) {
	address, port, err := splitDeviceID(s)
	if err != nil {
		return "", err
	}
	return NewDeviceID(address, port)
}

// Address returns the management address part of the id.
func (d DeviceID) Address() string {
	address, _, err := splitDeviceID(string(d))
	if err != nil {
		return ""
	}
	return address
}

// Port returns the NETCONF port part of the id.
func (d DeviceID) Port() uint32 {
	_, port, err := splitDeviceID(string(d))
	if err != nil {
		return 0
	}
	return port
}

func (d DeviceID) String() string {
	return string(d)
}

// splitDeviceID splits the port at the last colon, IPv6 addresses carry colons of their own.
func splitDeviceID(s string) (string, uint32, error) {
	rest, ok := strings.CutPrefix(s, deviceIDScheme+":")
	if !ok {
		return "", 0, fmt.Errorf("%w: %q does not start with %q", ErrInvalidDeviceID, s, deviceIDScheme+":")
	}
	idx := strings.LastIndex(rest, ":")
	if idx <= 0 || idx == len(rest)-1 {
		return "", 0, fmt.Errorf("%w: %q has no <address>:<port>", ErrInvalidDeviceID, s)
	}
	port, err := strconv.ParseUint(rest[idx+1:], 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid port in %q: %v", ErrInvalidDeviceID, s, err)
	}
	return rest[:idx], uint32(port), nil
}
