// Package discovery locates Focus-capable devices among the serial ports
// present on the system by matching USB vendor/product descriptors.
//
// The matching itself is a pure function over (ports, descriptor set), so
// the descriptor allowlist is injected rather than baked in; KnownDevices
// supplies the default set.
package discovery

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial/enumerator"
)

// ErrNoDeviceFound is returned by Detect when no port matches the
// descriptor set.
var ErrNoDeviceFound = errors.New("discovery: no supported device found")

// Descriptor identifies a device model by its USB vendor and product ID,
// in hex as reported by the OS (no 0x prefix, case-insensitive).
type Descriptor struct {
	VendorID  string
	ProductID string
}

// KnownDevices returns the descriptor set of Keyboardio devices that speak
// Focus in application mode. Bootloader-mode IDs are deliberately absent;
// a device in its bootloader does not run the protocol.
func KnownDevices() []Descriptor {
	return []Descriptor{
		{VendorID: "1209", ProductID: "2301"}, // Model 01
		{VendorID: "1209", ProductID: "2303"}, // Atreus
		{VendorID: "3496", ProductID: "0006"}, // Model 100
	}
}

// Find returns the name of the first USB port whose vendor/product IDs
// match one of the given descriptors. It is a pure function over its
// inputs; ports are considered in the order given.
func Find(ports []*enumerator.PortDetails, descriptors []Descriptor) (string, bool) {
	for _, port := range ports {
		if port == nil || !port.IsUSB {
			continue
		}

		for _, d := range descriptors {
			if strings.EqualFold(port.VID, d.VendorID) && strings.EqualFold(port.PID, d.ProductID) {
				return port.Name, true
			}
		}
	}

	return "", false
}

// Detect enumerates the system's serial ports and returns the first port
// matching the given descriptors. An empty descriptor list means
// KnownDevices().
func Detect(descriptors ...Descriptor) (string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return "", fmt.Errorf("discovery: list serial ports: %w", err)
	}

	if len(descriptors) == 0 {
		descriptors = KnownDevices()
	}

	name, ok := Find(ports, descriptors)
	if !ok {
		return "", ErrNoDeviceFound
	}

	return name, nil
}
