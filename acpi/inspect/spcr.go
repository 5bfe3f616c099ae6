package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// spcrDescriptors builds the field table for the Serial Port Console
// Redirection table. No dedicated SpcrParser.c shipped in this retrieval
// pack; layout is taken from the ACPI 6.3 §Table 5-41 structure
// definition, embedding the Base Address field as a GAS the same way
// Dbg2Parser.c and AcpiParser.c's other GAS-bearing tables do.
func spcrDescriptors(hi *HeaderInfo) []field.Descriptor {
	d := append(headerDescriptors(hi),
		field.Descriptor{Name: "Interface Type", Length: 1, Offset: 36, Format: "0x%02x"},
		field.Descriptor{Name: "Reserved", Length: 3, Offset: 37},
	)

	baseAddr := &field.GASInfo{}
	d = append(d, field.GASDescriptorsAt(40, baseAddr)...)

	d = append(d,
		field.Descriptor{Name: "Interrupt Type", Length: 1, Offset: 52, Format: "0x%02x"},
		field.Descriptor{Name: "IRQ", Length: 1, Offset: 53, Format: "0x%02x"},
		field.Descriptor{Name: "Global System Interrupt", Length: 4, Offset: 54, Format: "0x%08x"},
		field.Descriptor{Name: "Baud Rate", Length: 1, Offset: 58, Format: "0x%02x"},
		field.Descriptor{Name: "Parity", Length: 1, Offset: 59, Format: "0x%02x"},
		field.Descriptor{Name: "Stop Bits", Length: 1, Offset: 60, Format: "0x%02x"},
		field.Descriptor{Name: "Flow Control", Length: 1, Offset: 61, Format: "0x%02x"},
		field.Descriptor{Name: "Terminal Type", Length: 1, Offset: 62, Format: "0x%02x"},
		field.Descriptor{Name: "Reserved", Length: 1, Offset: 63},
		field.Descriptor{Name: "PCI Device ID", Length: 2, Offset: 64, Format: "0x%04x"},
		field.Descriptor{Name: "PCI Vendor ID", Length: 2, Offset: 66, Format: "0x%04x"},
		field.Descriptor{Name: "PCI Bus Number", Length: 1, Offset: 68, Format: "0x%02x"},
		field.Descriptor{Name: "PCI Device Number", Length: 1, Offset: 69, Format: "0x%02x"},
		field.Descriptor{Name: "PCI Function Number", Length: 1, Offset: 70, Format: "0x%02x"},
		field.Descriptor{Name: "PCI Flags", Length: 4, Offset: 71, Format: "0x%08x"},
		field.Descriptor{Name: "PCI Segment", Length: 1, Offset: 75, Format: "0x%02x"},
		field.Descriptor{Name: "UART Clock Frequency", Length: 4, Offset: 76, Format: "0x%08x"},
	)

	return d
}

// ParseSpcr parses the Serial Port Console Redirection table.
func ParseSpcr(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}

	return Parse(s, trace, buf, spcrDescriptors(hi))
}
