package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// mcfgEntrySize is the 16-byte Enhanced Configuration Space Base Address
// Allocation Structure, grounded on McfgGenerator.c's MCFG_CFG_SPACE_ADDR
// (BaseAddress u64, PciSegmentGroupNumber u16, StartBusNumber u8,
// EndBusNumber u8, Reserved u32).
const mcfgEntrySize = 16

func mcfgEntryDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Base Address", Length: 8, Offset: 0, Format: "0x%016x"},
		{Name: "PCI Segment Group Number", Length: 2, Offset: 8, Format: "0x%04x"},
		{Name: "Start Bus Number", Length: 1, Offset: 10, Format: "0x%02x"},
		{Name: "End Bus Number", Length: 1, Offset: 11, Format: "0x%02x"},
		{Name: "Reserved", Length: 4, Offset: 12},
	}
}

// ParseMcfg parses the MCFG header followed by its array of PCI
// Configuration Space entries, each a fixed 16-byte allocation structure
// (ACPI never length-tags these individually -- the whole array just fills
// the rest of the table).
func ParseMcfg(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, append(headerDescriptors(hi), field.Descriptor{Name: "Reserved", Length: 8, Offset: 36}))

	if !trace {
		return n
	}

	for off := n; off+mcfgEntrySize <= len(buf); off += mcfgEntrySize {
		Parse(s, trace, buf[off:off+mcfgEntrySize], mcfgEntryDescriptors())
	}

	return len(buf)
}
