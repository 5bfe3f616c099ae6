package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// ParseXsdt parses the XSDT's 36-byte header then walks its array of
// 8-byte physical-address entries, reporting each entry's table signature
// (read from the pointee's own header) and flagging NULL entries as a
// value error. Grounded on XsdtParser.c's ParseAcpiXsdt; the recursive
// ProcessAcpiTable dispatch over each pointee is out of scope here -- the
// inspector works over one already-selected table at a time (spec §6) --
// so only the entry listing survives.
func ParseXsdt(s *sink.Sink, trace bool, buf []byte, resolve func(addr uint64) []byte) int {
	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, headerDescriptors(hi))

	if !trace {
		return n
	}

	ind := s.Indent()
	ind.Enter()

	defer ind.Exit()

	entry := 0

	for off := n; off+8 <= len(buf); off += 8 {
		addr := field.ReadUint64LE(buf, off)

		if addr == 0 {
			s.Item("Entry[%d]: NULL", entry)
			s.Error(sink.ErrorValue, "XSDT: invalid table entry at index %d", entry)

			entry++

			continue
		}

		if resolve == nil {
			s.Item("Entry[%d]: 0x%016x", entry, addr)

			entry++

			continue
		}

		pointee := resolve(addr)
		if len(pointee) < 4 {
			s.Item("Entry[%d]: 0x%016x (unresolved)", entry, addr)
		} else {
			s.Item("Entry[%d]: 0x%016x (%s)", entry, addr, string(pointee[0:4]))
		}

		entry++
	}

	return len(buf)
}
