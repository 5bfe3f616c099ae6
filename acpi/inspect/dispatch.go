package inspect

import (
	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// subHeaderCapture holds the captured type/length pointers from one
// sub-structure's header parser invocation (spec §4.2 step 4a).
type subHeaderCapture struct {
	Type   []byte
	Length []byte
}

func subHeaderDescriptors(lengthFieldSize int, c *subHeaderCapture) []field.Descriptor {
	return []field.Descriptor{
		{Length: 1, Offset: 0, Capture: &c.Type},
		{Length: lengthFieldSize, Offset: 1, Capture: &c.Length},
	}
}

func readLength(raw []byte, lengthFieldSize int) uint32 {
	if lengthFieldSize == 2 {
		return uint32(field.ReadUint16LE(raw, 0))
	}

	return uint32(raw[0])
}

// WalkSubStructures implements spec §4.2 step 4: the common sub-structure
// iteration loop shared by every per-table dispatcher. lengthFieldSize is
// 1 for the MADT/PPTT/SRAT-style one-byte length, 2 for the IORT-style
// two-byte length. minHeaderSize bounds the declared length from below
// for the given type tag; it may ignore its argument and return one fixed
// minimum when every sub-structure of the table shares the same minimum.
func WalkSubStructures(
	s *sink.Sink,
	trace bool,
	buf []byte,
	start int,
	lengthFieldSize int,
	minHeaderSize func(typ uint8) int,
	db *StructDatabase,
) {
	if !trace {
		return
	}

	db.ResetCounts()

	offset := start

	for offset < len(buf) {
		var c subHeaderCapture

		Parse(s, false, buf[offset:], subHeaderDescriptors(lengthFieldSize, &c))

		if c.Type == nil || c.Length == nil {
			s.Error(sink.ErrorParse, "%s: truncated sub-structure header at offset 0x%x", db.Name, offset)

			return
		}

		typ := c.Type[0]
		length := readLength(c.Length, lengthFieldSize)

		if length < uint32(minHeaderSize(typ)) || field.AssertMemberIntegrity(offset, int(length), buf) {
			s.Error(sink.ErrorLength, "%s: sub-structure at offset 0x%x declares invalid length %d", db.Name, offset, length)

			return
		}

		ParseStruct(s, trace, db, offset, typ, length, buf[offset:offset+int(length)])

		offset += int(length)
	}

	ReportArchCompat(s, db)
}

// ParseStruct dispatches one already-bounds-checked sub-structure by its
// type tag, per spec §4.2's "ParseStruct" paragraph.
func ParseStruct(s *sink.Sink, trace bool, db *StructDatabase, offset int, typ uint8, length uint32, sub []byte) {
	info, ok := db.Lookup(typ)
	if !ok {
		s.Error(sink.ErrorValue, "%s: unknown sub-structure type %d at offset 0x%x", db.Name, typ, offset)

		return
	}

	if trace {
		s.Item("%s[%d] (+0x%x)", info.Name, info.Count, offset)
	}

	info.Count++

	switch info.Handler.Kind {
	case KindFieldTable:
		Parse(s, trace, sub, info.Handler.Descriptors)
	case KindCustom:
		info.Handler.Custom(s, sub, length)
	case KindUnimplemented:
		s.Fatal("%s: structure type %q has no parser implementation", db.Name, info.Name)
	}
}

// ReportArchCompat implements spec §4.7's post-loop reporting rule.
func ReportArchCompat(s *sink.Sink, db *StructDatabase) {
	for i := range db.Entries {
		e := &db.Entries[i]

		compatible := e.CompatArch&acpi.BuildArch != 0

		switch {
		case compatible:
			s.Info("%s: %d instance(s)", e.Name, e.Count)
		case e.Count > 0:
			s.Error(sink.ErrorValue, "%s: structure not valid for the target architecture", e.Name)
		}
	}
}
