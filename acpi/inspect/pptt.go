package inspect

import (
	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
	"github.com/tpilar/acpiview/acpi/validate"
)

// PPTT Processor Topology Structure type tags, ACPI 6.3 §5.2.29.
const (
	ppttProcessor = 0
	ppttCache     = 1
	ppttID        = 2
)

const ppttNodeIsLeaf = 0x08

// pptFindByOffset scans refList for the entry describing the structure at
// offset, mirroring the linear walk of AcpiCrossValidator.c's mRefList
// (fixed here, as in acpi/validate, to always advance).
func pptFindByOffset(refList []validate.Entry, offset uint32) (validate.Entry, bool) {
	for _, e := range refList {
		if e.Offset == offset {
			return e, true
		}
	}

	return validate.Entry{}, false
}

// validateReference builds the Parent / Next Level of Cache field
// validator shared by the Processor Hierarchy Node and Cache Type
// Structures: the referenced structure must exist, must share the
// caller's own type, must not be a 'leaf' Processor Hierarchy Node, and
// following the reference chain must terminate rather than cycle.
// Grounded on PpttParser.c's ValidateReference in full, including its
// cycle-detection bound (the total count of indexed structures).
func validateReference(refList []validate.Entry, fromType uint8) field.Validator {
	return func(w field.Writer, raw []byte, _ any) bool {
		reference := field.ReadUint32LE(raw, 0)
		if reference == 0 {
			return true
		}

		found, ok := pptFindByOffset(refList, reference)
		if !ok {
			w.Printf("referenced offset 0x%x does not contain a structure", reference)

			return false
		}

		if found.Type != uint32(fromType) {
			w.Printf("type %d structure can't reference type %d structure", fromType, found.Type)

			return false
		}

		if found.Type == ppttProcessor && len(found.Value) >= 8 && field.ReadUint32LE(found.Value, 4)&ppttNodeIsLeaf != 0 {
			w.Printf("may not reference a 'leaf' Processor Hierarchy Node")

			return false
		}

		current := found

		for i := 0; i < len(refList); i++ {
			if len(current.Value) < 12 {
				return true
			}

			next := field.ReadUint32LE(current.Value, 8)
			if next == 0 {
				return true
			}

			nextEntry, ok := pptFindByOffset(refList, next)
			if !ok {
				return true
			}

			current = nextEntry
		}

		w.Printf("reference loop detected")

		return false
	}
}

func cacheTypeDescriptors(refList []validate.Entry) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "Flags", Length: 4, Offset: 4, Format: "0x%08x"},
		{Name: "Next Level of Cache", Length: 4, Offset: 8, Format: "0x%08x", Validate: validateReference(refList, ppttCache)},
		{Name: "Size", Length: 4, Offset: 12, Format: "0x%08x"},
		{Name: "Number of sets", Length: 4, Offset: 16, Format: "%d", Validate: validateCacheNumberOfSets},
		{Name: "Associativity", Length: 1, Offset: 20, Format: "%d", Validate: validateCacheAssociativity},
		{Name: "Attributes", Length: 1, Offset: 21, Format: "0x%02x", Validate: validateCacheAttributes},
		{Name: "Line size", Length: 2, Offset: 22, Format: "%d"},
	}
}

func validateCacheNumberOfSets(w field.Writer, raw []byte, _ any) bool {
	if field.ReadUint32LE(raw, 0) == 0 {
		w.Printf("'Number of sets' must not be zero")

		return false
	}

	return true
}

func validateCacheAssociativity(w field.Writer, raw []byte, _ any) bool {
	if raw[0] == 0 {
		w.Printf("'Associativity' must not be zero")

		return false
	}

	return true
}

func validateCacheAttributes(w field.Writer, raw []byte, _ any) bool {
	if raw[0]&0xE0 != 0 {
		w.Printf("'Attributes' bits [7:5] must be zero, got 0x%02x", raw[0])

		return false
	}

	return true
}

func idStructureDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
		{Name: "Reserved", Length: 2, Offset: 2},
		{Name: "VENDOR_ID", Length: 4, Offset: 4, Render: field.DumpChars},
		{Name: "LEVEL_1_ID", Length: 8, Offset: 8, Format: "0x%016x"},
		{Name: "LEVEL_2_ID", Length: 8, Offset: 16, Format: "0x%016x"},
		{Name: "MAJOR_REV", Length: 2, Offset: 24, Format: "0x%04x"},
		{Name: "MINOR_REV", Length: 2, Offset: 26, Format: "0x%04x"},
		{Name: "SPIN_REV", Length: 2, Offset: 28, Format: "0x%04x"},
	}
}

// processorHierarchyHandler parses the Processor Hierarchy Node Structure
// (Type 0): its fixed fields, Parent reference, then a trailing array of
// private-resource offset references sized by 'Number of private
// resources'. Grounded on PpttParser.c's DumpProcessorHierarchyNodeStructure
// and ValidatePrivateResource.
func processorHierarchyHandler(buf []byte, refList []validate.Entry) CustomDispatcher {
	return func(s *sink.Sink, ptr []byte, _ uint32) {
		var parent, numPriv []byte

		n := Parse(s, true, ptr, []field.Descriptor{
			{Name: "Type", Length: 1, Offset: 0, Format: "0x%02x"},
			{Name: "Length", Length: 1, Offset: 1, Format: "%d"},
			{Name: "Reserved", Length: 2, Offset: 2},
			{Name: "Flags", Length: 4, Offset: 4, Format: "0x%08x"},
			{Name: "Parent", Length: 4, Offset: 8, Format: "0x%08x", Capture: &parent, Validate: validateReference(refList, ppttProcessor)},
			{Name: "ACPI Processor ID", Length: 4, Offset: 12, Format: "0x%08x"},
			{Name: "Number of private resources", Length: 4, Offset: 16, Format: "%d", Capture: &numPriv},
		})

		if numPriv == nil {
			s.Error(sink.ErrorParse, "PPTT: failed to parse Processor Hierarchy Node Structure")

			return
		}

		// ptr is a subslice of buf, so the capacity difference is its
		// offset within the table.
		fromOffset := uint32(cap(buf) - cap(ptr))
		count := field.ReadUint32LE(numPriv, 0)
		offset := n
		consistency := s.Options().Effective()

		for i := uint32(0); i < count; i++ {
			if field.AssertMemberIntegrity(offset, 4, ptr) {
				return
			}

			priv := field.ReadUint32LE(ptr, offset)
			s.Item("Private resources[%d]: 0x%x", i, priv)

			if consistency {
				validatePrivateResource(s, fromOffset, priv, refList)
			}

			offset += 4
		}
	}
}

func validatePrivateResource(s *sink.Sink, fromOffset, toOffset uint32, refList []validate.Entry) {
	found, ok := pptFindByOffset(refList, toOffset)
	if !ok {
		s.Error(sink.ErrorCross, "PPTT structure (offset=0x%x) does not exist", toOffset)

		return
	}

	validate.PrivateResourceValid(s, fromOffset, toOffset, found.Type == ppttCache || found.Type == ppttID)
}

// ppttBuildRefList runs the silent first pass over the table: walking
// every Processor Topology Structure header to record its type, offset,
// and full bytes so the second pass's reference validators have a
// complete, already-bounds-checked view of the table. Grounded on
// ParseAcpiPptt's two-loop structure (first loop populates mRefList via
// AcpiCrossValidatorAdd, second loop dispatches and validates).
func ppttBuildRefList(s *sink.Sink, buf []byte, start int) []validate.Entry {
	var refs []validate.Entry

	offset := start

	for offset < len(buf) {
		var c subHeaderCapture

		Parse(s, false, buf[offset:], subHeaderDescriptors(1, &c))

		if c.Type == nil || c.Length == nil {
			s.Error(sink.ErrorParse, "PPTT: truncated sub-structure header at offset 0x%x", offset)

			return refs
		}

		typ := c.Type[0]
		length := int(c.Length[0])

		if length < 4 || field.AssertMemberIntegrity(offset, length, buf) {
			s.Error(sink.ErrorLength, "PPTT: sub-structure at offset 0x%x declares invalid length %d", offset, length)

			return refs
		}

		refs = append(refs, validate.Entry{
			Value:  append([]byte(nil), buf[offset:offset+length]...),
			Type:   uint32(typ),
			Offset: uint32(offset),
		})

		offset += length
	}

	return refs
}

func ppttMinHeaderSize(_ uint8) int {
	return 4
}

// ParsePptt parses the Processor Properties Topology Table: a silent
// first pass builds the reference list, then a second, tracing pass walks
// the same structures through the generic sub-structure dispatcher with
// reference validators closed over that list. Grounded on
// PpttParser.c's ParseAcpiPptt.
func ParsePptt(s *sink.Sink, trace bool, buf []byte) {
	if !trace {
		return
	}

	hi := &HeaderInfo{}
	Parse(s, false, buf, headerDescriptors(hi))

	refList := ppttBuildRefList(s, buf, 36)

	db := &StructDatabase{
		Name: "Processor Topology Structure",
		Entries: []StructInfo{
			{Name: "Processor", Type: ppttProcessor, CompatArch: acpi.ArchAll, Handler: CustomHandler(processorHierarchyHandler(buf, refList))},
			{Name: "Cache", Type: ppttCache, CompatArch: acpi.ArchAll, Handler: FieldTableHandler(cacheTypeDescriptors(refList))},
			{Name: "ID", Type: ppttID, CompatArch: acpi.ArchAll, Handler: FieldTableHandler(idStructureDescriptors())},
		},
	}
	db.Validate()

	Parse(s, trace, buf, headerDescriptors(hi))
	WalkSubStructures(s, trace, buf, 36, 1, ppttMinHeaderSize, db)
}
