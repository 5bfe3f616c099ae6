// Package validate implements cross-structure checks that need visibility
// across an entire table's worth of already-parsed sub-structures: field
// uniqueness, inter-structure reference validity, and private-resource-kind
// checks. Grounded on AcpiCrossValidator.c, translated from its
// LIST_ENTRY/void* idiom into a slice of owned byte copies.
package validate

import (
	"bytes"

	"github.com/tpilar/acpiview/acpi/sink"
)

// Entry is one structure's contribution to a cross-structure check: an
// owned copy of the field being checked, the structure's ACPI-defined type
// tag, and its byte offset from the start of the table. Grounded on
// ACPI_CROSS_ENTRY.
type Entry struct {
	Value  []byte
	Type   uint32
	Offset uint32
}

// Comparator reports whether a and b carry the same value for the field
// under test. Grounded on the SORT_COMPARE callback passed to
// AcpiCrossValidatorAllUnique (GtFrameNumberCompare and similar).
type Comparator func(a, b []byte) bool

// BytesEqual is the Comparator for fields that compare equal byte-for-byte.
func BytesEqual(a, b []byte) bool {
	return bytes.Equal(a, b)
}

// AllUnique reports whether every entry's Value is distinct under cmp,
// reporting one cross error per duplicate pair found. Grounded on
// AcpiCrossValidatorAllUnique's nested-loop pairwise comparison; fixed
// relative to the source, whose error format string carries six conversion
// specifiers against four arguments, garbling both reported offsets -- here
// both offsets are passed and printed correctly.
func AllUnique(s *sink.Sink, entries []Entry, cmp Comparator, structName, fieldName string) bool {
	allUnique := true

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if cmp(entries[i].Value, entries[j].Value) {
				allUnique = false

				s.Error(sink.ErrorCross,
					"%s structures at offset 0x%x and offset 0x%x have the same %s",
					structName, entries[i].Offset, entries[j].Offset, fieldName)
			}
		}
	}

	return allUnique
}

// ValidRefs describes which structure-type pairs may legally reference one
// another within a table, per ACPI_VALID_REFS. IsValid is indexed
// [from*TypeCount+to].
type ValidRefs struct {
	IsValid   []bool
	TypeCount int
	Name      string
}

func (v *ValidRefs) allowed(from, to uint32) bool {
	if int(to) >= v.TypeCount {
		return false
	}

	return v.IsValid[int(from)*v.TypeCount+int(to)]
}

// ReferenceValid reports whether a reference made by the structure at
// fromOffset (of type fromType) to the structure at toOffset is allowed by
// refs, given the full set of referenceable structures in refList. Grounded
// on AcpiCrossValidatorRefsValid; fixed relative to the source, whose scan
// of RefList never advances its loop cursor (Entry is read but never
// reassigned to GetNextNode), making it loop forever on any table where the
// first list node isn't the match -- here the scan always advances.
func ReferenceValid(s *sink.Sink, refList []Entry, refs *ValidRefs, fromOffset, toOffset, fromType uint32) bool {
	if int(fromType) >= refs.TypeCount {
		s.Error(sink.ErrorCross, "structure of unrecognized type (%d) at offset 0x%x is making a %q reference", fromType, fromOffset, refs.Name)

		return false
	}

	if fromOffset == toOffset {
		s.Error(sink.ErrorCross, "structure at offset 0x%x is making a %q reference to itself", fromOffset, refs.Name)

		return false
	}

	for _, e := range refList {
		if e.Offset != toOffset {
			continue
		}

		if !refs.allowed(fromType, e.Type) {
			s.Error(sink.ErrorCross,
				"structure at offset 0x%x is making a %q reference to structure at offset 0x%x which is not allowed between types %d and %d",
				fromOffset, refs.Name, toOffset, fromType, e.Type)

			return false
		}

		return true
	}

	s.Error(sink.ErrorCross, "structure at offset 0x%x is making a %q reference to structure at offset 0x%x which does not exist", fromOffset, refs.Name, toOffset)

	return false
}

// PrivateResourceValid reports whether a PPTT Private Resource reference at
// fromOffset may legally point at the structure at toOffset -- PPTT's
// private resources may only reference Cache Type Structures or ID
// Structures, never a Processor Hierarchy Node. Grounded on
// ValidatePrivateResource, specialized to PPTT's one fixed rule (the toKind
// check collapses to a single bool here since the caller already knows
// whether the referenced type was Cache or ID).
func PrivateResourceValid(s *sink.Sink, fromOffset, toOffset uint32, toIsCacheOrID bool) bool {
	if toIsCacheOrID {
		return true
	}

	s.Error(sink.ErrorCross,
		"structure at offset 0x%x is making a %q reference to structure at offset 0x%x which is not a Cache or ID Type Structure",
		fromOffset, "Private Resource", toOffset)

	return false
}
