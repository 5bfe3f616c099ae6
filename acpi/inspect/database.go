package inspect

import (
	"strconv"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// HandlerKind discriminates the three Handler variants of spec §3's
// "Structure handler": a tagged union implemented as a Go sum type via an
// explicit kind tag plus mutually-exclusive payload fields, per spec §9's
// design note that this must not become an inheritance hierarchy.
type HandlerKind int

const (
	KindFieldTable HandlerKind = iota
	KindCustom
	KindUnimplemented
)

// CustomDispatcher parses one sub-structure whose layout the generic
// field parser cannot express directly (variable-length trailing arrays,
// multi-pass reference tracking, and similar). ptr is the sub-structure's
// bytes (length bytes long, already integrity-checked by the caller).
type CustomDispatcher func(s *sink.Sink, ptr []byte, length uint32)

// Handler is spec §3's tagged-variant Structure handler. At most one of
// Descriptors/Custom is meaningful, selected by Kind; constructors below
// are the only supported way to build one so construction stays
// exhaustive.
type Handler struct {
	Kind        HandlerKind
	Descriptors []field.Descriptor
	Custom      CustomDispatcher
}

func FieldTableHandler(descriptors []field.Descriptor) Handler {
	return Handler{Kind: KindFieldTable, Descriptors: descriptors}
}

func CustomHandler(fn CustomDispatcher) Handler {
	return Handler{Kind: KindCustom, Custom: fn}
}

func UnimplementedHandler() Handler {
	return Handler{Kind: KindUnimplemented}
}

// StructInfo is one entry of a table's structure database: spec §3's
// "Structure registry entry."
type StructInfo struct {
	Name       string
	Type       uint8
	CompatArch acpi.ArchMask
	Count      int
	Handler    Handler
}

// StructDatabase is spec §3's "Structure database": a per-table registry
// indexed by the ACPI-defined sub-structure type tag. The invariant
// entries[i].Type == i (no gaps) is checked once by Validate, normally
// called from an init() for every table's database literal.
type StructDatabase struct {
	Name    string
	Entries []StructInfo
}

// Validate panics if the database does not satisfy entries[i].Type == i
// for every i -- this is a defect in the engine's own static table, the
// same category of bug as an offset-mismatched Descriptor, and is meant
// to be caught at init time, not at runtime against untrusted input.
func (db *StructDatabase) Validate() {
	for i, e := range db.Entries {
		if int(e.Type) != i {
			panic("inspect: " + db.Name + " structure database has a gap or is out of order at index " + strconv.Itoa(i))
		}
	}
}

// ResetCounts zeroes every entry's instance counter, called at the start
// of every dispatch (spec §4.2 step 2).
func (db *StructDatabase) ResetCounts() {
	for i := range db.Entries {
		db.Entries[i].Count = 0
	}
}

// Lookup returns the entry for typ and whether it exists.
func (db *StructDatabase) Lookup(typ uint8) (*StructInfo, bool) {
	if int(typ) >= len(db.Entries) {
		return nil, false
	}

	return &db.Entries[typ], true
}
