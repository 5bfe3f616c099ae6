// Package field implements the engine's field formatter and the
// structure-descriptor data model (spec components 1 and 3): unaligned
// little-endian reads, printf-style rendering with optional custom
// renderers, and the field Descriptor record the generic parser consumes.
package field

// Renderer renders one field's value given its printf-style format and a
// pointer to its raw bytes. It writes directly rather than returning a
// string so it can defer to arbitrary formatting (hex dumps, nested
// structures) without this package caring how.
type Renderer func(w Writer, format string, raw []byte)

// Writer is the minimal sink a Renderer needs. acpi/inspect's dispatchers
// satisfy it via a thin adapter over sink.Sink so this package does not
// need to import sink and stays independent of it (field sits below sink
// in the import graph).
type Writer interface {
	Printf(format string, args ...any)
}

// Validator inspects one field's raw bytes and context, reporting
// violations to w. It runs only when trace and consistency mode are both
// enabled (spec §4.1).
type Validator func(w Writer, raw []byte, ctx any) (ok bool)

// Descriptor is one packed field within a structure: spec §3's "Field
// descriptor." It is a plain value -- no subclassing, no interface --
// with two optional function fields carrying per-field custom behavior,
// matching spec §9's "descriptor tables as data vs. classes" note.
type Descriptor struct {
	// Name is the field's display name; empty for header-only padding
	// fields that are skipped rather than traced.
	Name string

	// Length is the field's byte length: 1, 2, 4, 8, or any n for a fixed
	// byte array / inline string.
	Length int

	// Offset is the field's byte offset from the start of the enclosing
	// structure. Within one Descriptor table, Offset must be strictly
	// increasing from one descriptor to the next.
	Offset int

	// Format is the printf-style format applied to the value read from
	// the buffer, used when Render is nil.
	Format string

	// Render, if non-nil, takes precedence over Format.
	Render Renderer

	// Capture, if non-nil, receives a pointer to the field's raw bytes
	// within the parsed buffer -- a borrow valid only as long as that
	// buffer is (spec §9, "captured pointers as controlled aliasing").
	Capture *[]byte

	// Validate, if non-nil, runs after rendering when trace+consistency
	// are both on.
	Validate Validator

	// Context is passed to Validate unchanged.
	Context any
}
