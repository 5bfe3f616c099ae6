// Package generate implements the Generator core (spec components 7-8): a
// two-pass node emitter that assembles byte-exact MADT, MCFG, SRAT and IORT
// tables from the abstract platform objects an acpi/repo.Repository holds.
// Grounded on DynamicTablesPkg's per-table generator libraries
// (MadtGenerator.c, McfgGenerator.c, SratGenerator.c, IortGenerator.c): a
// sizing pass counts and measures every object of a kind and records its
// eventual offset in a NodeIndexer, then an emission pass writes the
// header and body bytes for real, resolving every cross-reference through
// that same indexer.
package generate

import "errors"

// ErrNotFound is returned by NodeIndexer.Resolve when a token was never
// added to the indexer. Grounded on IortGenerator.c's
// GetNodeOffsetReferencedByToken returning EFI_NOT_FOUND for an unindexed
// token; the caller aborts emission rather than writing a bad reference.
var ErrNotFound = errors.New("generate: token not found in node indexer")

// ErrInvalidParameter is returned when a kind's region cannot fit the
// binary format's length field, when a repository object is malformed
// for its kind, or when a generator-side consistency rule (e.g. duplicate
// ACPI Processor UIDs in a MADT GICC list) is violated. Grounded on the
// EFI_INVALID_PARAMETER status EDK2's generators return for the same
// classes of failure.
var ErrInvalidParameter = errors.New("generate: invalid parameter")
