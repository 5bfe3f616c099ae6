package validate_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tpilar/acpiview/acpi/sink"
	"github.com/tpilar/acpiview/acpi/validate"
)

func u32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// TestAllUniqueDuplicatePairsInvariant is spec §8's quantified invariant
// for the cross-validator uniqueness check: given a list with m duplicate
// pairs, at least m cross errors are emitted. That both offsets of a
// duplicate pair appear in the reported error (spec §9 open question (b))
// is checked by TestAllUniqueReportsBothOffsets.
func TestAllUniqueDuplicatePairsInvariant(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		entries  []validate.Entry
		wantDups int
	}{
		{
			name: "all unique",
			entries: []validate.Entry{
				{Value: u32(1), Offset: 0x10},
				{Value: u32(2), Offset: 0x20},
				{Value: u32(3), Offset: 0x30},
			},
			wantDups: 0,
		},
		{
			name: "one duplicate pair",
			entries: []validate.Entry{
				{Value: u32(1), Offset: 0x10},
				{Value: u32(1), Offset: 0x20},
				{Value: u32(2), Offset: 0x30},
			},
			wantDups: 1,
		},
		{
			name: "three identical values form three duplicate pairs",
			entries: []validate.Entry{
				{Value: u32(9), Offset: 0x10},
				{Value: u32(9), Offset: 0x20},
				{Value: u32(9), Offset: 0x30},
			},
			wantDups: 3,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			s := sink.New(&out, sink.Options{Consistency: true})

			unique := validate.AllUnique(s, tt.entries, validate.BytesEqual, "GICC", "ACPI Processor UID")

			if s.Errors != tt.wantDups {
				t.Fatalf("expected %d error(s), got %d:\n%s", tt.wantDups, s.Errors, out.String())
			}

			if unique != (tt.wantDups == 0) {
				t.Errorf("AllUnique returned %v, want %v", unique, tt.wantDups == 0)
			}
		})
	}
}

// TestAllUniqueReportsBothOffsets confirms the duplicate-pair error names
// both structures' offsets, fixing the source's garbled format string
// (spec §9 open question (b)).
func TestAllUniqueReportsBothOffsets(t *testing.T) {
	t.Parallel()

	entries := []validate.Entry{
		{Value: u32(42), Offset: 0x100},
		{Value: u32(42), Offset: 0x200},
	}

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	validate.AllUnique(s, entries, validate.BytesEqual, "GICC", "ACPI Processor UID")

	if !strings.Contains(out.String(), "0x100") || !strings.Contains(out.String(), "0x200") {
		t.Fatalf("expected both offsets 0x100 and 0x200 in the error, got:\n%s", out.String())
	}
}

// TestReferenceValidAdvancesThroughTheList confirms the fix for spec §9
// open question (a): the source's reference scan never advances its
// iterator, so it never terminates except when the very first entry is
// the match. This checks a reference whose target is the last entry of a
// multi-entry list.
func TestReferenceValidAdvancesThroughTheList(t *testing.T) {
	t.Parallel()

	refs := &validate.ValidRefs{
		IsValid:   []bool{true, true, true, true},
		TypeCount: 2,
		Name:      "Parent",
	}

	refList := []validate.Entry{
		{Value: u32(1), Type: 0, Offset: 0x10},
		{Value: u32(2), Type: 0, Offset: 0x20},
		{Value: u32(3), Type: 0, Offset: 0x30},
	}

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	ok := validate.ReferenceValid(s, refList, refs, 0x40, 0x30, 0)
	if !ok {
		t.Fatalf("expected the reference to the last list entry to resolve, got:\n%s", out.String())
	}

	if s.Errors != 0 {
		t.Fatalf("expected no errors, got %d:\n%s", s.Errors, out.String())
	}
}

// TestReferenceValidRejectsSelfReference and TestReferenceValidRejectsMissingTarget
// cover ReferenceValid's self-reference and missing-target branches.
func TestReferenceValidRejectsSelfReference(t *testing.T) {
	t.Parallel()

	refs := &validate.ValidRefs{IsValid: []bool{true}, TypeCount: 1, Name: "Parent"}

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	if validate.ReferenceValid(s, nil, refs, 0x10, 0x10, 0) {
		t.Fatal("expected a self-reference to be rejected")
	}

	if s.Errors != 1 {
		t.Fatalf("expected one error, got %d", s.Errors)
	}
}

func TestReferenceValidRejectsMissingTarget(t *testing.T) {
	t.Parallel()

	refs := &validate.ValidRefs{IsValid: []bool{true}, TypeCount: 1, Name: "Parent"}

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	if validate.ReferenceValid(s, nil, refs, 0x10, 0x20, 0) {
		t.Fatal("expected a reference to a nonexistent structure to be rejected")
	}

	if !strings.Contains(out.String(), "does not exist") {
		t.Errorf("expected a 'does not exist' error, got:\n%s", out.String())
	}
}

func TestPrivateResourceValid(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	if !validate.PrivateResourceValid(s, 0x10, 0x20, true) {
		t.Error("expected a reference to a Cache/ID structure to be valid")
	}

	if validate.PrivateResourceValid(s, 0x10, 0x30, false) {
		t.Error("expected a reference to a non-Cache/ID structure to be rejected")
	}

	if s.Errors != 1 {
		t.Fatalf("expected exactly one error, got %d", s.Errors)
	}
}
