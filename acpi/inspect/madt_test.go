package inspect_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/inspect"
	"github.com/tpilar/acpiview/acpi/sink"
)

// withARMBuildArch overrides acpi.BuildArch for the duration of the
// calling test so the MADT GICC/GICD structures -- valid only on
// ARM/AARCH64 -- are reported compatible regardless of the host
// architecture running the test suite, then restores it.
func withARMBuildArch(t *testing.T) {
	t.Helper()

	prev := acpi.BuildArch
	acpi.BuildArch = acpi.ArchARM | acpi.ArchAARCH64

	t.Cleanup(func() { acpi.BuildArch = prev })
}

// madtHeader builds the 44-byte MADT fixed header (36-byte common ACPI
// header plus the MADT-specific Local Interrupt Controller Address and
// Flags) with the given total table length.
func madtHeader(length uint32) []byte {
	h := make([]byte, 44)
	copy(h[0:4], "APIC")
	h[4] = byte(length)
	h[5] = byte(length >> 8)
	h[6] = byte(length >> 16)
	h[7] = byte(length >> 24)
	h[8] = 5 // revision

	return h
}

// gicCStruct builds one 80-byte GICC Interrupt Controller Structure with
// the given ACPI Processor UID; every other field is zeroed.
func gicCStruct(acpiProcessorUID uint32) []byte {
	b := make([]byte, 80)
	b[0] = 11 // Type = GICC
	b[1] = 80 // Length

	b[8] = byte(acpiProcessorUID)
	b[9] = byte(acpiProcessorUID >> 8)
	b[10] = byte(acpiProcessorUID >> 16)
	b[11] = byte(acpiProcessorUID >> 24)

	return b
}

// gicDStruct builds one 24-byte GICD Interrupt Controller Structure.
func gicDStruct(gicID uint32) []byte {
	b := make([]byte, 24)
	b[0] = 12 // Type = GICD
	b[1] = 24 // Length
	b[4] = byte(gicID)
	b[5] = byte(gicID >> 8)
	b[6] = byte(gicID >> 16)
	b[7] = byte(gicID >> 24)

	return b
}

// TestMadtOneGICCOneGICD is spec §8 scenario 2: a MADT with exactly one
// GICC and one GICD must report both counted once and raise no cross
// errors.
func TestMadtOneGICCOneGICD(t *testing.T) {
	withARMBuildArch(t)

	buf := madtHeader(44 + 80 + 24)
	buf = append(buf, gicCStruct(1)...)
	buf = append(buf, gicDStruct(0)...)

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParseMadt(s, true, buf)

	if s.Errors != 0 {
		t.Fatalf("expected no errors, got %d:\n%s", s.Errors, out.String())
	}

	if !strings.Contains(out.String(), "GICC: 1 instance(s)") {
		t.Errorf("expected a GICC count of 1 in the trace:\n%s", out.String())
	}

	if !strings.Contains(out.String(), "GICD: 1 instance(s)") {
		t.Errorf("expected a GICD count of 1 in the trace:\n%s", out.String())
	}
}

// TestMadtTwoGICDs is spec §8 scenario 3: a second GICD must raise
// exactly one cross error citing "Only one GICD must be present".
func TestMadtTwoGICDs(t *testing.T) {
	withARMBuildArch(t)

	buf := madtHeader(44 + 80 + 24 + 24)
	buf = append(buf, gicCStruct(1)...)
	buf = append(buf, gicDStruct(0)...)
	buf = append(buf, gicDStruct(1)...)

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParseMadt(s, true, buf)

	if s.Errors != 1 {
		t.Fatalf("expected exactly one error, got %d:\n%s", s.Errors, out.String())
	}

	if !strings.Contains(out.String(), "Only one GICD must be present") {
		t.Errorf("expected the duplicate-GICD cross error, got:\n%s", out.String())
	}
}

// TestMadtDuplicateAcpiProcessorUIDs is spec §8 scenario 4: two GICCs
// sharing the same ACPI Processor UID must raise exactly one cross error
// naming "ACPI Processor UID" and both structure offsets.
func TestMadtDuplicateAcpiProcessorUIDs(t *testing.T) {
	withARMBuildArch(t)

	const uid = 7

	buf := madtHeader(44 + 80 + 80)
	buf = append(buf, gicCStruct(uid)...)
	buf = append(buf, gicCStruct(uid)...)

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParseMadt(s, true, buf)

	if s.Errors != 1 {
		t.Fatalf("expected exactly one error, got %d:\n%s", s.Errors, out.String())
	}

	if !strings.Contains(out.String(), "ACPI Processor UID") {
		t.Errorf("expected the duplicate-UID cross error to name the field, got:\n%s", out.String())
	}

	if !strings.Contains(out.String(), "0x2c") || !strings.Contains(out.String(), "0x7c") {
		t.Errorf("expected both structure offsets (0x2c and 0x7c) in the error, got:\n%s", out.String())
	}
}

// TestMadtDistinctAcpiProcessorUIDsDoNotConflict is the negative
// counterpart of scenario 4: two GICCs with distinct UIDs raise no
// cross error.
func TestMadtDistinctAcpiProcessorUIDsDoNotConflict(t *testing.T) {
	withARMBuildArch(t)

	buf := madtHeader(44 + 80 + 80)
	buf = append(buf, gicCStruct(1)...)
	buf = append(buf, gicCStruct(2)...)

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParseMadt(s, true, buf)

	if s.Errors != 0 {
		t.Fatalf("expected no errors, got %d:\n%s", s.Errors, out.String())
	}
}
