package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// HeaderInfo is spec §3's "Header-info sidecar": captured pointers into
// the standard ACPI descriptor header, populated as a side effect of
// ParseAcpiHeader. A fresh HeaderInfo is allocated by every dispatcher
// call and never stored at package scope, so it is never shared across
// tables (spec §5, §9).
type HeaderInfo struct {
	Signature  []byte
	Length     []byte
	Revision   []byte
	Checksum   []byte
	OEMID      []byte
	OEMTableID []byte
	OEMRev     []byte
	CreatorID  []byte
	CreatorRev []byte
}

// headerDescriptors builds the field table for the standard 36-byte ACPI
// header, capturing each field into hi. Grounded on AcpiParser.c's
// PARSE_ACPI_HEADER macro.
func headerDescriptors(hi *HeaderInfo) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Signature", Length: 4, Offset: 0, Render: field.DumpChars, Capture: &hi.Signature},
		{Name: "Length", Length: 4, Offset: 4, Format: "0x%08x", Capture: &hi.Length},
		{Name: "Revision", Length: 1, Offset: 8, Format: "0x%02x", Capture: &hi.Revision},
		{Name: "Checksum", Length: 1, Offset: 9, Format: "0x%02x", Capture: &hi.Checksum},
		{Name: "OEMID", Length: 6, Offset: 10, Render: field.DumpChars, Capture: &hi.OEMID},
		{Name: "OEM Table ID", Length: 8, Offset: 16, Render: field.DumpChars, Capture: &hi.OEMTableID},
		{Name: "OEM Revision", Length: 4, Offset: 24, Format: "0x%08x", Capture: &hi.OEMRev},
		{Name: "Creator ID", Length: 4, Offset: 28, Render: field.DumpChars, Capture: &hi.CreatorID},
		{Name: "Creator Revision", Length: 4, Offset: 32, Format: "0x%08x", Capture: &hi.CreatorRev},
	}
}

// ParseAcpiHeader parses the standard 36-byte header at the start of buf,
// returning the populated sidecar and the number of bytes consumed (36 if
// buf is long enough, less otherwise per the generic parser's own
// out-of-range handling).
func ParseAcpiHeader(s *sink.Sink, trace bool, buf []byte) (*HeaderInfo, int) {
	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, headerDescriptors(hi))

	return hi, n
}

// RevisionByte returns the header's revision byte, or 0 if it was out of
// range (too-short buffer).
func (hi *HeaderInfo) RevisionByte() uint8 {
	if len(hi.Revision) < 1 {
		return 0
	}

	return hi.Revision[0]
}
