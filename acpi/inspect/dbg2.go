package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

func validateNameSpaceStrLen(w field.Writer, raw []byte, _ any) bool {
	v := field.ReadUint16LE(raw, 0)
	if v <= 1 {
		w.Printf("with no namespace, NamespaceString[] must be a period '.'")
	}

	return true
}

type dbgDevInfoCapture struct {
	gasCount              []byte
	nameSpaceStringLength []byte
	nameSpaceStringOffset []byte
	oemDataLength         []byte
	oemDataOffset         []byte
	baseAddrRegOffset     []byte
	addrSizeOffset        []byte
}

func dbgDevInfoDescriptors(c *dbgDevInfoCapture) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Revision", Length: 1, Offset: 0, Format: "0x%02x"},
		{Name: "Length", Length: 2, Offset: 1, Format: "%d"},
		{Name: "Generic Address Registers Count", Length: 1, Offset: 3, Format: "0x%02x", Capture: &c.gasCount},
		{Name: "NameSpace String Length", Length: 2, Offset: 4, Format: "%d", Capture: &c.nameSpaceStringLength, Validate: validateNameSpaceStrLen},
		{Name: "NameSpace String Offset", Length: 2, Offset: 6, Format: "0x%04x", Capture: &c.nameSpaceStringOffset},
		{Name: "OEM Data Length", Length: 2, Offset: 8, Format: "%d", Capture: &c.oemDataLength},
		{Name: "OEM Data Offset", Length: 2, Offset: 10, Format: "0x%04x", Capture: &c.oemDataOffset},
		{Name: "Port Type", Length: 2, Offset: 12, Format: "0x%04x"},
		{Name: "Port SubType", Length: 2, Offset: 14, Format: "0x%04x"},
		{Name: "Reserved", Length: 2, Offset: 16},
		{Name: "Base Address Register Offset", Length: 2, Offset: 18, Format: "0x%04x", Capture: &c.baseAddrRegOffset},
		{Name: "Address Size Offset", Length: 2, Offset: 20, Format: "0x%04x", Capture: &c.addrSizeOffset},
	}
}

// dumpDbgDeviceInfo parses one Debug Device Information structure: its
// field table, the trailing array of Base Address Register GAS structures,
// the parallel array of address sizes, the NameSpace String, and any OEM
// Data. Grounded on Dbg2Parser.c's DumpDbgDeviceInfo in full.
func dumpDbgDeviceInfo(s *sink.Sink, trace bool, ptr []byte) {
	c := &dbgDevInfoCapture{}
	Parse(s, trace, ptr, dbgDevInfoDescriptors(c))

	if c.gasCount == nil || c.nameSpaceStringLength == nil || c.nameSpaceStringOffset == nil ||
		c.oemDataLength == nil || c.oemDataOffset == nil || c.baseAddrRegOffset == nil || c.addrSizeOffset == nil {
		s.Error(sink.ErrorParse, "DBG2: failed to parse Debug Device Information structure")

		return
	}

	gasCount := c.gasCount[0]
	offset := int(field.ReadUint16LE(c.baseAddrRegOffset, 0))

	for i := byte(0); i < gasCount; i++ {
		if field.AssertMemberIntegrity(offset, 1, ptr) {
			break
		}

		info := &field.GASInfo{}
		n := Parse(s, trace, ptr[offset:], field.GASDescriptors(info))
		offset += n
	}

	addrSizeOffset := int(field.ReadUint16LE(c.addrSizeOffset, 0))
	if field.AssertMemberIntegrity(addrSizeOffset, int(gasCount)*4, ptr) {
		return
	}

	offset = addrSizeOffset

	for i := byte(0); i < gasCount; i++ {
		if trace {
			s.Item("Address Size[%d]: 0x%08x", i, field.ReadUint32LE(ptr, offset))
		}

		offset += 4
	}

	nsOffset := int(field.ReadUint16LE(c.nameSpaceStringOffset, 0))
	nsLength := int(field.ReadUint16LE(c.nameSpaceStringLength, 0))

	if trace && !field.AssertMemberIntegrity(nsOffset, nsLength, ptr) && nsLength > 0 {
		s.Item("NameSpace String: %s", string(ptr[nsOffset:nsOffset+nsLength-1]))
	}

	oemDataOffset := int(field.ReadUint16LE(c.oemDataOffset, 0))
	if trace && oemDataOffset != 0 {
		s.Info("OEM Data present at offset 0x%x", oemDataOffset)
	}
}

// ParseDbg2 parses the DBG2 header then its array of Debug Device
// Information structures. Grounded on Dbg2Parser.c's ParseAcpiDbg2.
func ParseDbg2(s *sink.Sink, trace bool, buf []byte) {
	if !trace {
		return
	}

	hi := &HeaderInfo{}

	var offsetInfo, numberInfo []byte

	Parse(s, trace, buf, append(headerDescriptors(hi),
		field.Descriptor{Name: "OffsetDbgDeviceInfo", Length: 4, Offset: 36, Format: "0x%08x", Capture: &offsetInfo},
		field.Descriptor{Name: "NumberDbgDeviceInfo", Length: 4, Offset: 40, Format: "%d", Capture: &numberInfo},
	))

	if offsetInfo == nil || numberInfo == nil {
		s.Error(sink.ErrorParse, "DBG2: failed to parse DbgDevInfo array")

		return
	}

	offset := int(field.ReadUint32LE(offsetInfo, 0))
	number := field.ReadUint32LE(numberInfo, 0)

	for i := uint32(0); i < number && offset+3 <= len(buf); i++ {
		var lengthCapture []byte

		Parse(s, false, buf[offset:], []field.Descriptor{
			{Length: 1, Offset: 0},
			{Length: 2, Offset: 1, Capture: &lengthCapture},
		})

		if lengthCapture == nil {
			s.Error(sink.ErrorParse, "DBG2: failed to parse DbgDevInfoLen")

			return
		}

		length := int(field.ReadUint16LE(lengthCapture, 0))
		if length <= 0 || field.AssertMemberIntegrity(offset, length, buf) {
			s.Error(sink.ErrorLength, "DBG2: Debug Device Information structure at offset 0x%x has invalid length", offset)

			return
		}

		dumpDbgDeviceInfo(s, trace, buf[offset:offset+length])
		offset += length
	}
}
