package inspect

import (
	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// IORT Node type tags, IO Remapping Table spec Rev D §3.
const (
	iortITSGroup       = 0
	iortNamedComponent = 1
	iortRootComplex    = 2
	iortSMMUv1v2       = 3
	iortSMMUv3         = 4
	iortPMCG           = 5
)

// iortNodeHeaderDescriptors builds the 16-byte node header shared by every
// IORT node kind, grounded on IortParser.c's PARSE_IORT_NODE_HEADER macro.
// idMappingCount/idMappingOffset capture out for the trailing ID Mapping
// array every node but ITS carries.
func iortNodeHeaderDescriptors(idMappingCount, idMappingOffset *[]byte, validateCount, validateOffset field.Validator) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "%d"},
		{Name: "Length", Length: 2, Offset: 1, Format: "%d"},
		{Name: "Revision", Length: 1, Offset: 3, Format: "%d"},
		{Name: "Reserved", Length: 4, Offset: 4, Format: "0x%08x"},
		{Name: "Number of ID mappings", Length: 4, Offset: 8, Format: "%d", Capture: idMappingCount, Validate: validateCount},
		{Name: "Reference to ID Array", Length: 4, Offset: 12, Format: "0x%08x", Capture: idMappingOffset, Validate: validateOffset},
	}
}

func validateZero(w field.Writer, raw []byte, _ any) bool {
	if field.ReadUint32LE(raw, 0) != 0 {
		w.Printf("must be zero, got %d", field.ReadUint32LE(raw, 0))

		return false
	}

	return true
}

// validatePmcgIdMappingCount implements ValidatePmcgIdMappingCount: a PMCG
// node may have at most one ID mapping (for its associated Root Complex).
func validatePmcgIdMappingCount(w field.Writer, raw []byte, _ any) bool {
	if field.ReadUint32LE(raw, 0) > 1 {
		w.Printf("PMCG node must have at most one ID mapping, got %d", field.ReadUint32LE(raw, 0))

		return false
	}

	return true
}

func idMappingDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Input base", Length: 4, Offset: 0, Format: "0x%08x"},
		{Name: "Number of IDs", Length: 4, Offset: 4, Format: "0x%08x"},
		{Name: "Output base", Length: 4, Offset: 8, Format: "0x%08x"},
		{Name: "Output reference", Length: 4, Offset: 12, Format: "0x%08x"},
		{Name: "Flags", Length: 4, Offset: 16, Format: "0x%08x"},
	}
}

const idMappingSize = 20

// dumpIortIDMappings walks the ID Mapping array at the node-relative
// mappingOffset, grounded on DumpIortNodeIdMappings.
func dumpIortIDMappings(s *sink.Sink, trace bool, node []byte, mappingOffset, mappingCount uint32) {
	offset := int(mappingOffset)

	for i := uint32(0); i < mappingCount; i++ {
		if field.AssertMemberIntegrity(offset, 1, node) {
			return
		}

		if trace {
			s.Item("ID Mapping[%d] (+0x%x)", i, offset)
		}

		offset += Parse(s, trace, node[offset:], idMappingDescriptors())
	}
}

func interruptArrayDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Interrupt GSIV", Length: 4, Offset: 0, Format: "0x%08x"},
		{Name: "Flags", Length: 4, Offset: 4, Format: "0x%08x"},
	}
}

type smmuV1V2Capture struct {
	interruptContextCount, interruptContextOffset []byte
	pmuInterruptCount, pmuInterruptOffset          []byte
	idMappingCount, idMappingOffset                []byte
}

func smmuV1V2Descriptors(c *smmuV1V2Capture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, nil, nil)

	return append(d,
		field.Descriptor{Name: "Base Address", Length: 8, Offset: 16, Format: "0x%016x"},
		field.Descriptor{Name: "Span", Length: 8, Offset: 24, Format: "0x%016x"},
		field.Descriptor{Name: "Model", Length: 4, Offset: 32, Format: "%d"},
		field.Descriptor{Name: "Flags", Length: 4, Offset: 36, Format: "0x%08x"},
		field.Descriptor{Name: "Reference to Global Interrupt Array", Length: 4, Offset: 40, Format: "0x%08x"},
		field.Descriptor{Name: "Number of context interrupts", Length: 4, Offset: 44, Format: "%d", Capture: &c.interruptContextCount},
		field.Descriptor{Name: "Reference to Context Interrupt Array", Length: 4, Offset: 48, Format: "0x%08x", Capture: &c.interruptContextOffset},
		field.Descriptor{Name: "Number of PMU Interrupts", Length: 4, Offset: 52, Format: "%d", Capture: &c.pmuInterruptCount},
		field.Descriptor{Name: "Reference to PMU Interrupt Array", Length: 4, Offset: 56, Format: "0x%08x", Capture: &c.pmuInterruptOffset},
		field.Descriptor{Name: "SMMU_NSgIrpt", Length: 4, Offset: 60, Format: "0x%08x"},
		field.Descriptor{Name: "SMMU_NSgIrpt interrupt flags", Length: 4, Offset: 64, Format: "0x%08x"},
		field.Descriptor{Name: "SMMU_NSgCfgIrpt", Length: 4, Offset: 68, Format: "0x%08x"},
		field.Descriptor{Name: "SMMU_NSgCfgIrpt interrupt flags", Length: 4, Offset: 72, Format: "0x%08x"},
	)
}

// dumpIortSmmuV1V2, grounded on DumpIortNodeSmmuV1V2: parses the fixed
// fields, walks the Context Interrupts and PMU Interrupts arrays (which
// precede the ID Mapping array in byte order, matching the generator's
// own emission order), then the ID Mapping array.
func dumpIortSmmuV1V2(s *sink.Sink, ptr []byte, _ uint32) {
	c := &smmuV1V2Capture{}
	Parse(s, true, ptr, smmuV1V2Descriptors(c))

	if c.interruptContextCount == nil || c.interruptContextOffset == nil ||
		c.pmuInterruptCount == nil || c.pmuInterruptOffset == nil {
		s.Error(sink.ErrorParse, "IORT: failed to parse the SMMUv1/2 node")

		return
	}

	offset := int(field.ReadUint32LE(c.interruptContextOffset, 0))
	count := field.ReadUint32LE(c.interruptContextCount, 0)

	for i := uint32(0); i < count; i++ {
		if field.AssertMemberIntegrity(offset, 1, ptr) {
			break
		}

		s.Item("Context Interrupts Array[%d] (+0x%x)", i, offset)
		offset += Parse(s, true, ptr[offset:], interruptArrayDescriptors())
	}

	offset = int(field.ReadUint32LE(c.pmuInterruptOffset, 0))
	count = field.ReadUint32LE(c.pmuInterruptCount, 0)

	for i := uint32(0); i < count; i++ {
		if field.AssertMemberIntegrity(offset, 1, ptr) {
			break
		}

		s.Item("PMU Interrupts Array[%d] (+0x%x)", i, offset)
		offset += Parse(s, true, ptr[offset:], interruptArrayDescriptors())
	}

	if c.idMappingCount == nil || c.idMappingOffset == nil {
		return
	}

	dumpIortIDMappings(s, true, ptr, field.ReadUint32LE(c.idMappingOffset, 0), field.ReadUint32LE(c.idMappingCount, 0))
}

type idMappedCapture struct {
	idMappingCount, idMappingOffset []byte
}

func smmuV3Descriptors(c *idMappedCapture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, nil, nil)

	return append(d,
		field.Descriptor{Name: "Base Address", Length: 8, Offset: 16, Format: "0x%016x"},
		field.Descriptor{Name: "Flags", Length: 4, Offset: 24, Format: "0x%08x"},
		field.Descriptor{Name: "Reserved", Length: 4, Offset: 28},
		field.Descriptor{Name: "VATOS Address", Length: 8, Offset: 32, Format: "0x%016x"},
		field.Descriptor{Name: "Model", Length: 4, Offset: 40, Format: "%d"},
		field.Descriptor{Name: "Event", Length: 4, Offset: 44, Format: "0x%08x"},
		field.Descriptor{Name: "PRI", Length: 4, Offset: 48, Format: "0x%08x"},
		field.Descriptor{Name: "GERR", Length: 4, Offset: 52, Format: "0x%08x"},
		field.Descriptor{Name: "Sync", Length: 4, Offset: 56, Format: "0x%08x"},
		field.Descriptor{Name: "Proximity domain", Length: 4, Offset: 60, Format: "0x%08x"},
		field.Descriptor{Name: "Device ID mapping index", Length: 4, Offset: 64, Format: "%d"},
	)
}

func dumpIortSmmuV3(s *sink.Sink, ptr []byte, _ uint32) {
	c := &idMappedCapture{}
	Parse(s, true, ptr, smmuV3Descriptors(c))
	dumpIdMappingsIfCaptured(s, ptr, c)
}

func dumpIdMappingsIfCaptured(s *sink.Sink, ptr []byte, c *idMappedCapture) {
	if c.idMappingCount == nil || c.idMappingOffset == nil {
		s.Error(sink.ErrorParse, "IORT: failed to parse the node's ID Mapping header fields")

		return
	}

	dumpIortIDMappings(s, true, ptr, field.ReadUint32LE(c.idMappingOffset, 0), field.ReadUint32LE(c.idMappingCount, 0))
}

func itsGroupDescriptors(c *idMappedCapture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, validateZero, validateZero)

	return append(d, field.Descriptor{Name: "Number of ITSs", Length: 4, Offset: 16, Format: "%d"})
}

// dumpIortITSGroup, grounded on DumpIortNodeIts: an ITS Group node has no
// ID Mapping array (ValidateItsIdMappingCount/ValidateItsIdArrayReference
// both assert they are zero), only a trailing array of GIC ITS
// identifiers sized by 'Number of ITSs'.
func dumpIortITSGroup(s *sink.Sink, ptr []byte, _ uint32) {
	c := &idMappedCapture{}
	offset := Parse(s, true, ptr, itsGroupDescriptors(c))

	var count []byte

	Parse(s, false, ptr[16:], []field.Descriptor{{Length: 4, Offset: 0, Capture: &count}})

	if count == nil {
		s.Error(sink.ErrorParse, "IORT: failed to parse ITS Group node")

		return
	}

	n := field.ReadUint32LE(count, 0)

	for i := uint32(0); i < n; i++ {
		if field.AssertMemberIntegrity(offset, 1, ptr) {
			return
		}

		s.Item("GIC ITS Identifier Array[%d] (+0x%x)", i, offset)
		offset += Parse(s, true, ptr[offset:], []field.Descriptor{
			{Name: "GIC ITS Identifier", Length: 4, Offset: 0, Format: "%d"},
		})
	}
}

func namedComponentDescriptors(c *idMappedCapture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, nil, nil)

	return append(d,
		field.Descriptor{Name: "Node Flags", Length: 4, Offset: 16, Format: "%d"},
		field.Descriptor{Name: "Memory access properties", Length: 8, Offset: 20, Format: "0x%016x"},
		field.Descriptor{Name: "Device memory address size limit", Length: 1, Offset: 28, Format: "%d"},
	)
}

// dumpIortNamedComponent, grounded on DumpIortNodeNamedComponent: after
// the fixed fields comes a NUL-terminated Device Object Name string, then
// the ID Mapping array.
func dumpIortNamedComponent(s *sink.Sink, ptr []byte, _ uint32) {
	c := &idMappedCapture{}
	offset := Parse(s, true, ptr, namedComponentDescriptors(c))

	end := offset
	for end < len(ptr) && ptr[end] != 0 {
		end++
	}

	s.Item("Device Object Name: %s", string(ptr[offset:end]))
	dumpIdMappingsIfCaptured(s, ptr, c)
}

func rootComplexDescriptors(c *idMappedCapture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, nil, nil)

	return append(d,
		field.Descriptor{Name: "Memory access properties", Length: 8, Offset: 16, Format: "0x%016x"},
		field.Descriptor{Name: "ATS Attribute", Length: 4, Offset: 24, Format: "0x%08x"},
		field.Descriptor{Name: "PCI Segment number", Length: 4, Offset: 28, Format: "0x%08x"},
		field.Descriptor{Name: "Memory access size limit", Length: 1, Offset: 32, Format: "0x%02x"},
		field.Descriptor{Name: "Reserved", Length: 3, Offset: 33},
	)
}

func dumpIortRootComplex(s *sink.Sink, ptr []byte, _ uint32) {
	c := &idMappedCapture{}
	Parse(s, true, ptr, rootComplexDescriptors(c))
	dumpIdMappingsIfCaptured(s, ptr, c)
}

func pmcgDescriptors(c *idMappedCapture) []field.Descriptor {
	d := iortNodeHeaderDescriptors(&c.idMappingCount, &c.idMappingOffset, validatePmcgIdMappingCount, nil)

	return append(d,
		field.Descriptor{Name: "Page 0 Base Address", Length: 8, Offset: 16, Format: "0x%016x"},
		field.Descriptor{Name: "Overflow interrupt GSIV", Length: 4, Offset: 24, Format: "0x%08x"},
		field.Descriptor{Name: "Node reference", Length: 4, Offset: 28, Format: "0x%08x"},
		field.Descriptor{Name: "Page 1 Base Address", Length: 8, Offset: 32, Format: "0x%016x"},
	)
}

func dumpIortPmcg(s *sink.Sink, ptr []byte, _ uint32) {
	c := &idMappedCapture{}
	Parse(s, true, ptr, pmcgDescriptors(c))
	dumpIdMappingsIfCaptured(s, ptr, c)
}

var iortStructs = &StructDatabase{
	Name: "IORT Node",
	Entries: []StructInfo{
		{Name: "ITS Group", Type: iortITSGroup, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortITSGroup)},
		{Name: "Named Component", Type: iortNamedComponent, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortNamedComponent)},
		{Name: "Root Complex", Type: iortRootComplex, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortRootComplex)},
		{Name: "SMMUv1 or SMMUv2", Type: iortSMMUv1v2, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortSmmuV1V2)},
		{Name: "SMMUv3", Type: iortSMMUv3, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortSmmuV3)},
		{Name: "PMCG", Type: iortPMCG, CompatArch: acpi.ArchARM | acpi.ArchAARCH64, Handler: CustomHandler(dumpIortPmcg)},
	},
}

func init() {
	iortStructs.Validate()
}

func iortMinHeaderSize(_ uint8) int {
	return 16
}

// ParseIort parses the IO Remapping Table: the table header with its own
// node count/offset fields, then the array of IORT nodes starting at the
// declared node-array offset (not necessarily immediately after the
// header). Grounded on IortParser.c's ParseAcpiIort.
func ParseIort(s *sink.Sink, trace bool, buf []byte) {
	if !trace {
		return
	}

	hi := &HeaderInfo{}

	var nodeOffset []byte

	Parse(s, trace, buf, append(headerDescriptors(hi),
		field.Descriptor{Name: "Number of IORT Nodes", Length: 4, Offset: 36, Format: "%d"},
		field.Descriptor{Name: "Offset to Array of IORT Nodes", Length: 4, Offset: 40, Format: "0x%08x", Capture: &nodeOffset},
		field.Descriptor{Name: "Reserved", Length: 4, Offset: 44},
	))

	if nodeOffset == nil {
		s.Error(sink.ErrorParse, "IORT: failed to parse IORT Node array offset")

		return
	}

	WalkSubStructures(s, trace, buf, int(field.ReadUint32LE(nodeOffset, 0)), 2, iortMinHeaderSize, iortStructs)
}
