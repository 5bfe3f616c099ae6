package field

// GASInfo is the sidecar populated by GASDescriptors: captured pointers
// to a Generic Address Structure's five fields (ACPI 6.3 §5.2.3.2).
type GASInfo struct {
	AddressSpaceID    []byte
	RegisterBitWidth  []byte
	RegisterBitOffset []byte
	AccessSize        []byte
	Address           []byte
}

// GASDescriptors builds the field table for a Generic Address Structure,
// grounded on AcpiParser.c's DumpGasStruct. It is used wherever a GAS is
// embedded in a larger table (FADT, SPCR, DBG2), and is the literal
// basis of spec §8 scenario 1.
func GASDescriptors(info *GASInfo) []Descriptor {
	return []Descriptor{
		{Name: "Address Space ID", Length: 1, Offset: 0, Format: "0x%02x", Capture: &info.AddressSpaceID},
		{Name: "Register Bit Width", Length: 1, Offset: 1, Format: "0x%02x", Capture: &info.RegisterBitWidth},
		{Name: "Register Bit Offset", Length: 1, Offset: 2, Format: "0x%02x", Capture: &info.RegisterBitOffset},
		{Name: "Access Size", Length: 1, Offset: 3, Format: "0x%02x", Capture: &info.AccessSize},
		{Name: "Address", Length: 8, Offset: 4, Format: "0x%016x", Capture: &info.Address},
	}
}

// GASSize is the packed byte size of a Generic Address Structure.
const GASSize = 12

// GASDescriptorsAt builds a GAS field table whose offsets are relative to
// base rather than 0, for a GAS embedded partway through a larger
// structure (FADT's Reset Register and X_* fields, SPCR's Base Address).
func GASDescriptorsAt(base int, info *GASInfo) []Descriptor {
	descriptors := GASDescriptors(info)
	for i := range descriptors {
		descriptors[i].Offset += base
	}

	return descriptors
}
