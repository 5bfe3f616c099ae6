package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// fadtDescriptors builds the FADT field table. No dedicated FadtParser.c
// shipped in this retrieval pack; offsets are taken from this engine's own
// acpi.FADT wire struct (acpi/fadt.go), which is itself ACPI 6.3 §5.2.9's
// packed layout, so inspector and generator agree on the table's shape by
// construction. The X_* 12-byte fields are GAS sub-structures, embedded
// via field.GASDescriptorsAt the same way DumpGasStruct is invoked inline
// from AcpiParser.c's other table dispatchers.
func fadtDescriptors(hi *HeaderInfo) []field.Descriptor {
	d := append(headerDescriptors(hi),
		field.Descriptor{Name: "FIRMWARE_CTRL", Length: 4, Offset: 36, Format: "0x%08x"},
		field.Descriptor{Name: "DSDT", Length: 4, Offset: 40, Format: "0x%08x"},
		field.Descriptor{Name: "Reserved", Length: 1, Offset: 44},
		field.Descriptor{Name: "Preferred_PM_Profile", Length: 1, Offset: 45, Format: "0x%02x"},
		field.Descriptor{Name: "SCI_INT", Length: 2, Offset: 46, Format: "0x%04x"},
		field.Descriptor{Name: "SMI_CMD", Length: 4, Offset: 48, Format: "0x%08x"},
		field.Descriptor{Name: "ACPI_ENABLE", Length: 1, Offset: 52, Format: "0x%02x"},
		field.Descriptor{Name: "ACPI_DISABLE", Length: 1, Offset: 53, Format: "0x%02x"},
		field.Descriptor{Name: "S4BIOS_REQ", Length: 1, Offset: 54, Format: "0x%02x"},
		field.Descriptor{Name: "PSTATE_CNT", Length: 1, Offset: 55, Format: "0x%02x"},
		field.Descriptor{Name: "PM1a_EVT_BLK", Length: 4, Offset: 56, Format: "0x%08x"},
		field.Descriptor{Name: "PM1b_EVT_BLK", Length: 4, Offset: 60, Format: "0x%08x"},
		field.Descriptor{Name: "PM1a_CNT_BLK", Length: 4, Offset: 64, Format: "0x%08x"},
		field.Descriptor{Name: "PM1b_CNT_BLK", Length: 4, Offset: 68, Format: "0x%08x"},
		field.Descriptor{Name: "PM2_CNT_BLK", Length: 4, Offset: 72, Format: "0x%08x"},
		field.Descriptor{Name: "PM_TMR_BLK", Length: 4, Offset: 76, Format: "0x%08x"},
		field.Descriptor{Name: "GPE0_BLK", Length: 4, Offset: 80, Format: "0x%08x"},
		field.Descriptor{Name: "GPE1_BLK", Length: 4, Offset: 84, Format: "0x%08x"},
		field.Descriptor{Name: "PM1_EVT_LEN", Length: 1, Offset: 88, Format: "0x%02x"},
		field.Descriptor{Name: "PM1_CNT_LEN", Length: 1, Offset: 89, Format: "0x%02x"},
		field.Descriptor{Name: "PM2_CNT_LEN", Length: 1, Offset: 90, Format: "0x%02x"},
		field.Descriptor{Name: "PM_TMR_LEN", Length: 1, Offset: 91, Format: "0x%02x"},
		field.Descriptor{Name: "GPE0_BLK_LEN", Length: 1, Offset: 92, Format: "0x%02x"},
		field.Descriptor{Name: "GPE1_BLK_LEN", Length: 1, Offset: 93, Format: "0x%02x"},
		field.Descriptor{Name: "GPE1_BASE", Length: 1, Offset: 94, Format: "0x%02x"},
		field.Descriptor{Name: "CST_CNT", Length: 1, Offset: 95, Format: "0x%02x"},
		field.Descriptor{Name: "P_LVL2_LAT", Length: 2, Offset: 96, Format: "0x%04x"},
		field.Descriptor{Name: "P_LVL3_LAT", Length: 2, Offset: 98, Format: "0x%04x"},
		field.Descriptor{Name: "FLUSH_SIZE", Length: 2, Offset: 100, Format: "0x%04x"},
		field.Descriptor{Name: "FLUSH_STRIDE", Length: 2, Offset: 102, Format: "0x%04x"},
		field.Descriptor{Name: "DUTY_OFFSET", Length: 1, Offset: 104, Format: "0x%02x"},
		field.Descriptor{Name: "DUTY_WIDTH", Length: 1, Offset: 105, Format: "0x%02x"},
		field.Descriptor{Name: "DAY_ALRM", Length: 1, Offset: 106, Format: "0x%02x"},
		field.Descriptor{Name: "MON_ALRM", Length: 1, Offset: 107, Format: "0x%02x"},
		field.Descriptor{Name: "CENTURY", Length: 1, Offset: 108, Format: "0x%02x"},
		field.Descriptor{Name: "IAPC_BOOT_ARCH", Length: 2, Offset: 109, Format: "0x%04x"},
		field.Descriptor{Name: "Reserved", Length: 1, Offset: 111},
		field.Descriptor{Name: "Flags", Length: 4, Offset: 112, Format: "0x%08x"},
	)

	resetReg := &field.GASInfo{}
	d = append(d, field.GASDescriptorsAt(116, resetReg)...)

	d = append(d,
		field.Descriptor{Name: "RESET_VALUE", Length: 1, Offset: 128, Format: "0x%02x"},
		field.Descriptor{Name: "ARM_BOOT_ARCH", Length: 2, Offset: 129, Format: "0x%04x"},
		field.Descriptor{Name: "Minor Version", Length: 1, Offset: 131, Format: "0x%02x"},
		field.Descriptor{Name: "X_FIRMWARE_CTRL", Length: 8, Offset: 132, Format: "0x%016x"},
		field.Descriptor{Name: "X_DSDT", Length: 8, Offset: 140, Format: "0x%016x"},
	)

	// X_PM1a_EVT_BLK, X_PM1b_EVT_BLK, X_PM1a_CNT_BLK, X_PM1b_CNT_BLK,
	// X_PM2_CNT_BLK, X_PM_TMR_BLK, X_GPE0_BLK, X_GPE1_BLK, SLEEP_CONTROL_REG,
	// SLEEP_STATUS_REG -- ten back-to-back GAS fields starting at offset 148.
	for i := 0; i < 10; i++ {
		d = append(d, field.GASDescriptorsAt(148+i*field.GASSize, &field.GASInfo{})...)
	}

	d = append(d, field.Descriptor{Name: "Hypervisor Vendor Identity", Length: 8, Offset: 268, Render: field.DumpChars})

	return d
}

// ParseFadt parses the Fixed ACPI Description Table.
func ParseFadt(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}

	return Parse(s, trace, buf, fadtDescriptors(hi))
}
