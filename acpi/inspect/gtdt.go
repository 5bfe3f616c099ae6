package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
	"github.com/tpilar/acpiview/acpi/validate"
)

const gtBlockTimerCountMax = 8

// Platform Timer Structure type tags, ACPI 6.3 §5.2.24.
const (
	gtdtGTBlock      = 0
	gtdtSBSAWatchdog = 1
)

func validateGtBlockTimerCount(w field.Writer, raw []byte, _ any) bool {
	v := field.ReadUint32LE(raw, 0)
	if v > gtBlockTimerCountMax {
		w.Printf("Timer Count: %d exceeds the maximum of %d GT Block Timers", v, gtBlockTimerCountMax)

		return false
	}

	return true
}

func validateGtFrameNumber(w field.Writer, raw []byte, _ any) bool {
	v := raw[0]
	if v >= gtBlockTimerCountMax {
		w.Printf("Frame Number: %d is not a valid GT Block Timer frame number", v)

		return false
	}

	return true
}

func gtdtDescriptors(hi *HeaderInfo, timerCount, timerOffset *[]byte) []field.Descriptor {
	return append(headerDescriptors(hi),
		field.Descriptor{Name: "CntControlBase Physical Address", Length: 8, Offset: 36, Format: "0x%016x"},
		field.Descriptor{Name: "Reserved", Length: 4, Offset: 44},
		field.Descriptor{Name: "Secure EL1 timer GSIV", Length: 4, Offset: 48, Format: "0x%08x"},
		field.Descriptor{Name: "Secure EL1 timer FLAGS", Length: 4, Offset: 52, Format: "0x%08x"},
		field.Descriptor{Name: "Non-Secure EL1 timer GSIV", Length: 4, Offset: 56, Format: "0x%08x"},
		field.Descriptor{Name: "Non-Secure EL1 timer FLAGS", Length: 4, Offset: 60, Format: "0x%08x"},
		field.Descriptor{Name: "Virtual timer GSIV", Length: 4, Offset: 64, Format: "0x%08x"},
		field.Descriptor{Name: "Virtual timer FLAGS", Length: 4, Offset: 68, Format: "0x%08x"},
		field.Descriptor{Name: "Non-Secure EL2 timer GSIV", Length: 4, Offset: 72, Format: "0x%08x"},
		field.Descriptor{Name: "Non-Secure EL2 timer FLAGS", Length: 4, Offset: 76, Format: "0x%08x"},
		field.Descriptor{Name: "CntReadBase Physical address", Length: 8, Offset: 80, Format: "0x%016x"},
		field.Descriptor{Name: "Platform Timer Count", Length: 4, Offset: 88, Format: "%d", Capture: timerCount},
		field.Descriptor{Name: "Platform Timer Offset", Length: 4, Offset: 92, Format: "0x%08x", Capture: timerOffset},
		field.Descriptor{Name: "Virtual EL2 Timer GSIV", Length: 4, Offset: 96, Format: "0x%08x"},
		field.Descriptor{Name: "Virtual EL2 Timer Flags", Length: 4, Offset: 100, Format: "0x%08x"},
	)
}

type gtBlockCapture struct {
	timerCount  []byte
	timerOffset []byte
}

func gtBlockDescriptors(c *gtBlockCapture) []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "%d"},
		{Name: "Length", Length: 2, Offset: 1, Format: "%d"},
		{Name: "Reserved", Length: 1, Offset: 3},
		{Name: "Physical address (CntCtlBase)", Length: 8, Offset: 4, Format: "0x%016x"},
		{Name: "Timer Count", Length: 4, Offset: 12, Format: "%d", Capture: &c.timerCount, Validate: validateGtBlockTimerCount},
		{Name: "Timer Offset", Length: 4, Offset: 16, Format: "%d", Capture: &c.timerOffset},
	}
}

func gtBlockTimerDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Frame Number", Length: 1, Offset: 0, Format: "%d", Validate: validateGtFrameNumber},
		{Name: "Reserved", Length: 3, Offset: 1, Render: field.DumpChars},
		{Name: "Physical address (CntBaseX)", Length: 8, Offset: 4, Format: "0x%016x"},
		{Name: "Physical address (CntEL0BaseX)", Length: 8, Offset: 12, Format: "0x%016x"},
		{Name: "Physical Timer GSIV", Length: 4, Offset: 20, Format: "0x%08x"},
		{Name: "Physical Timer Flags", Length: 4, Offset: 24, Format: "0x%08x"},
		{Name: "Virtual Timer GSIV", Length: 4, Offset: 28, Format: "0x%08x"},
		{Name: "Virtual Timer Flags", Length: 4, Offset: 32, Format: "0x%08x"},
		{Name: "Common Flags", Length: 4, Offset: 36, Format: "0x%08x"},
	}
}

const gtBlockTimerSize = 40

func sbsaWatchdogDescriptors() []field.Descriptor {
	return []field.Descriptor{
		{Name: "Type", Length: 1, Offset: 0, Format: "%d"},
		{Name: "Length", Length: 2, Offset: 1, Format: "%d"},
		{Name: "Reserved", Length: 1, Offset: 3},
		{Name: "RefreshFrame Physical address", Length: 8, Offset: 4, Format: "0x%016x"},
		{Name: "ControlFrame Physical address", Length: 8, Offset: 12, Format: "0x%016x"},
		{Name: "Watchdog Timer GSIV", Length: 4, Offset: 20, Format: "0x%08x"},
		{Name: "Watchdog Timer Flags", Length: 4, Offset: 24, Format: "0x%08x"},
	}
}

// ParseGtdt parses the GTDT header, then its trailing array of Platform
// Timer Structures (GT Block / SBSA Generic Watchdog), validating that
// every GT Block's frame numbers are unique across the block. Grounded on
// GtdtParser.c in full, including ValidateGtFrameNumbersUnique's use of
// the cross-validator (the mechanism this package's MADT dispatcher
// borrows for its own scenario-4 addition, see acpi/inspect/madt.go).
func ParseGtdt(s *sink.Sink, trace bool, buf []byte) int {
	if !trace {
		return 0
	}

	hi := &HeaderInfo{}

	var timerCount, timerOffset []byte

	n := Parse(s, trace, buf, gtdtDescriptors(hi, &timerCount, &timerOffset))

	if timerCount == nil || timerOffset == nil {
		return n
	}

	count := field.ReadUint32LE(timerCount, 0)
	offset := int(field.ReadUint32LE(timerOffset, 0))

	for i := uint32(0); i < count && offset+4 <= len(buf); i++ {
		var hc subHeaderCapture

		Parse(s, false, buf[offset:], []field.Descriptor{
			{Length: 1, Offset: 0, Capture: &hc.Type},
			{Length: 2, Offset: 1, Capture: &hc.Length},
		})

		if hc.Type == nil || hc.Length == nil {
			s.Error(sink.ErrorParse, "GTDT: truncated Platform Timer Structure header at offset 0x%x", offset)

			return len(buf)
		}

		typ := hc.Type[0]
		length := field.ReadUint16LE(hc.Length, 0)

		if length < 4 || offset+int(length) > len(buf) {
			s.Error(sink.ErrorLength, "GTDT: Platform Timer Structure at offset 0x%x declares invalid length %d", offset, length)

			return len(buf)
		}

		sub := buf[offset : offset+int(length)]

		switch typ {
		case gtdtGTBlock:
			c := &gtBlockCapture{}
			Parse(s, trace, sub, gtBlockDescriptors(c))
			parseGtBlockTimers(s, trace, sub, c)
		case gtdtSBSAWatchdog:
			Parse(s, trace, sub, sbsaWatchdogDescriptors())
		default:
			s.Error(sink.ErrorValue, "GTDT: unknown Platform Timer Structure type %d at offset 0x%x", typ, offset)
		}

		offset += int(length)
	}

	return len(buf)
}

// parseGtBlockTimers walks a GT Block's trailing array of GT Block Timer
// Structures and checks their Frame Numbers are unique within the block.
func parseGtBlockTimers(s *sink.Sink, trace bool, block []byte, c *gtBlockCapture) {
	if c.timerCount == nil || c.timerOffset == nil {
		return
	}

	count := field.ReadUint32LE(c.timerCount, 0)
	start := int(field.ReadUint32LE(c.timerOffset, 0))

	var frames []validate.Entry

	for i, off := uint32(0), start; i < count && off+gtBlockTimerSize <= len(block); i, off = i+1, off+gtBlockTimerSize {
		sub := block[off : off+gtBlockTimerSize]
		Parse(s, trace, sub, gtBlockTimerDescriptors())
		frames = append(frames, validate.Entry{Value: sub[0:1], Offset: uint32(off)})
	}

	if s.Options().Effective() {
		validate.AllUnique(s, frames, validate.BytesEqual, "GT Block Timer", "GT Frame Number")
	}
}
