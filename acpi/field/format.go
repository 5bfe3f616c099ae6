package field

import "fmt"

// DumpChars renders n raw ASCII characters, using format if non-empty or
// a repeated "%c" template otherwise. Grounded on FieldFormatHelper.h's
// Dump3Chars/Dump4Chars/Dump6Chars/Dump8Chars/Dump12Chars family, unified
// into one function parameterized on n since Go doesn't need five
// hand-duplicated copies to get five fixed widths.
func DumpChars(w Writer, format string, raw []byte) {
	args := make([]any, len(raw))
	for i, b := range raw {
		args[i] = rune(b)
	}

	if format == "" {
		format = ""
		for range raw {
			format += "%c"
		}
	}

	w.Printf(format, args...)
}

// Render applies d's custom Renderer if present, else formats the value
// read from raw with d.Format (defaulting to a hex dump for an unset
// format on a fixed-width field, or a byte-for-byte "%02x" run for a
// field with no standard width).
func Render(w Writer, d Descriptor, raw []byte) {
	if d.Render != nil {
		d.Render(w, d.Format, raw)

		return
	}

	format := d.Format
	if format == "" {
		format = defaultFormat(d.Length)
	}

	switch d.Length {
	case 1, 2, 4, 8:
		w.Printf(format, ReadValue(raw, 0, d.Length))
	default:
		w.Printf(format, hexString(raw))
	}
}

func defaultFormat(length int) string {
	switch length {
	case 1:
		return "0x%02x"
	case 2:
		return "0x%04x"
	case 4:
		return "0x%08x"
	case 8:
		return "0x%016x"
	default:
		return "%s"
	}
}

func hexString(raw []byte) string {
	s := ""
	for _, b := range raw {
		s += fmt.Sprintf("%02x ", b)
	}

	return s
}
