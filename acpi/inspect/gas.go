package inspect

import (
	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// ParseGAS parses a Generic Address Structure at the start of buf and
// returns the number of bytes consumed -- spec §8 scenario 1: for the
// literal input `00 40 00 04 0000000000000F00`, ParseGAS traces all five
// fields in order and returns 12.
func ParseGAS(s *sink.Sink, trace bool, buf []byte) (*field.GASInfo, int) {
	info := &field.GASInfo{}
	n := Parse(s, trace, buf, field.GASDescriptors(info))

	return info, n
}
