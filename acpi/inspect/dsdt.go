package inspect

import (
	"github.com/tpilar/acpiview/acpi/sink"
)

// ParseDsdt and ParseSsdt parse only the standard 36-byte header, per spec
// §6: DSDT and SSDT are header-only supported tables -- the AML body is
// never decoded, matching spec's explicit Non-goal on executing or
// interpreting AML bytecode. Grounded on the same header-only treatment
// AcpiView.c gives DSDT/SSDT (it registers no body parser for either,
// only the generic header dump every table gets as a fallback).

func ParseDsdt(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, headerDescriptors(hi))

	if trace {
		s.Info("DSDT: %d bytes of AML definition block not decoded", len(buf)-n)
	}

	return n
}

func ParseSsdt(s *sink.Sink, trace bool, buf []byte) int {
	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, headerDescriptors(hi))

	if trace {
		s.Info("SSDT: %d bytes of AML definition block not decoded", len(buf)-n)
	}

	return n
}
