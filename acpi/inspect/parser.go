// Package inspect implements the Inspector core: the generic table-driven
// field parser (spec component 4), the per-table dispatchers (component
// 5) and the structure database (component 6).
package inspect

import (
	"fmt"

	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// sinkWriter adapts a sink.Sink + its current indent to field.Writer so
// field.Render's custom renderers can print without acpi/field importing
// acpi/sink (field sits below sink in the import graph).
type sinkWriter struct {
	s    *sink.Sink
	name string
}

func (w sinkWriter) Printf(format string, args ...any) {
	if w.name != "" {
		w.s.Item(w.name+": "+format, args...)
	} else {
		w.s.Item(format, args...)
	}
}

// Parse is the generic field parser: spec §4.1's
// parse(trace, indent, name?, buf, buf_len, descriptors) -> bytes_consumed.
//
// Indent is managed internally via s.Indent() -- every call increments it
// on entry and restores it on every exit path, per spec §9's ambient
// scoped-acquisition note.
func Parse(s *sink.Sink, trace bool, buf []byte, descriptors []field.Descriptor) int {
	ind := s.Indent()
	ind.Enter()

	defer ind.Exit()

	consistency := s.Options().Effective()

	consumed := 0
	declaredEnd := 0

	for _, d := range descriptors {
		end := d.Offset + d.Length
		fits := end >= d.Offset && end <= len(buf)

		if !fits {
			if d.Capture != nil {
				*d.Capture = nil
			}

			declaredEnd = end

			continue
		}

		if consistency && d.Offset != declaredEnd {
			s.Error(sink.ErrorParse, "field %s: offset mismatch (parsed %d, declared %d)",
				descName(d), declaredEnd, d.Offset)
		}

		raw := buf[d.Offset:end]

		if d.Capture != nil {
			*d.Capture = raw
		}

		malformed := d.Render == nil && d.Format != "" &&
			d.Length != 1 && d.Length != 2 && d.Length != 4 && d.Length != 8

		if trace && d.Name != "" {
			if malformed {
				s.Error(sink.ErrorParse, "field %s: descriptor has a format string but an unsupported length %d",
					descName(d), d.Length)
			} else {
				field.Render(sinkWriter{s, d.Name}, d, raw)
			}
		}

		if trace && consistency && d.Validate != nil {
			d.Validate(sinkWriter{s, d.Name}, raw, d.Context)
		}

		consumed += d.Length
		declaredEnd = end
	}

	return consumed
}

func descName(d field.Descriptor) string {
	if d.Name == "" {
		return fmt.Sprintf("<offset 0x%x>", d.Offset)
	}

	return d.Name
}
