package inspect

import (
	"math"

	"github.com/tpilar/acpiview/acpi/field"
	"github.com/tpilar/acpiview/acpi/sink"
)

// ParseSlit parses the SLIT header then its NxN relative-distance matrix,
// checking the diagonal normalizes to 10 and the matrix is symmetric.
// Grounded on SlitParser.c's ParseAcpiSlit in full, including its
// MAX_UINT16 locality-count bound derivation (the 64-bit "Number of System
// Localities" field cannot actually exceed 65535 once squared against a
// 32-bit table length) and dropping only the >=16-locality print
// suppression, a front-end terminal-width concern out of scope here.
func ParseSlit(s *sink.Sink, trace bool, buf []byte) int {
	var count []byte

	hi := &HeaderInfo{}
	n := Parse(s, trace, buf, append(headerDescriptors(hi),
		field.Descriptor{Name: "Number of System Localities", Length: 8, Offset: 36, Format: "0x%016x", Capture: &count},
	))

	if count == nil {
		return n
	}

	localityCount := field.ReadUint64LE(count, 0)
	if localityCount > math.MaxUint16 {
		s.Error(sink.ErrorValue, "SLIT: Number of System Localities %d exceeds the maximum representable locality count", localityCount)

		return n
	}

	locality := int(localityCount)
	if field.AssertMemberIntegrity(n, locality*locality, buf) {
		s.Error(sink.ErrorLength, "SLIT: locality matrix overruns the table")

		return n
	}

	matrix := buf[n : n+locality*locality]

	elem := func(i, j int) byte { return matrix[i*locality+j] }

	if !trace {
		return n
	}

	for i := 0; i < locality; i++ {
		if elem(i, i) != 10 {
			s.Error(sink.ErrorValue, "SLIT Element[%d][%d] != 10", i, i)
		}

		for j := 0; j < i; j++ {
			if elem(i, j) != elem(j, i) {
				s.Error(sink.ErrorValue, "SLIT Element[%d][%d] != SLIT Element[%d][%d]", i, j, j, i)
			}
		}
	}

	return n + locality*locality
}
