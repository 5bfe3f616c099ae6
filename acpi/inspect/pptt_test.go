package inspect_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tpilar/acpiview/acpi/inspect"
	"github.com/tpilar/acpiview/acpi/sink"
)

// ppttHeader builds the 36-byte PPTT common ACPI header with the given
// total table length.
func ppttHeader(length uint32) []byte {
	h := make([]byte, 36)
	copy(h[0:4], "PPTT")
	h[4] = byte(length)
	h[5] = byte(length >> 8)
	h[6] = byte(length >> 16)
	h[7] = byte(length >> 24)

	return h
}

// processorNode builds one 20-byte Processor Hierarchy Node Structure
// (Type 0) with the given Parent offset and zero private resources.
func processorNode(parent uint32) []byte {
	b := make([]byte, 20)
	b[1] = 20 // Length

	b[8] = byte(parent)
	b[9] = byte(parent >> 8)
	b[10] = byte(parent >> 16)
	b[11] = byte(parent >> 24)

	return b
}

// TestPpttReferenceCycle is spec §8 scenario 5: three Processor Hierarchy
// nodes whose Parent fields reference each other in a 3-cycle (A -> B ->
// C -> A) must be reported as a reference loop.
func TestPpttReferenceCycle(t *testing.T) {
	t.Parallel()

	const nodeA, nodeB, nodeC = 36, 56, 76

	buf := ppttHeader(36 + 60)
	buf = append(buf, processorNode(nodeB)...) // A @ 36, parent = B
	buf = append(buf, processorNode(nodeC)...) // B @ 56, parent = C
	buf = append(buf, processorNode(nodeA)...) // C @ 76, parent = A

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParsePptt(s, true, buf)

	if !strings.Contains(out.String(), "reference loop detected") {
		t.Fatalf("expected a reference loop diagnostic, got:\n%s", out.String())
	}
}

// TestPpttAcyclicParentChainIsClean is the negative counterpart: a
// three-node chain terminating at a root (Parent == 0) must raise no
// reference-loop diagnostic.
func TestPpttAcyclicParentChainIsClean(t *testing.T) {
	t.Parallel()

	const nodeB = 56

	buf := ppttHeader(36 + 60)
	buf = append(buf, processorNode(nodeB)...) // A @ 36, parent = B
	buf = append(buf, processorNode(76)...)    // B @ 56, parent = C
	buf = append(buf, processorNode(0)...)     // C @ 76, root, no parent

	var out bytes.Buffer
	s := sink.New(&out, sink.Options{Consistency: true})

	inspect.ParsePptt(s, true, buf)

	if strings.Contains(out.String(), "reference loop detected") {
		t.Fatalf("expected no reference loop diagnostic, got:\n%s", out.String())
	}
}
