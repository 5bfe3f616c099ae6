package generate

import (
	"fmt"

	"github.com/tpilar/acpiview/acpi/repo"
)

// nodeIndexEntry is one sized-and-placed object: the token it was filed
// under, the object itself (kept for the emission pass's convenience so it
// does not need to re-fetch from the repository), and the byte offset at
// which its node header will land in the final table. Grounded on
// IortGenerator.c's ID_MAPPING_NODE_INFO array populated by
// AddIdMappingArray's sizing companion functions.
type nodeIndexEntry struct {
	Token  repo.Token
	Object repo.Object
	Offset uint32
}

// NodeIndexer is the append-only token→offset map built during a table's
// sizing pass and consulted during its emission pass to back-patch every
// cross-reference field. Grounded on IortGenerator.c's
// GetNodeOffsetReferencedByToken, generalized from IORT-only to every
// table this package builds.
type NodeIndexer struct {
	entries []nodeIndexEntry
}

// Add records that obj (filed under token) will be written at offset.
func (idx *NodeIndexer) Add(token repo.Token, obj repo.Object, offset uint32) {
	idx.entries = append(idx.entries, nodeIndexEntry{Token: token, Object: obj, Offset: offset})
}

// Resolve returns the final offset of the object indexed under token.
// repo.NullToken always resolves to offset 0 without a search, matching
// spec §4.6's "NULL_TOKEN... emission writes offset zero." Any other miss
// is ErrNotFound.
func (idx *NodeIndexer) Resolve(token repo.Token) (uint32, error) {
	if token == repo.NullToken {
		return 0, nil
	}

	for _, e := range idx.entries {
		if e.Token == token {
			return e.Offset, nil
		}
	}

	return 0, fmt.Errorf("%w: token %d", ErrNotFound, token)
}
