// Package repo implements the Generator core's configuration-repository
// interface (spec component 8): the abstraction the generator queries for
// the platform objects (GICC/GICD/GIC ITS info, memory affinity domains,
// IORT nodes, PCI segment/config-space descriptors, and the ID-mapping and
// ITS-identifier arrays those nodes reference) it assembles into tables.
// Grounded on the EArmObjXxx / CfgMgrGetObjects / CfgMgrGetSimpleObject
// idiom visible throughout DynamicTablesPkg's generator sources
// (IortGenerator.c, MadtGenerator.c, McfgGenerator.c, SratGenerator.c) and
// the reference ConfigurationManagerDxe in-memory platform repository
// those generators are driven by in EDK2 -- neither ships in this
// retrieval pack as Go source, so the interface shape below is this
// engine's own rendering of that object-store contract, not a port.
package repo

import "fmt"

// ObjectID names one platform-object kind a Repository can hold. Values
// mirror the EArmObjXxx enumeration's role (a flat namespace of object
// kinds keyed by a small integer) without copying its numeric values,
// since this engine has no ABI compatibility obligation to EDK2's
// CM_OBJECT_ID numbering.
type ObjectID int

const (
	ObjGicCInfo ObjectID = iota
	ObjGicDInfo
	ObjGicMsiFrameInfo
	ObjGicRedistributorInfo
	ObjGicItsInfo
	ObjMemoryAffinityInfo
	ObjGicCAffinityInfo
	ObjGicItsAffinityInfo
	ObjGicItsIdentifierArray
	ObjSmmuInterruptArray
	ObjIdMappingArray
	ObjItsGroupNode
	ObjNamedComponentNode
	ObjRootComplexNode
	ObjSmmuV1V2Node
	ObjSmmuV3Node
	ObjPmcgNode
	ObjPciConfigSpaceInfo
)

func (id ObjectID) String() string {
	names := [...]string{
		"GicCInfo", "GicDInfo", "GicMsiFrameInfo", "GicRedistributorInfo",
		"GicItsInfo", "MemoryAffinityInfo", "GicCAffinityInfo",
		"GicItsAffinityInfo", "GicItsIdentifierArray", "SmmuInterruptArray",
		"IdMappingArray", "ItsGroupNode", "NamedComponentNode", "RootComplexNode",
		"SmmuV1V2Node", "SmmuV3Node", "PmcgNode", "PciConfigSpaceInfo",
	}
	if int(id) < 0 || int(id) >= len(names) {
		return fmt.Sprintf("ObjectID(%d)", int(id))
	}

	return names[id]
}

// Token identifies one platform object (or array of objects) a generator
// node can reference by indirection, e.g. a Root Complex node's
// IdMappingToken pointing at the ID Mapping array it owns. Grounded on
// EDK2's CM_OBJECT_TOKEN (an opaque handle, not a guessable index).
type Token uint64

// NullToken always resolves to offset 0 without a repository lookup,
// matching spec §4.6's reference-resolution rule for unset references.
const NullToken Token = 0

// Object is one owned platform-object record: a repository-assigned
// Token and the raw little-endian-encoded fields the caller packed into
// Data. The repository never interprets Data; only the generator's
// per-kind size/emit functions know a given ObjectID's field layout.
type Object struct {
	Token Token
	Data  []byte
}

// Repository is spec §4.8's configuration-repository interface: the
// generator's only way to learn what platform objects exist.
type Repository interface {
	// Count reports how many objects of kind id the repository holds,
	// across every token. (0, nil) is the normal not-found case, not an
	// error -- a generator asking about a kind the platform doesn't use
	// at all must not fail.
	Count(id ObjectID) (int, error)

	// GetObjects returns every object of kind id filed under token, in
	// insertion order. An empty, non-nil slice with a nil error means
	// "exists as a kind but nothing under this token."
	GetObjects(id ObjectID, token Token) ([]Object, error)

	// AddObject files one object of kind id under token.
	AddObject(id ObjectID, token Token, obj Object) error

	// AddObjects files a batch of objects of kind id, all under token,
	// in the order given.
	AddObjects(id ObjectID, token Token, objs []Object) error
}

// InMemory is a slice-backed, map-keyed Repository: the reference
// implementation used by this module's own tests and by cmd/acpiview's
// gen subcommand, standing in for EDK2's ConfigurationManagerDxe driver
// (which holds the real platform repository at firmware build time and
// has no Go counterpart in this pack).
type InMemory struct {
	objects map[ObjectID]map[Token][]Object
}

// NewInMemory constructs an empty in-memory repository.
func NewInMemory() *InMemory {
	return &InMemory{objects: make(map[ObjectID]map[Token][]Object)}
}

func (r *InMemory) Count(id ObjectID) (int, error) {
	total := 0
	for _, byToken := range r.objects[id] {
		total += len(byToken)
	}

	return total, nil
}

func (r *InMemory) GetObjects(id ObjectID, token Token) ([]Object, error) {
	return r.objects[id][token], nil
}

func (r *InMemory) AddObject(id ObjectID, token Token, obj Object) error {
	return r.AddObjects(id, token, []Object{obj})
}

func (r *InMemory) AddObjects(id ObjectID, token Token, objs []Object) error {
	if r.objects[id] == nil {
		r.objects[id] = make(map[Token][]Object)
	}

	r.objects[id][token] = append(r.objects[id][token], objs...)

	return nil
}
