package generate

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tpilar/acpiview/acpi"
	"github.com/tpilar/acpiview/acpi/repo"
)

// IORT Node type tags this generator emits, mirrored from
// acpi/inspect/iort.go.
const (
	iortITSGroup       = 0
	iortNamedComponent = 1
	iortRootComplex    = 2
	iortSMMUv1v2       = 3
	iortSMMUv3         = 4
	iortPMCG           = 5
)

const (
	iortHeaderSize    = 48 // common header(36) + node count(4) + node array offset(4) + reserved(4).
	iortNodeHeaderSize = 16
	idMappingWireSize = 20
	interruptWireSize = 8
)

// IdMapping is the repo.Object encoding for one ID Mapping array entry
// filed under repo.ObjIdMappingArray, keyed by its owning node's
// IdMappingToken. OutputReferenceToken is resolved to a final node offset
// through the NodeIndexer during emission, standing in for
// IortGenerator.c's GetNodeOffsetReferencedByToken call inside
// AddIdMappingArray.
type IdMapping struct {
	InputBase            uint32
	NumberOfIDs          uint32
	OutputBase           uint32
	OutputReferenceToken repo.Token
	Flags                uint32
}

func (m IdMapping) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, m)

	return buf.Bytes()
}

func decodeIdMapping(data []byte) (IdMapping, error) {
	var m IdMapping
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &m); err != nil {
		return IdMapping{}, fmt.Errorf("%w: malformed IdMapping object: %v", ErrInvalidParameter, err)
	}

	return m, nil
}

// InterruptEntry is the repo.Object encoding for one Context Interrupt or
// PMU Interrupt array entry filed under repo.ObjSmmuInterruptArray.
type InterruptEntry struct {
	InterruptGSIV uint32
	Flags         uint32
}

func (e InterruptEntry) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, e)

	return buf.Bytes()
}

func decodeInterruptEntry(data []byte) (InterruptEntry, error) {
	var e InterruptEntry
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &e); err != nil {
		return InterruptEntry{}, fmt.Errorf("%w: malformed InterruptEntry object: %v", ErrInvalidParameter, err)
	}

	return e, nil
}

func fetchIdMappings(r repo.Repository, token repo.Token) ([]IdMapping, error) {
	objs, err := r.GetObjects(repo.ObjIdMappingArray, token)
	if err != nil {
		return nil, fmt.Errorf("fetching ID mapping array for token %d: %w", token, err)
	}

	out := make([]IdMapping, 0, len(objs))

	for _, o := range objs {
		m, err := decodeIdMapping(o.Data)
		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	return out, nil
}

func fetchInterrupts(r repo.Repository, token repo.Token) ([]InterruptEntry, error) {
	objs, err := r.GetObjects(repo.ObjSmmuInterruptArray, token)
	if err != nil {
		return nil, fmt.Errorf("fetching interrupt array for token %d: %w", token, err)
	}

	out := make([]InterruptEntry, 0, len(objs))

	for _, o := range objs {
		e, err := decodeInterruptEntry(o.Data)
		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	return out, nil
}

// writeIdMappingArray resolves every entry's OutputReferenceToken through
// idx and writes the packed 20-byte records at node[offset:].
func writeIdMappingArray(node []byte, offset int, mappings []IdMapping, idx *NodeIndexer) error {
	for i, m := range mappings {
		outRef, err := idx.Resolve(m.OutputReferenceToken)
		if err != nil {
			return err
		}

		rec := node[offset+i*idMappingWireSize : offset+(i+1)*idMappingWireSize]
		binary.LittleEndian.PutUint32(rec[0:], m.InputBase)
		binary.LittleEndian.PutUint32(rec[4:], m.NumberOfIDs)
		binary.LittleEndian.PutUint32(rec[8:], m.OutputBase)
		binary.LittleEndian.PutUint32(rec[12:], outRef)
		binary.LittleEndian.PutUint32(rec[16:], m.Flags)
	}

	return nil
}

func writeInterruptArray(node []byte, offset int, entries []InterruptEntry) {
	for i, e := range entries {
		rec := node[offset+i*interruptWireSize : offset+(i+1)*interruptWireSize]
		binary.LittleEndian.PutUint32(rec[0:], e.InterruptGSIV)
		binary.LittleEndian.PutUint32(rec[4:], e.Flags)
	}
}

func writeNodeHeader(node []byte, typ uint8, length int, idMappingCount int, idMappingOffset int) {
	node[0] = typ
	binary.LittleEndian.PutUint16(node[1:], uint16(length))
	node[3] = 0
	binary.LittleEndian.PutUint32(node[4:], 0)
	binary.LittleEndian.PutUint32(node[8:], uint32(idMappingCount))
	binary.LittleEndian.PutUint32(node[12:], uint32(idMappingOffset))
}

// ItsGroupInfo is the repo.Object encoding for one repo.ObjItsGroupNode
// object, grounded on IortGenerator.c's CM_ARM_ITS_GROUP_NODE. The
// object's own repo.Object.Token is the identity other nodes reference
// (e.g. a Root Complex's ID Mapping pointing back at this ITS Group).
type ItsGroupInfo struct {
	ItsIdentifierArrayToken repo.Token
}

func (i ItsGroupInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, i)

	return buf.Bytes()
}

func decodeItsGroupInfo(data []byte) (ItsGroupInfo, error) {
	var i ItsGroupInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &i); err != nil {
		return ItsGroupInfo{}, fmt.Errorf("%w: malformed ItsGroupInfo object: %v", ErrInvalidParameter, err)
	}

	return i, nil
}

func fetchItsIdentifiers(r repo.Repository, token repo.Token) ([]uint32, error) {
	objs, err := r.GetObjects(repo.ObjGicItsIdentifierArray, token)
	if err != nil {
		return nil, fmt.Errorf("fetching GIC ITS identifier array for token %d: %w", token, err)
	}

	out := make([]uint32, 0, len(objs))

	for _, o := range objs {
		if len(o.Data) < 4 {
			return nil, fmt.Errorf("%w: malformed GIC ITS identifier object", ErrInvalidParameter)
		}

		out = append(out, binary.LittleEndian.Uint32(o.Data))
	}

	return out, nil
}

func sizeItsGroupNode(n int) int {
	return iortNodeHeaderSize + 4 + 4*n
}

func writeItsGroupNode(node []byte, ids []uint32) {
	writeNodeHeader(node, iortITSGroup, len(node), 0, 0)
	binary.LittleEndian.PutUint32(node[16:], uint32(len(ids)))

	for i, id := range ids {
		binary.LittleEndian.PutUint32(node[20+i*4:], id)
	}
}

// RootComplexInfo is the repo.Object encoding for one
// repo.ObjRootComplexNode object, grounded on
// IortGenerator.c's CM_ARM_ROOT_COMPLEX_NODE / AddRootComplexNodes.
type RootComplexInfo struct {
	MemoryAccessProperties uint64
	AtsAttribute           uint32
	PciSegmentNumber       uint32
	MemoryAccessSizeLimit  uint8
	Reserved               [3]uint8
	IdMappingToken         repo.Token
}

func (r RootComplexInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, r)

	return buf.Bytes()
}

func decodeRootComplexInfo(data []byte) (RootComplexInfo, error) {
	var r RootComplexInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &r); err != nil {
		return RootComplexInfo{}, fmt.Errorf("%w: malformed RootComplexInfo object: %v", ErrInvalidParameter, err)
	}

	return r, nil
}

const rootComplexBodySize = 20

func sizeRootComplexNode(mappingCount int) int {
	return iortNodeHeaderSize + rootComplexBodySize + idMappingWireSize*mappingCount
}

func writeRootComplexNode(node []byte, info RootComplexInfo, mappings []IdMapping, idx *NodeIndexer) error {
	writeNodeHeader(node, iortRootComplex, len(node), len(mappings), iortNodeHeaderSize+rootComplexBodySize)
	binary.LittleEndian.PutUint64(node[16:], info.MemoryAccessProperties)
	binary.LittleEndian.PutUint32(node[24:], info.AtsAttribute)
	binary.LittleEndian.PutUint32(node[28:], info.PciSegmentNumber)
	node[32] = info.MemoryAccessSizeLimit

	return writeIdMappingArray(node, iortNodeHeaderSize+rootComplexBodySize, mappings, idx)
}

// SmmuV1V2Info is the repo.Object encoding for one
// repo.ObjSmmuV1V2Node object, grounded on IortGenerator.c's
// CM_ARM_SMMUV1_SMMUV2_NODE / AddSmmuV1V2Nodes.
type SmmuV1V2Info struct {
	BaseAddress                 uint64
	Span                        uint64
	Model                       uint32
	Flags                       uint32
	ContextInterruptArrayToken  repo.Token
	PmuInterruptArrayToken      repo.Token
	SMMUNSgIrpt                 uint32
	SMMUNSgIrptFlags            uint32
	SMMUNSgCfgIrpt              uint32
	SMMUNSgCfgIrptFlags         uint32
	IdMappingToken              repo.Token
}

func (s SmmuV1V2Info) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, s)

	return buf.Bytes()
}

func decodeSmmuV1V2Info(data []byte) (SmmuV1V2Info, error) {
	var s SmmuV1V2Info
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &s); err != nil {
		return SmmuV1V2Info{}, fmt.Errorf("%w: malformed SmmuV1V2Info object: %v", ErrInvalidParameter, err)
	}

	return s, nil
}

const smmuV1V2BodySize = 60

func sizeSmmuV1V2Node(ctxCount, pmuCount, mappingCount int) int {
	return iortNodeHeaderSize + smmuV1V2BodySize + interruptWireSize*ctxCount + interruptWireSize*pmuCount + idMappingWireSize*mappingCount
}

// writeSmmuV1V2Node, grounded on DumpIortNodeSmmuV1V2's own byte order:
// the Context Interrupts and PMU Interrupts arrays precede the ID
// Mapping array, matching both the inspector's read order and
// AddSmmuV1V2Nodes's write order.
func writeSmmuV1V2Node(node []byte, info SmmuV1V2Info, ctx, pmu []InterruptEntry, mappings []IdMapping, idx *NodeIndexer) error {
	ctxOffset := iortNodeHeaderSize + smmuV1V2BodySize
	pmuOffset := ctxOffset + interruptWireSize*len(ctx)
	mapOffset := pmuOffset + interruptWireSize*len(pmu)

	writeNodeHeader(node, iortSMMUv1v2, len(node), len(mappings), mapOffset)
	binary.LittleEndian.PutUint64(node[16:], info.BaseAddress)
	binary.LittleEndian.PutUint64(node[24:], info.Span)
	binary.LittleEndian.PutUint32(node[32:], info.Model)
	binary.LittleEndian.PutUint32(node[36:], info.Flags)
	binary.LittleEndian.PutUint32(node[40:], 0) // Reference to Global Interrupt Array: unused by this engine.
	binary.LittleEndian.PutUint32(node[44:], uint32(len(ctx)))
	binary.LittleEndian.PutUint32(node[48:], uint32(ctxOffset))
	binary.LittleEndian.PutUint32(node[52:], uint32(len(pmu)))
	binary.LittleEndian.PutUint32(node[56:], uint32(pmuOffset))
	binary.LittleEndian.PutUint32(node[60:], info.SMMUNSgIrpt)
	binary.LittleEndian.PutUint32(node[64:], info.SMMUNSgIrptFlags)
	binary.LittleEndian.PutUint32(node[68:], info.SMMUNSgCfgIrpt)
	binary.LittleEndian.PutUint32(node[72:], info.SMMUNSgCfgIrptFlags)

	writeInterruptArray(node, ctxOffset, ctx)
	writeInterruptArray(node, pmuOffset, pmu)

	return writeIdMappingArray(node, mapOffset, mappings, idx)
}

// SmmuV3Info is the repo.Object encoding for one repo.ObjSmmuV3Node
// object, grounded on IortGenerator.c's CM_ARM_SMMUV3_NODE /
// AddSmmuV3Nodes.
type SmmuV3Info struct {
	BaseAddress            uint64
	Flags                  uint32
	Reserved               uint32
	VatosAddress           uint64
	Model                  uint32
	Event                  uint32
	PRI                    uint32
	GERR                   uint32
	Sync                   uint32
	ProximityDomain        uint32
	DeviceIDMappingIndex   uint32
	IdMappingToken         repo.Token
}

func (s SmmuV3Info) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, s)

	return buf.Bytes()
}

func decodeSmmuV3Info(data []byte) (SmmuV3Info, error) {
	var s SmmuV3Info
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &s); err != nil {
		return SmmuV3Info{}, fmt.Errorf("%w: malformed SmmuV3Info object: %v", ErrInvalidParameter, err)
	}

	return s, nil
}

const smmuV3BodySize = 52

func sizeSmmuV3Node(mappingCount int) int {
	return iortNodeHeaderSize + smmuV3BodySize + idMappingWireSize*mappingCount
}

func writeSmmuV3Node(node []byte, info SmmuV3Info, mappings []IdMapping, idx *NodeIndexer) error {
	mapOffset := iortNodeHeaderSize + smmuV3BodySize

	writeNodeHeader(node, iortSMMUv3, len(node), len(mappings), mapOffset)
	binary.LittleEndian.PutUint64(node[16:], info.BaseAddress)
	binary.LittleEndian.PutUint32(node[24:], info.Flags)
	binary.LittleEndian.PutUint64(node[32:], info.VatosAddress)
	binary.LittleEndian.PutUint32(node[40:], info.Model)
	binary.LittleEndian.PutUint32(node[44:], info.Event)
	binary.LittleEndian.PutUint32(node[48:], info.PRI)
	binary.LittleEndian.PutUint32(node[52:], info.GERR)
	binary.LittleEndian.PutUint32(node[56:], info.Sync)
	binary.LittleEndian.PutUint32(node[60:], info.ProximityDomain)
	binary.LittleEndian.PutUint32(node[64:], info.DeviceIDMappingIndex)

	return writeIdMappingArray(node, mapOffset, mappings, idx)
}

// PmcgInfo is the repo.Object encoding for one repo.ObjPmcgNode object,
// grounded on IortGenerator.c's CM_ARM_PMCG_NODE / AddPmcgNodes. A PMCG
// node has at most one ID mapping, per ValidatePmcgIdMappingCount.
type PmcgInfo struct {
	Page0BaseAddress     uint64
	OverflowInterruptGSIV uint32
	NodeReferenceToken   repo.Token
	Page1BaseAddress     uint64
	IdMappingToken       repo.Token
}

func (p PmcgInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, p)

	return buf.Bytes()
}

func decodePmcgInfo(data []byte) (PmcgInfo, error) {
	var p PmcgInfo
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &p); err != nil {
		return PmcgInfo{}, fmt.Errorf("%w: malformed PmcgInfo object: %v", ErrInvalidParameter, err)
	}

	return p, nil
}

const pmcgBodySize = 24

func sizePmcgNode(mappingCount int) int {
	return iortNodeHeaderSize + pmcgBodySize + idMappingWireSize*mappingCount
}

func writePmcgNode(node []byte, info PmcgInfo, mappings []IdMapping, idx *NodeIndexer) error {
	if len(mappings) > 1 {
		return fmt.Errorf("%w: PMCG node must have at most one ID mapping, got %d", ErrInvalidParameter, len(mappings))
	}

	mapOffset := iortNodeHeaderSize + pmcgBodySize

	writeNodeHeader(node, iortPMCG, len(node), len(mappings), mapOffset)
	binary.LittleEndian.PutUint64(node[16:], info.Page0BaseAddress)
	binary.LittleEndian.PutUint32(node[24:], info.OverflowInterruptGSIV)

	nodeRef, err := idx.Resolve(info.NodeReferenceToken)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint32(node[28:], nodeRef)
	binary.LittleEndian.PutUint64(node[32:], info.Page1BaseAddress)

	return writeIdMappingArray(node, mapOffset, mappings, idx)
}

// NamedComponentInfo is the repo.Object encoding for one
// repo.ObjNamedComponentNode object, grounded on IortGenerator.c's
// CM_ARM_NAMED_COMPONENT_NODE / AddNamedComponentNodes. Its trailing
// DeviceObjectName is variable length, so this type is encoded/decoded
// by hand rather than through encoding/binary.
type NamedComponentInfo struct {
	NodeFlags                    uint32
	MemoryAccessProperties       uint64
	DeviceMemoryAddressSizeLimit uint8
	IdMappingToken               repo.Token
	DeviceObjectName             string
}

func (n NamedComponentInfo) Encode() []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, n.NodeFlags)
	_ = binary.Write(&buf, binary.LittleEndian, n.MemoryAccessProperties)
	_ = binary.Write(&buf, binary.LittleEndian, n.DeviceMemoryAddressSizeLimit)
	_ = binary.Write(&buf, binary.LittleEndian, n.IdMappingToken)
	buf.WriteString(n.DeviceObjectName)

	return buf.Bytes()
}

const namedComponentFixedSize = 21 // NodeFlags(4) + MemoryAccessProperties(8) + SizeLimit(1) + IdMappingToken(8).

func decodeNamedComponentInfo(data []byte) (NamedComponentInfo, error) {
	if len(data) < namedComponentFixedSize {
		return NamedComponentInfo{}, fmt.Errorf("%w: malformed NamedComponentInfo object", ErrInvalidParameter)
	}

	var n NamedComponentInfo
	n.NodeFlags = binary.LittleEndian.Uint32(data[0:4])
	n.MemoryAccessProperties = binary.LittleEndian.Uint64(data[4:12])
	n.DeviceMemoryAddressSizeLimit = data[12]
	n.IdMappingToken = repo.Token(binary.LittleEndian.Uint64(data[13:21]))
	n.DeviceObjectName = string(data[namedComponentFixedSize:])

	return n, nil
}

const namedComponentBodySize = 13 // NodeFlags(4) + MemoryAccessProperties(8) + SizeLimit(1).

func sizeNamedComponentNode(nameLen, mappingCount int) int {
	return iortNodeHeaderSize + namedComponentBodySize + pad4(nameLen+1) + idMappingWireSize*mappingCount
}

func writeNamedComponentNode(node []byte, info NamedComponentInfo, mappings []IdMapping, idx *NodeIndexer) error {
	nameOffset := iortNodeHeaderSize + namedComponentBodySize
	paddedNameLen := pad4(len(info.DeviceObjectName) + 1)
	mapOffset := nameOffset + paddedNameLen

	writeNodeHeader(node, iortNamedComponent, len(node), len(mappings), mapOffset)
	binary.LittleEndian.PutUint32(node[16:], info.NodeFlags)
	binary.LittleEndian.PutUint64(node[20:], info.MemoryAccessProperties)
	node[28] = info.DeviceMemoryAddressSizeLimit
	copy(node[nameOffset:], info.DeviceObjectName)
	node[nameOffset+len(info.DeviceObjectName)] = 0

	return writeIdMappingArray(node, mapOffset, mappings, idx)
}

// BuildIort assembles a complete IORT table for the ARM profile,
// grounded on IortGenerator.c's BuildIortTable: a sizing pass visits
// every node kind in turn, counting and measuring its objects and
// indexing each one's eventual offset by its repo.Token identity, then
// an emission pass re-visits the same kinds in the same order writing
// real bytes, resolving every cross-node reference (ID mapping output
// references, PMCG node references) through the now-complete
// NodeIndexer. If any object is malformed or a reference cannot be
// resolved, BuildIort returns an error and the partially built region is
// discarded with it (there is nothing further to release: it is owned
// solely by the local slice that goes out of scope).
func BuildIort(r repo.Repository, oemID, oemTableID string) ([]byte, error) {
	itsObjs, err := r.GetObjects(repo.ObjItsGroupNode, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching ITS Group objects: %w", err)
	}

	ncObjs, err := r.GetObjects(repo.ObjNamedComponentNode, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching Named Component objects: %w", err)
	}

	rcObjs, err := r.GetObjects(repo.ObjRootComplexNode, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching Root Complex objects: %w", err)
	}

	smmu12Objs, err := r.GetObjects(repo.ObjSmmuV1V2Node, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching SMMUv1/2 objects: %w", err)
	}

	smmu3Objs, err := r.GetObjects(repo.ObjSmmuV3Node, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching SMMUv3 objects: %w", err)
	}

	pmcgObjs, err := r.GetObjects(repo.ObjPmcgNode, repo.NullToken)
	if err != nil {
		return nil, fmt.Errorf("fetching PMCG objects: %w", err)
	}

	type sizedITSGroup struct {
		obj repo.Object
		ids []uint32
	}

	type sizedNamedComponent struct {
		obj      repo.Object
		info     NamedComponentInfo
		mappings []IdMapping
	}

	type sizedRootComplex struct {
		obj      repo.Object
		info     RootComplexInfo
		mappings []IdMapping
	}

	type sizedSmmuV1V2 struct {
		obj      repo.Object
		info     SmmuV1V2Info
		ctx, pmu []InterruptEntry
		mappings []IdMapping
	}

	type sizedSmmuV3 struct {
		obj      repo.Object
		info     SmmuV3Info
		mappings []IdMapping
	}

	type sizedPmcg struct {
		obj      repo.Object
		info     PmcgInfo
		mappings []IdMapping
	}

	var (
		idx NodeIndexer

		itsNodes []sizedITSGroup
		ncNodes  []sizedNamedComponent
		rcNodes  []sizedRootComplex
		s12Nodes []sizedSmmuV1V2
		s3Nodes  []sizedSmmuV3
		pgNodes  []sizedPmcg

		regionSize = 0
	)

	for _, o := range itsObjs {
		info, err := decodeItsGroupInfo(o.Data)
		if err != nil {
			return nil, err
		}

		ids, err := fetchItsIdentifiers(r, info.ItsIdentifierArrayToken)
		if err != nil {
			return nil, err
		}

		size := sizeItsGroupNode(len(ids))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		itsNodes = append(itsNodes, sizedITSGroup{obj: o, ids: ids})
		regionSize += size
	}

	for _, o := range ncObjs {
		info, err := decodeNamedComponentInfo(o.Data)
		if err != nil {
			return nil, err
		}

		mappings, err := fetchIdMappings(r, info.IdMappingToken)
		if err != nil {
			return nil, err
		}

		size := sizeNamedComponentNode(len(info.DeviceObjectName), len(mappings))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		ncNodes = append(ncNodes, sizedNamedComponent{obj: o, info: info, mappings: mappings})
		regionSize += size
	}

	for _, o := range rcObjs {
		info, err := decodeRootComplexInfo(o.Data)
		if err != nil {
			return nil, err
		}

		mappings, err := fetchIdMappings(r, info.IdMappingToken)
		if err != nil {
			return nil, err
		}

		size := sizeRootComplexNode(len(mappings))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		rcNodes = append(rcNodes, sizedRootComplex{obj: o, info: info, mappings: mappings})
		regionSize += size
	}

	for _, o := range smmu12Objs {
		info, err := decodeSmmuV1V2Info(o.Data)
		if err != nil {
			return nil, err
		}

		ctx, err := fetchInterrupts(r, info.ContextInterruptArrayToken)
		if err != nil {
			return nil, err
		}

		pmu, err := fetchInterrupts(r, info.PmuInterruptArrayToken)
		if err != nil {
			return nil, err
		}

		mappings, err := fetchIdMappings(r, info.IdMappingToken)
		if err != nil {
			return nil, err
		}

		size := sizeSmmuV1V2Node(len(ctx), len(pmu), len(mappings))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		s12Nodes = append(s12Nodes, sizedSmmuV1V2{obj: o, info: info, ctx: ctx, pmu: pmu, mappings: mappings})
		regionSize += size
	}

	for _, o := range smmu3Objs {
		info, err := decodeSmmuV3Info(o.Data)
		if err != nil {
			return nil, err
		}

		mappings, err := fetchIdMappings(r, info.IdMappingToken)
		if err != nil {
			return nil, err
		}

		size := sizeSmmuV3Node(len(mappings))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		s3Nodes = append(s3Nodes, sizedSmmuV3{obj: o, info: info, mappings: mappings})
		regionSize += size
	}

	for _, o := range pmcgObjs {
		info, err := decodePmcgInfo(o.Data)
		if err != nil {
			return nil, err
		}

		mappings, err := fetchIdMappings(r, info.IdMappingToken)
		if err != nil {
			return nil, err
		}

		size := sizePmcgNode(len(mappings))
		idx.Add(o.Token, o, uint32(iortHeaderSize+regionSize))
		pgNodes = append(pgNodes, sizedPmcg{obj: o, info: info, mappings: mappings})
		regionSize += size
	}

	if int64(iortHeaderSize)+int64(regionSize) > 0xFFFFFFFF {
		return nil, fmt.Errorf("%w: IORT table exceeds the 32-bit table-length field", ErrInvalidParameter)
	}

	body := make([]byte, 4+4+4+regionSize) // Number of Nodes, Offset to Array, Reserved, then the node region.
	binary.LittleEndian.PutUint32(body[0:], uint32(len(itsNodes)+len(ncNodes)+len(rcNodes)+len(s12Nodes)+len(s3Nodes)+len(pgNodes)))
	binary.LittleEndian.PutUint32(body[4:], uint32(iortHeaderSize))

	off := 12

	for _, n := range itsNodes {
		size := sizeItsGroupNode(len(n.ids))
		writeItsGroupNode(body[off:off+size], n.ids)
		off += size
	}

	for _, n := range ncNodes {
		size := sizeNamedComponentNode(len(n.info.DeviceObjectName), len(n.mappings))
		if err := writeNamedComponentNode(body[off:off+size], n.info, n.mappings, &idx); err != nil {
			return nil, err
		}

		off += size
	}

	for _, n := range rcNodes {
		size := sizeRootComplexNode(len(n.mappings))
		if err := writeRootComplexNode(body[off:off+size], n.info, n.mappings, &idx); err != nil {
			return nil, err
		}

		off += size
	}

	for _, n := range s12Nodes {
		size := sizeSmmuV1V2Node(len(n.ctx), len(n.pmu), len(n.mappings))
		if err := writeSmmuV1V2Node(body[off:off+size], n.info, n.ctx, n.pmu, n.mappings, &idx); err != nil {
			return nil, err
		}

		off += size
	}

	for _, n := range s3Nodes {
		size := sizeSmmuV3Node(len(n.mappings))
		if err := writeSmmuV3Node(body[off:off+size], n.info, n.mappings, &idx); err != nil {
			return nil, err
		}

		off += size
	}

	for _, n := range pgNodes {
		size := sizePmcgNode(len(n.mappings))
		if err := writePmcgNode(body[off:off+size], n.info, n.mappings, &idx); err != nil {
			return nil, err
		}

		off += size
	}

	return finalizeTable(acpi.SigIORT, 0, oemID, oemTableID, body)
}
