package acpi

import (
	"bytes"
	"encoding/binary"
)

// DSDT and SSDT carry an AML definition block as their body. This engine's
// Non-goals explicitly exclude executing (or assembling) AML bytecode, so
// both tables are modeled as a Header plus an opaque payload the inspector
// never decodes -- it reports the payload's length and nothing more,
// matching spec §6's "DSDT (header-only), SSDT (header-only)".
type DSDT struct {
	Header
	AMLBytes []byte
}

func NewDSDT(oemid, oemtableid string, aml []byte) DSDT {
	h := NewHeader(SigDSDT, uint32(HeaderSize+len(aml)), 6, oemid, oemtableid)

	return DSDT{Header: h, AMLBytes: aml}
}

func (d *DSDT) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, d.Header); err != nil {
		return nil, err
	}

	if _, err := buf.Write(d.AMLBytes); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (d *DSDT) Checksum() error {
	d.Header.Checksum = 0

	data, err := d.ToBytes()
	if err != nil {
		return err
	}

	d.Header.Checksum = ComputeChecksum(data, 9)

	return nil
}

// SSDT has the identical wire shape to DSDT (ACPI 6.3 §5.2.11.2); it is a
// distinct Go type only so callers cannot pass one where the other is
// meant.
type SSDT struct {
	Header
	AMLBytes []byte
}

func NewSSDT(oemid, oemtableid string, aml []byte) SSDT {
	h := NewHeader(SigSSDT, uint32(HeaderSize+len(aml)), 2, oemid, oemtableid)

	return SSDT{Header: h, AMLBytes: aml}
}

func (s *SSDT) ToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, s.Header); err != nil {
		return nil, err
	}

	if _, err := buf.Write(s.AMLBytes); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (s *SSDT) Checksum() error {
	s.Header.Checksum = 0

	data, err := s.ToBytes()
	if err != nil {
		return err
	}

	s.Header.Checksum = ComputeChecksum(data, 9)

	return nil
}
