// Package acpi holds the primitives shared by the inspector and generator
// cores: the common table header, the table signature catalog, checksum
// arithmetic and the architecture-compatibility bitmask. Nothing here
// depends on either core; both import it.
package acpi

// Signature is a 4-character ACPI table signature, e.g. "APIC" for MADT.
type Signature string

// ToBytes renders the signature as the 4 raw bytes that appear at offset 0
// of every ACPI table header.
func (s Signature) ToBytes() [4]byte {
	var ret [4]byte

	for i := 0; i < 4; i++ {
		ret[i] = s[i]
	}

	return ret
}

const (
	SigAEST Signature = "AEST"
	SigAPIC Signature = "APIC" // MADT
	SigBDAT Signature = "BDAT"
	SigBERT Signature = "BERT"
	SigBGRT Signature = "BGRT"
	SigBOOT Signature = "BOOT"
	SigCDIT Signature = "CDIT"
	SigCEDT Signature = "CEDT"
	SigCPEP Signature = "CPEP"
	SigCRAT Signature = "CRAT"
	SigCSRT Signature = "CSRT"
	SigDBGP Signature = "DBGP"
	SigDBG2 Signature = "DBG2"
	SigDMAR Signature = "DMAR"
	SigDRTM Signature = "DRTM"
	SigDSDT Signature = "DSDT"
	SigECDT Signature = "ECDT"
	SigETDT Signature = "ETDT"
	SigEINJ Signature = "EINJ"
	SigERST Signature = "ERST"
	SigFACP Signature = "FACP" // FADT
	SigFACS Signature = "FACS"
	SigFPDT Signature = "FPDT"
	SigGTDT Signature = "GTDT"
	SigHPET Signature = "HPET"
	SigHEST Signature = "HEST"
	SigIBFT Signature = "IBFT"
	SigIORT Signature = "IORT"
	SigIVRS Signature = "IVRS"
	SigLPIT Signature = "LPIT"
	SigMCFG Signature = "MCFG"
	SigMCHI Signature = "MCHI"
	SigMPAM Signature = "MPAM"
	SigMSCT Signature = "MSCT"
	SigMSDM Signature = "MSDM"
	SigMPST Signature = "MPST"
	SigNFIT Signature = "NFIT"
	SigOEMx Signature = "OEMx"
	SigPCCT Signature = "PCCT"
	SigPHAT Signature = "PHAT"
	SigPMTT Signature = "PMTT"
	SigPPTT Signature = "PPTT"
	SigPRMT Signature = "PRMT"
	SigPSDT Signature = "PSDT"
	SigRASF Signature = "RASF"
	SigRGRT Signature = "RGRT"
	SigRSDT Signature = "RSDT"
	SigSBST Signature = "SBST"
	SigSDEI Signature = "SDEI"
	SigSDEV Signature = "SDEV"
	SigSLIC Signature = "SLIC"
	SigSLIT Signature = "SLIT"
	SigSPCR Signature = "SPCR"
	SigSPMI Signature = "SPMI"
	SigSRAT Signature = "SRAT"
	SigSSDT Signature = "SSDT"
	SigSTAO Signature = "STAO"
	SigSVKL Signature = "SVKL"
	SigTCPA Signature = "TCPA"
	SigTPM2 Signature = "TPM2"
	SigUEFI Signature = "UEFI"
	SigVIOT Signature = "VIOT"
	SigWAET Signature = "WAET"
	SigWDAT Signature = "WDAT"
	SigWDRT Signature = "WDRT"
	SigWDBT Signature = "WDBT"
	SigWSMT Signature = "WSMT"
	SigXENV Signature = "XENV"
	SigXSDT Signature = "XSDT"

	// SigRSDPAnchor is the 8-byte anchor string used to locate the RSDP in
	// the low 1MB of physical memory. It is not a 4-byte Signature, so it
	// is kept as a separate constant rather than shoehorned into one.
	SigRSDPAnchor = "RSD PTR "
)
