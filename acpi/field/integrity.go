package field

// AssertMemberIntegrity reports whether a member of byteLength bytes
// located at offset within buf overruns buf. It returns true (an overrun)
// when the member is out of bounds or byteLength is zero, and false when
// the member lies entirely inside buf.
// Grounded on AcpiViewLog.c's MemberIntegrityInternal, which the EDK2
// inspector's per-table dispatchers invoke via the AssertMemberIntegrity
// macro before trusting a captured type/length pair (spec §4.2 step 4c).
func AssertMemberIntegrity(offset, byteLength int, buf []byte) bool {
	if byteLength == 0 {
		return true
	}

	if offset < 0 || offset > len(buf) {
		return true
	}

	end := offset + byteLength
	if end < offset {
		// overflow
		return true
	}

	return end > len(buf)
}
