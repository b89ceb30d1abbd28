package donation

// State describes the persistence the donation engine needs from the
// surrounding ledger implementation. Reads return deep copies; commits apply
// every mutation of one public operation atomically.
type State interface {
	// Donor returns the stored record for the address, or ok=false when the
	// donor has never donated.
	Donor(addr [20]byte) (*DonorRecord, bool, error)
	// Receipt returns the receipt stored under the sequence id.
	Receipt(seq uint64) (*Receipt, bool, error)
	// ReceiptsByDonor lists receipts for a donor in submission order,
	// starting at offset, returning at most limit entries.
	ReceiptsByDonor(addr [20]byte, offset uint64, limit int) ([]*Receipt, error)
	// Global returns the singleton aggregate state, normalized.
	Global() (*GlobalState, error)
	// CommitDonation persists the updated donor record, the new receipt and
	// the updated global state in a single atomic write.
	CommitDonation(addr [20]byte, rec *DonorRecord, receipt *Receipt, global *GlobalState) error
	// CommitClaim persists the donor record with the claimed latch set.
	CommitClaim(addr [20]byte, rec *DonorRecord) error
	// CommitGlobal persists the global state alone (admin operations).
	CommitGlobal(global *GlobalState) error
}
