package domain

// ChangeKind classifies a scanned file against the change-detection ledger.
type ChangeKind int

const (
	// ChangeUnchanged means the stored hash matches the current hash.
	ChangeUnchanged ChangeKind = iota

	// ChangeNew means the file has no ledger entry.
	ChangeNew

	// ChangeUpdated means the file has a ledger entry with a different hash.
	ChangeUpdated
)

// String returns the lowercase name of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeNew:
		return "new"
	case ChangeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// ClassifyChange decides how a file should be treated based on its current
// content hash and the ledger entry for its path. It is a pure function:
// ledger mutation happens only after the corresponding store operation
// succeeds, so the ledger never claims a hash for content that is not
// actually represented in the store.
func ClassifyChange(storedHash string, found bool, currentHash string) ChangeKind {
	if !found {
		return ChangeNew
	}
	if storedHash != currentHash {
		return ChangeUpdated
	}
	return ChangeUnchanged
}
