package ports

import "time"

// BuildRecord describes one successful grammar provision.
type BuildRecord struct {
	Language   string    `json:"language"`
	Artifact   string    `json:"artifact"`
	RepoURL    string    `json:"repo_url"`
	ABIVersion int       `json:"abi_version"`
	BuiltAt    time.Time `json:"built_at"`
}

// Ledger records grammar builds so `prism grammar list` can show when and
// from where each cached artifact was produced. Purely informational: the
// pipeline never consults it to decide whether an artifact exists (the
// filesystem probe is authoritative).
type Ledger interface {
	// RecordBuild persists a build record, overwriting any prior record
	// for the same language.
	RecordBuild(rec BuildRecord) error

	// LookupBuild returns the record for a language, or nil, nil when the
	// language has never been provisioned.
	LookupBuild(language string) (*BuildRecord, error)

	// Close releases the underlying store.
	Close() error
}
