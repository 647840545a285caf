package store

// Run is one ledger row.
type Run struct {
	// ID is assigned by Record when empty.
	ID string `json:"id"`

	// Seq is the logical position in the ledger, assigned by Record.
	Seq int64 `json:"seq"`

	Script      string `json:"script"`
	Fingerprint string `json:"fingerprint"`

	// Status is PASSED or FAILED.
	Status  string `json:"status"`
	Outcome string `json:"outcome"`

	// Target is the kind of render target compared, if any.
	Target    string  `json:"target,omitempty"`
	Threshold float64 `json:"threshold"`

	// ImageError is set when a comparison ran.
	ImageError *float64 `json:"image_error,omitempty"`

	Artifacts []string `json:"artifacts"`
	Message   string   `json:"message,omitempty"`
}

// Filter narrows List.
type Filter struct {
	// Script matches the script path exactly. Empty matches all.
	Script string

	// Fingerprint matches exactly. Empty matches all.
	Fingerprint string

	// Limit keeps only the most recent rows. Zero means no limit.
	Limit int
}
