// Package models defines the core data structures exchanged between
// the gateway, its backend services, and its clients.
package models

// DeviceFlowHandle holds the state handed to a user starting the GitHub
// device authorization flow. It is consumed exactly once by the polling
// loop and has no further lifecycle after a terminal outcome.
type DeviceFlowHandle struct {
	// VerificationURI is the GitHub page where the user enters UserCode.
	VerificationURI string `json:"verificationUri"`
	// UserCode is the short code the user types on the verification page.
	UserCode string `json:"userCode"`
	// DeviceCode identifies this flow in subsequent poll calls.
	DeviceCode string `json:"deviceCode"`
	// ExpiresIn is the lifetime of the device code in seconds.
	ExpiresIn int `json:"expiresIn"`
	// Interval is the minimum number of seconds between poll calls.
	Interval int `json:"interval"`
}

// SecretVersion is one immutable entry in a repository's version ledger.
// Versions are assigned by the secrets backend in upload order and are
// monotonically increasing per tag.
type SecretVersion struct {
	// Version is the positive integer assigned by the secrets backend.
	Version int `json:"version"`
	// Tag is the caller-chosen label partitioning the version sequence.
	Tag string `json:"tag"`
	// Checksum is the backend-computed checksum of the uploaded content.
	Checksum string `json:"checksum"`
	// UploadedBy is the GitHub login recorded at upload time.
	UploadedBy string `json:"uploadedBy"`
	// CreatedAt is the RFC 3339 upload timestamp.
	CreatedAt string `json:"createdAt"`
}

// Repo is a GitHub repository as seen through the secrets backend's
// proxy call, augmented by the gateway with the HasSecrets annotation.
// HasSecrets is recomputed per request and never persisted.
type Repo struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	FullName       string `json:"fullName"`
	HTMLURL        string `json:"htmlUrl"`
	Description    string `json:"description"`
	Private        bool   `json:"private"`
	OwnerLogin     string `json:"ownerLogin"`
	OwnerAvatarURL string `json:"ownerAvatarUrl"`
	// HasSecrets reports whether the secrets backend holds at least one
	// stored version for this repository.
	HasSecrets bool `json:"hasSecrets"`
}

// RepositoryWithVersions is an entry of the secrets backend's own index:
// a repository that has at least one stored version, with its version list.
type RepositoryWithVersions struct {
	ID          int64           `json:"id"`
	OwnerLogin  string          `json:"ownerLogin"`
	RepoName    string          `json:"repoName"`
	RepoID      int64           `json:"repoId"`
	FullName    string          `json:"fullName"`
	HTMLURL     string          `json:"htmlUrl"`
	Description string          `json:"description"`
	IsPrivate   bool            `json:"isPrivate"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	Versions    []SecretVersion `json:"versions"`
}
