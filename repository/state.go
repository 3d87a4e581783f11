package repository

import (
	"net/url"
	"time"
)

// State is what the agent knows about one tenant's artifact repository.
type State struct {
	TenantID      int       `json:"tenant_id"`
	RepoURL       string    `json:"repo_url"`
	Username      string    `json:"-"`
	Password      string    `json:"-"`
	LocalPath     string    `json:"local_path"`
	CommitEnabled bool      `json:"commit_enabled"`
	AutoCommit    bool      `json:"auto_commit"`
	AutoCheckout  bool      `json:"auto_checkout"`
	LastSync      time.Time `json:"last_sync,omitempty"`
	LastCommitID  string    `json:"last_commit_id,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Registration announces where a tenant's artifacts live.
type Registration struct {
	TenantID      int
	RepoURL       string
	Username      string
	Password      string
	CommitEnabled bool
}

func (s State) credentials() Credentials {
	return Credentials{Username: s.Username, Password: s.Password}
}

// redactedURL is safe to log.
func (s State) redactedURL() string {
	u, err := url.Parse(s.RepoURL)
	if err != nil {
		return s.RepoURL
	}

	return u.Redacted()
}
