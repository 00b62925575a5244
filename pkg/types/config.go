package types

import "errors"

// Config holds the deployment layout and runtime parameters loaded from
// config.yaml. LocalRoot holds the per-user local stores; SharedRoot holds
// the master store alongside the sync inbox and archive directories.
type Config struct {
	LocalRoot  string `json:"local_root" mapstructure:"local_root"`
	SharedRoot string `json:"shared_root" mapstructure:"shared_root"`

	LogLevel  string `json:"log_level" mapstructure:"log_level"`
	LogFormat string `json:"log_format" mapstructure:"log_format"`

	// Base URL of the read-only external reporting API.
	ReportingBaseURL string `json:"reporting_base_url" mapstructure:"reporting_base_url"`

	// Listen address for the REST backend (vztrack serve).
	ListenAddr string `json:"listen_addr" mapstructure:"listen_addr"`
}

// Config validation errors.
var (
	ErrLocalRootEmpty  = errors.New("local_root must not be empty")
	ErrSharedRootEmpty = errors.New("shared_root must not be empty")
	ErrLogLevelUnknown = errors.New("unknown log_level")
)

// knownLogLevels lists the levels Validate accepts. Empty means info.
var knownLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.LocalRoot == "" {
		return ErrLocalRootEmpty
	}
	if c.SharedRoot == "" {
		return ErrSharedRootEmpty
	}
	if !knownLogLevels[c.LogLevel] {
		return ErrLogLevelUnknown
	}
	return nil
}
