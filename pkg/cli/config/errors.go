package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound     = goerr.New("configuration file not found")
	ErrInvalidConfig      = goerr.New("invalid configuration")
	ErrInvalidKind        = goerr.New("invalid work item kind")
	ErrDuplicateProfile   = goerr.New("duplicate profile kind")
	ErrInvalidLookahead   = goerr.New("lookahead must be positive")
	ErrInvalidCategory    = goerr.New("invalid category")
	ErrInvalidBackend     = goerr.New("invalid repository backend")
	ErrMissingProjectID   = goerr.New("firestore-project-id is required when using firestore backend")
	ErrMissingDSN         = goerr.New("postgres-dsn is required when using postgres backend")
	ErrMissingSlackTarget = goerr.New("slack-channel is required when slack-bot-token is set")
	ErrInvalidLogLevel    = goerr.New("invalid log level")
	ErrInvalidLogFormat   = goerr.New("invalid log format")
	ErrInvalidTimezone    = goerr.New("invalid timezone")
)

// Context keys for error values
const (
	ConfigPathKey   = "config_path"
	KindKey         = "kind"
	ProfileIndexKey = "profile_index"
	CategoryKey     = "category"
	BackendKey      = "backend"
)
