package bootstrap

import (
	"github.com/resiflow/manifest/common/config"
	"github.com/resiflow/manifest/common/db"
	"github.com/resiflow/manifest/common/logger"
)

// Option configures bootstrap behavior
type Option func(*options)

type options struct {
	customConfig *config.Config
	customLogger *logger.Logger
	skipDB       bool
	dbInitHook   func(*db.DB) error
}

func defaultOptions() *options {
	return &options{}
}

// WithConfig overrides the environment-loaded configuration
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.customConfig = cfg
	}
}

// WithLogger overrides the default logger
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.customLogger = log
	}
}

// SkipDB skips database initialization
func SkipDB() Option {
	return func(o *options) {
		o.skipDB = true
	}
}

// WithDBInit registers a hook run right after the database connects,
// used to apply the schema
func WithDBInit(hook func(*db.DB) error) Option {
	return func(o *options) {
		o.dbInitHook = hook
	}
}
