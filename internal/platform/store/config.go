package store

import (
	"time"

	"genscan/internal/platform/logger"
)

// Config selects and configures the backends Open connects
type Config struct {
	// Log is tagged component=store; the zero value discards
	Log logger.Logger

	// AppName is reported as application_name on pg sessions
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and statement logging
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32

	// LogSQL logs every statement; SlowQueryMs > 0 warns on slow statements regardless
	LogSQL      bool
	SlowQueryMs int

	// ConnectRetries bounds the boot ping loop, default 20
	ConnectRetries int
	// PingTimeout bounds each boot ping, default 3s
	PingTimeout time.Duration
}

// CHConfig configures the clickhouse scan mirror
type CHConfig struct {
	Enabled bool
	URL     string

	// ClientName and ClientTag identify the process in system.query_log
	ClientName string
	ClientTag  string
}
