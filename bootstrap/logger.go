package bootstrap

import (
	"fmt"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/basexlabs/basex-oracle/protocol/common/logging"
)

const (
	LogLevelEnv  = "LOG_LEVEL"
	LogFormatEnv = "LOG_FORMAT"
)

// NewLogger builds the process logger. format "json" selects JSON lines, anything else the console encoder.
func NewLogger(name, level, format string) (logger.Logger, error) {
	cfg := logging.DevelopmentConfig(logging.ParseLevel(level))
	if format == "json" {
		cfg = logging.JSONConfig(logging.ParseLevel(level))
	}
	lggr, err := logger.NewWith(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger.Named(lggr, name), nil
}
