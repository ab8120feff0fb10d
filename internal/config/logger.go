package config

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger 依 log.level / log.format 建立 logger，並設為全域預設。
func NewLogger(w io.Writer, c LogConfig) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: log.level %q", ErrInvalidConfig, c.Level)
	}

	var formatter log.Formatter
	switch c.Format {
	case "", "text":
		formatter = log.TextFormatter
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	default:
		return nil, fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Format)
	}

	logger := log.NewWithOptions(w, log.Options{
		Level:           level,
		Formatter:       formatter,
		ReportTimestamp: true,
	})
	log.SetDefault(logger)
	return logger, nil
}
