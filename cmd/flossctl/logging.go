package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/srg/flossctl/pkg/config"
)

// configureLogger creates the session logger from the resolved config.
// The --log-level flag takes precedence over the config file value.
// Returns a configured logger or error if the log-level is invalid.
func configureLogger(cmd *cobra.Command, cfg *config.Config) (*logrus.Logger, error) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	if logLevelStr != "" {
		if _, err := logrus.ParseLevel(logLevelStr); err != nil {
			return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevelStr)
		}
		cfg.LogLevel = logLevelStr
	}

	return cfg.NewLogger(), nil
}
