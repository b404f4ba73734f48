package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/srg/flossctl/internal/client"
	"github.com/srg/flossctl/internal/floss"
	"github.com/srg/flossctl/internal/shell"
	"github.com/srg/flossctl/pkg/config"
)

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open the interactive console",
	Long: `Open the interactive console against a running Bluetooth daemon.

The console connects to the daemon over D-Bus, registers the callback
interfaces and reads commands from stdin. Daemon events are printed
between prompts as they arrive; type "help" for the command list.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

var (
	configPath  string
	busOverride string
	hciOverride int32
	noColor     bool
)

func init() {
	shellCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the config file")
	shellCmd.Flags().StringVar(&busOverride, "bus", "", "Bus the daemon lives on (system, session)")
	shellCmd.Flags().Int32Var(&hciOverride, "hci", -1, "Adapter index to bind, overrides the config")
	shellCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored console output")
}

// resolveConfig loads the config file. A missing file is only an error
// when the operator named it explicitly.
func resolveConfig(path string, explicit bool) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// applyOverrides folds the command line flags into the loaded config.
func applyOverrides(cfg *config.Config) {
	if busOverride != "" {
		cfg.Bus = busOverride
	}
	if hciOverride >= 0 {
		cfg.HCI = hciOverride
	}
	if noColor {
		cfg.Console.Color = false
	}
}

func runConsole(cmd *cobra.Command, _ []string) error {
	path := configPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultConfigPath()
	}
	cfg, err := resolveConfig(path, explicit)
	if err != nil {
		return err
	}
	applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := configureLogger(cmd, cfg)
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Listen for Ctrl+C to leave the console
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Println("\nCtrl+C pressed, leaving the console...")
		cancel()
	}()

	cctx := client.NewContext(logger)
	cctx.Start(ctx)

	session, err := floss.Connect(cfg.Bus, cfg.HCI, cctx, logger)
	if err != nil {
		return fmt.Errorf("connecting to the Bluetooth daemon: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.WithError(err).Warn("Session close")
		}
	}()

	fmt.Printf("flossctl %s, %s bus, adapter hci%d\n", formatVersion(version), cfg.Bus, cfg.HCI)

	sh, err := shell.NewShell(shell.Options{
		Manager:     session.Manager(),
		Adapter:     session.Adapter(),
		Gatt:        session.Gatt(),
		Context:     cctx,
		HCI:         cfg.HCI,
		Prompt:      cfg.Console.Prompt,
		Color:       cfg.Console.Color,
		HistorySize: cfg.Console.HistorySize,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	return sh.Run(ctx)
}
