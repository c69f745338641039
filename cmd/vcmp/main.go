package main

import (
	"fmt"
	"os"

	"github.com/pthm/vcmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	components string
	logLevel   string
	logFormat  string

	// Loaded in PersistentPreRunE
	cfg    vcmp.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vcmp",
	Short: "vcmp - declarative HTML components",
	Long: `vcmp expands <vc>name</vc> placeholders in HTML pages into component
templates, merges placeholder attributes into the inserted markup, and injects
the templates' styles and scripts into the page.

Templates are read from a directory, an http(s) base URL, or a bundle built
with "vcmp bundle".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vcmp version %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&components, "components", "", "Component directory or base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")

	expandCmd.Flags().StringVarP(&expandOut, "output", "o", "", "Write the expanded page here (default: stdout)")
	expandCmd.Flags().BoolVarP(&expandWatch, "watch", "w", false, "Re-expand when the page or a template changes")

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveRoot, "root", ".", "Directory of pages to serve")

	bundleCmd.Flags().StringVarP(&bundleOut, "output", "o", "components.vcb", "Bundle file to write")
	bundleCmd.Flags().StringVar(&bundleKey, "key", "", "Signing key (or set VCMP_BUNDLE_KEY, or bundle.key in config)")
	bundleCmd.Flags().BoolVar(&bundleSeal, "seal", false, "Encrypt the bundle instead of only signing it")

	rootCmd.AddCommand(expandCmd, serveCmd, bundleCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
