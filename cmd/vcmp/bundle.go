package main

import (
	"errors"
	"os"

	"github.com/pthm/vcmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	bundleOut  string
	bundleKey  string
	bundleSeal bool
)

var bundleCmd = &cobra.Command{
	Use:   "bundle [dir]",
	Short: "Pack a component directory into a signed bundle",
	Long: `Collects every template under dir (default: the configured components
directory) into one bundle file. The bundle is signed with --key and, with
--seal, also encrypted. Point bundle.path and bundle.key at it to load
templates from the bundle instead of the directory.

Example:
  vcmp bundle vc_components -o components.vcb --key "$VCMP_BUNDLE_KEY" --seal`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBundle,
}

func runBundle(cmd *cobra.Command, args []string) error {
	dir := cfg.Components
	if len(args) == 1 {
		dir = args[0]
	}

	key := bundleKey
	if key == "" {
		key = os.Getenv("VCMP_BUNDLE_KEY")
	}
	if key == "" {
		key = cfg.Bundle.Key
	}
	if key == "" {
		return errors.New("a bundle key is required (--key, VCMP_BUNDLE_KEY, or bundle.key)")
	}

	b, err := vcmp.BuildBundle(os.DirFS(dir), cfg.Extension)
	if err != nil {
		return err
	}

	f, err := os.Create(bundleOut)
	if err != nil {
		return err
	}
	if err := vcmp.WriteBundle(f, b, []byte(key), bundleSeal); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info("bundle written",
		zap.String("dir", dir),
		zap.String("output", bundleOut),
		zap.Int("templates", len(b.Templates)),
		zap.Bool("sealed", bundleSeal),
	)
	return nil
}
