package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pthm/vcmp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	expandOut   string
	expandWatch bool
)

var expandCmd = &cobra.Command{
	Use:   "expand [page]",
	Short: "Expand the components in an HTML page",
	Long: `Reads an HTML page (or stdin when the page is "-" or omitted), expands every
component placeholder, and writes the finished page.

Examples:
  vcmp expand index.src.html -o index.html
  vcmp expand --components ./vc page.html
  vcmp expand --watch index.src.html -o index.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExpand,
}

func runExpand(cmd *cobra.Command, args []string) error {
	page := "-"
	if len(args) == 1 {
		page = args[0]
	}
	if expandWatch && (page == "-" || expandOut == "") {
		return fmt.Errorf("--watch needs a page file and --output")
	}

	exp, err := newExpander()
	if err != nil {
		return err
	}

	if !expandWatch {
		return expandOnce(cmd.Context(), exp, page, expandOut, cmd.InOrStdin(), cmd.OutOrStdout())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, exp, page, expandOut)
}

// expandOnce expands page into out. "-" reads stdin; an empty out writes
// stdout.
func expandOnce(ctx context.Context, exp *vcmp.Expander, page, out string, stdin io.Reader, stdout io.Writer) error {
	var r io.Reader = stdin
	if page != "-" {
		f, err := os.Open(page)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	var sb strings.Builder
	rep, err := exp.ExpandReader(ctx, r, &sb)
	if err != nil {
		return err
	}
	logger.Info("expanded",
		zap.String("page", page),
		zap.String("session", rep.Session),
		zap.Int("instances", len(rep.Instances)),
		zap.Strings("templates", rep.Templates),
	)

	if out == "" {
		_, err = io.WriteString(stdout, sb.String())
		return err
	}
	return os.WriteFile(out, []byte(sb.String()), 0o644)
}

// watchDebounce batches the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

// watch expands page once and again after every change to the page or to a
// local component template, until ctx is done.
func watch(ctx context.Context, exp *vcmp.Expander, page, out string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dirs := []string{filepath.Dir(page)}
	if !strings.Contains(cfg.Components, "://") && cfg.Bundle.Path == "" {
		err := filepath.WalkDir(cfg.Components, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				dirs = append(dirs, p)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("watch components: %w", err)
		}
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		logger.Debug("watching", zap.String("dir", dir))
	}

	rebuild := func() {
		if err := expandOnce(ctx, exp, page, out, nil, nil); err != nil {
			logger.Error("expand failed", zap.String("page", page), zap.Error(err))
		}
	}
	rebuild()

	outAbs, _ := filepath.Abs(out)
	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if abs, _ := filepath.Abs(event.Name); abs == outAbs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("change", zap.String("path", event.Name), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			rebuild()
		}
	}
}
