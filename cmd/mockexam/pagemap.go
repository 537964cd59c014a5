package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/mockexam/internal/config"
	"github.com/jackzampolin/mockexam/internal/library"
	"github.com/jackzampolin/mockexam/internal/output"
	"github.com/jackzampolin/mockexam/internal/pagemap"
	"github.com/jackzampolin/mockexam/internal/svcctx"
)

// watchDebounce coalesces bursts of file events, such as a PDF being copied.
const watchDebounce = 500 * time.Millisecond

var pagemapCmd = &cobra.Command{
	Use:   "pagemap",
	Short: "Inspect textbook-to-PDF page maps",
}

var pagemapResolveCmd = &cobra.Command{
	Use:   "resolve <conformance>",
	Short: "Resolve and print the page map of a problem set",
	Long: `Resolve loads problem_sets/<conformance>/page_map.csv, or infers the map
from page markers in the question and answer PDFs when there is no table and
OCR is enabled.

Examples:
  mockexam pagemap resolve 東京書籍
  mockexam pagemap resolve 東京書籍 -o json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		resolver := svcctx.ResolverFrom(ctx)
		if resolver == nil {
			return fmt.Errorf("resolver not initialized")
		}

		res, err := resolver.Resolve(ctx, args[0])
		if err != nil {
			return err
		}
		return output.Write(cmd.OutOrStdout(), svcctx.OutputFrom(ctx), output.NewResolution(res))
	},
}

var pagemapWatchCmd = &cobra.Command{
	Use:   "watch <conformance>",
	Short: "Re-resolve a page map whenever its inputs change",
	Long: `Watch resolves the page map once, then again whenever page_map.csv or a
question or answer PDF changes, or the config file is edited. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		svcs := svcctx.ServicesFrom(ctx)
		if svcs == nil || svcs.Resolver == nil {
			return fmt.Errorf("resolver not initialized")
		}

		w := &pagemapWatcher{
			key:      args[0],
			out:      cmd.OutOrStdout(),
			format:   svcctx.OutputFrom(ctx),
			layout:   svcs.Layout,
			resolver: svcs.Resolver,
			base:     svcs.Logger,
			logger:   svcs.Logger.With("component", "watch", "conformance", args[0]),
		}
		return w.run(ctx, svcs.Config)
	},
}

func init() {
	pagemapCmd.AddCommand(pagemapResolveCmd)
	pagemapCmd.AddCommand(pagemapWatchCmd)
}

type pagemapWatcher struct {
	key    string
	out    io.Writer
	format output.Format
	base   *slog.Logger
	logger *slog.Logger

	mu       sync.Mutex
	layout   *library.Layout
	resolver *pagemap.Resolver
}

func (w *pagemapWatcher) run(ctx context.Context, cm *config.Manager) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer watcher.Close()

	if err := w.watchDirs(watcher); err != nil {
		return err
	}

	trigger := make(chan string, 1)
	schedule := func(reason string) {
		select {
		case trigger <- reason:
		default:
		}
	}

	if cm != nil {
		cm.OnChange(func(cfg *config.Config) {
			svcs, err := buildServices(cfg, w.base)
			if err != nil {
				w.logger.Error("config reload failed", "error", err)
				return
			}
			w.mu.Lock()
			w.layout, w.resolver = svcs.Layout, svcs.Resolver
			w.mu.Unlock()
			schedule("config changed")
		})
		cm.WatchConfig()
	}

	w.resolve(ctx, "initial")

	var timer *time.Timer
	var timerC <-chan time.Time
	pending := ""
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) && filepath.Base(ev.Name) != w.key {
				continue
			}
			w.logger.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			if ev.Has(fsnotify.Create) {
				if err := w.watchDirs(watcher); err != nil {
					w.logger.Warn("failed to watch problem set", "error", err)
				}
			}
			pending = filepath.Base(ev.Name) + " changed"
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			timerC = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timerC:
			timerC = nil
			w.resolve(ctx, pending)
		case reason := <-trigger:
			// A new layout may point at different directories.
			if err := w.watchDirs(watcher); err != nil {
				w.logger.Warn("failed to watch problem set", "error", err)
			}
			w.resolve(ctx, reason)
		}
	}
}

// watchDirs watches the problem set directory and its question and answer
// folders. Directories that do not exist yet are skipped; a missing problem
// set is awaited by watching the problem sets root.
func (w *pagemapWatcher) watchDirs(watcher *fsnotify.Watcher) error {
	w.mu.Lock()
	root := w.layout.ProblemSetsPath()
	dir := w.layout.ProblemSetDir(w.key)
	w.mu.Unlock()

	if _, err := os.Stat(dir); err != nil {
		if _, err := os.Stat(root); err != nil {
			return fmt.Errorf("problem sets directory unavailable: %w", err)
		}
		if err := watcher.Add(root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
		return nil
	}
	for _, d := range []string{dir, filepath.Join(dir, library.QuestionsDirName), filepath.Join(dir, library.AnswersDirName)} {
		if _, err := os.Stat(d); err != nil {
			continue
		}
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	return nil
}

func (w *pagemapWatcher) resolve(ctx context.Context, reason string) {
	w.mu.Lock()
	resolver := w.resolver
	w.mu.Unlock()

	w.logger.Info("resolving page map", "reason", reason)
	res, err := resolver.Resolve(ctx, w.key)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error("resolution failed", "error", err)
		}
		return
	}
	if w.format == output.FormatYAML {
		fmt.Fprintln(w.out, "---")
	}
	if err := output.Write(w.out, w.format, output.NewResolution(res)); err != nil {
		w.logger.Error("failed to print resolution", "error", err)
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	name := strings.ToLower(filepath.Base(ev.Name))
	return name == library.PageMapFileName || strings.HasSuffix(name, ".pdf") ||
		name == library.QuestionsDirName || name == library.AnswersDirName
}
