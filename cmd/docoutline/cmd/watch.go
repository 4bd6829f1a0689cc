package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/MeKo-Tech/docoutline/internal/layout"
	"github.com/MeKo-Tech/docoutline/internal/watch"
	"github.com/spf13/cobra"
)

func (c *cli) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Process documents as they appear in the input directory",
		Long: `Watch the input directory and write <name>.json to the output directory for
every PDF that is created or rewritten. Files still being copied are retried
until they open cleanly. Stops on SIGINT or SIGTERM.

Examples:
  docoutline watch --input-dir ./in --output-dir ./out
  docoutline watch --process-existing --debounce 1s`,
		Args: cobra.NoArgs,
		RunE: c.runWatch,
	}

	f := cmd.Flags()
	f.String("input-dir", "", "directory to watch (default from config)")
	f.String("output-dir", "", "directory receiving <name>.json records (default from config)")
	f.Duration("debounce", watch.DefaultDebounce, "quiet period before a changed file is processed")
	f.Uint("retry-attempts", watch.DefaultRetryAttempts, "attempts to open a file that is still being written")
	f.Duration("retry-delay", watch.DefaultRetryDelay, "initial delay between open attempts")
	f.Bool("process-existing", false, "process documents already present at start-up")
	return cmd
}

func (c *cli) runWatch(cmd *cobra.Command, _ []string) error {
	wc := c.cfg.ToWatchConfig()
	wc.Opener = layout.FileOpener{Password: c.cfg.Password}

	f := cmd.Flags()
	if f.Changed("input-dir") {
		wc.InputDir, _ = f.GetString("input-dir")
	}
	if f.Changed("output-dir") {
		wc.OutputDir, _ = f.GetString("output-dir")
	}
	if f.Changed("debounce") {
		wc.Debounce, _ = f.GetDuration("debounce")
	}
	if f.Changed("retry-attempts") {
		wc.RetryAttempts, _ = f.GetUint("retry-attempts")
	}
	if f.Changed("retry-delay") {
		wc.RetryDelay, _ = f.GetDuration("retry-delay")
	}
	if f.Changed("process-existing") {
		wc.ProcessExisting, _ = f.GetBool("process-existing")
	}

	out := cmd.OutOrStdout()
	wc.OnResult = func(ev watch.Event) {
		if ev.Err != nil {
			_, _ = fmt.Fprintf(out, "! %s: %v\n", ev.File, ev.Err)
			return
		}
		_, _ = fmt.Fprintf(out, "%s -> %s (%d headings)\n", ev.File, ev.Output, len(ev.Structure.Outline))
	}

	w, err := watch.New(wc)
	if err != nil {
		return fmt.Errorf("failed to initialize watcher: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	err = w.Run(ctx)
	slog.Info("Watch stopped", "uptime", time.Since(start).Round(time.Second))
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
