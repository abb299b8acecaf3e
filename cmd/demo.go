package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/pkgops/pkgops/internal/config"
	"github.com/pkgops/pkgops/internal/flags"
	"github.com/pkgops/pkgops/internal/operations/events"
	"github.com/pkgops/pkgops/internal/operations/icons"
	"github.com/pkgops/pkgops/internal/operations/operation"
	"github.com/pkgops/pkgops/internal/operations/scheduler"
	"github.com/pkgops/pkgops/internal/operations/tracing"
	"github.com/pkgops/pkgops/internal/pubsub"
	"github.com/pkgops/pkgops/internal/watcher"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run a batch of simulated package operations",
	Long:  `Run simulated install operations through the scheduling queue and print their event streams, log buffers, and run metrics.`,
	RunE:  runDemo,
}

var (
	demoPackages []string
	demoFlaky    bool
	demoFail     bool
)

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringSliceVar(&demoPackages, "packages", []string{"vim", "htop", "curl"},
		"package names to simulate installing")
	demoCmd.Flags().BoolVar(&demoFlaky, "flaky", false,
		"make the first operation auto-retry twice before succeeding")
	demoCmd.Flags().BoolVar(&demoFail, "fail", false,
		"make the last operation fail")
}

// demoBody simulates a package install. It sleeps a little per attempt and
// answers with the scripted verdict.
type demoBody struct {
	pkg         string
	delay       time.Duration
	autoRetries int
	fail        bool
	calls       int
}

func (b *demoBody) Execute(ctx context.Context) (events.Verdict, error) {
	b.calls++

	select {
	case <-time.After(b.delay):
	case <-ctx.Done():
		return events.VerdictCanceled, nil
	}

	if b.calls <= b.autoRetries {
		return events.VerdictAutoRetry, nil
	}
	if b.fail {
		return events.VerdictFailure, fmt.Errorf("simulated backend failure installing %q", b.pkg)
	}
	return events.VerdictSuccess, nil
}

func (b *demoBody) Icon() string { return "archive" }

func demoMetadata(pkg string) *operation.Metadata {
	meta := operation.NewMetadata()
	meta.Title = "Install " + pkg
	meta.Status = "Installing " + pkg
	meta.SuccessTitle = pkg + " installed"
	meta.SuccessMessage = "Successfully installed " + pkg
	meta.FailureTitle = "Install failed"
	meta.FailureMessage = "Could not install " + pkg
	meta.OperationInformation = "Installing " + pkg + " from the configured repositories"
	return meta
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	provider, err := tracing.NewProvider(tracingConfig(cfg.Tracing))
	if err != nil {
		return fmt.Errorf("starting tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	featureFlags := flags.New(cfg.Flags)
	sched := scheduler.New()

	skipIconCache := cfg.Icons.Disabled || featureFlags.Enabled(flags.FlagIconCacheBypass)
	resolver := icons.NewResolver(cfg.Icons.TTL, skipIconCache)

	var ops []*operation.Operation
	for i, pkg := range demoPackages {
		body := &demoBody{
			pkg:   pkg,
			delay: 150 * time.Millisecond,
		}
		if demoFlaky && i == 0 {
			body.autoRetries = 2
		}
		if demoFail && i == len(demoPackages)-1 {
			body.fail = true
		}

		op, err := operation.New(operation.Config{
			Metadata:       demoMetadata(pkg),
			Body:           body,
			Scheduler:      sched,
			MaxAutoRetries: cfg.Operations.MaxAutoRetries,
			EventBuffer:    cfg.Operations.EventBuffer,
			Tracer:         provider.Tracer(),
		})
		if err != nil {
			return fmt.Errorf("building operation for %q: %w", pkg, err)
		}
		ops = append(ops, op)
	}

	g, gctx := errgroup.WithContext(ctx)

	// Pick up config edits made while operations run.
	if cfgPath := viper.ConfigFileUsed(); cfgPath != "" {
		if w, err := watcher.New(watcher.DefaultConfig(cfgPath)); err == nil {
			if changes, err := w.Start(); err == nil {
				defer func() { _ = w.Stop() }()
				go func() {
					for {
						select {
						case <-gctx.Done():
							return
						case _, ok := <-changes:
							if !ok {
								return
							}
							reloadConfig()
						}
					}
				}()
			}
		}
	}

	for _, op := range ops {
		listener := pubsub.NewListener(gctx, op.Events())
		title := op.Metadata().Title

		g.Go(func() error {
			printEvents(out, title, listener)
			return nil
		})
		g.Go(func() error {
			return op.Run(gctx)
		})
	}

	if featureFlags.Enabled(flags.FlagQueueSkip) && len(ops) > 1 {
		last := ops[len(ops)-1]
		g.Go(func() error {
			// Promote the last operation once it is actually waiting.
			for {
				if _, member := sched.Position(last.Metadata().ID()); member {
					last.SkipQueue()
					return nil
				}
				select {
				case <-gctx.Done():
					return nil
				case <-time.After(10 * time.Millisecond):
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	for _, op := range ops {
		icon := resolver.Resolve(ctx, op.Metadata().ID(), op)
		fmt.Fprintf(out, "%-20s icon=%-8s %s\n",
			op.Metadata().Title, icon, op.Metrics().Snapshot().FormatDisplay())
	}
	return nil
}

// printEvents renders one operation's event stream until it reaches a
// terminal status.
func printEvents(out io.Writer, title string, listener *pubsub.Listener[events.Event]) {
	for {
		ev, ok := listener.Next()
		if !ok {
			return
		}
		switch ev.Payload.Type {
		case events.StatusChanged:
			fmt.Fprintf(out, "[%s] status: %s\n", title, ev.Payload.Status)
			if ev.Payload.Status.IsTerminal() {
				return
			}
		case events.LogLine:
			fmt.Fprintf(out, "[%s] %s: %s\n", title, ev.Payload.Category, ev.Payload.Line)
		case events.Failed:
			if ev.Payload.Err != nil {
				fmt.Fprintf(out, "[%s] error: %v\n", title, ev.Payload.Err)
			}
		}
	}
}

// tracingConfig maps the user-facing config section onto the tracing
// provider's own config type.
func tracingConfig(tc config.TracingConfig) tracing.Config {
	filePath := tc.FilePath
	if filePath == "" {
		filePath = config.DefaultTracesFilePath()
	}
	return tracing.Config{
		Enabled:      tc.Enabled,
		Exporter:     tc.Exporter,
		FilePath:     filePath,
		OTLPEndpoint: tc.OTLPEndpoint,
		SampleRate:   tc.SampleRate,
		ServiceName:  "pkgops",
	}
}
