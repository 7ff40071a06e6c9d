// Package cli is the newsdesk command tree.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/newsdesk/internal/admin"
	"github.com/Adda-Baaj/newsdesk/internal/notify"
	"github.com/Adda-Baaj/newsdesk/internal/tui"
)

const toastBuffer = 32

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo is called from main with values stamped at build time.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

type rootOptions struct {
	configPath string
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// terminal UI.
func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	root := &cobra.Command{
		Use:           "newsdesk",
		Short:         "Manage the news announcements of the sports portal",
		Long:          "newsdesk lists, creates, edits and deletes the news items served by the admin backend, interactively or from scripts.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runTUI(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&o.configPath, "config", "", "path to config file (default ./newsdesk.yaml)")

	root.AddCommand(
		newListCmd(o),
		newCreateCmd(o),
		newUpdateCmd(o),
		newDeleteCmd(o),
		newHistoryCmd(o),
		newServeStubCmd(o),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) runTUI(ctx context.Context) error {
	toasts := notify.NewToasts(toastBuffer)
	changes, onChange := tui.ChangeSignal()

	rt, err := newRuntime(ctx, o.configPath, runtimeOptions{
		interactive: true,
		sinks:       []namedSink{{name: "toasts", sink: toasts}},
		panelOpts:   []admin.Option{admin.WithOnChange(onChange)},
	})
	if err != nil {
		return err
	}
	defer rt.close()

	app := tui.NewApp(ctx, rt.panel, toasts.C(), changes, tui.Options{
		Images: rt.images(),
		Prober: rt.prober(),
		Log:    rt.log,
	})
	return tui.Run(ctx, app)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newsdesk %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
