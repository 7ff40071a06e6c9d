package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adda-Baaj/newsdesk/internal/domain"
	"github.com/Adda-Baaj/newsdesk/internal/notify"
	"github.com/Adda-Baaj/newsdesk/internal/render"
	"github.com/Adda-Baaj/newsdesk/internal/stubserver"
)

const listExcerptRunes = 80

// consoleSink prints each notification on its own line, errors prefixed.
func consoleSink(w io.Writer) notify.Sink {
	return notify.SinkFunc(func(_ context.Context, n domain.Notification) error {
		if n.Severity == domain.SeverityError {
			_, err := fmt.Fprintln(w, "error:", n.Message)
			return err
		}
		_, err := fmt.Fprintln(w, n.Message)
		return err
	})
}

// withRuntime builds a non-interactive runtime that echoes notifications to
// the command's stdout.
func (o *rootOptions) withRuntime(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	ctx := cmd.Context()
	rt, err := newRuntime(ctx, o.configPath, runtimeOptions{
		sinks: []namedSink{{name: "console", sink: consoleSink(cmd.OutOrStdout())}},
	})
	if err != nil {
		return err
	}
	defer rt.close()
	return fn(ctx, rt)
}

func newListCmd(o *rootOptions) *cobra.Command {
	var checkImages bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List news items, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.panel.Mount(ctx); err != nil {
					return err
				}
				items := rt.panel.Rendered()
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No news available")
					return nil
				}

				im := rt.images()
				srcs := make([]string, len(items))
				if checkImages {
					srcs = rt.prober().ResolveAll(ctx, im, items)
				} else {
					for i, it := range items {
						srcs[i] = im.Resolve(it, nil)
					}
				}

				for i, it := range items {
					fmt.Fprintf(out, "%s\n", it.Title)
					if text := render.Excerpt(render.PlainText(it.Content), listExcerptRunes); text != "" {
						fmt.Fprintf(out, "  %s\n", text)
					}
					fmt.Fprintf(out, "  image: %s\n", srcs[i])
					if !it.CreatedAt.IsZero() {
						fmt.Fprintf(out, "  created: %s\n", it.CreatedAt.Format("2006-01-02 15:04"))
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&checkImages, "check-images", false, "probe image sources and show the placeholder for broken ones")
	return cmd
}

func newCreateCmd(o *rootOptions) *cobra.Command {
	var draft domain.DraftCreate
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a news item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				rt.panel.OpenCreate()
				rt.panel.SetCreateDraft(draft)
				return rt.panel.SubmitCreate(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&draft.Title, "title", "", "news title")
	cmd.Flags().StringVar(&draft.Content, "content", "", "news content")
	cmd.Flags().StringVar(&draft.ImageURL, "image", "", "image URL")
	return cmd
}

func newUpdateCmd(o *rootOptions) *cobra.Command {
	var title, content, newTitle string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the content of the news item with the given title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				if err := rt.panel.Mount(ctx); err != nil {
					return err
				}

				current := domain.NewsItem{Title: title}
				for _, it := range rt.panel.Rendered() {
					if it.Title == title {
						current = it
						break
					}
				}

				rt.panel.OpenEdit(current)
				draft, _, _ := rt.panel.EditDraft()
				draft.Content = content
				if newTitle != "" {
					draft.Title = newTitle
				}
				rt.panel.SetEditDraft(draft)
				return rt.panel.SubmitUpdate(ctx)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title of the item to update")
	cmd.Flags().StringVar(&content, "content", "", "new content")
	cmd.Flags().StringVar(&newTitle, "new-title", "", "rename the item locally")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newDeleteCmd(o *rootOptions) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the news item with the given title",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				return rt.panel.Delete(ctx, title)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title of the item to delete")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newHistoryCmd(o *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent notifications from the journal, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(_ context.Context, rt *runtime) error {
				if rt.journal == nil {
					return errors.New("journal is disabled (journal.enabled=false)")
				}
				entries, err := rt.journal.Recent(limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No notifications recorded.")
					return nil
				}
				for _, e := range entries {
					line := []string{
						e.At.Local().Format("2006-01-02 15:04:05"),
						fmt.Sprintf("%-7s", e.Severity),
						fmt.Sprintf("%-6s", e.Operation),
						e.Message,
					}
					if e.Title != "" {
						line = append(line, fmt.Sprintf("(%s)", e.Title))
					}
					fmt.Fprintln(out, strings.Join(line, "  "))
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum entries to show (0 for all)")
	return cmd
}

func newServeStubCmd(o *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Serve an in-memory News resource for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				if addr == "" {
					addr = rt.cfg.Stub.Addr
				}
				srv := stubserver.New(stubserver.NewStore(nil), rt.log)
				fmt.Fprintf(cmd.OutOrStdout(), "serving /News/ on %s\n", addr)
				return srv.Run(ctx, addr)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default stub.addr)")
	return cmd
}
