package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/config"
	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/snapshot"
)

func snapshotCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect and manage stored snapshots",
		Long: `Inspect and manage the snapshots written by "loom serve".

The store is selected by the snapshot section of the config file.

Examples:
  loom snapshot list
  loom snapshot get latest
  loom snapshot capture counter --key=counter
  loom snapshot delete counter`,
	}

	cmd.AddCommand(
		snapshotListCmd(opts),
		snapshotGetCmd(opts),
		snapshotDeleteCmd(opts),
		snapshotCaptureCmd(opts),
	)
	return cmd
}

// withStore loads the config, opens the configured store and runs fn.
func withStore(cmd *cobra.Command, opts *options, fn func(ctx context.Context, cfg *config.Config, store snapshot.Store) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger(cmd, cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	if store == nil {
		return errors.New("E122").
			WithDetail("snapshot.store is none").
			WithSuggestion("Set snapshot.store to file, s3 or redis in the config file")
	}
	return fn(ctx, cfg, store)
}

func snapshotListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, _ *config.Config, store snapshot.Store) error {
				keys, err := store.List(ctx)
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			})
		},
	}
}

func snapshotGetCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Print a stored snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, cfg *config.Config, store snapshot.Store) error {
				key := cfg.Snapshot.Key
				if len(args) == 1 {
					key = args[0]
				}
				snap, err := store.Get(ctx, key)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(w)
					enc.SetIndent("", "  ")
					return enc.Encode(snap)
				}
				fmt.Fprintln(w, snap.HTML)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the snapshot with its metadata as JSON")
	return cmd
}

func snapshotDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, _ *config.Config, store snapshot.Store) error {
				if err := store.Delete(ctx, args[0]); err != nil {
					return err
				}
				success(cmd.ErrOrStderr(), "Deleted %s", args[0])
				return nil
			})
		},
	}
}

func snapshotCaptureCmd(opts *options) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "capture [app]",
		Short: "Render a demo component and store its snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, cfg *config.Config, store snapshot.Store) error {
				name := "todo"
				if len(args) == 1 {
					name = args[0]
				}
				if key == "" {
					key = cfg.Snapshot.Key
				}
				if err := snapshot.ValidateKey(key); err != nil {
					return err
				}

				doc, pass, err := renderApp(name, fiber.WithLogger(cfg.Log.NewLogger(cmd.ErrOrStderr())))
				if err != nil {
					return err
				}
				html, err := render.NewRenderer(render.RendererConfig{}).RenderChildren(doc.Root)
				if err != nil {
					return err
				}

				snap := &snapshot.Snapshot{Key: key, Pass: pass, HTML: html, CreatedAt: time.Now().UTC()}
				if err := store.Put(ctx, snap); err != nil {
					return err
				}
				success(cmd.ErrOrStderr(), "Stored %s as %s (%d bytes)", name, key, len(html))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "Snapshot key (default from config)")
	return cmd
}
