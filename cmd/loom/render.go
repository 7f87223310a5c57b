package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/loom/internal/demo"
	"github.com/vango-dev/loom/internal/errors"
	"github.com/vango-dev/loom/pkg/dom"
	"github.com/vango-dev/loom/pkg/fiber"
	"github.com/vango-dev/loom/pkg/render"
	"github.com/vango-dev/loom/pkg/sched"
	"github.com/vango-dev/loom/pkg/vdom"
)

func renderCmd(opts *options) *cobra.Command {
	var (
		pretty bool
		page   bool
		ids    bool
		out    string
	)

	cmd := &cobra.Command{
		Use:   "render [app]",
		Short: "Render a demo component to HTML",
		Long: `Render a demo component once and print the committed HTML.

The render runs on a deterministic scheduler: every unit of work and the
commit happen before the command returns.

Apps: ` + strings.Join(demo.Names(), ", ") + `

Examples:
  loom render todo
  loom render counter --pretty
  loom render todo --page -o index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log := logger(cmd, cfg)

			name := "todo"
			if len(args) == 1 {
				name = args[0]
			}
			doc, pass, err := renderApp(name, fiber.WithLogger(log))
			if err != nil {
				return err
			}

			r := render.NewRenderer(render.RendererConfig{Pretty: pretty, NodeIDs: ids})
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if page {
				if err := r.RenderPage(w, render.PageData{Title: cfg.Server.Title, Mount: doc.Root}); err != nil {
					return err
				}
			} else if err := r.WriteChildren(w, doc.Root); err != nil {
				return err
			}
			if out != "" {
				success(cmd.ErrOrStderr(), "Rendered %s (pass %d) to %s", name, pass, out)
			} else {
				fmt.Fprintln(w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the output")
	cmd.Flags().BoolVar(&page, "page", false, "Wrap the output in a full HTML page")
	cmd.Flags().BoolVar(&ids, "ids", false, "Include node ids")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}

// renderApp renders the named demo into a fresh document and runs the
// scheduler until it is idle. It returns the document and the pass that
// committed.
func renderApp(name string, opts ...fiber.Option) (*dom.Document, uint64, error) {
	app, ok := demo.Lookup(name)
	if !ok {
		return nil, 0, unknownApp(name)
	}

	doc := dom.New()
	m := sched.NewManual()
	var pass uint64
	var aborted error
	opts = append(opts, fiber.WithErrorHandler(func(err error) { aborted = err }))
	s := fiber.New(doc, m, opts...)
	s.OnCommit(func(r fiber.CommitReport) { pass = r.Pass })

	if err := s.Render(vdom.C(app), doc.Root); err != nil {
		return nil, 0, err
	}
	if err := m.Flush(); err != nil {
		return nil, 0, err
	}
	if aborted != nil {
		return nil, 0, aborted
	}
	return doc, pass, nil
}

func unknownApp(name string) error {
	return errors.Newf(errors.CategoryRender, "unknown app %q", name).
		WithSuggestion("Use one of: " + strings.Join(demo.Names(), ", "))
}
