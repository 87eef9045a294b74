package main

import (
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/vango-dev/toolbox/internal/errors"
	"github.com/vango-dev/toolbox/pkg/assets"
	"github.com/vango-dev/toolbox/pkg/pipeline"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		admin   bool
		enqueue []string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the head tags for the declared resources",
		Long: `Register every resource declared in toolbox.json, enqueue the
requested ones and print the resulting <link> and <script> tags.

Without --enqueue every declared resource is enqueued.

Examples:
  toolbox render
  toolbox render --admin
  toolbox render --enqueue app --enqueue theme`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			site, err := newSite(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}

			q := pipeline.NewQueue(pipeline.WithAdmin(admin), pipeline.WithLogger(logger))
			reg := assets.NewRegistry(site)
			reg.DeclareAll(cfg.Resources)
			reg.RegisterAll(q)

			if len(enqueue) == 0 {
				reg.EnqueueAll(q)
			} else if err := reg.Enqueue(q, enqueue...); err != nil {
				if stderrors.Is(err, assets.ErrUnknownResource) {
					te := errors.New("T110").WithDetail(err.Error()).
						WithSuggestion("Declare the resource in toolbox.json or run `toolbox resolve` to list them")
					for _, id := range enqueue {
						if _, ok := reg.Get(id); !ok {
							te.WithResource(id, "")
						}
					}
					return te
				}
				return err
			}

			return q.Render(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&admin, "admin", false, "Render as an administrative page")
	cmd.Flags().StringArrayVarP(&enqueue, "enqueue", "e", nil, "Resource id to enqueue (repeatable)")

	return cmd
}
