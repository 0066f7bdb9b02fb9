package main

import (
	"context"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/capabilitycompass/compass/internal/client"
	"github.com/capabilitycompass/compass/internal/viewer"
	"github.com/capabilitycompass/compass/internal/viewer/render"
)

var (
	brand  = color.New(color.FgCyan, color.Bold)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	subtle = color.New(color.Faint)
)

func viewCmd() *cobra.Command {
	var (
		serverURL  string
		entityType string
		entityID   int64
		depth      int
		direction  string
		out        string
		title      string
		highlight  string
		noAnimate  bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Render an entity subtree to an interactive HTML graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			src := client.New(serverURL)
			surface := render.NewEChartsSurface(title)
			sched := viewer.NewManualScheduler()

			v := viewer.New(src, surface, viewer.Options{
				Scheduler: sched,
				Details:   src,
			})
			defer v.Close()

			sel := viewer.Selection{
				EntityType: entityType,
				EntityID:   entityID,
				Depth:      depth,
				Direction:  direction,
			}

			brand.Printf("compass view — %s/%d\n", entityType, entityID)
			if err := v.Select(context.Background(), sel); err != nil {
				bad.Printf("fetch failed: %v\n", err)
				return err
			}
			if v.State() == viewer.StateError {
				bad.Printf("fetch failed: %v\n", v.Err())
				return v.Err()
			}

			if noAnimate {
				v.Skip()
			} else {
				ticks := 0
				for sched.Fire() {
					ticks++
				}
				subtle.Printf("  animated %d steps\n", ticks)
			}
			// Drain the settle timer so the final fit runs.
			for sched.Fire() {
			}

			if highlight != "" {
				v.HandleNodeClick(highlight)
				_, _, steps := v.Selection()
				if len(steps) > 0 {
					subtle.Println("  path to root:")
					for _, step := range steps {
						subtle.Printf("    %s --[%s]-->\n", step.Name, step.Type)
					}
				}
			}

			if err := surface.WriteFile(out); err != nil {
				bad.Printf("write failed: %v\n", err)
				return err
			}

			good.Printf("wrote %s (%d nodes, zoom %.2f)\n", out, surface.NodeCount(), surface.Scale())
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "compass server base URL")
	cmd.Flags().StringVar(&entityType, "entity-type", "capability", "entity type to expand")
	cmd.Flags().Int64Var(&entityID, "entity-id", 0, "entity uid to expand")
	cmd.Flags().IntVar(&depth, "depth", 0, "max traversal depth, 0 for unlimited")
	cmd.Flags().StringVar(&direction, "direction", "outgoing", "traversal direction: outgoing, incoming, both")
	cmd.Flags().StringVar(&out, "out", "subtree.html", "output HTML file")
	cmd.Flags().StringVar(&title, "title", "Capability Subtree", "chart title")
	cmd.Flags().StringVar(&highlight, "highlight", "", "node id to highlight with its path to root")
	cmd.Flags().BoolVar(&noAnimate, "no-animate", false, "skip the traversal animation")
	cmd.MarkFlagRequired("entity-id")

	return cmd
}
