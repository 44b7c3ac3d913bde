package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/pipeline"
	"github.com/matzehuels/photosheet/pkg/sink"
)

// planCommand creates the plan command, a print preview that needs no photo.
func (c *CLI) planCommand() *cobra.Command {
	var (
		pf     photoFlags
		sf     sheetFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Preview how many copies fit on a sheet",
		Long: `Preview the sheet layout for a photo standard and paper without a photo.

Shows the grid, how many of the requested copies fit, and the sheet and photo
sizes in pixels. With --json the full plan, including every cell origin, is
printed for other tools.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := pf.apply(cmd, &opts); err != nil {
				return err
			}
			if err := sf.apply(cmd, &opts); err != nil {
				return err
			}
			return c.runPlan(cmd.Context(), opts, asJSON)
		},
	}

	pf.register(cmd.Flags())
	sf.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the plan as JSON")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, opts pipeline.Options, asJSON bool) error {
	if err := opts.ValidateForPlan(); err != nil {
		return err
	}
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	res, err := runner.Preview(ctx, opts)
	if err != nil {
		return err
	}

	if asJSON {
		data, err := sink.RenderPlanJSON(res.Plan,
			sink.WithJSONPaper(opts.Paper),
			sink.WithJSONStandard(opts.Standard))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}

	fmt.Println(StyleTitle.Render("Print preview"))
	printPlan(res.Plan)
	return nil
}
