package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/dims"
)

// resolveOutput is the JSON form of the resolve command.
type resolveOutput struct {
	Standard string          `json:"standard,omitempty"`
	Name     string          `json:"name,omitempty"`
	WidthMM  float64         `json:"width_mm"`
	HeightMM float64         `json:"height_mm"`
	Target   dims.Target     `json:"target"`
	Head     *dims.HeadRange `json:"head,omitempty"`
}

// resolveCommand creates the resolve command for converting a standard to pixels.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		pf     photoFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "resolve [standard]",
		Short: "Show the pixel size of a photo standard",
		Long: `Show the pixel size of a photo standard at a given DPI.

The size is computed as round(mm / 25.4 × dpi) per axis. For standards that
constrain head height, the permitted head height range is shown in pixels too.

Use --width-mm and --height-mm instead of a standard for a custom size.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("standard", args[0]); err != nil {
					return err
				}
			}
			out, err := c.runResolve(cmd, &pf)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			printResolve(out)
			return nil
		},
	}

	pf.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, pf *photoFlags) (*resolveOutput, error) {
	opts, err := c.baseOptions()
	if err != nil {
		return nil, err
	}
	if err := pf.apply(cmd, &opts); err != nil {
		return nil, err
	}
	if err := opts.ValidateForFit(); err != nil {
		return nil, err
	}

	target, err := dims.Resolve(opts.Catalog, opts.DimsRequest())
	if err != nil {
		return nil, err
	}
	out := &resolveOutput{Target: target, WidthMM: opts.WidthMM, HeightMM: opts.HeightMM}
	if opts.WidthMM == 0 {
		std, err := opts.Catalog.Size(opts.Standard)
		if err != nil {
			return nil, err
		}
		out.Standard, out.Name = std.Code, std.Name
		out.WidthMM, out.HeightMM = std.WidthMM, std.HeightMM
		if head, ok := dims.Head(std, target.DPI); ok {
			out.Head = &head
		}
	}
	return out, nil
}

func printResolve(out *resolveOutput) {
	if out.Standard != "" {
		fmt.Println(StyleTitle.Render(out.Standard) + " " + StyleDim.Render(out.Name))
	}
	printKeyValue("Physical", fmt.Sprintf("%g × %g mm", out.WidthMM, out.HeightMM))
	printKeyValue("Pixels", StyleNumber.Render(fmt.Sprintf("%d × %d", out.Target.Width, out.Target.Height)))
	printKeyValue("DPI", fmt.Sprintf("%d", out.Target.DPI))
	if out.Head != nil {
		printKeyValue("Head height", fmt.Sprintf("%d-%d px", out.Head.Min, out.Head.Max))
	}
}
