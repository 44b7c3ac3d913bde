package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/photosheet/pkg/io"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// sheetCommand creates the sheet command, which runs the full pipeline.
func (c *CLI) sheetCommand() *cobra.Command {
	var (
		pf photoFlags
		sf sheetFlags
		of outputFlags
	)

	cmd := &cobra.Command{
		Use:   "sheet [photo]",
		Short: "Lay out copies of a photo on a printable sheet",
		Long: `Lay out copies of a photo on a printable sheet.

The photo is fitted to the standard's exact pixel size, then as many of the
requested copies as fit are packed in a centered grid inside the paper
margins, with cut guides between them. The sheet records its DPI, and PDF
output places it at true physical size, so printing at 100% scale yields
compliant photos.

Results are cached locally for faster subsequent runs.

Examples:
  photosheet sheet me.jpg -s US-2x2 -p 4x6 -n 6
  photosheet sheet me.jpg -s EU -p A4 -n 8 -f pdf --guides corners`,
		Args: cobra.ExactArgs(1),
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
			of.apply(cmd, &opts)
			// Reject a bad format before decoding the photo.
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runSheet(cmd.Context(), args[0], opts, of)
		},
	}

	pf.register(cmd.Flags())
	sf.register(cmd.Flags())
	of.register(cmd.Flags(), "png (default), jpeg, tiff, bmp, gif, pdf")

	return cmd
}

func (c *CLI) runSheet(ctx context.Context, input string, opts pipeline.Options, of outputFlags) error {
	runner, err := c.newRunner(ctx, of.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, "Decoding photo...")
	spinner.Start()
	src, err := pio.ImportImage(input)
	if err != nil {
		spinner.StopWithError("Decode failed")
		return err
	}
	opts.SourceHash = src.Hash

	spinner.SetMessage("Composing sheet...")
	res, err := runner.Execute(ctx, src.Image, opts)
	if err != nil {
		spinner.StopWithError("Sheet failed")
		return err
	}

	output := of.output
	if output == "" {
		output = pio.OutputName(input, opts.Paper, res.Plan.ActualCopies, res.Artifact.Extension)
	}
	spinner.SetMessage("Writing " + output + "...")
	err = pio.ExportArtifact(res.Artifact, output)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Sheet from %s %dx%d", src.Format, src.Image.Bounds().Dx(), src.Image.Bounds().Dy()))

	s := res.Plan.Summary()
	printSuccess("Sheet %s on %s", StyleNumber.Render(s.Layout), StyleValue.Render(opts.Paper))
	printStats(res)
	printWarnings(res.Warnings)
	if res.Plan.ActualCopies < res.Plan.RequestedCopies {
		printWarning("only %d of %d copies fit on %s", res.Plan.ActualCopies, res.Plan.RequestedCopies, opts.Paper)
	}
	printFile(output)
	return nil
}
