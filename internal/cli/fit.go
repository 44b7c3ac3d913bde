package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/photosheet/pkg/io"
	"github.com/matzehuels/photosheet/pkg/pipeline"
)

// fitCommand creates the fit command, which writes the single compliant photo.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		pf photoFlags
		of outputFlags
	)

	cmd := &cobra.Command{
		Use:   "fit [photo]",
		Short: "Resize a photo to a standard without making a sheet",
		Long: `Resize a photo to the exact pixel size of a standard.

The photo is scaled and cropped (cover), letterboxed (contain) or distorted
(stretch) to the target size and written with its DPI recorded, so it prints
at the correct physical size. Use 'sheet' to place several copies on paper.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.baseOptions()
			if err != nil {
				return err
			}
			if err := pf.apply(cmd, &opts); err != nil {
				return err
			}
			of.apply(cmd, &opts)
			return c.runFit(cmd.Context(), args[0], opts, of)
		},
	}

	pf.register(cmd.Flags())
	of.register(cmd.Flags(), "png (default), jpeg, tiff, bmp, gif, pdf")

	return cmd
}

func (c *CLI) runFit(ctx context.Context, input string, opts pipeline.Options, of outputFlags) error {
	src, err := pio.ImportImage(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("decoded photo", "format", src.Format, "size", src.Image.Bounds().Size(), "bytes", src.Size)
	opts.SourceHash = src.Hash

	runner, err := c.newRunner(ctx, of.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, os.Stderr, "Fitting photo...")
	spinner.Start()
	res, err := runner.FitPhoto(ctx, src.Image, opts)
	if err != nil {
		spinner.StopWithError("Fit failed")
		return err
	}
	spinner.Stop()

	output := of.output
	if output == "" {
		output = pio.PhotoName(input, opts.Standard, res.Artifact.Extension)
	}
	if err := pio.ExportArtifact(res.Artifact, output); err != nil {
		return err
	}

	printSuccess("Photo %s", StyleNumber.Render(res.Target.String()))
	printWarnings(res.Warnings)
	printFile(output)
	return nil
}
