package cli

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/photosheet/pkg/catalog"
	"github.com/matzehuels/photosheet/pkg/dims"
)

// catalogCommand creates the catalog command for listing standards.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		dpiStr string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List photo size and paper standards",
		Long: `List the photo size and paper standards known to photosheet, with their
physical size and pixel size at the chosen DPI.

Use 'catalog browse' for an interactive view, and --catalog to load your own
TOML catalog instead of the built-in one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			dpi, err := dims.ParseDPI(dpiStr)
			if err != nil {
				return err
			}
			if asJSON {
				return printCatalogJSON(cat)
			}

			fmt.Println(StyleTitle.Render("Photo sizes") + StyleDim.Render(fmt.Sprintf(" @ %d dpi", dpi)))
			fmt.Println(renderTable(sizeRows(cat.Sizes(), dpi)))
			fmt.Println(StyleTitle.Render("Papers"))
			fmt.Println(renderTable(paperRows(cat.Papers(), dpi)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dpiStr, "dpi", "d", "", "resolution for the pixel columns (default 300)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the catalog as JSON")
	cmd.AddCommand(c.catalogBrowseCommand())

	return cmd
}

// catalogBrowseCommand creates the interactive "catalog browse" subcommand.
func (c *CLI) catalogBrowseCommand() *cobra.Command {
	var dpiStr string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse standards interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.catalog()
			if err != nil {
				return err
			}
			dpi, err := dims.ParseDPI(dpiStr)
			if err != nil {
				return err
			}

			final, err := tea.NewProgram(NewCatalogModel(cat, dpi), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return fmt.Errorf("catalog browser: %w", err)
			}
			m, ok := final.(CatalogModel)
			if !ok || m.Selected == nil {
				return nil
			}
			target, err := dims.Physical(m.Selected.WidthMM, m.Selected.HeightMM, m.DPI)
			if err != nil {
				return err
			}
			out := &resolveOutput{
				Standard: m.Selected.Code,
				Name:     m.Selected.Name,
				WidthMM:  m.Selected.WidthMM,
				HeightMM: m.Selected.HeightMM,
				Target:   target,
			}
			if head, ok := dims.Head(*m.Selected, m.DPI); ok {
				out.Head = &head
			}
			printResolve(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dpiStr, "dpi", "d", "", "initial resolution (default 300)")
	return cmd
}

func printCatalogJSON(cat *catalog.Catalog) error {
	out := struct {
		Sizes  []catalog.SizeStandard  `json:"sizes"`
		Papers []catalog.PaperStandard `json:"papers"`
	}{cat.Sizes(), cat.Papers()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
