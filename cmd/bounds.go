package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/taxiblocks/internal/census"
)

var boundsCmd = &cobra.Command{
	Use:   "bounds",
	Short: "Print the bounding box of the census block map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Flags().Changed("data-dir") {
			cfg.Data.Dir, _ = cmd.Flags().GetString("data-dir")
		}

		blocks, err := census.Load(cfg.Data.Resolve(cfg.Data.BlocksFile))
		if err != nil {
			return eris.Wrap(err, "bounds")
		}
		box := census.ComputeBounds(blocks)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return writeBoundsJSON(os.Stdout, box)
		}
		formatBounds(os.Stdout, blocks.Len(), box)
		return nil
	},
}

func writeBoundsJSON(out io.Writer, box census.BBox) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(box), "bounds: encode")
}

func formatBounds(out io.Writer, blocks int, box census.BBox) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Blocks:\t%d\n", blocks)
	_, _ = fmt.Fprintf(w, "Latitude:\t%.6f\t%.6f\n", box.MinLat, box.MaxLat)
	_, _ = fmt.Fprintf(w, "Longitude:\t%.6f\t%.6f\n", box.MinLon, box.MaxLon)
	_ = w.Flush()
}

func init() {
	boundsCmd.Flags().String("data-dir", "", "directory holding the block file (overrides data.dir)")
	boundsCmd.Flags().Bool("json", false, "print the box as JSON")
	rootCmd.AddCommand(boundsCmd)
}
