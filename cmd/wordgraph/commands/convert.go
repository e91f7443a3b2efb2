package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gyaneshwarpardhi/wordgraph/internal/codec"
)

var (
	convertFrom string
	convertTo   string
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a snapshot between formats",
	Long: `Read a snapshot and write it in another format, for example

    wordgraph convert graph.json.xz graph.dot

Formats are picked from the file extensions unless --from/--to are given.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, out := args[0], args[1]
		codecs := codec.Default()
		dec, err := codecs.Resolve(convertFrom, in)
		if err != nil {
			return err
		}
		enc, err := codecs.Resolve(convertTo, out)
		if err != nil {
			return err
		}
		snap, err := codec.LoadFile(dec, in)
		if err != nil {
			return err
		}
		if err := codec.SaveFile(enc, out, snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) -> %s (%s): %d nodes, %d edges\n",
			in, dec.Format(), out, enc.Format(), len(snap.Nodes), len(snap.Edges))
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Input format (default by extension)")
	convertCmd.Flags().StringVar(&convertTo, "to", "", "Output format (default by extension)")
}
