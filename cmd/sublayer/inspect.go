package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/go-spatial/cobra"

	"github.com/atlasdatatech/sublayer/composite"
	"github.com/atlasdatatech/sublayer/sublayer"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Short:   "Load the layers and print the state of every sublayer",
	PreRunE: initLayers,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, l := range layers {
			l.WaitSymbology()
		}
		return printLayers(cmd.OutOrStdout(), layers)
	},
}

func optional[T any](o sublayer.Optional[T]) string {
	v, ok := o.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprint(v)
}

func printLayers(out io.Writer, layers []*composite.Layer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LAYER\tINDEX\tNAME\tRESOLVED\tVISIBLE\tOPACITY\tTYPE\tGEOMETRY\tFEATURES\tSYMBOLS")

	for _, l := range layers {
		for _, s := range l.Sublayers() {
			f := s.Facade()
			opacity, geomType, fcount := "-", "-", "-"
			if d, ok := f.(*sublayer.Dynamic); ok {
				opacity = fmt.Sprintf("%.2f", d.Opacity())
				geomType = optional(d.GeometryType())
				fcount = optional(d.FeatureCount())
			}
			fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
				l.ID, s.Index(), f.Name(), f.Resolved(), f.Visible(), opacity,
				optional(f.LayerType()), geomType, fcount, f.Symbology().Len())
		}
	}
	return w.Flush()
}
