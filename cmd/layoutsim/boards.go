package main

import (
	"fmt"
	"text/tabwriter"

	"modellbahn-go/drivers/expansion"
	"modellbahn-go/sim"

	"github.com/spf13/cobra"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Show where each expansion board sits in the SPI frame",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sim.LoadConfig(configPath(cmd))
		if err != nil {
			return err
		}
		p, err := sim.Validate(cfg)
		if err != nil {
			return err
		}
		l := expansion.NewLayout(p.Boards)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "frame: %d bytes, %d boards\n", l.Size(), l.Len())
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "BOARD\tINPUTS\tOUTPUTS\tOFFSET")
		for i := 0; i < l.Len(); i++ {
			b, _ := l.Board(i)
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\n", i, b.Inputs, b.Outputs, l.Offset(i))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(boardsCmd)
}
