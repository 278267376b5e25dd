package main

import (
	"fmt"

	"modellbahn-go/layout"
	"modellbahn-go/sim"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the layout and board chain for consistency",
	Long:  `Builds the configured layout, checks that every track output is addressable by the board chain and that the start tracks touch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := sim.LoadConfig(configPath(cmd))
		if err != nil {
			return err
		}
		p, err := sim.Validate(cfg)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		switches := 0
		for _, t := range p.Tracks {
			if t.Kind == layout.KindSwitch {
				switches++
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "layout %q is valid: %d tracks (%d switches) on %d boards, start %s -> %s\n",
			p.Name, len(p.Tracks), switches, len(p.Boards), p.Tracks[p.Last].Label(), p.Tracks[p.Current].Label())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
