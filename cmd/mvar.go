package cmd

import (
	"errors"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/core"
	"github.com/spf13/cobra"
)

var mvarCmd = &cobra.Command{
	Use:   "mvar <mw> <mva>",
	Short: "Calculate reactive power from real and apparent power",
	Args:  cobra.ExactArgs(2),
	RunE:  runMvar,
}

func init() {
	rootCmd.AddCommand(mvarCmd)
}

func runMvar(cmd *cobra.Command, args []string) error {
	configure()

	rounding, err := core.RoundingString(conf.Calculator.Rounding)
	if err != nil {
		return err
	}

	res, ok := core.NewCalculator(rounding, nil).ReactivePower(api.PowerInputs{MW: args[0], MVA: args[1]})
	if !ok {
		return errors.New("mw and mva must be numbers")
	}

	renderPower(cmd.OutOrStdout(), res)

	return nil
}
