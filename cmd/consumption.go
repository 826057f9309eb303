package cmd

import (
	"errors"

	"github.com/fieldcalc/fieldcalc/api"
	"github.com/spf13/cobra"
)

var consumptionCmd = &cobra.Command{
	Use:   "consumption",
	Short: "Calculate feeder and transformer consumption",
	Args:  cobra.NoArgs,
	RunE:  runConsumption,
}

func init() {
	rootCmd.AddCommand(consumptionCmd)

	flags := consumptionCmd.Flags()
	flags.String("today33", "", "Today's 33 kV feeder reading")
	flags.String("previous33", "", "Previous 33 kV feeder reading")
	flags.String("today132", "", "Today's 132 kV transformer reading")
	flags.String("previous132", "", "Previous 132 kV transformer reading")
	flags.StringP("adjust", "a", api.TokenAuto, "Adjustment (Auto, Equal or offset)")
}

func consumptionInputs(cmd *cobra.Command) (api.ConsumptionInputs, error) {
	flags := cmd.Flags()

	var in api.ConsumptionInputs
	for key, val := range map[string]*string{
		"today33":     &in.Today33,
		"previous33":  &in.Previous33,
		"today132":    &in.Today132,
		"previous132": &in.Previous132,
	} {
		s, err := flags.GetString(key)
		if err != nil {
			return in, err
		}
		*val = s
	}

	adjust, err := flags.GetString("adjust")
	if err != nil {
		return in, err
	}

	in.Adjustment, err = api.ParseDirective(adjust)

	return in, err
}

func runConsumption(cmd *cobra.Command, args []string) error {
	in, err := consumptionInputs(cmd)
	if err != nil {
		return err
	}

	configure()

	dispatcher, closeAudit, err := configureAudit(conf.Audit)
	if err != nil {
		return err
	}
	defer closeAudit()

	calc, err := configureCalculator(conf.Calculator, dispatcher)
	if err != nil {
		return err
	}

	res, ok := calc.Consumption(in)
	if !ok {
		return errors.New("insufficient readings")
	}

	renderConsumption(cmd.OutOrStdout(), in.Adjustment, res)

	return nil
}
