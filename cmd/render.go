package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fieldcalc/fieldcalc/api"
	"github.com/fieldcalc/fieldcalc/core"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const numberFormat = "#,###.###"

func number(f float64) string {
	return humanize.FormatFloat(numberFormat, f)
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func renderPower(w io.Writer, res api.ReactivePowerResult) {
	table := newTable(w, "MVAR", "Valid", "Error")
	table.Append([]string{number(res.ReactivePower), core.Presence[res.Valid], res.Error})
	table.Render()
}

func renderConsumption(w io.Writer, d api.Directive, res api.ConsumptionResult) {
	table := newTable(w, "", "33 kV", "132 kV")
	table.SetFooter([]string{"Difference", "", number(res.DisplayedDifference)})

	table.AppendBulk([][]string{
		{"Delta", number(res.DeltaLow), number(res.DeltaHigh)},
		{"Net", number(res.NormalizedLow), number(res.NormalizedHigh)},
		{"Reading (" + d.String() + ")", "", number(res.AdjustedHighReading)},
	})

	table.Render()

	if !res.Valid {
		fmt.Fprintf(w, "%s invalid: %s\n", core.Presence[false], res.Error)
	}
}

func renderAudit(w io.Writer, format string, entries []api.AuditEntry) error {
	switch strings.ToLower(format) {
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(entries)

	case "table", "":
		table := newTable(w, "Time", "Adjustment", "Original 132", "Adjusted 132", "Net 33", "Net 132")
		for _, e := range entries {
			table.Append([]string{
				humanize.Time(e.Timestamp),
				e.Directive.String(),
				number(e.OriginalHighReading),
				number(e.AdjustedHighReading),
				number(e.NormalizedLow),
				number(e.NormalizedHigh),
			})
		}
		table.Render()
		return nil

	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}
