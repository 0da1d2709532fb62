package main

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/born-ml/conformance/internal/conformance"
	"github.com/born-ml/conformance/internal/tensor"
)

// NewListCmd prints the available fixtures.
func NewListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list [PREFIX]",
		Aliases: []string{"ls"},
		Short:   "List fixtures",
		Args:    cobra.MaximumNArgs(1),
		RunE:    listHandler,
	}

	return cmd
}

func listHandler(cmd *cobra.Command, args []string) error {
	var data [][]string

	for _, c := range conformance.SplitCases() {
		if len(args) > 0 && !strings.HasPrefix(c.Name, args[0]) {
			continue
		}
		minOpset := "-"
		if c.MinOpset > 0 {
			minOpset = strconv.FormatInt(c.MinOpset, 10)
		}
		data = append(data, []string{c.Name, shapes(c.Inputs), shapes(c.Outputs), minOpset})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"NAME", "INPUTS", "OUTPUTS", "MIN OPSET"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func shapes(ts []*tensor.RawTensor) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
