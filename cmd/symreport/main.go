// Command symreport inspects the stats.csv files written by the simulation runner.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/symsoup/telemetry"
)

var (
	plotColumn string
	plotHeight int
	plotWidth  int
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ccff")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")).Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#444466"))
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "symreport",
		Short:        "inspect host/symbiont telemetry",
		SilenceUsage: true,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [stats.csv]",
		Short: "plot one column over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotStats,
	}
	plotCmd.Flags().StringVar(&plotColumn, "column", "hosts", "column to plot")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height in rows")
	plotCmd.Flags().IntVar(&plotWidth, "width", 0, "plot width in columns (0 = one per window)")

	summaryCmd := &cobra.Command{
		Use:   "summary [stats.csv]",
		Short: "min, mean, max and final value of every column",
		Args:  cobra.ExactArgs(1),
		RunE:  summarizeStats,
	}

	columnsCmd := &cobra.Command{
		Use:   "columns",
		Short: "list plottable columns",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range columnNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	rootCmd.AddCommand(plotCmd, summaryCmd, columnsCmd)
	return rootCmd
}

func plotStats(cmd *cobra.Command, args []string) error {
	rows, err := telemetry.ReadStats(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s has no rows", args[0])
	}

	data, err := series(rows, plotColumn)
	if err != nil {
		return err
	}

	opts := []asciigraph.Option{
		asciigraph.Height(plotHeight),
		asciigraph.Caption(fmt.Sprintf("%s (updates %d-%d)", plotColumn, rows[0].Update, rows[len(rows)-1].Update)),
	}
	if plotWidth > 0 {
		opts = append(opts, asciigraph.Width(plotWidth))
	}

	fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(data, opts...))
	return nil
}

func summarizeStats(cmd *cobra.Command, args []string) error {
	rows, err := telemetry.ReadStats(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s has no rows", args[0])
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("column", "min", "mean", "max", "last").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			}
			return cellStyle
		})

	for _, s := range summarize(rows) {
		t.Row(s.Column, formatValue(s.Min), formatValue(s.Mean), formatValue(s.Max), formatValue(s.Last))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d windows, updates %d-%d\n", args[0], len(rows), rows[0].Update, rows[len(rows)-1].Update)
	fmt.Fprintln(cmd.OutOrStdout(), t.Render())
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 5, 64)
}
