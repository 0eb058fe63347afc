package main

import (
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/TrevorS/bahc"
	"github.com/TrevorS/bahc/internal/matrixio"
)

func newLinkageCmd() *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "linkage",
		Short: "Print the average-linkage tree of a sample's correlations",
		Long: `Linkage clusters the series of the sample on the distance 1 - correlation
and prints the merge rows as CSV: left, right, distance, size. Leaves are
numbered from 0 and the cluster made by row i has id N+i.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := readSample(cmd, input)
			if err != nil {
				return err
			}
			corr, err := bahc.Correlation(sample)
			if err != nil {
				return err
			}
			n := corr.SymmetricDim()
			link, err := bahc.AverageLinkage{}.Link(bahc.Condensed(bahc.CorrelationDistance(corr)), n)
			if err != nil {
				return err
			}
			rows := link.Rows()
			data := make([]float64, 0, 4*len(rows))
			for _, r := range rows {
				data = append(data, r[:]...)
			}
			return matrixio.WriteCSV(cmd.OutOrStdout(), mat.NewDense(len(rows), 4, data))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "Sample CSV, one series per row (- for stdin)")
	return cmd
}
