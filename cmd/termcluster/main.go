// Command termcluster assigns groups of weighted terms to centroid clusters.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "termcluster",
		Short: "Assign groups of weighted terms to the best matching centroid",
		Long: `termcluster scores each group's (term, weight) observations against K
sparse centroids and assigns the group to the cluster with the highest
similarity. Ties go to the lowest cluster index; groups without any match
are assigned cluster 0.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "termcluster.yaml", "Worker configuration file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "termcluster v%s (%s)\n", version, commit)
		},
	})

	assignCmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign every group in a rows CSV to a cluster",
		Long: `Reads rows "group,term,weight" (an empty term or weight is null) and
prints "group,cluster" for every group, sorted by group.`,
		RunE: runAssign,
	}
	assignCmd.Flags().String("rows", "-", "Rows CSV file, - for stdin")
	assignCmd.Flags().Int("partitions", 0, "Override run.partitions")
	assignCmd.Flags().String("shape", "", "Override run.shape (left-deep, balanced, random)")
	assignCmd.Flags().String("metrics-out", "", "Write Prometheus metrics in text format to this file")
	rootCmd.AddCommand(assignCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Print the loaded centroid table as canonical CSV",
		RunE:  runExport,
	}
	rootCmd.AddCommand(exportCmd)

	publishCmd := &cobra.Command{
		Use:   "publish [file]",
		Short: "Validate a centroid CSV and upload it to the configured store",
		Long: `Parses the file with the configured clusters and normalizer, writes it in
canonical form under --name (compressed by extension: .zst, .lz4) and, when
source.version_table is configured, records it as the current version.`,
		Args: cobra.ExactArgs(1),
		RunE: runPublish,
	}
	publishCmd.Flags().String("name", "", "Blob name (required)")
	_ = publishCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(publishCmd)

	return rootCmd
}
