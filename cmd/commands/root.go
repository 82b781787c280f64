package commands

// Root command for Cobra CLI
// Running the binary without a subcommand renders the chart

import (
	"blog-charts/internal/infra/config"

	"github.com/spf13/cobra"
)

// newRootCmd builds a fresh command tree, so flag state never leaks between runs.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blog-charts",
		Short: "Blog charts - renders \"The automation gap\" line chart to PNG",
		Long: `Blog charts renders the "Testing times" article chart: AI adoption in testing versus
maintenance burden reduction, 2018-2025, as a print-resolution PNG. It can also post the
result to a Telegram chat.`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRender,
	}

	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRenderCmd())
	rootCmd.AddCommand(newPublishCmd())
	return rootCmd
}

func Execute() error {
	return newRootCmd().Execute()
}
