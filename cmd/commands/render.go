package commands

// Command to render the chart to the configured output path

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"blog-charts/internal/features/charts"
	"blog-charts/internal/infra/config"
	storage "blog-charts/internal/infra/fs"
	logging "blog-charts/internal/infra/log"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render the chart to PNG (default)",
		Long:  `Render "The automation gap" chart and write it to chart.output_path (assets/charts/testing-times-ai-gap.png by default).`,
		RunE:  runRender,
	}
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadAndInit(cmd)
	if err != nil {
		return err
	}
	defer logging.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	res, err := renderChart(ctx, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Chart saved successfully")
	logging.LogInfo("Chart saved successfully",
		zap.String("path", res.Path),
		zap.Int64("duration_ms", res.Duration.Milliseconds()))
	return nil
}

// loadAndInit reads configuration from the command's flags and sets up logging.
func loadAndInit(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Init(logging.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// renderChart draws the built-in dataset with the house style, adjusted by cfg.
func renderChart(ctx context.Context, cfg *config.Config) (*charts.Result, error) {
	fonts, err := charts.LoadFonts(charts.FontOptions{
		Regular:      cfg.Fonts.Regular,
		Bold:         cfg.Fonts.Bold,
		EmbeddedOnly: cfg.Fonts.EmbeddedOnly,
	})
	if err != nil {
		logging.LogError("Failed to load fonts", zap.Error(err))
		return nil, err
	}

	style := charts.DefaultStyle()
	style.OutputPath = cfg.Chart.OutputPath
	style.DPI = cfg.Chart.DPI

	renderer := charts.NewRenderer(storage.NewOsStore(cfg.Chart.Mkdir), fonts)
	res, err := renderer.RenderAutomationGap(ctx, style)
	if err != nil {
		logging.LogError("Failed to render chart", zap.String("path", style.OutputPath), zap.Error(err))
		return nil, err
	}
	return res, nil
}
