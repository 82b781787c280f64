package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"blog-charts/internal/features/charts"
	storage "blog-charts/internal/infra/fs"
)

// go run etc/tools/test_chart.go
// in etc/charts/testing-times-ai-gap.png
func main() {
	fmt.Println("Generating test chart...")

	fonts, err := charts.LoadFonts(charts.FontOptions{})
	if err != nil {
		fmt.Printf("Error loading fonts: %v\n", err)
		os.Exit(1)
	}

	style := charts.DefaultStyle()
	style.OutputPath = filepath.Join("etc", "charts", filepath.Base(style.OutputPath))

	res, err := charts.NewRenderer(storage.NewOsStore(true), fonts).RenderAutomationGap(context.Background(), style)
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s (%dx%d, %d bytes, font %s)\n",
		res.Path, res.Width, res.Height, res.Size, fonts.Source)
	fmt.Println("Open the file to see the result!")
}
