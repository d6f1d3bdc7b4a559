// Command leafscan runs one upload-predict-render cycle from the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/leafscan/backend/internal/controller"
	"github.com/leafscan/backend/internal/logging"
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/predict"
	"github.com/leafscan/backend/internal/render"
)

func main() {
	var (
		endpoint   string
		chartOut   string
		previewOut string
		timeout    time.Duration
		logLevel   string
	)
	flag.StringVar(&endpoint, "url", "http://localhost:5000/predict", "Prediction endpoint")
	flag.StringVar(&chartOut, "out", "", "Write the confidence chart here (.svg or .png)")
	flag.StringVar(&previewOut, "preview", "", "Write the preview data URL here")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")
	flag.StringVar(&logLevel, "log", "warn", "Log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: leafscan [flags] <image>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	logging.SetLogLevel(logLevel)

	os.Exit(run(endpoint, flag.Arg(0), chartOut, previewOut, timeout))
}

func run(endpoint, path, chartOut, previewOut string, timeout time.Duration) int {
	var file *models.FileSelection
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		file = models.NewFileSelection(filepath.Base(path), "", data)
	}

	ctrl := controller.New(predict.NewClient(endpoint, predict.WithTimeout(timeout)))
	defer ctrl.Close()

	cycle, err := ctrl.Submit(context.Background(), file)
	if err != nil {
		if st := ctrl.State(); st.Alert != "" {
			fmt.Fprintln(os.Stderr, st.Alert)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		return 2
	}
	if err := cycle.Wait(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	state := ctrl.State()
	fmt.Println(render.ResultText(state.Result))

	if previewOut != "" && state.Preview.DataURL != "" {
		if err := os.WriteFile(previewOut, []byte(state.Preview.DataURL), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}

	if chartOut != "" && state.Chart != nil {
		if err := writeChart(chartOut, state.Chart); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stderr, "chart written to %s\n", chartOut)
	}

	if state.Result.Mode != models.ResultModeReport {
		return 1
	}
	return 0
}

func writeChart(path string, spec *models.ChartSpec) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if filepath.Ext(path) == ".png" {
		return render.WritePNG(spec, f)
	}
	return render.WriteSVG(spec, f)
}
