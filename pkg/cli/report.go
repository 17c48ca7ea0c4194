package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vuhung16au/DVAPI/internal/httpclient"
	"github.com/vuhung16au/DVAPI/internal/outcome"
	reportpkg "github.com/vuhung16au/DVAPI/internal/report"
	"github.com/vuhung16au/DVAPI/internal/schema"
	"github.com/vuhung16au/DVAPI/internal/ui"
	"github.com/vuhung16au/DVAPI/pkg/utils"
)

var validFormats = []string{"html", "json", "pdf"}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report [baseUrl] [reportsDir]",
		Short:   "Generate an HTML report from the exploit logs",
		Example: "dvapi report http://localhost:3000 ./reports --logs ./logs --format html,json",
		Args:    cobra.MaximumNArgs(2),
		RunE:    runReport,
	}

	cmd.Flags().String("format", "html", "Output formats: html,json,pdf (html is always written)")
	cmd.Flags().Bool("probe", false, "Send one GET to the base URL and include the result")

	_ = viper.BindPFlag("report.format", cmd.Flags().Lookup("format"))
	_ = viper.BindPFlag("report.probe", cmd.Flags().Lookup("probe"))
	return cmd
}

// reportTargets applies the positional [baseUrl] [reportsDir] over config.
func reportTargets(args []string) (baseURL, reportsDir string) {
	baseURL = viper.GetString("base_url")
	reportsDir = viper.GetString("reports_dir")
	if len(args) > 0 && args[0] != "" {
		baseURL = args[0]
	}
	if len(args) > 1 && args[1] != "" {
		reportsDir = args[1]
	}
	return baseURL, reportsDir
}

func parseFormats(raw string) ([]string, error) {
	var formats []string
	for _, f := range strings.Split(raw, ",") {
		f = strings.TrimSpace(strings.ToLower(f))
		if f == "" {
			continue
		}
		if !contains(validFormats, f) {
			return nil, fmt.Errorf("unknown report format %q", f)
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	baseURL, reportsDir := reportTargets(args)
	logsDir := viper.GetString("logs_dir")
	formats, err := parseFormats(viper.GetString("report.format"))
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"base_url":    baseURL,
		"reports_dir": reportsDir,
	})
	log.Debug("Generating report")

	results, err := outcome.NewCollector(logsDir, log).CollectAll()
	if err != nil {
		return err
	}

	var api schema.APIStatus
	if viper.GetBool("report.probe") {
		api = probeAPI(cmd.Context(), baseURL)
	}

	rep := reportpkg.Build(results, baseURL, api, time.Now())
	htmlPath, err := reportpkg.GenerateHTML(rep, reportsDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	ui.PrintSummary(out, rep)
	fmt.Fprintf(out, "✅ HTML report generated: %s\n", htmlPath)
	if abs, err := filepath.Abs(htmlPath); err == nil {
		fmt.Fprintf(out, "   Open in browser: file://%s\n", abs)
	}

	if contains(formats, "json") {
		jsonPath, err := utils.SaveJSON(rep, filepath.Join(reportsDir, reportpkg.BaseName(rep.GeneratedAt)+".json"))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "📦 JSON report: %s\n", jsonPath)
	}

	// Optional PDF (Chromedp-based)
	if contains(formats, "pdf") {
		pdfPath, err := reportpkg.GeneratePDF(cmd.Context(), htmlPath)
		switch {
		case errors.Is(err, reportpkg.ErrChromeNotFound):
			fmt.Fprintf(out, "⚠️  PDF skipped: %v\n", err)
		case err != nil:
			fmt.Fprintf(out, "⚠️  PDF generation failed: %v\n", err)
		default:
			fmt.Fprintf(out, "📄 PDF report:  %s\n", pdfPath)
		}
	}

	return nil
}

func probeAPI(ctx context.Context, baseURL string) schema.APIStatus {
	if ctx == nil {
		ctx = context.Background()
	}
	res := httpclient.New().Request(ctx, baseURL, httpclient.Options{})
	if res.Error != "" {
		logrus.WithField("base_url", baseURL).WithField("error", res.Error).Warn("API probe failed")
		return schema.APIStatus{Probed: true, Error: res.Error}
	}
	return schema.APIStatus{Probed: true, StatusCode: res.Status}
}

func contains(arr []string, v string) bool {
	for _, x := range arr {
		if x == v {
			return true
		}
	}
	return false
}
