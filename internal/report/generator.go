package report

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/vuhung16au/DVAPI/internal/schema"
)

//go:embed templates/report.html
var reportHTMLTemplate string

// fileTimeLayout is an ISO timestamp with ':' and '.' replaced by '-',
// cut to whole seconds.
const fileTimeLayout = "2006-01-02-15-04-05"

// ---------- Public API ----------

// Build folds the collected results into a report.
func Build(results []schema.ChallengeResult, baseURL string, api schema.APIStatus, now time.Time) schema.Report {
	return schema.Report{
		BaseURL:     baseURL,
		GeneratedAt: now,
		Summary:     Summarize(results),
		API:         api,
		Challenges:  results,
	}
}

// Summarize counts outcomes and captured flags.
func Summarize(results []schema.ChallengeResult) schema.Summary {
	s := schema.Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case schema.OutcomeSuccess:
			s.Success++
		case schema.OutcomeFailed:
			s.Failed++
		case schema.OutcomePartial:
			s.Partial++
		case schema.OutcomeNotRun:
			s.NotRun++
		}
		if r.Flag != "" {
			s.FlagsFound++
		}
	}
	s.SuccessRate = SuccessRate(s.Success, s.Total)
	return s
}

// SuccessRate is success*100/total rounded half up; 0 when total is 0.
func SuccessRate(success, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(success*100)/float64(total) + 0.5))
}

// BaseName returns the timestamped file name prefix shared by every output
// format of one run.
func BaseName(t time.Time) string {
	return "exploit-report-" + t.UTC().Format(fileTimeLayout)
}

// GenerateHTML renders rep into <outDir>/<BaseName>.html, creating outDir.
func GenerateHTML(rep schema.Report, outDir string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create out dir: %w", err)
	}

	var buf bytes.Buffer
	if err := Render(&buf, rep); err != nil {
		return "", err
	}

	htmlPath := filepath.Join(outDir, BaseName(rep.GeneratedAt)+".html")
	if err := os.WriteFile(htmlPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(htmlPath), err)
	}

	return htmlPath, nil
}

// Render executes the report template into w.
func Render(w io.Writer, rep schema.Report) error {
	tmpl, err := template.New("report").Parse(reportHTMLTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	if err := tmpl.Execute(w, buildViewModel(rep)); err != nil {
		return fmt.Errorf("execute template: %w", err)
	}
	return nil
}

var ErrChromeNotFound = errors.New("chrome not found")

// GeneratePDF prints the HTML report to a PDF next to it using headless
// Chrome.
func GeneratePDF(ctx context.Context, htmlPath string) (string, error) {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return "", fmt.Errorf("resolve html path: %w", err)
	}
	pdfPath := strings.TrimSuffix(abs, ".html") + ".pdf"

	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(ctx,
		chromedp.Navigate("file://"+filepath.ToSlash(abs)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			return err
		}),
	)
	if errors.Is(err, exec.ErrNotFound) {
		return "", ErrChromeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("chromedp: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdf, 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", filepath.Base(pdfPath), err)
	}
	return pdfPath, nil
}

// ---------- View Model & helpers ----------

type viewModel struct {
	Title       string
	BaseURL     string
	Summary     schema.Summary
	API         schema.APIStatus
	Rows        []challengeRow
	Generator   string
	GeneratedAt string
}

// Vulnerability and Flag are inserted as-is. Notes only get '<' and '>'
// escaped.
type challengeRow struct {
	Challenge     string
	Vulnerability template.HTML
	StatusClass   string
	StatusLabel   string
	Flag          template.HTML
	Notes         template.HTML
}

type badge struct {
	class string
	label string
}

var badges = map[schema.Outcome]badge{
	schema.OutcomeSuccess: {"status-success", "✅ Success"},
	schema.OutcomeFailed:  {"status-failed", "❌ Failed"},
	schema.OutcomePartial: {"status-partial", "⚠️ Partial"},
	schema.OutcomeNotRun:  {"status-not-run", "⏸️ Not Run"},
}

var notesEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

func buildViewModel(rep schema.Report) viewModel {
	rows := make([]challengeRow, 0, len(rep.Challenges))
	for _, c := range rep.Challenges {
		b, ok := badges[c.Status]
		if !ok {
			b = badges[schema.OutcomeNotRun]
		}
		rows = append(rows, challengeRow{
			Challenge:     c.Challenge,
			Vulnerability: template.HTML(c.Vulnerability),
			StatusClass:   b.class,
			StatusLabel:   b.label,
			Flag:          template.HTML(c.Flag),
			Notes:         template.HTML(notesEscaper.Replace(c.Notes)),
		})
	}

	return viewModel{
		Title:       "DVAPI Exploit Report",
		BaseURL:     rep.BaseURL,
		Summary:     rep.Summary,
		API:         rep.API,
		Rows:        rows,
		Generator:   "DVAPI",
		GeneratedAt: rep.GeneratedAt.Local().Format("1/2/2006, 3:04:05 PM"),
	}
}
