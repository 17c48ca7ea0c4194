package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vuhung16au/DVAPI/internal/exploitlog"
	"github.com/vuhung16au/DVAPI/internal/schema"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func flagServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/flag":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"flag":"flag{bola_owned}"}`)
		case "/api/denied":
			w.WriteHeader(http.StatusForbidden)
			_, _ = io.WriteString(w, "forbidden")
		default:
			_, _ = io.WriteString(w, "hello")
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestParseHeaders(t *testing.T) {
	h, err := parseHeaders([]string{"Authorization: Bearer abc", "X-Test:1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc", "X-Test": "1"}, h)

	_, err = parseHeaders([]string{"nocolon"})
	assert.Error(t, err)
	_, err = parseHeaders([]string{": value"})
	assert.Error(t, err)
}

func TestParseFormats(t *testing.T) {
	f, err := parseFormats(" HTML, json ,,pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"html", "json", "pdf"}, f)

	_, err = parseFormats("html,docx")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a\nb\n", 10))
	assert.Equal(t, "abc...", truncate("abcdef", 3))
}

func TestExploitCapturesFlag(t *testing.T) {
	srv := flagServer(t)
	logs := t.TempDir()

	out, err := runCLI(t, "", "exploit", "0xa1", srv.URL+"/api/flag", "--logs", logs)
	require.NoError(t, err)
	assert.Contains(t, out, "✅ FLAG FOUND: flag{bola_owned}")
	assert.Contains(t, out, `Response 200 (json): {"flag":"flag{bola_owned}"}`)

	flagData, err := os.ReadFile(exploitlog.FlagPath(logs, "0xa1"))
	require.NoError(t, err)
	assert.Equal(t, "flag{bola_owned}", string(flagData))

	rec, ok, err := exploitlog.LoadRecord(logs, "0xa1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schema.OutcomeSuccess, rec.Status)
	assert.Equal(t, "flag{bola_owned}", rec.Flag)
}

func TestExploitDenied(t *testing.T) {
	srv := flagServer(t)
	logs := t.TempDir()

	_, err := runCLI(t, "", "exploit", "0xa5", srv.URL+"/api/denied", "--logs", logs, "-X", "post", "-d", "{}")
	require.NoError(t, err)

	logData, err := os.ReadFile(exploitlog.LogPath(logs, "0xa5"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Sending POST "+srv.URL+"/api/denied")
	assert.Contains(t, string(logData), "Response 403 (text): forbidden")
	assert.Contains(t, string(logData), "❌ Request failed with 403")

	rec, ok, err := exploitlog.LoadRecord(logs, "0xa5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schema.OutcomeFailed, rec.Status)
}

func TestExploitNoFlag(t *testing.T) {
	srv := flagServer(t)
	logs := t.TempDir()

	_, err := runCLI(t, "", "exploit", "0xa8", srv.URL+"/", "--logs", logs)
	require.NoError(t, err)

	rec, ok, err := exploitlog.LoadRecord(logs, "0xa8")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, schema.OutcomePartial, rec.Status)
	_, err = os.Stat(exploitlog.FlagPath(logs, "0xa8"))
	assert.True(t, os.IsNotExist(err))
}

func TestExploitUnknownChallenge(t *testing.T) {
	_, err := runCLI(t, "", "exploit", "0xff", "http://localhost", "--logs", t.TempDir())
	assert.ErrorContains(t, err, "unknown challenge")
}

func TestExtract(t *testing.T) {
	out, err := runCLI(t, "resp: FLAG{Upper} and flag{two}", "extract")
	require.NoError(t, err)
	assert.Equal(t, "FLAG{Upper}\n", out)

	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("x flag{file} y"), 0o644))
	out, err = runCLI(t, "", "extract", path)
	require.NoError(t, err)
	assert.Equal(t, "flag{file}\n", out)

	_, err = runCLI(t, "nothing here", "extract")
	assert.ErrorIs(t, err, errNoFlag)
}

func TestReportEndToEnd(t *testing.T) {
	srv := flagServer(t)
	logs := t.TempDir()
	reports := filepath.Join(t.TempDir(), "reports")

	_, err := runCLI(t, "", "exploit", "0xa1", srv.URL+"/api/flag", "--logs", logs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(exploitlog.LogPath(logs, "0xa2"), []byte("Request failed with 403\n"), 0o644))
	require.NoError(t, os.WriteFile(exploitlog.LogPath(logs, "0xff"), []byte("flag found"), 0o644))

	out, err := runCLI(t, "", "report", srv.URL, reports, "--logs", logs, "--format", "html,json", "--probe")
	require.NoError(t, err)
	assert.Contains(t, out, "HTML report generated")
	assert.Contains(t, out, "1/10 successful (10%)")

	htmlFiles, err := filepath.Glob(filepath.Join(reports, "exploit-report-*.html"))
	require.NoError(t, err)
	require.Len(t, htmlFiles, 1)

	html, err := os.ReadFile(htmlFiles[0])
	require.NoError(t, err)
	assert.Equal(t, 10, strings.Count(string(html), "<td><strong>"))
	assert.Contains(t, string(html), `<span class="flag">flag{bola_owned}</span>`)
	assert.Contains(t, string(html), "Running at "+srv.URL)
	assert.Contains(t, string(html), "<strong>Probe:</strong> HTTP 200")

	jsonFiles, err := filepath.Glob(filepath.Join(reports, "exploit-report-*.json"))
	require.NoError(t, err)
	require.Len(t, jsonFiles, 1)

	data, err := os.ReadFile(jsonFiles[0])
	require.NoError(t, err)
	var rep schema.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	require.Len(t, rep.Challenges, 10)
	assert.Equal(t, schema.OutcomeSuccess, rep.Challenges[0].Status)
	assert.Equal(t, schema.OutcomeFailed, rep.Challenges[1].Status)
	assert.Equal(t, 8, rep.Summary.NotRun)
	assert.Equal(t, 10, rep.Summary.SuccessRate)
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	_, err := runCLI(t, "", "report", "http://x", t.TempDir(), "--logs", t.TempDir(), "--format", "docx")
	assert.ErrorContains(t, err, "unknown report format")
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "dvapi v"+Version+"\n", out)
}
