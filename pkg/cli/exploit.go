package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vuhung16au/DVAPI/internal/challenges"
	"github.com/vuhung16au/DVAPI/internal/exploitlog"
	"github.com/vuhung16au/DVAPI/internal/flag"
	"github.com/vuhung16au/DVAPI/internal/httpclient"
	"github.com/vuhung16au/DVAPI/internal/schema"
)

const maxLoggedBody = 500

func newExploitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exploit <challengeId> <url>",
		Short: "Send one request for a challenge, logging the response and any flag",
		Example: `dvapi exploit 0xa1 http://localhost:3000/api/user/2 -H "Authorization: Bearer $TOKEN"
dvapi exploit 0xa2 http://localhost:3000/api/login -X POST -d '{"username":"admin","password":"admin"}'`,
		Args: cobra.ExactArgs(2),
		RunE: runExploit,
	}

	cmd.Flags().StringP("method", "X", "GET", "HTTP method")
	cmd.Flags().StringArrayP("header", "H", nil, "Request header as 'Name: value' (repeatable)")
	cmd.Flags().StringP("data", "d", "", "Request body sent verbatim")
	return cmd
}

func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, want 'Name: value'", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func runExploit(cmd *cobra.Command, args []string) error {
	challenge, url := args[0], args[1]
	if !challenges.Known(challenge) {
		return fmt.Errorf("unknown challenge %q (want one of %s)", challenge, strings.Join(challenges.IDs(), ", "))
	}

	method, _ := cmd.Flags().GetString("method")
	rawHeaders, _ := cmd.Flags().GetStringArray("header")
	body, _ := cmd.Flags().GetString("data")
	headers, err := parseHeaders(rawHeaders)
	if err != nil {
		return err
	}

	logsDir := viper.GetString("logs_dir")
	if err := exploitlog.EnsureDir(logsDir); err != nil {
		return err
	}
	logger := exploitlog.New(logsDir, challenge, exploitlog.WithStdout(cmd.OutOrStdout()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	status, found, err := exploit(ctx, logger, url, httpclient.Options{
		Method:  strings.ToUpper(method),
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return err
	}
	if err := logger.Record(status, found); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"challenge": logger.Challenge(),
		"status":    status,
		"record":    exploitlog.RecordPath(logsDir, logger.Challenge()),
	}).Debug("Recorded outcome")
	return nil
}

// exploit sends the request and logs what happened using the phrases the
// report classifier looks for.
func exploit(ctx context.Context, logger *exploitlog.Logger, url string, opts httpclient.Options) (schema.Outcome, string, error) {
	if err := logger.Logf("Sending %s %s", opts.Method, url); err != nil {
		return "", "", err
	}

	res := httpclient.New().Request(ctx, url, opts)
	if res.Error != "" {
		err := logger.Logf("%s Request failed: %s", exploitlog.FailureGlyph, res.Error)
		return schema.OutcomeFailed, "", err
	}

	kind := "text"
	if res.JSON {
		kind = "json"
	}
	if err := logger.Logf("Response %d (%s): %s", res.Status, kind, truncate(res.Text, maxLoggedBody)); err != nil {
		return "", "", err
	}

	if found := flag.Extract(res.Text); found != "" {
		return schema.OutcomeSuccess, found, logger.SaveFlag(found)
	}
	if !res.OK {
		err := logger.Logf("%s Request failed with %d", exploitlog.FailureGlyph, res.Status)
		return schema.OutcomeFailed, "", err
	}
	return schema.OutcomePartial, "", logger.Log("No flag in response")
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n]) + "..."
}
