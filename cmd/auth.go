package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/teemow/mcp-calendar/internal/config"
	"github.com/teemow/mcp-calendar/internal/google"
	"github.com/teemow/mcp-calendar/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		configPath string
		code       string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Obtain a Google Calendar refresh token",
		Long: `Run the Google OAuth consent flow for the configured client.

The command prints a consent URL. Open it in a browser, approve access, and
paste the authorization code (or the full redirect URL) back into the terminal.
The refresh token is printed to stdout; store it as CALENDAR_REFRESH_TOKEN.

Only CALENDAR_CLIENT_ID, CALENDAR_CLIENT_SECRET and CALENDAR_REDIRECT_URI need
to be configured.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Calendar.ValidateClient(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()
			return runAuth(ctx, google.NewOAuthConfig(cfg.Calendar), code, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code; read from stdin when empty")

	return cmd
}

// runAuth prints the consent URL to errOut, exchanges the code and writes
// only the refresh token to out so it can be captured by scripts.
func runAuth(ctx context.Context, conf *oauth2.Config, code string, in io.Reader, out, errOut io.Writer) error {
	state := uuid.NewString()
	fmt.Fprintf(errOut, "Authorize this app by visiting this URL:\n\n%s\n\n", google.AuthURL(conf, state))

	if code == "" {
		fmt.Fprint(errOut, "Enter the code from that page here: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read authorization code: %w", err)
		}
		code = line
	}

	code, err := extractCode(code, state)
	if err != nil {
		return err
	}

	tok, err := google.ExchangeCode(ctx, conf, code)
	if err != nil {
		return err
	}

	slog.Debug("exchanged authorization code",
		"access_token", logging.SanitizeToken(tok.AccessToken),
		"expiry", tok.Expiry)
	fmt.Fprintln(errOut, "\nYour refresh token is:")
	fmt.Fprintln(out, tok.RefreshToken)
	return nil
}

// extractCode accepts either a bare code or the redirect URL the browser
// landed on. A state mismatch in a pasted URL is rejected.
func extractCode(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("failed to parse redirect URL: %w", err)
	}
	q := u.Query()
	if got := q.Get("state"); got != "" && got != state {
		return "", errors.New("state in redirect URL does not match this session")
	}
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization was denied: %s", e)
	}
	if q.Get("code") == "" {
		return "", errors.New("redirect URL does not contain an authorization code")
	}
	return q.Get("code"), nil
}
