// Package auth obtains an authorized HTTP client for the Coordinate API via
// the OAuth2 installed-application flow. The user's token is persisted to a
// local file between runs and refreshed transparently.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// oobRedirectURL is the out-of-band redirect for installed applications: the
// consent page displays a verification code for the user to paste back.
const oobRedirectURL = "urn:ietf:wg:oauth:2.0:oob"

// Service runs the installed-application consent flow and hands out HTTP
// clients that attach and refresh the user's bearer token.
type Service struct {
	scope           string
	clientSecrets   string
	credentialsFile string
	logger          arbor.ILogger

	// Consent I/O, swappable for tests. Defaults to stdin/stderr.
	consentIn  io.Reader
	consentOut io.Writer
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithConsentIO redirects the consent prompt and the verification-code input.
func WithConsentIO(in io.Reader, out io.Writer) Option {
	return func(s *Service) {
		s.consentIn = in
		s.consentOut = out
	}
}

// NewService creates an auth service for the given OAuth scope, reading the
// client identity from clientSecrets and persisting the user token to
// credentialsFile.
func NewService(scope, clientSecrets, credentialsFile string, opts ...Option) *Service {
	s := &Service{
		scope:           scope,
		clientSecrets:   clientSecrets,
		credentialsFile: credentialsFile,
		consentIn:       os.Stdin,
		consentOut:      os.Stderr,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Client returns an *http.Client that attaches the user's bearer token to
// every outgoing request and refreshes it transparently when expired. A
// stored credential is reused when present; otherwise the interactive consent
// flow runs and the resulting token is persisted for future runs.
func (s *Service) Client(ctx context.Context) (*http.Client, error) {
	data, err := os.ReadFile(s.clientSecrets)
	if err != nil {
		return nil, &ConfigError{Path: s.clientSecrets, Help: ClientSecretsHelp, Err: err}
	}

	conf, err := google.ConfigFromJSON(data, s.scope)
	if err != nil {
		return nil, &ConfigError{Path: s.clientSecrets, Help: ClientSecretsHelp, Err: err}
	}
	if conf.RedirectURL == "" {
		conf.RedirectURL = oobRedirectURL
	}

	token, err := s.loadToken()
	if err != nil || (!token.Valid() && token.RefreshToken == "") {
		if err != nil && s.logger != nil {
			s.logger.Debug().Str("path", s.credentialsFile).Err(err).Msg("No stored credential, running consent flow")
		}

		token, err = s.runConsentFlow(ctx, conf)
		if err != nil {
			return nil, err
		}

		if err := s.saveToken(token); err != nil {
			return nil, fmt.Errorf("failed to persist credential to %s: %w", s.credentialsFile, err)
		}

		if s.logger != nil {
			s.logger.Info().Str("path", s.credentialsFile).Msg("Credential stored")
		}
	}

	source := &savingTokenSource{
		source:  conf.TokenSource(ctx, token),
		service: s,
		last:    token,
	}

	return oauth2.NewClient(ctx, source), nil
}

// runConsentFlow walks the user through the interactive consent page and
// exchanges the pasted verification code for a token.
func (s *Service) runConsentFlow(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	authURL := conf.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Fprintf(s.consentOut, "Open the following URL in your browser, click \"Accept\", then paste the verification code here.\n\n%s\n\nCode: ", authURL)

	var code string
	if _, err := fmt.Fscan(s.consentIn, &code); err != nil {
		return nil, fmt.Errorf("failed to read verification code: %w", err)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("consent flow failed: %w", err)
	}

	return token, nil
}

func (s *Service) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to parse stored credential: %w", err)
	}

	return &token, nil
}

func (s *Service) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.credentialsFile, data, 0600)
}

// savingTokenSource persists refreshed tokens so the next run skips the
// consent flow even after the original access token has expired.
type savingTokenSource struct {
	source  oauth2.TokenSource
	service *Service
	last    *oauth2.Token
}

func (t *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := t.source.Token()
	if err != nil {
		return nil, err
	}

	if t.last == nil || token.AccessToken != t.last.AccessToken {
		if err := t.service.saveToken(token); err != nil {
			if t.service.logger != nil {
				t.service.logger.Warn().Err(err).Msg("Failed to persist refreshed token")
			}
		}
		t.last = token
	}

	return token, nil
}
