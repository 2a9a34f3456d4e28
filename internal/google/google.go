// Package google builds the authenticated Gmail, Calendar and Sheets clients
// behind the narrow interfaces the screening workflow consumes. One OAuth
// client is shared by all three services.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"go.uber.org/zap"
)

// Config locates the OAuth material and the provider resources.
type Config struct {
	CredentialsFile string
	TokenFile       string
	SpreadsheetID   string
	CalendarID      string
}

// Services bundles the three provider clients.
type Services struct {
	Mail     *Mail
	Calendar *Calendar
	Sheets   *Sheets
}

// NewServices reads the OAuth client secret, obtains a token (cached on disk,
// interactive consent flow on first run) and constructs all three clients.
func NewServices(ctx context.Context, cfg Config, log *zap.Logger) (*Services, error) {
	if log == nil {
		log = zap.NewNop()
	}

	secret, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reading oauth client secret: %w", err)
	}

	oauthCfg, err := googleauth.ConfigFromJSON(secret,
		gmail.GmailModifyScope,
		gmail.GmailSendScope,
		calendar.CalendarEventsScope,
		sheets.SpreadsheetsScope,
	)
	if err != nil {
		return nil, fmt.Errorf("parsing oauth client secret: %w", err)
	}

	client, err := oauthClient(ctx, oauthCfg, cfg.TokenFile, log)
	if err != nil {
		return nil, err
	}

	gmailSrv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating gmail service: %w", err)
	}

	calendarSrv, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating calendar service: %w", err)
	}

	sheetsSrv, err := sheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	return &Services{
		Mail:     &Mail{srv: gmailSrv, logger: log},
		Calendar: &Calendar{srv: calendarSrv, calendarID: calendarID, logger: log},
		Sheets:   &Sheets{srv: sheetsSrv, spreadsheetID: cfg.SpreadsheetID, logger: log},
	}, nil
}

func oauthClient(ctx context.Context, cfg *oauth2.Config, tokenFile string, log *zap.Logger) (*http.Client, error) {
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		token, err = tokenFromWeb(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, token); err != nil {
			log.Warn("caching oauth token", zap.String("path", tokenFile), zap.Error(err))
		}
	}

	return cfg.Client(ctx, token), nil
}

// tokenFromWeb runs the interactive consent flow on the terminal.
func tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	token, err := cfg.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}

	return token, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decoding cached token: %w", err)
	}

	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
