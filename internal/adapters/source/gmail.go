package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	gmailUser        = "me"
	gmailMaxPageSize = 500
)

// AuthPrompt shows the consent URL to the user and returns the
// authorization code they paste back
type AuthPrompt func(authURL string) (string, error)

// TerminalPrompt prints the consent URL to out and reads the code from in
func TerminalPrompt(in io.Reader, out io.Writer) AuthPrompt {
	return func(authURL string) (string, error) {
		fmt.Fprintf(out, "Open this URL in a browser and paste the authorization code:\n%s\n> ", authURL)
		var code string
		if _, err := fmt.Fscanln(in, &code); err != nil {
			return "", fmt.Errorf("failed to read authorization code: %w", err)
		}
		return code, nil
	}
}

// GmailConfig holds the settings of a GmailSource
type GmailConfig struct {
	CredentialsPath string
	TokenPath       string
	Days            int
	MaxEmails       int
	Query           string
	Delay           time.Duration
}

// GmailSource reads emails through the Gmail API
type GmailSource struct {
	srv    *gmail.Service
	cfg    GmailConfig
	logger *zap.Logger
}

// NewGmailSource authorizes with the saved OAuth token, running the
// consent flow through prompt when no token exists yet
func NewGmailSource(ctx context.Context, cfg GmailConfig, prompt AuthPrompt, logger *zap.Logger) (*GmailSource, error) {
	secret, err := os.ReadFile(cfg.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth client credentials: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(secret, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OAuth client credentials: %w", err)
	}

	tok, err := loadToken(cfg.TokenPath)
	if err != nil {
		if prompt == nil {
			return nil, fmt.Errorf("no saved Gmail token at %s: %w", cfg.TokenPath, err)
		}
		tok, err = authorize(ctx, oauthCfg, prompt)
		if err != nil {
			return nil, err
		}
		if err := saveToken(cfg.TokenPath, tok); err != nil {
			return nil, err
		}
		logger.Info("Saved Gmail token", zap.String("path", cfg.TokenPath))
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &GmailSource{srv: srv, cfg: cfg, logger: logger}, nil
}

func authorize(ctx context.Context, cfg *oauth2.Config, prompt AuthPrompt) (*oauth2.Token, error) {
	code, err := prompt(cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline))
	if err != nil {
		return nil, fmt.Errorf("failed to read authorization code: %w", err)
	}
	tok, err := cfg.Exchange(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

func loadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token file: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to save OAuth token: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("failed to encode OAuth token: %w", err)
	}
	return nil
}

// searchQuery combines the age filter with the configured query
func (s *GmailSource) searchQuery() string {
	var parts []string
	if s.cfg.Days > 0 {
		parts = append(parts, fmt.Sprintf("newer_than:%dd", s.cfg.Days))
	}
	if q := strings.TrimSpace(s.cfg.Query); q != "" {
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}

// Fetch lists matching messages page by page and streams each full
// message to fn
func (s *GmailSource) Fetch(ctx context.Context, fn ports.EmailHandler) error {
	pageSize := int64(gmailMaxPageSize)
	if s.cfg.MaxEmails > 0 && s.cfg.MaxEmails < gmailMaxPageSize {
		pageSize = int64(s.cfg.MaxEmails)
	}

	call := s.srv.Users.Messages.List(gmailUser).MaxResults(pageSize)
	if q := s.searchQuery(); q != "" {
		call = call.Q(q)
	}

	delivered := 0
	err := call.Pages(ctx, func(page *gmail.ListMessagesResponse) error {
		for _, ref := range page.Messages {
			if s.cfg.MaxEmails > 0 && delivered >= s.cfg.MaxEmails {
				return errStopScan
			}
			if err := s.pause(ctx); err != nil {
				return err
			}

			msg, err := s.srv.Users.Messages.Get(gmailUser, ref.Id).Format("full").Context(ctx).Do()
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("Failed to fetch Gmail message", zap.String("id", ref.Id), zap.Error(err))
				continue
			}

			delivered++
			if err := fn(gmailEmail(msg)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopScan) {
		return fmt.Errorf("failed to list Gmail messages: %w", err)
	}
	return nil
}

func (s *GmailSource) pause(ctx context.Context) error {
	if s.cfg.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.cfg.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close is a no-op; the Gmail service holds no open resources
func (s *GmailSource) Close() error {
	return nil
}

// gmailEmail converts a full-format Gmail message
func gmailEmail(msg *gmail.Message) *core.Email {
	email := &core.Email{
		ID:      msg.Id,
		Snippet: msg.Snippet,
		Subject: NoSubject,
	}
	if msg.Payload == nil {
		return email
	}

	var date string
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "from":
			email.FromName, email.From = parseFrom(h.Value)
		case "to":
			email.To = decodeHeader(h.Value)
		case "subject":
			if s := decodeHeader(h.Value); s != "" {
				email.Subject = s
			}
		case "date":
			date = h.Value
		}
	}

	email.ReceivedAt = parseDate(date)
	if email.ReceivedAt.IsZero() && msg.InternalDate > 0 {
		email.ReceivedAt = time.UnixMilli(msg.InternalDate)
	}

	var w partWalker
	w.walk(msg.Payload)
	switch {
	case w.plain != "":
		email.Body = w.plain
	case w.html != "":
		email.Body = htmlToText(w.html)
	}
	if email.Snippet == "" {
		email.Snippet = snippet(email.Body)
	}
	return email
}

// partWalker finds the first text/plain and text/html bodies in a Gmail
// payload tree
type partWalker struct {
	plain string
	html  string
}

func (w *partWalker) walk(part *gmail.MessagePart) {
	if part == nil || w.plain != "" || part.Filename != "" {
		return
	}

	mediaType := strings.ToLower(part.MimeType)
	if (mediaType == "text/plain" || mediaType == "text/html") && part.Body != nil && part.Body.Data != "" {
		text, err := decodePartData(part)
		if err == nil {
			if mediaType == "text/plain" {
				w.plain = text
			} else if w.html == "" {
				w.html = text
			}
		}
	}

	for _, child := range part.Parts {
		w.walk(child)
	}
}

// decodePartData decodes the base64url body of a part into UTF-8 using
// the charset from its Content-Type header
func decodePartData(part *gmail.MessagePart) (string, error) {
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return "", fmt.Errorf("failed to decode part body: %w", err)
		}
	}

	var charset string
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, "Content-Type") {
			if _, params, err := mime.ParseMediaType(h.Value); err == nil {
				charset = params["charset"]
			}
		}
	}
	return decodeCharset(data, charset), nil
}
