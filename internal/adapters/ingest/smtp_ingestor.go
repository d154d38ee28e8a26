// Package ingest receives mail over SMTP and feeds it to the extraction pipeline.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/pr-contact-miner/internal/adapters/source"
	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
)

// DefaultContactHeader is prepended to relayed messages when a contact was extracted
const DefaultContactHeader = "X-PR-Contact"

// Options configures an SMTPIngestor
type Options struct {
	ListenAddr     string
	ProcessTimeout time.Duration
	MaxMessageSize int64

	// RelayAddr is the host:port the message is handed back to after
	// processing. An empty value means messages are accepted and dropped.
	RelayAddr     string
	ContactHeader string
}

// SMTPIngestor accepts messages over SMTP, runs each through an
// EmailProcessor and optionally relays it onward, like a Postfix
// content filter.
type SMTPIngestor struct {
	processor ports.EmailProcessor
	opts      Options
	logger    *zap.Logger

	mu       sync.Mutex
	server   *smtp.Server
	listener net.Listener
}

var _ ports.Ingestor = (*SMTPIngestor)(nil)

// NewSMTPIngestor creates a new SMTP ingest service
func NewSMTPIngestor(processor ports.EmailProcessor, opts Options, logger *zap.Logger) *SMTPIngestor {
	if opts.ProcessTimeout <= 0 {
		opts.ProcessTimeout = 30 * time.Second
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = 30 * 1024 * 1024
	}
	if opts.ContactHeader == "" {
		opts.ContactHeader = DefaultContactHeader
	}
	return &SMTPIngestor{
		processor: processor,
		opts:      opts,
		logger:    logger,
	}
}

// Start binds the listen address and serves SMTP in the background
func (i *SMTPIngestor) Start() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.server != nil {
		return fmt.Errorf("ingestor already started")
	}

	l, err := net.Listen("tcp", i.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", i.opts.ListenAddr, err)
	}

	server := smtp.NewServer(&smtpBackend{ingestor: i})
	server.Addr = i.opts.ListenAddr
	server.Domain = "localhost"
	server.ReadTimeout = 30 * time.Second
	server.WriteTimeout = 30 * time.Second
	server.MaxMessageBytes = i.opts.MaxMessageSize
	server.MaxRecipients = 50

	i.server = server
	i.listener = l

	i.logger.Info("SMTP ingest starting",
		zap.String("address", l.Addr().String()),
		zap.String("relay", i.opts.RelayAddr))

	go func() {
		if err := server.Serve(l); err != nil && err != smtp.ErrServerClosed {
			i.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before Start
func (i *SMTPIngestor) Addr() string {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.listener == nil {
		return ""
	}
	return i.listener.Addr().String()
}

// Stop stops the SMTP ingest service
func (i *SMTPIngestor) Stop() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.server == nil {
		return nil
	}
	err := i.server.Close()
	i.server = nil
	i.listener = nil
	return err
}

// handle parses, processes and relays one message. Processing failures are
// logged and the message is still accepted; only parse and relay failures
// are reported back to the client.
func (i *SMTPIngestor) handle(sender string, recipients []string, raw []byte) error {
	email, err := source.ParseMessage(raw)
	if err != nil {
		i.logger.Error("Failed to parse email message", zap.Error(err), zap.String("sender", sender))
		return fmt.Errorf("failed to parse message: %w", err)
	}
	if email.From == "" {
		email.From = strings.ToLower(sender)
	}
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = time.Now().UTC()
	}
	if email.To == "" && len(recipients) > 0 {
		email.To = strings.Join(recipients, ", ")
	}

	ctx, cancel := context.WithTimeout(context.Background(), i.opts.ProcessTimeout)
	defer cancel()

	contact, err := i.processor.ProcessEmail(ctx, email)
	if err != nil {
		i.logger.Error("Failed to process email",
			zap.Error(err),
			zap.String("email_id", email.ID),
			zap.String("sender", email.From))
		contact = nil
	}

	if i.opts.RelayAddr != "" {
		out := raw
		if value := contactHeaderValue(contact); value != "" {
			var buf bytes.Buffer
			fmt.Fprintf(&buf, "%s: %s\r\n", i.opts.ContactHeader, value)
			buf.Write(raw)
			out = buf.Bytes()
		}
		if err := i.relay(sender, recipients, out); err != nil {
			i.logger.Error("Failed to relay email",
				zap.Error(err),
				zap.String("relay", i.opts.RelayAddr),
				zap.String("sender", email.From))
			return err
		}
	}

	fields := []zap.Field{
		zap.String("email_id", email.ID),
		zap.String("sender", email.From),
	}
	if contact != nil {
		fields = append(fields, zap.String("company", contact.Company), zap.String("country_code", contact.CountryCode))
	}
	i.logger.Info("Ingested email", fields...)

	return nil
}

func contactHeaderValue(contact *core.ExtractedContact) string {
	if contact == nil || contact.Email == "" {
		return ""
	}
	value := contact.Email
	if contact.Company != "" {
		value += " (" + contact.Company + ")"
	}
	return strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, value)
}

// relay hands the message back to the next hop
func (i *SMTPIngestor) relay(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", i.opts.RelayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			i.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", rcpt),
				zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		i.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}

type smtpBackend struct {
	ingestor *SMTPIngestor
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{ingestor: b.ingestor}, nil
}

type smtpSession struct {
	ingestor   *SMTPIngestor
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.ingestor.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}
	return s.ingestor.handle(s.sender, s.recipients, raw)
}

func (s *smtpSession) Logout() error {
	return nil
}
