package ingest_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/mikey/pr-contact-miner/internal/adapters/ingest"
	"github.com/mikey/pr-contact-miner/internal/core"
	"go.uber.org/zap"
)

type fnProcessor struct {
	mu     sync.Mutex
	emails []*core.Email
	f      func(email *core.Email) (*core.ExtractedContact, error)
}

func (p *fnProcessor) ProcessEmail(_ context.Context, email *core.Email) (*core.ExtractedContact, error) {
	p.mu.Lock()
	p.emails = append(p.emails, email)
	p.mu.Unlock()
	return p.f(email)
}

func (p *fnProcessor) received() []*core.Email {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*core.Email(nil), p.emails...)
}

const pitch = "From: Jane Doe <jane@orbitcomms.ae>\r\n" +
	"To: editor@example.com\r\n" +
	"Subject: Launch news\r\n" +
	"Message-ID: <launch-1@orbitcomms.ae>\r\n" +
	"Date: Mon, 20 May 2024 09:00:00 +0400\r\n" +
	"\r\n" +
	"Hi,\r\nDetails attached.\r\n\r\nBest regards,\r\nJane Doe\r\nOrbit Communications\r\n"

func startIngestor(t *testing.T, p *fnProcessor, relay string) *ingest.SMTPIngestor {
	t.Helper()

	ing := ingest.NewSMTPIngestor(p, ingest.Options{ListenAddr: "127.0.0.1:0", RelayAddr: relay}, zap.NewNop())
	if err := ing.Start(); err != nil {
		t.Fatalf("failed to start ingestor: %v", err)
	}
	t.Cleanup(func() { _ = ing.Stop() })
	return ing
}

func send(t *testing.T, addr, msg string) error {
	t.Helper()

	c, err := smtp.Dial(addr)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", addr, err)
	}
	defer c.Close()

	if err := c.SendMail("bounce@orbitcomms.ae", []string{"editor@example.com"}, strings.NewReader(msg)); err != nil {
		return err
	}
	return c.Quit()
}

func TestSMTPIngestor_ProcessesMessage(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(email *core.Email) (*core.ExtractedContact, error) {
		return &core.ExtractedContact{Email: email.From}, nil
	}}
	ing := startIngestor(t, p, "")

	if err := send(t, ing.Addr(), pitch); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got := p.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 processed email, got %d", len(got))
	}
	email := got[0]
	if email.From != "jane@orbitcomms.ae" || email.FromName != "Jane Doe" || email.Subject != "Launch news" {
		t.Fatalf("unexpected email: %+v", email)
	}
	if !strings.Contains(email.Body, "Orbit Communications") {
		t.Fatalf("body not extracted: %q", email.Body)
	}
}

func TestSMTPIngestor_EnvelopeSenderFallback(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(*core.Email) (*core.ExtractedContact, error) { return nil, nil }}
	ing := startIngestor(t, p, "")

	msg := "Subject: no from header\r\n\r\nbody\r\n"
	if err := send(t, ing.Addr(), msg); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	got := p.received()
	if len(got) != 1 || got[0].From != "bounce@orbitcomms.ae" {
		t.Fatalf("expected envelope sender, got %+v", got)
	}
	if got[0].ReceivedAt.IsZero() {
		t.Fatal("expected a receive time")
	}
}

func TestSMTPIngestor_ProcessingErrorStillAccepted(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(*core.Email) (*core.ExtractedContact, error) {
		return nil, errors.New("store unavailable")
	}}
	ing := startIngestor(t, p, "")

	if err := send(t, ing.Addr(), pitch); err != nil {
		t.Fatalf("expected message to be accepted, got %v", err)
	}
}

func TestSMTPIngestor_RelaysWithContactHeader(t *testing.T) {
	t.Parallel()

	next := &fnProcessor{f: func(*core.Email) (*core.ExtractedContact, error) { return nil, nil }}
	downstream := startIngestor(t, next, "")

	first := &fnProcessor{f: func(email *core.Email) (*core.ExtractedContact, error) {
		return &core.ExtractedContact{Email: email.From, Company: "Orbit Communications"}, nil
	}}
	ing := startIngestor(t, first, downstream.Addr())

	if err := send(t, ing.Addr(), pitch); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	relayed := next.received()
	if len(relayed) != 1 {
		t.Fatalf("expected relayed message, got %d", len(relayed))
	}
	if relayed[0].Subject != "Launch news" || relayed[0].From != "jane@orbitcomms.ae" {
		t.Fatalf("relayed message changed: %+v", relayed[0])
	}
}

func TestSMTPIngestor_RelayFailureRejects(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(*core.Email) (*core.ExtractedContact, error) { return nil, nil }}
	ing := startIngestor(t, p, "127.0.0.1:1")

	if err := send(t, ing.Addr(), pitch); err == nil {
		t.Fatal("expected relay failure to be reported to the client")
	}
}

func TestSMTPIngestor_StopIsIdempotent(t *testing.T) {
	ing := ingest.NewSMTPIngestor(nil, ingest.Options{ListenAddr: "127.0.0.1:0"}, zap.NewNop())
	if err := ing.Stop(); err != nil {
		t.Fatalf("stop before start: %v", err)
	}
	if err := ing.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if ing.Addr() == "" {
		t.Fatal("expected bound address")
	}
	if err := ing.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if ing.Addr() != "" {
		t.Fatal("expected address cleared after stop")
	}
}

func TestCLIInspector_PrintsContact(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(email *core.Email) (*core.ExtractedContact, error) {
		return &core.ExtractedContact{
			Name:          email.FromName,
			Email:         email.From,
			Company:       "Orbit Communications",
			CompanySource: core.CompanySourceSignature,
		}, nil
	}}

	var out strings.Builder
	inspector := ingest.NewCLIInspector(p, &out, zap.NewNop(), false)
	contact, err := inspector.Inspect(context.Background(), strings.NewReader(pitch))
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if contact.Email != "jane@orbitcomms.ae" {
		t.Fatalf("unexpected contact: %+v", contact)
	}

	report := out.String()
	for _, want := range []string{
		"Subject: Launch news",
		"Company:      Orbit Communications (signature)",
		"Title:        -",
	} {
		if !strings.Contains(report, want) {
			t.Fatalf("report missing %q:\n%s", want, report)
		}
	}
}

func TestCLIInspector_ProcessorError(t *testing.T) {
	t.Parallel()

	p := &fnProcessor{f: func(*core.Email) (*core.ExtractedContact, error) {
		return nil, errors.New("boom")
	}}
	inspector := ingest.NewCLIInspector(p, &strings.Builder{}, zap.NewNop(), true)
	if _, err := inspector.Inspect(context.Background(), strings.NewReader(pitch)); err == nil {
		t.Fatal("expected error")
	}
}
