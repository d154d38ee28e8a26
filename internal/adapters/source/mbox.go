package source

import (
	"bufio"
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikey/pr-contact-miner/internal/core"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
)

// ErrMboxNotFound is returned when no mbox file could be located
var ErrMboxNotFound = errors.New("mbox file not found")

// takeoutDirs are searched, in order, for exported mailboxes
var takeoutDirs = []string{
	filepath.Join("Takeout", "Mail"),
	filepath.Join("takeout", "Mail"),
	"Takeout",
	"takeout",
}

// MboxSource reads emails from an mbox file such as a Google Takeout export
type MboxSource struct {
	path      string
	file      *os.File
	days      int
	maxEmails int
	logger    *zap.Logger
	now       func() time.Time
}

// NewMboxSource opens the mbox file at path. A days of zero disables the
// age cutoff and a maxEmails of zero disables the limit.
func NewMboxSource(path string, days, maxEmails int, logger *zap.Logger) (*MboxSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mbox file: %w", err)
	}

	logger.Info("Opened mbox file", zap.String("path", path))

	return &MboxSource{
		path:      path,
		file:      f,
		days:      days,
		maxEmails: maxEmails,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// FindMbox returns the largest *.mbox file in the usual Takeout folders
// under root. The largest file is normally "All mail".
func FindMbox(root string) (string, error) {
	for _, dir := range takeoutDirs {
		matches, err := filepath.Glob(filepath.Join(root, dir, "*.mbox"))
		if err != nil || len(matches) == 0 {
			continue
		}

		var best string
		var bestSize int64 = -1
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			if info.Size() > bestSize {
				best, bestSize = m, info.Size()
			}
		}
		if best != "" {
			return best, nil
		}
	}
	return "", fmt.Errorf("%w under %s", ErrMboxNotFound, root)
}

// Fetch streams every message in the file to fn
func (s *MboxSource) Fetch(ctx context.Context, fn ports.EmailHandler) error {
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind mbox file: %w", err)
	}

	var cutoff time.Time
	if s.days > 0 {
		cutoff = s.now().AddDate(0, 0, -s.days)
	}

	delivered := 0
	index := 0
	return scanMbox(s.file, func(raw []byte) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if s.maxEmails > 0 && delivered >= s.maxEmails {
			return errStopScan
		}

		email, err := ParseMessage(raw)
		index++
		if err != nil {
			s.logger.Warn("Skipping unparseable message", zap.Int("index", index), zap.Error(err))
			return nil
		}
		if !cutoff.IsZero() && !email.ReceivedAt.IsZero() && email.ReceivedAt.Before(cutoff) {
			return nil
		}

		delivered++
		return fn(email)
	})
}

// Close closes the mbox file
func (s *MboxSource) Close() error {
	return s.file.Close()
}

var errStopScan = errors.New("stop scan")

// scanMbox splits r on "From " separator lines and hands each raw message
// to fn with mboxrd ">From " quoting removed
func scanMbox(r io.Reader, fn func(raw []byte) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var msg bytes.Buffer
	started := false

	flush := func() error {
		if !started || msg.Len() == 0 {
			return nil
		}
		raw := append([]byte(nil), msg.Bytes()...)
		msg.Reset()
		return fn(raw)
	}

	for {
		line, readErr := br.ReadBytes('\n')
		if len(line) > 0 {
			switch {
			case bytes.HasPrefix(line, []byte("From ")):
				if err := flush(); err != nil {
					return stopped(err)
				}
				started = true
			case started:
				if unquoted := bytes.TrimLeft(line, ">"); len(unquoted) < len(line) && bytes.HasPrefix(unquoted, []byte("From ")) {
					line = line[1:]
				}
				msg.Write(line)
			}
		}

		if readErr == io.EOF {
			return stopped(flush())
		}
		if readErr != nil {
			return fmt.Errorf("failed to read mbox file: %w", readErr)
		}
	}
}

func stopped(err error) error {
	if errors.Is(err, errStopScan) {
		return nil
	}
	return err
}

// ParseMessage turns one raw RFC 5322 message into a core.Email
func ParseMessage(raw []byte) (*core.Email, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	header := msg.Header
	fromName, from := parseFrom(header.Get("From"))

	body, err := extractText(textproto.MIMEHeader(header), msg.Body)
	if err != nil {
		return nil, err
	}

	subject := decodeHeader(header.Get("Subject"))
	if subject == "" {
		subject = NoSubject
	}

	return &core.Email{
		ID:         messageID(header),
		FromName:   fromName,
		From:       from,
		To:         decodeHeader(header.Get("To")),
		Subject:    subject,
		Body:       body,
		Snippet:    snippet(body),
		ReceivedAt: parseDate(header.Get("Date")),
	}, nil
}

// messageID is a stable id derived from the Message-ID header, or from
// date, subject and sender when the header is missing
func messageID(header mail.Header) string {
	key := strings.TrimSpace(header.Get("Message-ID"))
	if key == "" {
		key = header.Get("Date") + "-" + header.Get("Subject") + "-" + header.Get("From")
	}
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])
}
