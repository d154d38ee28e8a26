package factory

import (
	"context"
	"fmt"

	"github.com/mikey/pr-contact-miner/internal/adapters/source"
	"github.com/mikey/pr-contact-miner/internal/config"
	"github.com/mikey/pr-contact-miner/internal/ports"
	"go.uber.org/zap"
)

// SourceFactory creates mailbox readers based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	prompt source.AuthPrompt
}

// NewSourceFactory creates a new source factory. prompt is used when a
// Gmail source has no saved token yet.
func NewSourceFactory(cfg *config.Config, logger *zap.Logger, prompt source.AuthPrompt) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
		prompt: prompt,
	}
}

// CreateEmailSource creates an email source based on the configuration
func (f *SourceFactory) CreateEmailSource(ctx context.Context) (ports.EmailSource, error) {
	srcCfg := f.cfg.GetSource()

	switch srcCfg.Type {
	case "mbox":
		path := srcCfg.MboxPath
		if path == "" {
			found, err := source.FindMbox(srcCfg.TakeoutDir)
			if err != nil {
				return nil, err
			}
			f.logger.Info("Found mbox file", zap.String("path", found))
			path = found
		}
		return source.NewMboxSource(path, srcCfg.Days, srcCfg.MaxEmails, f.logger)
	case "gmail":
		gmailCfg := f.cfg.GetGmail()
		return source.NewGmailSource(ctx, source.GmailConfig{
			CredentialsPath: gmailCfg.CredentialsPath,
			TokenPath:       gmailCfg.TokenPath,
			Days:            srcCfg.Days,
			MaxEmails:       srcCfg.MaxEmails,
			Query:           gmailCfg.Query,
			Delay:           gmailCfg.Delay,
		}, f.prompt, f.logger)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", srcCfg.Type)
	}
}
