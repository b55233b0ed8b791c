package listener

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mroparse/internal/config"
	"mroparse/internal/connectors"
	gmailconnector "mroparse/internal/connectors/gmail"
	imapconnector "mroparse/internal/connectors/imap"
	"mroparse/internal/lexicon"
	"mroparse/internal/pipeline"
	"mroparse/internal/storage"
)

// Service polls one mailbox on an interval, stores what arrives and runs
// each stored order sheet through the extraction pipeline. Result
// workbooks land in the output directory as part of processing.
type Service struct {
	db        *storage.DB
	cfg       config.Config
	processor *pipeline.ProcessingService
}

func NewService(db *storage.DB, cfg config.Config) (*Service, error) {
	training, err := lexicon.LoadTraining(cfg.TrainingPath)
	if err != nil {
		return nil, err
	}
	return &Service{
		db:        db,
		cfg:       cfg,
		processor: pipeline.NewProcessingService(db, cfg, lexicon.Build(training)),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	for {
		if err := s.runCycle(ctx); err != nil {
			fmt.Printf("listener cycle error: %v\n", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(s.cfg.MailListenerIntervalSec) * time.Second):
		}
	}
}

func (s *Service) runCycle(ctx context.Context) error {
	provider := strings.ToLower(strings.TrimSpace(s.cfg.MailListenerProvider))
	mailConnector, err := s.makeConnector(provider)
	if err != nil {
		return err
	}

	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, mailConnector)
	fetchResult, err := fetchService.FetchAndStore(s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	mails, datasets := 0, 0
	if s.cfg.MailListenerAutoExport {
		mails, datasets, err = s.processor.ProcessPendingMail(s.cfg.MailListenerProcessBatch, provider)
		if err != nil {
			return err
		}
	}

	fmt.Printf("listener cycle done provider=%s fetched=%d stored=%d attachments=%d mails=%d datasets=%d\n",
		provider, fetchResult.Fetched, fetchResult.Stored, fetchResult.Attachments, mails, datasets)
	_ = ctx
	return nil
}

func (s *Service) makeConnector(provider string) (connectors.MailConnector, error) {
	switch provider {
	case "gmail":
		return gmailconnector.NewConnector(s.cfg)
	case "imap":
		return imapconnector.NewConnector(s.cfg)
	default:
		return nil, fmt.Errorf("unsupported listener provider: %s", provider)
	}
}
