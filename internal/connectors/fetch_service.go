package connectors

import (
	"mroparse/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	store     *MailStoreService
}

type FetchResult struct {
	Fetched     int
	Stored      int
	Attachments int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		store:     NewMailStoreService(db, rawMailDir),
	}
}

func (s *FetchService) FetchAndStore(label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored, attachments := 0, 0
	for _, msg := range messages {
		_, atts, err := s.store.Store(msg)
		if err != nil {
			return FetchResult{}, err
		}
		stored++
		attachments += atts
	}

	return FetchResult{Fetched: len(messages), Stored: stored, Attachments: attachments}, nil
}
