package connectors

import "mroparse/internal"

// MailConnector pulls order mail from one provider inbox.
type MailConnector interface {
	FetchInbox(label string, max int) ([]internal.FetchedMessage, error)
}
