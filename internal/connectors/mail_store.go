package connectors

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhillyerd/enmime"

	"mroparse/internal"
	"mroparse/internal/storage"
)

// Sheet attachments the pipeline can ingest. Anything else stays inside
// the stored .eml.
var sheetExtensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

type MailStoreService struct {
	db         *storage.DB
	rawMailDir string
}

func NewMailStoreService(db *storage.DB, rawMailDir string) *MailStoreService {
	return &MailStoreService{db: db, rawMailDir: rawMailDir}
}

// Store writes the raw message to disk keyed by content hash, upserts the
// mail row and registers any sheet attachments. Re-fetching the same
// message is a no-op for both the file and the attachment rows.
func (s *MailStoreService) Store(msg internal.FetchedMessage) (internal.MailRow, int, error) {
	hashBytes := sha256.Sum256(msg.Raw)
	hash := hex.EncodeToString(hashBytes[:])

	if err := os.MkdirAll(s.rawMailDir, 0o755); err != nil {
		return internal.MailRow{}, 0, err
	}

	rawPath := filepath.Join(s.rawMailDir, hash+".eml")
	if _, err := os.Stat(rawPath); os.IsNotExist(err) {
		if err := os.WriteFile(rawPath, msg.Raw, 0o644); err != nil {
			return internal.MailRow{}, 0, err
		}
	}

	mail, err := s.db.UpsertMail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, hash, rawPath, "fetched")
	if err != nil {
		return internal.MailRow{}, 0, err
	}

	stored, err := s.storeAttachments(mail, msg.Raw)
	if err != nil {
		return mail, 0, err
	}
	return mail, stored, nil
}

// storeAttachments pulls sheet attachments out of the MIME envelope into
// rawMailDir/attachments and records them against the mail row.
func (s *MailStoreService) storeAttachments(mail internal.MailRow, raw []byte) (int, error) {
	existing, err := s.db.ListMailAttachments(mail.ID)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("read mail envelope: %w", err)
	}

	attDir := filepath.Join(s.rawMailDir, "attachments")
	stored := 0
	for i, att := range env.Attachments {
		name := strings.TrimSpace(att.FileName)
		if name == "" {
			name = fmt.Sprintf("attachment-%d", i+1)
		}
		if !isSheetFilename(name) {
			continue
		}

		if err := os.MkdirAll(attDir, 0o755); err != nil {
			return stored, err
		}
		ref := filepath.Join(attDir, fmt.Sprintf("%s_%d_%s", mail.Hash[:12], i+1, sanitizeFilename(name)))
		if _, err := os.Stat(ref); os.IsNotExist(err) {
			if err := os.WriteFile(ref, att.Content, 0o644); err != nil {
				return stored, err
			}
		}
		if _, err := s.db.InsertMailAttachment(mail.ID, name, att.ContentType, ref); err != nil {
			return stored, err
		}
		stored++
	}
	return stored, nil
}

func isSheetFilename(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range sheetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range filepath.Base(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
