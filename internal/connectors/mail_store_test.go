package connectors

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mroparse/internal"
	"mroparse/internal/storage"
)

func orderMessage(csvBody string) []byte {
	return []byte("From: buyer@plant.example.com\r\n" +
		"Subject: Purchase order 4500123\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: multipart/mixed; boundary=\"frontier\"\r\n" +
		"\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		"Order attached.\r\n" +
		"--frontier\r\n" +
		"Content-Type: text/csv; name=\"order.csv\"\r\n" +
		"Content-Disposition: attachment; filename=\"order.csv\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		base64.StdEncoding.EncodeToString([]byte(csvBody)) + "\r\n" +
		"--frontier\r\n" +
		"Content-Type: image/png; name=\"logo.png\"\r\n" +
		"Content-Disposition: attachment; filename=\"logo.png\"\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}) + "\r\n" +
		"--frontier--\r\n")
}

func TestMailStoreService(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "mail.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	svc := NewMailStoreService(db, filepath.Join(tmp, "raw"))
	csvBody := "Material Description,PN\nVALVE 8210G95,\n"
	msg := internal.FetchedMessage{
		Provider:   "imap",
		MessageID:  "42",
		Subject:    "Purchase order 4500123",
		From:       "buyer@plant.example.com",
		ReceivedAt: "2026-08-25T08:00:00Z",
		Raw:        orderMessage(csvBody),
	}

	mail, stored, err := svc.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if mail.ID <= 0 || mail.Status != "fetched" {
		t.Fatalf("mail=%+v", mail)
	}
	// Only the sheet attachment is registered; the logo stays in the eml.
	if stored != 1 {
		t.Fatalf("stored=%d", stored)
	}
	if filepath.Base(mail.RawRef) != mail.Hash+".eml" {
		t.Fatalf("rawRef=%s", mail.RawRef)
	}
	if _, err := os.Stat(mail.RawRef); err != nil {
		t.Fatal(err)
	}

	atts, err := db.ListMailAttachments(mail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(atts) != 1 || atts[0].Filename != "order.csv" {
		t.Fatalf("attachments=%+v", atts)
	}
	if want := fmt.Sprintf("%s_1_order.csv", mail.Hash[:12]); filepath.Base(atts[0].Ref) != want {
		t.Fatalf("ref=%s want base %s", atts[0].Ref, want)
	}
	blob, err := os.ReadFile(atts[0].Ref)
	if err != nil {
		t.Fatal(err)
	}
	if string(blob) != csvBody {
		t.Fatalf("attachment content=%q", blob)
	}

	// Refetching the same message is a no-op all the way down.
	again, stored2, err := svc.Store(msg)
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != mail.ID || stored2 != 0 {
		t.Fatalf("refetch: mail=%+v stored=%d", again, stored2)
	}
	atts2, err := db.ListMailAttachments(mail.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(atts2) != 1 {
		t.Fatalf("attachments after refetch=%d", len(atts2))
	}
}

func TestIsSheetFilename(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"order.xlsx", true},
		{"Order.XLSX", true},
		{"stock_list.csv", true},
		{"legacy.xls", true},
		{"macro.xlsm", true},
		{"logo.png", false},
		{"invoice.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isSheetFilename(tt.name); got != tt.want {
			t.Errorf("isSheetFilename(%q)=%t", tt.name, got)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"order.csv", "order.csv"},
		{"spare parts (aug).xlsx", "spare_parts__aug_.xlsx"},
		{"../../etc/passwd", "passwd"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q)=%q want %q", tt.in, got, tt.want)
		}
	}
}
