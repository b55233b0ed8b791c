package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"mroparse/internal"
)

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS jobs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  filename TEXT NOT NULL,
  instruction TEXT,
  pipeline TEXT NOT NULL,
  sourceColumns TEXT NOT NULL,
  mfgColumn TEXT,
  pnColumn TEXT,
  simColumn TEXT,
  addSim INTEGER NOT NULL DEFAULT 0,
  simStyle TEXT,
  totalRows INTEGER NOT NULL DEFAULT 0,
  mfgFilled INTEGER NOT NULL DEFAULT 0,
  pnFilled INTEGER NOT NULL DEFAULT 0,
  simFilled INTEGER NOT NULL DEFAULT 0,
  issuesCount INTEGER NOT NULL DEFAULT 0,
  outputPath TEXT,
  status TEXT NOT NULL DEFAULT 'completed'
);
CREATE INDEX IF NOT EXISTS idx_jobs_timestamp ON jobs(timestamp);

CREATE TABLE IF NOT EXISTS job_corrections (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  jobId INTEGER NOT NULL,
  row INTEGER NOT NULL,
  field TEXT NOT NULL,
  oldValue TEXT NOT NULL,
  reason TEXT NOT NULL,
  action TEXT NOT NULL,
  FOREIGN KEY(jobId) REFERENCES jobs(id)
);

CREATE TABLE IF NOT EXISTS job_low_confidence (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  jobId INTEGER NOT NULL,
  row INTEGER NOT NULL,
  field TEXT NOT NULL,
  value TEXT NOT NULL,
  strategy TEXT NOT NULL,
  confidence REAL NOT NULL,
  FOREIGN KEY(jobId) REFERENCES jobs(id)
);

CREATE TABLE IF NOT EXISTS saved_configs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL UNIQUE,
  instruction TEXT NOT NULL,
  pipeline TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS mail_intake (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS mail_attachments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  mailId INTEGER NOT NULL,
  filename TEXT NOT NULL,
  contentType TEXT,
  ref TEXT NOT NULL,
  FOREIGN KEY(mailId) REFERENCES mail_intake(id)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertJob records a completed processing run. SourceColumns are stored as
// a JSON array in a TEXT column.
func (d *DB) InsertJob(job internal.JobRow) (int64, error) {
	sourceJSON, _ := json.Marshal(job.SourceColumns)
	result, err := d.conn.Exec(`
INSERT INTO jobs (
  filename, instruction, pipeline, sourceColumns, mfgColumn, pnColumn, simColumn,
  addSim, simStyle, totalRows, mfgFilled, pnFilled, simFilled, issuesCount, outputPath, status
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, job.Filename, job.Instruction, job.Pipeline, string(sourceJSON), job.MfgColumn, job.PNColumn, job.SimColumn,
		boolToInt(job.AddSim), job.SimStyle, job.TotalRows, job.MfgFilled, job.PNFilled, job.SimFilled,
		job.IssuesCount, job.OutputPath, job.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) ListRecentJobs(limit int) ([]internal.JobRow, error) {
	rows, err := d.conn.Query(`
SELECT id, timestamp, filename, COALESCE(instruction, ''), pipeline, sourceColumns,
       mfgColumn, pnColumn, simColumn, addSim, COALESCE(simStyle, ''),
       totalRows, mfgFilled, pnFilled, simFilled, issuesCount, COALESCE(outputPath, ''), status
FROM jobs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.JobRow
	for rows.Next() {
		var job internal.JobRow
		var sourceJSON string
		var addSim int
		if err := rows.Scan(
			&job.ID, &job.Timestamp, &job.Filename, &job.Instruction, &job.Pipeline, &sourceJSON,
			&job.MfgColumn, &job.PNColumn, &job.SimColumn, &addSim, &job.SimStyle,
			&job.TotalRows, &job.MfgFilled, &job.PNFilled, &job.SimFilled, &job.IssuesCount,
			&job.OutputPath, &job.Status,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(sourceJSON), &job.SourceColumns)
		job.AddSim = addSim != 0
		out = append(out, job)
	}
	return out, rows.Err()
}

func (d *DB) InsertCorrections(jobID int64, corrections []internal.CorrectionRecord) error {
	if len(corrections) == 0 {
		return nil
	}
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO job_corrections (jobId, row, field, oldValue, reason, action)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range corrections {
		if _, err := stmt.Exec(jobID, c.Row, c.Field, c.OldValue, c.Reason, c.Action); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) InsertLowConfidence(jobID int64, items []internal.LowConfidenceItem) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO job_low_confidence (jobId, row, field, value, strategy, confidence)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(jobID, item.Row, item.Field, item.Value, string(item.Strategy), item.Confidence); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (d *DB) ListCorrections(jobID int64) ([]internal.CorrectionRecord, error) {
	rows, err := d.conn.Query(`
SELECT row, field, oldValue, reason, action FROM job_corrections WHERE jobId = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.CorrectionRecord
	for rows.Next() {
		var c internal.CorrectionRecord
		if err := rows.Scan(&c.Row, &c.Field, &c.OldValue, &c.Reason, &c.Action); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) SaveConfig(name, instruction, pipeline string) error {
	_, err := d.conn.Exec(`
INSERT INTO saved_configs (name, instruction, pipeline) VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET instruction = excluded.instruction, pipeline = excluded.pipeline
`, name, instruction, pipeline)
	return err
}

func (d *DB) GetConfig(name string) (*internal.SavedConfig, error) {
	var cfg internal.SavedConfig
	err := d.conn.QueryRow(`
SELECT id, name, instruction, pipeline, createdAt FROM saved_configs WHERE name = ?
`, name).Scan(&cfg.ID, &cfg.Name, &cfg.Instruction, &cfg.Pipeline, &cfg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (d *DB) ListConfigs() ([]internal.SavedConfig, error) {
	rows, err := d.conn.Query(`SELECT id, name, instruction, pipeline, createdAt FROM saved_configs ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SavedConfig
	for rows.Next() {
		var cfg internal.SavedConfig
		if err := rows.Scan(&cfg.ID, &cfg.Name, &cfg.Instruction, &cfg.Pipeline, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func (d *DB) UpsertMail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.MailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO mail_intake (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.MailRow{}, err
	}

	row, err := d.GetMailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.MailRow{}, err
	}
	if row == nil {
		return internal.MailRow{}, errors.New("failed to upsert mail")
	}
	return *row, nil
}

func (d *DB) GetMailByProviderMessageID(provider, messageID string) (*internal.MailRow, error) {
	var row internal.MailRow
	err := d.conn.QueryRow(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM mail_intake WHERE provider = ? AND messageId = ?
`, provider, messageID).Scan(
		&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListMailByStatus(status string, limit int) ([]internal.MailRow, error) {
	rows, err := d.conn.Query(`
SELECT id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef
FROM mail_intake WHERE status = ? ORDER BY receivedAt ASC LIMIT ?
`, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MailRow
	for rows.Next() {
		var row internal.MailRow
		if err := rows.Scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateMailStatus(mailID int, status string) error {
	_, err := d.conn.Exec(`UPDATE mail_intake SET status = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, status, mailID)
	return err
}

func (d *DB) InsertMailAttachment(mailID int, filename, contentType, ref string) (int64, error) {
	result, err := d.conn.Exec(`
INSERT INTO mail_attachments (mailId, filename, contentType, ref) VALUES (?, ?, ?, ?)
`, mailID, filename, contentType, ref)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (d *DB) ListMailAttachments(mailID int) ([]internal.MailAttachment, error) {
	rows, err := d.conn.Query(`
SELECT id, mailId, filename, COALESCE(contentType, ''), ref FROM mail_attachments WHERE mailId = ? ORDER BY id
`, mailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.MailAttachment
	for rows.Next() {
		var att internal.MailAttachment
		if err := rows.Scan(&att.ID, &att.MailID, &att.Filename, &att.ContentType, &att.Ref); err != nil {
			return nil, err
		}
		out = append(out, att)
	}
	return out, rows.Err()
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func (d *DB) MustMailByProviderMessageID(provider, messageID string) (internal.MailRow, error) {
	row, err := d.GetMailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.MailRow{}, err
	}
	if row == nil {
		return internal.MailRow{}, fmt.Errorf("mail not found: provider=%s messageId=%s", provider, messageID)
	}
	return *row, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
