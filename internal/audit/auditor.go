package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"rhystmorgan/veContacts/internal/models"
	"rhystmorgan/veContacts/internal/storage"
)

const (
	defaultBatchSize = 10
	flushInterval    = time.Minute
)

// ContactAuditor writes store change events to a JSON-lines file, batched.
type ContactAuditor struct {
	logFile string
	log     *slog.Logger

	batchSize  int
	batchMu    sync.Mutex
	batchLogs  []AuditLog
	known      map[string]models.ContactEntry
	flushTimer *time.Timer
}

// NewContactAuditor creates a new ContactAuditor writing to a dated file in logDir
func NewContactAuditor(logDir string, logger *slog.Logger) (*ContactAuditor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(logDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("contact_audit_%s.log", time.Now().Format("2006-01-02")))

	auditor := &ContactAuditor{
		logFile:   logFile,
		log:       logger.WithGroup("audit"),
		batchSize: defaultBatchSize,
		batchLogs: make([]AuditLog, 0, defaultBatchSize),
		known:     make(map[string]models.ContactEntry),
	}

	// Flush every interval if the batch never fills
	auditor.flushTimer = time.AfterFunc(flushInterval, func() {
		if err := auditor.Flush(); err != nil {
			auditor.log.Error("failed to flush audit log", "error", err)
		}
	})

	return auditor, nil
}

func (a *ContactAuditor) LogFile() string {
	return a.logFile
}

// Seed records the current store contents so the first update of each entry
// can be logged with its field changes.
func (a *ContactAuditor) Seed(entries []models.ContactEntry) {
	a.batchMu.Lock()
	defer a.batchMu.Unlock()

	for _, e := range entries {
		a.known[e.Address] = e
	}
}

// Record queues one change event
func (a *ContactAuditor) Record(ev storage.ChangeEvent) error {
	action, ok := actionFor(ev.Status)
	if !ok {
		return fmt.Errorf("unknown change status: %d", ev.Status)
	}

	timestamp := ev.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	entry := AuditLog{
		ID:        fmt.Sprintf("audit_%s_%d", ev.Entry.Address, timestamp.UnixNano()),
		Address:   ev.Entry.Address,
		Action:    action,
		Timestamp: timestamp,
		Label:     ev.Entry.Label,
		Type:      ev.Entry.Type,
	}

	a.batchMu.Lock()
	if old, seen := a.known[ev.Entry.Address]; seen && action == AuditActionUpdate {
		entry.Changes = diffFields(old, ev.Entry)
	}
	if action == AuditActionDelete {
		delete(a.known, ev.Entry.Address)
	} else {
		a.known[ev.Entry.Address] = ev.Entry
	}
	a.batchLogs = append(a.batchLogs, entry)

	// Flush if batch is full
	if len(a.batchLogs) >= a.batchSize {
		a.batchMu.Unlock()
		return a.Flush()
	}
	a.batchMu.Unlock()

	return nil
}

// Watch records every event from sub until ctx is done or sub is closed, then flushes.
func (a *ContactAuditor) Watch(ctx context.Context, sub *storage.Subscription) error {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return a.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return a.Flush()
			}
			if err := a.Record(ev); err != nil {
				a.log.Warn("failed to record change", "address", ev.Entry.Address, "error", err)
			}
		}
	}
}

// Flush writes all pending audit logs to storage
func (a *ContactAuditor) Flush() error {
	a.batchMu.Lock()
	if len(a.batchLogs) == 0 {
		a.batchMu.Unlock()
		return nil
	}

	if a.flushTimer != nil {
		a.flushTimer.Reset(flushInterval)
	}

	logsToFlush := make([]AuditLog, len(a.batchLogs))
	copy(logsToFlush, a.batchLogs)
	a.batchLogs = a.batchLogs[:0]
	a.batchMu.Unlock()

	file, err := os.OpenFile(a.logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	for _, log := range logsToFlush {
		logJSON, err := json.Marshal(log)
		if err != nil {
			return fmt.Errorf("failed to marshal audit log: %w", err)
		}

		if _, err := file.Write(append(logJSON, '\n')); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
	}

	a.log.Debug("audit log flushed", "entries", len(logsToFlush))
	return nil
}

// GetContactHistory retrieves audit history for a specific address
func (a *ContactAuditor) GetContactHistory(address string) ([]AuditLog, error) {
	var logs []AuditLog

	if err := a.Flush(); err != nil {
		return nil, err
	}

	file, err := os.Open(a.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return logs, nil
		}
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	for {
		var log AuditLog
		if err := decoder.Decode(&log); err != nil {
			break // End of file or error
		}

		if log.Address == address {
			logs = append(logs, log)
		}
	}

	return logs, nil
}

// Close ensures all pending logs are written
func (a *ContactAuditor) Close() error {
	if a.flushTimer != nil {
		a.flushTimer.Stop()
	}
	return a.Flush()
}
