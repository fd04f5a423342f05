package sheets

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

const mirrorTimeout = 10 * time.Second

// LogMirror copies each recorded log entry into a spreadsheet row. Failures
// are logged and never reach the ledger caller.
type LogMirror struct {
	repo       Repository
	sheetRange string
	logger     *zap.Logger
}

// NewLogMirror wires a mirror appending to sheetRange.
func NewLogMirror(repo Repository, sheetRange string, logger *zap.Logger) *LogMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMirror{repo: repo, sheetRange: sheetRange, logger: logger}
}

// EntryRecorded appends the entry. The ledger request deadline does not apply.
func (m *LogMirror) EntryRecorded(ctx context.Context, entry models.LogEntry) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mirrorTimeout)
	defer cancel()

	if err := m.repo.WriteRow(ctx, m.sheetRange, Row(entry)); err != nil {
		m.logger.Warn("log mirror append failed", zap.String("log_id", entry.ID), zap.Error(err))
	}
}

// Row lays an entry out as
// timestamp, user, party, operation, item, brand, qty, price, amount, id.
func Row(entry models.LogEntry) []interface{} {
	return []interface{}{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.UserID,
		entry.PartyName,
		string(entry.Operation),
		entry.Item,
		entry.Brand,
		entry.Quantity,
		entry.Price.StringFixed(2),
		entry.Amount.StringFixed(2),
		entry.ID,
	}
}
