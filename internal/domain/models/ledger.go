package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LogEntry is the immutable record of one stock transaction. Item and brand
// are stored by name so the entry stays readable after either changes.
type LogEntry struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Operation Operation       `json:"operation"`
	Item      string          `json:"item"`
	Brand     string          `json:"brand"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	PartyName string          `json:"partyName"`
	Timestamp time.Time       `json:"timestamp"`
	Seq       int64           `json:"seq"`
}

// LogCursor is the decoded resume point of a newest-first log scan. Entries
// strictly older than (Timestamp, Seq) follow it.
type LogCursor struct {
	Timestamp time.Time
	Seq       int64
	ID        string
}

// CursorOf returns the resume point located at e.
func CursorOf(e LogEntry) LogCursor {
	return LogCursor{Timestamp: e.Timestamp, Seq: e.Seq, ID: e.ID}
}

// Before reports whether e sorts after the cursor in a newest-first scan.
func (c LogCursor) Before(e LogEntry) bool {
	if e.Timestamp.Equal(c.Timestamp) {
		return e.Seq < c.Seq
	}
	return e.Timestamp.Before(c.Timestamp)
}

// NewerFirst orders a before b when a is newer; equal timestamps fall back to
// the insertion sequence.
func NewerFirst(a, b LogEntry) bool {
	if a.Timestamp.Equal(b.Timestamp) {
		return a.Seq > b.Seq
	}
	return a.Timestamp.After(b.Timestamp)
}
