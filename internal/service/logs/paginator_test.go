package logs_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/repository/memory"
	"github.com/mamadbah2/stockledger/internal/service/logs"
)

// steppedClock returns base, base, base+1s, base+1s, ... so that pairs of
// entries share a timestamp and ordering depends on the sequence tie-break.
func steppedClock(base time.Time) func() time.Time {
	calls := 0
	return func() time.Time {
		t := base.Add(time.Duration(calls/2) * time.Second)
		calls++
		return t
	}
}

func seed(t *testing.T, store *memory.Repository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := store.AppendLog(context.Background(), models.LogEntry{
			UserID:    "user1",
			Operation: models.OperationAdd,
			Item:      "Soap",
			Brand:     "Lux",
			Quantity:  int64(i + 1),
			Price:     decimal.NewFromInt(1),
			Amount:    decimal.NewFromInt(int64(i + 1)),
			PartyName: fmt.Sprintf("party-%d", i),
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
}

func drain(t *testing.T, p *logs.Paginator, cursor string, size int) ([]models.LogEntry, int) {
	t.Helper()
	var all []models.LogEntry
	fetches := 0
	for {
		page, err := p.FetchLogPage(context.Background(), cursor, size)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		fetches++
		all = append(all, page.Entries...)
		if !page.HasMore {
			return all, fetches
		}
		cursor = page.NextCursor
		if fetches > 1000 {
			t.Fatal("pagination did not terminate")
		}
	}
}

func TestFetchLogPage_exhaustiveAndOrdered(t *testing.T) {
	store := memory.NewRepository(memory.WithClock(steppedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))))
	seed(t, store, 47)
	p := logs.NewPaginator(store, 20, 100, nil)

	all, fetches := drain(t, p, "", 10)
	if len(all) != 47 {
		t.Fatalf("got %d entries, want 47", len(all))
	}
	if fetches != 5 {
		t.Errorf("fetches = %d, want 5", fetches)
	}

	seen := map[string]bool{}
	for i, e := range all {
		if seen[e.ID] {
			t.Fatalf("entry %s returned twice", e.ID)
		}
		seen[e.ID] = true
		if i > 0 && !models.NewerFirst(all[i-1], e) {
			t.Fatalf("entries %d and %d out of order", i-1, i)
		}
		if i > 0 && all[i-1].Timestamp.Before(e.Timestamp) {
			t.Fatalf("timestamp increased at %d", i)
		}
	}
}

func TestFetchLogPage_exactFillNeedsOneEmptyFetch(t *testing.T) {
	store := memory.NewRepository()
	seed(t, store, 20)
	p := logs.NewPaginator(store, 20, 100, nil)

	first, err := p.FetchLogPage(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	second, err := p.FetchLogPage(context.Background(), first.NextCursor, 10)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if !second.HasMore {
		t.Fatal("a full final page reports HasMore")
	}

	third, err := p.FetchLogPage(context.Background(), second.NextCursor, 10)
	if err != nil {
		t.Fatalf("third page: %v", err)
	}
	if len(third.Entries) != 0 || third.HasMore || third.NextCursor != "" {
		t.Errorf("expected empty terminal page, got %+v", third)
	}
}

func TestFetchLogPage_stableUnderNewerInserts(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	calls := 0
	store := memory.NewRepository(memory.WithClock(func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Minute)
	}))
	seed(t, store, 15)
	p := logs.NewPaginator(store, 20, 100, nil)

	first, err := p.FetchLogPage(context.Background(), "", 5)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}

	seed(t, store, 7)

	rest, _ := drain(t, p, first.NextCursor, 5)

	if got := len(first.Entries) + len(rest); got != 15 {
		t.Fatalf("got %d entries across pages, want the 15 that existed before the scan", got)
	}
	seen := map[string]bool{}
	for _, e := range append(first.Entries, rest...) {
		if seen[e.ID] {
			t.Fatalf("duplicate entry %s", e.ID)
		}
		seen[e.ID] = true
	}
}

func TestFetchLogPage_emptyLog(t *testing.T) {
	p := logs.NewPaginator(memory.NewRepository(), 20, 100, nil)

	page, err := p.FetchLogPage(context.Background(), "", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Entries == nil || len(page.Entries) != 0 || page.HasMore || page.NextCursor != "" {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestFetchLogPage_rejectsBadInput(t *testing.T) {
	p := logs.NewPaginator(memory.NewRepository(), 20, 50, nil)

	tests := []struct {
		name   string
		cursor string
		size   int
	}{
		{name: "zero size", size: 0},
		{name: "negative size", size: -1},
		{name: "above max", size: 51},
		{name: "not base64", cursor: "%%%", size: 10},
		{name: "not json", cursor: "bm90LWpzb24", size: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.FetchLogPage(context.Background(), tt.cursor, tt.size)
			if !errors.Is(err, models.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCursorRoundTrip(t *testing.T) {
	want := models.LogCursor{
		Timestamp: time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC),
		Seq:       42,
		ID:        "abc",
	}

	got, err := logs.DecodeCursor(logs.EncodeCursor(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Timestamp.Equal(want.Timestamp) || got.Seq != want.Seq || got.ID != want.ID {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestGetEntry(t *testing.T) {
	store := memory.NewRepository()
	seed(t, store, 1)
	p := logs.NewPaginator(store, 20, 100, nil)

	page, _ := p.FetchLogPage(context.Background(), "", 1)
	entry, err := p.GetEntry(context.Background(), page.Entries[0].ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.PartyName != "party-0" {
		t.Errorf("party = %q", entry.PartyName)
	}

	if _, err := p.GetEntry(context.Background(), "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
