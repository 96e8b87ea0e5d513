package store

import (
	"math"
	"testing"
	"time"

	"github.com/avelar/digistore/internal/models"
)

func TestCursorRoundTrip(t *testing.T) {
	original := OrderCursor{
		CreatedAt: time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
		ID:        42,
	}

	encoded := EncodeCursor(original)
	if encoded == "" {
		t.Fatal("Encoded cursor should not be empty")
	}

	decoded, err := DecodeCursor(encoded)
	if err != nil {
		t.Fatalf("Decode cursor: %v", err)
	}
	if !decoded.CreatedAt.Equal(original.CreatedAt) || decoded.ID != original.ID {
		t.Errorf("Round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDecodeEmptyCursor(t *testing.T) {
	cursor, err := DecodeCursor("")
	if err != nil {
		t.Fatalf("Decode empty cursor: %v", err)
	}
	if cursor.ID != math.MaxInt64 {
		t.Errorf("Empty cursor should start from max ID, got %d", cursor.ID)
	}
	if cursor.CreatedAt.Before(time.Now().Add(-time.Minute)) {
		t.Error("Empty cursor should start from now")
	}
}

func TestDecodeMalformedCursor(t *testing.T) {
	if _, err := DecodeCursor("not-base64!!"); err == nil {
		t.Error("Expected error for malformed cursor")
	}
	if _, err := DecodeCursor("bm90LWpzb24="); err == nil {
		t.Error("Expected error for non-JSON cursor")
	}
}

func TestNewOrderPage(t *testing.T) {
	now := time.Now()
	orders := []models.Order{
		{ID: 30, CreatedAt: now},
		{ID: 20, CreatedAt: now.Add(-time.Hour)},
		{ID: 10, CreatedAt: now.Add(-2 * time.Hour)},
	}

	// limit+1 rows read, so one gets trimmed and a cursor is set.
	page := NewOrderPage(orders, 2)
	if !page.HasMore {
		t.Error("Expected more pages")
	}
	if got := page.Items.([]models.Order); len(got) != 2 || got[1].ID != 20 {
		t.Errorf("Unexpected trimmed page: %+v", got)
	}

	cursor, err := DecodeCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("Decode next cursor: %v", err)
	}
	if cursor.ID != 20 {
		t.Errorf("Cursor should point at the last order returned, got ID %d", cursor.ID)
	}
}

func TestNewOrderPageLastPage(t *testing.T) {
	orders := []models.Order{{ID: 5, CreatedAt: time.Now()}}

	page := NewOrderPage(orders, 3)
	if page.HasMore {
		t.Error("Short read should be the last page")
	}
	if page.NextCursor != "" {
		t.Errorf("Last page should carry no cursor, got %q", page.NextCursor)
	}

	empty := NewOrderPage(nil, 3)
	if empty.HasMore || empty.NextCursor != "" {
		t.Errorf("Empty page should terminate pagination: %+v", empty)
	}
}

func TestNewOffsetPage(t *testing.T) {
	tests := []struct {
		total      int64
		pageSize   int
		totalPages int
	}{
		{0, 10, 0},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}

	for _, tt := range tests {
		page := NewOffsetPage(nil, tt.total, 1, tt.pageSize)
		if page.TotalPages != tt.totalPages {
			t.Errorf("NewOffsetPage(total=%d, size=%d): TotalPages = %d, want %d",
				tt.total, tt.pageSize, page.TotalPages, tt.totalPages)
		}
	}
}
