package store

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"time"

	"github.com/avelar/digistore/internal/models"
)

// CursorPage is the keyset-paginated shape used for a user's order
// history. Offset pages serve the admin listings, where totals matter
// more than stable iteration.
type CursorPage struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

type OffsetPage struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
}

func NewOffsetPage(items interface{}, total int64, page, pageSize int) *OffsetPage {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &OffsetPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// OrderCursor marks a position in the (created_at, id) descending
// keyset over orders.
type OrderCursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        int64     `json:"id"`
}

// NewOrderPage turns a limit+1 keyset read into a page: the extra row
// signals there is more, and the cursor points past the last order
// returned.
func NewOrderPage(orders []models.Order, limit int) *CursorPage {
	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	page := &CursorPage{Items: orders, HasMore: hasMore}
	if hasMore {
		last := orders[len(orders)-1]
		page.NextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page
}

func EncodeCursor(cursor OrderCursor) string {
	data, err := json.Marshal(cursor)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor parses an opaque cursor from the client. The empty
// cursor starts at the newest order.
func DecodeCursor(encoded string) (OrderCursor, error) {
	if encoded == "" {
		return OrderCursor{CreatedAt: time.Now(), ID: math.MaxInt64}, nil
	}

	var cursor OrderCursor
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return cursor, err
	}

	err = json.Unmarshal(data, &cursor)
	return cursor, err
}
