package store

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cursor is the decoded keyset-pagination position: the sort value and task ID
// of the last row on the previous page. Rows strictly after (or before, for
// descending sorts) this composite position form the next page.
type Cursor struct {
	// SortValue is the last row's sort-field value. Times are carried as
	// RFC 3339 with nanoseconds; priorities as their literal string.
	SortValue string

	// LastID is the last row's task ID, the tie-breaker of the composite key.
	LastID uuid.UUID
}

// cursorPayload is the wire format of an encoded cursor. Sig binds the cursor
// to the filter/sort combination that produced it, so a cursor cannot be
// silently reused under different filters where its position would be wrong.
type cursorPayload struct {
	SortValue string    `json:"v"`
	LastID    uuid.UUID `json:"id"`
	Sig       string    `json:"sig"`
}

// Signature returns a stable fingerprint of the filter and sort parameters
// that shape a listing's row set and ordering. The limit and cursor are
// excluded: following a cursor with a different page size is legitimate.
func (f ListFilters) Signature() string {
	var b strings.Builder

	b.WriteString("sort=")
	b.WriteString(string(f.SortField))
	b.WriteString("&order=")
	b.WriteString(string(f.SortOrder))
	if f.Status != nil {
		b.WriteString("&status=")
		b.WriteString(string(*f.Status))
	}
	if f.Priority != nil {
		b.WriteString("&priority=")
		b.WriteString(string(*f.Priority))
	}
	if f.AsOf != nil {
		b.WriteString("&asOf=")
		b.WriteString(f.AsOf.UTC().Format(time.RFC3339Nano))
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:8])
}

// EncodeCursor serializes a continuation cursor for the given filters into an
// opaque URL-safe string. It round-trips exactly through DecodeCursor.
func EncodeCursor(filters ListFilters, c Cursor) (string, error) {
	payload := cursorPayload{
		SortValue: c.SortValue,
		LastID:    c.LastID,
		Sig:       filters.Signature(),
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses an opaque cursor string and verifies it was generated
// under the same filter/sort combination. A malformed, tampered, or mismatched
// cursor yields ErrInvalidCursor; it is never interpreted as a different valid
// position.
func DecodeCursor(filters ListFilters, encoded string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var payload cursorPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Cursor{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	if payload.SortValue == "" || payload.LastID == uuid.Nil {
		return Cursor{}, fmt.Errorf("%w: missing position", ErrInvalidCursor)
	}

	if payload.Sig != filters.Signature() {
		return Cursor{}, fmt.Errorf(
			"%w: cursor was generated under a different filter or sort combination",
			ErrInvalidCursor,
		)
	}

	return Cursor{SortValue: payload.SortValue, LastID: payload.LastID}, nil
}
