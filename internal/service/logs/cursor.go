package logs

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mamadbah2/stockledger/internal/domain/models"
)

type cursorPayload struct {
	Timestamp string `json:"t"`
	Seq       int64  `json:"s"`
	ID        string `json:"i"`
}

// EncodeCursor renders a resume point as an opaque URL-safe token.
func EncodeCursor(c models.LogCursor) string {
	raw, _ := json.Marshal(cursorPayload{
		Timestamp: c.Timestamp.UTC().Format(time.RFC3339Nano),
		Seq:       c.Seq,
		ID:        c.ID,
	})
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token produced by EncodeCursor.
func DecodeCursor(token string) (models.LogCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return models.LogCursor{}, invalidCursor(err)
	}

	var p cursorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return models.LogCursor{}, invalidCursor(err)
	}

	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return models.LogCursor{}, invalidCursor(err)
	}

	return models.LogCursor{Timestamp: ts.UTC(), Seq: p.Seq, ID: p.ID}, nil
}

func invalidCursor(err error) error {
	return fmt.Errorf("%w (%v)", models.NewValidationError("cursor", "Malformed cursor"), err)
}
