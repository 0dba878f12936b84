package extract

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/receipt-tracker/internal/model"
)

// ExtractedReceipt holds the fields recovered from an extraction payload.
// Nil fields were absent or unparseable.
type ExtractedReceipt struct {
	Title     *string
	Note      *string
	Date      *time.Time
	TotalCost *float64
}

// IsEmpty reports whether no field was recovered.
func (e ExtractedReceipt) IsEmpty() bool {
	return e.Title == nil && e.Note == nil && e.Date == nil && e.TotalCost == nil
}

// Patch converts the extracted fields into a receipt patch.
func (e ExtractedReceipt) Patch() model.ReceiptPatch {
	return model.ReceiptPatch{
		Title:     e.Title,
		Note:      e.Note,
		Date:      e.Date,
		TotalCost: e.TotalCost,
	}
}

// dateLayouts are tried in order when parsing the extracted date.
var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006/01/02",
	time.RFC3339,
}

// Parse recovers receipt fields from an extraction payload. The payload
// is free-form text that usually embeds a fenced code block labeled json;
// bare fences and a raw top-level JSON object are tolerated. Any failure
// degrades to absent fields, never an error.
func Parse(text string) ExtractedReceipt {
	block := fencedBlock(text)
	if block == "" {
		slog.Warn("no JSON block found in extraction payload")
		return ExtractedReceipt{}
	}

	var raw struct {
		Title     *string         `json:"title"`
		Note      *string         `json:"note"`
		Date      *string         `json:"date"`
		TotalCost json.RawMessage `json:"total_cost"`
	}
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		slog.Warn("failed to parse extraction JSON", "error", err)
		return ExtractedReceipt{}
	}

	var result ExtractedReceipt
	if raw.Title != nil && strings.TrimSpace(*raw.Title) != "" {
		title := strings.TrimSpace(*raw.Title)
		result.Title = &title
	}
	if raw.Note != nil && strings.TrimSpace(*raw.Note) != "" {
		note := strings.TrimSpace(*raw.Note)
		result.Note = &note
	}
	if raw.Date != nil {
		if date, ok := parseDate(*raw.Date); ok {
			result.Date = &date
		} else {
			slog.Warn("unrecognized date in extraction payload", "date", *raw.Date)
		}
	}
	if len(raw.TotalCost) > 0 {
		if total, ok := parseTotal(raw.TotalCost); ok {
			result.TotalCost = &total
		} else {
			slog.Warn("unrecognized total in extraction payload", "total", string(raw.TotalCost))
		}
	}
	return result
}

// fencedBlock returns the body of the first fenced code block labeled
// json (or an unlabeled fence), or the text itself when it already looks
// like a JSON object.
func fencedBlock(text string) string {
	rest := text
	for {
		start := strings.Index(rest, "```")
		if start < 0 {
			break
		}
		rest = rest[start+3:]
		end := strings.Index(rest, "```")
		if end < 0 {
			break
		}
		body := rest[:end]
		rest = rest[end+3:]

		label := ""
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			label = strings.TrimSpace(body[:nl])
			body = body[nl+1:]
		}
		if label != "" && !strings.EqualFold(label, "json") {
			continue
		}
		return strings.TrimSpace(body)
	}

	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") {
		return trimmed
	}
	return ""
}

func parseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, value); err == nil {
			return date, true
		}
	}
	return time.Time{}, false
}

// parseTotal accepts a JSON number or a numeric string, which may carry
// currency noise, and sanitizes it the same way manual input is.
func parseTotal(raw json.RawMessage) (float64, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return model.RoundCents(number), true
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	total, err := model.ParseTotal(text)
	if err != nil {
		return 0, false
	}
	return total, true
}
