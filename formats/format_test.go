package formats

import (
	"errors"
	"testing"
)

func TestJSONEachRow(t *testing.T) {
	payload := []byte(`{"id": "1", "name": "Blue Widget"}

{"id": "2", "name": "Red Widget"}
`)

	parser, err := GetParser("jsoneachrow")
	if err != nil {
		t.Fatal(err)
	}

	records, err := parser.Parse(payload)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0]["id"] != "1" || records[1]["name"] != "Red Widget" {
		t.Fatalf("unexpected records: %v", records)
	}
}

func TestJSONEachRowInvalidLine(t *testing.T) {
	parser, _ := GetParser("jsoneachrow")
	_, err := parser.Parse([]byte(`{"id": "1"}
not json`))
	if err == nil {
		t.Fatalf("expected parse error for invalid line")
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := GetParser("csv")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}
