// Package formats parses bulk record payloads for the bulk load endpoint.
package formats

import "errors"

// Parser decodes a request body into a slice of record field maps
type Parser interface {
	Parse(data []byte) ([]map[string]any, error)
}

// ErrUnsupportedFormat is returned when the requested format is not supported
var ErrUnsupportedFormat = errors.New("unsupported format")

// GetParser returns the parser for the given format name
func GetParser(format string) (Parser, error) {
	switch format {
	case "jsoneachrow":
		return &JSONEachRowParser{}, nil
	case "msgpack":
		return &MsgpackParser{}, nil
	default:
		return nil, ErrUnsupportedFormat
	}
}
