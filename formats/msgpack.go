package formats

import (
	"fmt"

	"github.com/hashicorp/go-msgpack/codec"
)

// MsgpackParser decodes a MessagePack array of record maps
type MsgpackParser struct{}

// Parse parses MessagePack data
func (p *MsgpackParser) Parse(data []byte) ([]map[string]any, error) {
	var records []map[string]any

	decoder := codec.NewDecoderBytes(data, &codec.MsgpackHandle{})
	if err := decoder.Decode(&records); err != nil {
		return nil, fmt.Errorf("invalid MessagePack data: %w", err)
	}

	return records, nil
}
