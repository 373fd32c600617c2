package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// JSONEachRowParser decodes JSON Lines payloads, one record per line
type JSONEachRowParser struct{}

// Parse parses one JSON object per line, skipping blank lines
func (p *JSONEachRowParser) Parse(data []byte) ([]map[string]any, error) {
	var records []map[string]any

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var rec map[string]any
		if err := sonic.UnmarshalString(line, &rec); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	return records, nil
}
