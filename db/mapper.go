package db

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"searchlight/models"
)

// Mapper converts PostgreSQL rows to records
type Mapper struct {
	entity *models.EntityType
}

// NewMapper creates a mapper for an entity type
func NewMapper(entity *models.EntityType) *Mapper {
	return &Mapper{entity: entity}
}

// RowToRecord converts the current pgx.Rows row to a record
func (m *Mapper) RowToRecord(rows pgx.Rows) (*models.Record, error) {
	fieldDescs := rows.FieldDescriptions()
	values, err := rows.Values()
	if err != nil {
		return nil, fmt.Errorf("failed to get row values: %w", err)
	}

	fields := make(map[string]any)
	for i, fd := range fieldDescs {
		colName := string(fd.Name)

		if len(m.entity.Columns) > 0 && !contains(m.entity.Columns, colName) && colName != m.entity.PrimaryKey {
			continue
		}

		fields[colName] = convertValue(values[i])
	}

	id, ok := fields[m.entity.PrimaryKey]
	if !ok {
		return nil, fmt.Errorf("primary key %s not found in row", m.entity.PrimaryKey)
	}

	return models.NewRecord(m.entity, fmt.Sprintf("%v", id), fields), nil
}

// convertValue converts PostgreSQL values to JSON-compatible types
func convertValue(v any) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case time.Time:
		return val.Format(time.RFC3339)

	case pgtype.Numeric:
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64

	case pgtype.Int4:
		if !val.Valid {
			return nil
		}
		return val.Int32

	case pgtype.Int8:
		if !val.Valid {
			return nil
		}
		return val.Int64

	case pgtype.Float4:
		if !val.Valid {
			return nil
		}
		return val.Float32

	case pgtype.Float8:
		if !val.Valid {
			return nil
		}
		return val.Float64

	case pgtype.Bool:
		if !val.Valid {
			return nil
		}
		return val.Bool

	case pgtype.Text:
		if !val.Valid {
			return nil
		}
		return val.String

	case pgtype.UUID:
		if !val.Valid {
			return nil
		}
		return fmt.Sprintf("%x-%x-%x-%x-%x",
			val.Bytes[0:4], val.Bytes[4:6], val.Bytes[6:8],
			val.Bytes[8:10], val.Bytes[10:16])

	case pgtype.Timestamp:
		if !val.Valid {
			return nil
		}
		return val.Time.Format(time.RFC3339)

	case pgtype.Timestamptz:
		if !val.Valid {
			return nil
		}
		return val.Time.Format(time.RFC3339)

	case pgtype.Date:
		if !val.Valid {
			return nil
		}
		return val.Time.Format("2006-01-02")

	case []byte:
		return string(val)

	case string:
		return val

	case int, int8, int16, int32, int64:
		return val

	case uint, uint8, uint16, uint32, uint64:
		return val

	case float32, float64:
		return val

	case bool:
		return val

	default:
		return fmt.Sprintf("%v", val)
	}
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
