package repository

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// throwMessageContains reports whether a store error carries the given
// marker thrown by one of our transaction scripts.
func throwMessageContains(err error, marker string) bool {
	return err != nil && strings.Contains(err.Error(), marker)
}

// extractRecordID extracts record ID from SurrealDB result
func extractRecordID(id interface{}) string {
	switch v := id.(type) {
	case string:
		return v
	case models.RecordID:
		return v.String()
	case *models.RecordID:
		if v != nil {
			return v.String()
		}
	case map[string]interface{}:
		// Handle {"tb": "table", "id": "xxx"} format
		if tb, ok := v["tb"].(string); ok {
			if id, ok := v["id"].(string); ok {
				return tb + ":" + id
			}
		}
	}

	// Try JSON marshaling as fallback
	if data, err := json.Marshal(id); err == nil {
		var recordID models.RecordID
		if err := json.Unmarshal(data, &recordID); err == nil {
			return recordID.String()
		}
	}

	return ""
}

// parseTime parses time from various formats
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// parseTimePtr parses an optional timestamp, nil when absent or malformed.
func parseTimePtr(v interface{}) *time.Time {
	if v == nil {
		return nil
	}
	t := parseTime(v)
	if t.IsZero() {
		return nil
	}
	return &t
}

// extractQueryResults extracts query results array from SurrealDB response
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	if results, ok := result.([]interface{}); ok {
		if len(results) > 0 {
			if firstResult, ok := results[0].(map[string]interface{}); ok {
				if resultArray, ok := firstResult["result"].([]interface{}); ok {
					return resultArray, true
				}
			}
			// Direct array format
			return results, true
		}
	}
	return nil, false
}

// extractLastRecords returns the record array produced by the last
// record-yielding statement of a multi-statement script (LET and IF
// statements yield nothing useful).
func extractLastRecords(result []interface{}) ([]interface{}, bool) {
	for i := len(result) - 1; i >= 0; i-- {
		wrapper, ok := result[i].(map[string]interface{})
		if !ok {
			continue
		}
		if rows, ok := wrapper["result"].([]interface{}); ok && len(rows) > 0 {
			return rows, true
		}
	}
	return nil, false
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// parseCount converts the numeric shapes SurrealDB may return to an int.
// The second return value is false when the field is absent or not a
// number, so callers can apply a defined default exactly once at this
// boundary instead of duck-typing further up.
func parseCount(v interface{}) (int, bool) {
	switch c := v.(type) {
	case float64:
		return int(c), true
	case float32:
		return int(c), true
	case int:
		return c, true
	case int64:
		return int(c), true
	case uint64:
		return int(c), true
	}
	return 0, false
}

// getInt extracts an int value from a map, 0 when absent.
func getInt(m map[string]interface{}, key string) int {
	n, _ := parseCount(m[key])
	return n
}

// getFloat extracts a float value from a map
func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	}
	return 0
}

// getStringSlice extracts a []string value from a map
func getStringSlice(m map[string]interface{}, key string) []string {
	arr, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
