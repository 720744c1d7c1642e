package models

import "time"

// Field readers for decoded documents. Firestore hands back int64 for integers and
// []interface{} for arrays; older documents written by the mobile client may hold doubles
// where integers are expected.

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func floatField(data map[string]interface{}, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func intField(data map[string]interface{}, key string) int {
	switch v := data[key].(type) {
	case int64:
		return int(v)
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

func timeField(data map[string]interface{}, key string) time.Time {
	t, _ := data[key].(time.Time)
	return t
}

func stringSliceField(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
