package repair

import (
	"encoding/json"
	"math"

	"github.com/dukex/n8ngen/pkg/models"
)

// asInt accepts JSON integers. Booleans, fractional numbers and numeric strings are rejected.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}

		return int(n), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}

		return int(v), true
	default:
		return 0, false
	}
}

// asFloat accepts any JSON number except booleans.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}

		return f, true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func asPosition(value any) (models.Position, bool) {
	pair, ok := value.([]any)
	if !ok || len(pair) != 2 {
		return models.Position{}, false
	}

	x, ok := asFloat(pair[0])
	if !ok {
		return models.Position{}, false
	}

	y, ok := asFloat(pair[1])
	if !ok {
		return models.Position{}, false
	}

	return models.Position{x, y}, true
}
