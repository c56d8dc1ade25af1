package ml

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	FeatureAge           = "Age"
	FeatureCaffeine      = "Caffeine_mg"
	FeatureSleepHours    = "Sleep_Hours"
	FeatureBMI           = "BMI"
	FeatureHeartRate     = "Heart_Rate"
	FeatureActivityHours = "Physical_Activity_Hours"
)

// featureOrder is the column order both artifacts were trained on.
// Reordering it silently corrupts every prediction.
var featureOrder = [...]string{
	FeatureAge,
	FeatureCaffeine,
	FeatureSleepHours,
	FeatureBMI,
	FeatureHeartRate,
	FeatureActivityHours,
}

// FeatureCount is the length of every FeatureVector.
const FeatureCount = len(featureOrder)

// FeatureVector holds one value per feature, in canonical order.
// It is an array so it can be used directly as a map or cache key.
type FeatureVector [FeatureCount]float64

// RawInput maps feature names to whatever the caller collected: numbers,
// strings, or nothing at all.
type RawInput map[string]any

func FeatureNames() []string {
	return append([]string(nil), featureOrder[:]...)
}

// FeatureIndex returns the column of name, or -1 if it is not a feature.
func FeatureIndex(name string) int {
	for i, feature := range featureOrder {
		if feature == name {
			return i
		}
	}
	return -1
}

// Normalize builds a FeatureVector from raw. Missing or malformed values
// become 0 per field; it never fails.
func Normalize(raw RawInput) FeatureVector {
	var vector FeatureVector
	for i, name := range featureOrder {
		value, ok := raw[name]
		if !ok {
			continue
		}
		vector[i] = toFloat(value)
	}
	return vector
}

// Map returns the vector keyed by feature name.
func (v FeatureVector) Map() map[string]float64 {
	values := make(map[string]float64, FeatureCount)
	for i, name := range featureOrder {
		values[name] = v[i]
	}
	return values
}

func (v FeatureVector) Slice() []float64 {
	return append([]float64(nil), v[:]...)
}

func toFloat(value any) float64 {
	var f float64
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		f = parseNumber(v)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseNumber accepts full-width and other compatibility digits by folding
// the string to NFKC first.
func parseNumber(s string) float64 {
	s = strings.TrimSpace(norm.NFKC.String(s))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
