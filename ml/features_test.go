package ml

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Equal(t, FeatureVector{0, 0, 0, 0, 0, 0}, Normalize(RawInput{}))
	assert.Equal(t, FeatureVector{}, Normalize(nil))
}

func TestNormalizeCoercesAndZeroes(t *testing.T) {
	vector := Normalize(RawInput{"Age": "37", "BMI": "bad"})
	assert.Equal(t, FeatureVector{37, 0, 0, 0, 0, 0}, vector)
}

func TestNormalizeCanonicalOrder(t *testing.T) {
	raw := RawInput{
		"Physical_Activity_Hours": 6.5,
		"Heart_Rate":              72,
		"BMI":                     22.4,
		"Sleep_Hours":             7.5,
		"Caffeine_mg":             120,
		"Age":                     30,
	}
	assert.Equal(t, FeatureVector{30, 120, 7.5, 22.4, 72, 6.5}, Normalize(raw))
}

func TestNormalizeLenientValues(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  float64
	}{
		{"int", 42, 42},
		{"int64", int64(-3), -3},
		{"uint8", uint8(7), 7},
		{"float32", float32(1.5), 1.5},
		{"true", true, 1},
		{"false", false, 0},
		{"json number", json.Number("12.5"), 12.5},
		{"bad json number", json.Number("x"), 0},
		{"padded string", "  7.5\n", 7.5},
		{"full width digits", "３７", 37},
		{"exponent", "1e2", 100},
		{"empty string", "", 0},
		{"nan string", "NaN", 0},
		{"inf string", "inf", 0},
		{"overflow", "1e400", 0},
		{"nan float", math.NaN(), 0},
		{"inf float", math.Inf(-1), 0},
		{"nil", nil, 0},
		{"slice", []int{1}, 0},
		{"map", map[string]int{"a": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vector := Normalize(RawInput{FeatureHeartRate: tt.value})
			assert.Equal(t, tt.want, vector[FeatureIndex(FeatureHeartRate)])
		})
	}
}

func TestNormalizeAlwaysFinite(t *testing.T) {
	inputs := []RawInput{
		{"Age": math.Inf(1), "BMI": math.NaN()},
		{"Sleep_Hours": "Infinity", "Caffeine_mg": struct{}{}},
		{"unknown": 5, "Heart_Rate": "-0"},
		{"Physical_Activity_Hours": []byte("3")},
	}
	for _, raw := range inputs {
		vector := Normalize(raw)
		require.Len(t, vector, FeatureCount)
		for _, value := range vector {
			assert.False(t, math.IsNaN(value) || math.IsInf(value, 0), "non-finite value in %v", vector)
		}
	}
}

func TestFeatureNames(t *testing.T) {
	names := FeatureNames()
	require.Equal(t, []string{"Age", "Caffeine_mg", "Sleep_Hours", "BMI", "Heart_Rate", "Physical_Activity_Hours"}, names)

	names[0] = "changed"
	assert.Equal(t, "Age", FeatureNames()[0])
	assert.Equal(t, 3, FeatureIndex("BMI"))
	assert.Equal(t, -1, FeatureIndex("Weight"))
}

func TestFeatureVectorMap(t *testing.T) {
	vector := FeatureVector{1, 2, 3, 4, 5, 6}
	values := vector.Map()
	assert.Len(t, values, FeatureCount)
	assert.Equal(t, 4.0, values["BMI"])
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, vector.Slice())
}
