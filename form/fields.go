// Package form describes the six-field health form shared by the web page,
// the terminal UI and the CLI.
package form

import (
	"math"
	"strconv"

	"healthpredict/ml"
)

const (
	Title       = "🧠 Health Prediction App"
	Intro       = "Fill in your details below to predict your Sleep Quality and Stress Level."
	SleepLabel  = "😴 Sleep Quality"
	StressLabel = "⚡ Stress Level"

	MsgModelsLoaded = "✅ Models loaded successfully"
	MsgLoadFailed   = "❌ Could not load models. Please check file paths."
	MsgUnavailable  = "❌ No trained models available. Please train and save them first."
	MsgCompleted    = "✅ Prediction completed successfully!"
)

// About is the sidebar text.
var About = []string{
	"This app uses Machine Learning models to predict:",
	"😴 Sleep Quality",
	"⚡ Stress Level",
	"based on your lifestyle habits.",
}

type Kind int

const (
	Integer Kind = iota
	Float
)

// Field is one input widget. Max is +Inf when unbounded. Every field
// defaults to its Min.
type Field struct {
	Name   string
	Label  string
	Kind   Kind
	Min    float64
	Max    float64
	Step   float64
	Column int
}

// Fields lists the inputs in feature order.
var Fields = []Field{
	{Name: ml.FeatureAge, Label: "🎂 Age", Kind: Integer, Min: 0, Max: 120, Step: 1, Column: 0},
	{Name: ml.FeatureCaffeine, Label: "☕ Caffeine Intake (mg/day)", Kind: Integer, Min: 0, Max: math.Inf(1), Step: 10, Column: 0},
	{Name: ml.FeatureSleepHours, Label: "🛌 Sleep Hours (per night)", Kind: Float, Min: 0, Max: math.Inf(1), Step: 0.5, Column: 0},
	{Name: ml.FeatureBMI, Label: "⚖️ BMI", Kind: Float, Min: 0, Max: math.Inf(1), Step: 0.1, Column: 1},
	{Name: ml.FeatureHeartRate, Label: "❤️ Heart Rate (bpm)", Kind: Integer, Min: 0, Max: math.Inf(1), Step: 1, Column: 1},
	{Name: ml.FeatureActivityHours, Label: "🏃 Physical Activity Hours (per week)", Kind: Float, Min: 0, Max: math.Inf(1), Step: 0.5, Column: 1},
}

func (f Field) Bounded() bool {
	return !math.IsInf(f.Max, 1)
}

// Clamp keeps v inside the widget's range and rounds integer fields.
func (f Field) Clamp(v float64) float64 {
	if f.Kind == Integer {
		v = math.Round(v)
	}
	if v < f.Min {
		return f.Min
	}
	if v > f.Max {
		return f.Max
	}
	return v
}

// Format renders v the way the widget shows it: integers plain, floats
// with two decimals.
func (f Field) Format(v float64) string {
	if f.Kind == Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (f Field) FormatStep() string {
	if f.Kind == Integer {
		return strconv.FormatInt(int64(f.Step), 10)
	}
	return strconv.FormatFloat(f.Step, 'f', -1, 64)
}

// Defaults is the vector shown on a fresh form.
func Defaults() ml.FeatureVector {
	var vector ml.FeatureVector
	for i, field := range Fields {
		vector[i] = field.Min
	}
	return vector
}

// Clamp applies every field's constraints to a normalized vector.
func Clamp(vector ml.FeatureVector) ml.FeatureVector {
	for i, field := range Fields {
		vector[i] = field.Clamp(vector[i])
	}
	return vector
}

// Values formats vector for redisplay, keyed by field name.
func Values(vector ml.FeatureVector) map[string]string {
	values := make(map[string]string, len(Fields))
	for i, field := range Fields {
		values[field.Name] = field.Format(vector[i])
	}
	return values
}
