package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"healthpredict/form"
	"healthpredict/ml"
	"healthpredict/monitoring"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// formInput is one rendered number input.
type formInput struct {
	form.Field
	Value    string
	MinValue string
	MaxValue string
}

type formResult struct {
	Sleep  ml.Label
	Stress ml.Label
}

type formPage struct {
	Title       string
	Intro       string
	About       []string
	Status      monitoring.ModelStatus
	Columns     [2][]formInput
	SleepLabel  string
	StressLabel string
	Result      *formResult
	Message     string
	Error       string
}

func (h *Handler) newFormPage(vector ml.FeatureVector) formPage {
	page := formPage{
		Title:       form.Title,
		Intro:       form.Intro,
		About:       form.About,
		Status:      h.status,
		SleepLabel:  form.SleepLabel,
		StressLabel: form.StressLabel,
	}
	values := form.Values(vector)
	for _, field := range form.Fields {
		input := formInput{
			Field:    field,
			Value:    values[field.Name],
			MinValue: field.Format(field.Min),
		}
		if field.Bounded() {
			input.MaxValue = field.Format(field.Max)
		}
		page.Columns[field.Column] = append(page.Columns[field.Column], input)
	}
	return page
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, h.newFormPage(form.Defaults()))
}

// handleFormSubmit predicts from the posted form and re-renders it. Errors
// are shown inline on a 200 page, like the widgets they replace.
func (h *Handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	raw := ml.RawInput{}
	for _, field := range form.Fields {
		if _, ok := r.PostForm[field.Name]; ok {
			raw[field.Name] = r.PostForm.Get(field.Name)
		}
	}
	vector := form.Clamp(ml.Normalize(raw))

	page := h.newFormPage(vector)
	prediction, err := h.predict(r.Context(), SourceForm, vector)
	switch {
	case errors.Is(err, ml.ErrArtifactsUnavailable):
		page.Error = form.MsgUnavailable
	case err != nil:
		page.Error = "❌ Prediction failed: " + err.Error()
	default:
		page.Result = &formResult{Sleep: prediction.Sleep, Stress: prediction.Stress}
		page.Message = form.MsgCompleted
	}
	h.renderForm(w, page)
}

func (h *Handler) renderForm(w http.ResponseWriter, page formPage) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		h.logger.Error("failed to render form", zap.Error(err))
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
