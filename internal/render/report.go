// Package render maps a UIState to presentation. Every function here is pure:
// the same state always yields the same output.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/leafscan/backend/internal/models"
)

var reportTemplate = template.Must(template.New("report").Parse(`
<h2>Predicted Disease: {{.Prediction}}</h2>
<p><strong>Description:</strong> {{.Description}}</p>
<p><strong>Symptoms:</strong> {{.Symptoms}}</p>
<p><strong>Causes:</strong> {{.Causes}}</p>
<p><strong>Impact:</strong> {{.Impact}}</p>
<p><strong>Control Measures:</strong> {{.Control}}</p>
`))

// BuildReport fills the report from a prediction, substituting the
// placeholder text for missing or empty symptoms and causes.
func BuildReport(resp *models.PredictionResponse) *models.Report {
	r := &models.Report{Prediction: resp.Prediction}
	if d := resp.Details; d != nil {
		r.Description = d.Description
		r.Symptoms = d.Symptoms
		r.Causes = d.Causes
		r.Impact = d.Impact
		r.Control = d.Control
	}
	if r.Symptoms == "" {
		r.Symptoms = models.NoSymptomsText
	}
	if r.Causes == "" {
		r.Causes = models.NoCausesText
	}
	return r
}

// ReportHTML renders the report fragment shown in the result area.
func ReportHTML(r *models.Report) template.HTML {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, r); err != nil {
		// Only fields of a plain struct are referenced; execution cannot fail.
		panic(err)
	}
	return template.HTML(buf.String())
}

// ReportText renders the report as plain text lines.
func ReportText(r *models.Report) string {
	var b strings.Builder
	b.WriteString("Predicted Disease: " + r.Prediction + "\n")
	b.WriteString("Description: " + r.Description + "\n")
	b.WriteString("Symptoms: " + r.Symptoms + "\n")
	b.WriteString("Causes: " + r.Causes + "\n")
	b.WriteString("Impact: " + r.Impact + "\n")
	b.WriteString("Control Measures: " + r.Control + "\n")
	return b.String()
}

// ResultText is the innerText equivalent of the result area.
func ResultText(panel models.ResultPanel) string {
	switch panel.Mode {
	case models.ResultModeReport:
		if panel.Report != nil {
			return ReportText(panel.Report)
		}
	case models.ResultModeText:
		return panel.Text
	}
	return ""
}
