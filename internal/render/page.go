package render

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/leafscan/backend/internal/models"
)

// PageView is the presentation of a UIState, ready for the page template.
type PageView struct {
	Alert          string        `json:"alert,omitempty"`
	Pending        bool          `json:"pending"`
	ResultStyle    template.CSS  `json:"resultStyle"`
	ResultHTML     template.HTML `json:"resultHtml"`
	ImageStyle     template.CSS  `json:"imageStyle"`
	ImageSrc       template.URL  `json:"imageSrc,omitempty"`
	ContainerStyle template.CSS  `json:"containerStyle"`
	HasChart       bool          `json:"hasChart"`
	ChartURL       string        `json:"chartUrl,omitempty"`
	Revision       uint64        `json:"revision"`
}

// Page maps state to presentation. chartURL is the address serving the
// current chart image; the revision is appended so browsers refetch it after
// every replacement.
func Page(state models.UIState, chartURL string) PageView {
	v := PageView{
		Alert:          state.Alert,
		Pending:        state.Pending,
		ResultStyle:    display(state.Result.Visible),
		ResultHTML:     ResultHTML(state.Result),
		ImageStyle:     display(state.Preview.Visible),
		ContainerStyle: containerStyle(state.Layout),
		Revision:       state.Revision,
	}
	if state.Preview.DataURL != "" {
		// The data URL is produced locally from the uploaded bytes.
		v.ImageSrc = template.URL(state.Preview.DataURL)
	}
	if state.Chart != nil && len(state.Chart.Labels) > 0 {
		v.HasChart = true
		v.ChartURL = chartURL + "?rev=" + strconv.FormatUint(state.Revision, 10)
	}
	return v
}

// ResultHTML renders the result area. Report mode yields the report fragment;
// text mode is escaped like innerText.
func ResultHTML(panel models.ResultPanel) template.HTML {
	switch panel.Mode {
	case models.ResultModeReport:
		if panel.Report != nil {
			return ReportHTML(panel.Report)
		}
	case models.ResultModeText:
		return template.HTML(template.HTMLEscapeString(panel.Text))
	}
	return ""
}

func display(visible bool) template.CSS {
	if visible {
		return "display: block;"
	}
	return "display: none;"
}

func containerStyle(l models.Layout) template.CSS {
	var parts []string
	if l.ContainerMinHeight != "" {
		parts = append(parts, "min-height: "+cssValue(l.ContainerMinHeight)+";")
	}
	if l.ContainerHeight != "" {
		parts = append(parts, "height: "+cssValue(l.ContainerHeight)+";")
	}
	return template.CSS(strings.Join(parts, " "))
}

// cssValue keeps only characters valid in a simple length or keyword.
func cssValue(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '%', r == '-':
			return r
		}
		return -1
	}, s)
}
