package models

// ResultMode says how the result area content must be rendered.
type ResultMode string

const (
	ResultModeNone   ResultMode = ""
	ResultModeReport ResultMode = "report" // structured report, rendered as HTML
	ResultModeText   ResultMode = "text"   // plain text, always escaped
)

// Default texts for optional report fields.
const (
	NoSymptomsText = "No symptoms provided."
	NoCausesText   = "No causes provided."
	NoFileAlert    = "Please select a file to upload."
)

// Report is the textual result of a successful prediction.
type Report struct {
	Prediction  string `json:"prediction" msgpack:"prediction"`
	Description string `json:"description" msgpack:"description"`
	Symptoms    string `json:"symptoms" msgpack:"symptoms"`
	Causes      string `json:"causes" msgpack:"causes"`
	Impact      string `json:"impact" msgpack:"impact"`
	Control     string `json:"control" msgpack:"control"`
}

// ResultPanel is the state of the result area.
type ResultPanel struct {
	Visible bool       `json:"visible" msgpack:"visible"`
	Mode    ResultMode `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Report  *Report    `json:"report,omitempty" msgpack:"report,omitempty"`
	Text    string     `json:"text,omitempty" msgpack:"text,omitempty"`
}

// PreviewImage is the state of the uploaded image preview.
type PreviewImage struct {
	Visible bool   `json:"visible" msgpack:"visible"`
	DataURL string `json:"dataUrl,omitempty" msgpack:"dataUrl,omitempty"`
}

// ChartSpec describes the confidence bar chart. One dataset only.
type ChartSpec struct {
	Labels       []string  `json:"labels" msgpack:"labels"`
	Values       []float64 `json:"values" msgpack:"values"`
	DatasetLabel string    `json:"datasetLabel" msgpack:"datasetLabel"`
	FillColor    string    `json:"fillColor" msgpack:"fillColor"`
	BorderColor  string    `json:"borderColor" msgpack:"borderColor"`
	BorderWidth  float64   `json:"borderWidth" msgpack:"borderWidth"`
	BeginAtZero  bool      `json:"beginAtZero" msgpack:"beginAtZero"`
}

// Layout holds inline sizing overrides for the page container.
type Layout struct {
	ContainerMinHeight string `json:"containerMinHeight,omitempty" msgpack:"containerMinHeight,omitempty"`
	ContainerHeight    string `json:"containerHeight,omitempty" msgpack:"containerHeight,omitempty"`
}

// UIState is everything the page shows. It is derived per submission and
// never persisted.
type UIState struct {
	CycleID  string       `json:"cycleId,omitempty" msgpack:"cycleId,omitempty"`
	Pending  bool         `json:"pending" msgpack:"pending"`
	Alert    string       `json:"alert,omitempty" msgpack:"alert,omitempty"`
	Result   ResultPanel  `json:"result" msgpack:"result"`
	Preview  PreviewImage `json:"preview" msgpack:"preview"`
	Chart    *ChartSpec   `json:"chart,omitempty" msgpack:"chart,omitempty"`
	Layout   Layout       `json:"layout" msgpack:"layout"`
	Revision uint64       `json:"revision" msgpack:"revision"`
}
