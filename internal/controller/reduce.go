package controller

import (
	"github.com/leafscan/backend/internal/models"
	"github.com/leafscan/backend/internal/predict"
	"github.com/leafscan/backend/internal/render"
)

// EventKind identifies what happened.
type EventKind int

const (
	// EventLayoutAuto is the submit-button click: container sizing goes back to auto.
	EventLayoutAuto EventKind = iota
	// EventNoFileSelected is a submission without a file.
	EventNoFileSelected
	// EventCycleStarted recreates the state for a new submission.
	EventCycleStarted
	// EventPreviewReady carries the data URL of the selected file.
	EventPreviewReady
	// EventPredictionSettled carries the network task outcome, success or failure.
	EventPredictionSettled
	// EventAlertDismissed clears a shown alert.
	EventAlertDismissed
)

func (k EventKind) String() string {
	switch k {
	case EventLayoutAuto:
		return "layout-auto"
	case EventNoFileSelected:
		return "no-file-selected"
	case EventCycleStarted:
		return "cycle-started"
	case EventPreviewReady:
		return "preview-ready"
	case EventPredictionSettled:
		return "prediction-settled"
	case EventAlertDismissed:
		return "alert-dismissed"
	}
	return "unknown"
}

// Event is the completion of one task, or a user action.
type Event struct {
	Kind       EventKind
	CycleID    string
	Generation uint64
	DataURL    string
	Response   *models.PredictionResponse
	Err        error
}

// Reduce folds one event into the state. It never mutates values reachable
// from s; Report and Chart are replaced, not edited.
func Reduce(s models.UIState, ev Event) models.UIState {
	switch ev.Kind {
	case EventLayoutAuto:
		s.Layout = models.Layout{ContainerMinHeight: "auto", ContainerHeight: "auto"}

	case EventNoFileSelected:
		s.Alert = models.NoFileAlert

	case EventAlertDismissed:
		if s.Alert == "" {
			return s
		}
		s.Alert = ""

	case EventCycleStarted:
		s = models.UIState{
			CycleID:  ev.CycleID,
			Pending:  true,
			Layout:   s.Layout,
			Revision: s.Revision,
		}

	case EventPreviewReady:
		s.Preview = models.PreviewImage{Visible: true, DataURL: ev.DataURL}

	case EventPredictionSettled:
		if ev.CycleID == s.CycleID {
			s.Pending = false
		}
		result, chart, err := Interpret(ev.Response, ev.Err)
		if err != nil {
			s.Result = models.ResultPanel{Visible: true, Mode: models.ResultModeText, Text: predict.DisplayText(err)}
			break
		}
		s.Result = result
		if chart != nil {
			s.Chart = chart
		}
	}
	s.Revision++
	return s
}

// Interpret branches on the response shape. A backend-reported error is
// returned as a text panel, not as an error.
func Interpret(resp *models.PredictionResponse, err error) (models.ResultPanel, *models.ChartSpec, error) {
	if err != nil {
		return models.ResultPanel{}, nil, err
	}
	switch {
	case resp.HasPrediction():
		if resp.Details == nil {
			return models.ResultPanel{}, nil, predict.NewResponseFormatError("response is missing details", nil)
		}
		panel := models.ResultPanel{
			Visible: true,
			Mode:    models.ResultModeReport,
			Report:  render.BuildReport(resp),
		}
		return panel, render.NewChartSpec(resp.Labels, resp.ConfidenceLevels), nil
	case resp.HasError():
		return models.ResultPanel{Visible: true, Mode: models.ResultModeText, Text: "Error: " + resp.Error}, nil, nil
	}
	return models.ResultPanel{}, nil, predict.NewUnknownResponseShapeError()
}
