package dto

import "github.com/noah-isme/tuition-web/internal/models"

// TuitionRow is one rendered dashboard entry with its affordances resolved.
type TuitionRow struct {
	Tuition   models.Tuition `json:"tuition"`
	Editable  bool           `json:"editable"`
	Deletable bool           `json:"deletable"`
}

// TuitionFormView is the edit dialog payload.
type TuitionFormView struct {
	TuitionID   string            `json:"tuitionId"`
	Values      TuitionForm       `json:"values"`
	Errors      map[string]string `json:"errors"`
	Subjects    []string          `json:"subjects"`
	Classes     []string          `json:"classes"`
	DaysPerWeek []int             `json:"daysPerWeek"`
}

// EditFlowView reports the edit dialog state.
type EditFlowView struct {
	State string           `json:"state"`
	Form  *TuitionFormView `json:"form,omitempty"`
}

// DeleteFlowView reports the delete confirmation state.
type DeleteFlowView struct {
	State  string          `json:"state"`
	Target *models.Tuition `json:"target,omitempty"`
}

// DashboardView is the full dashboard snapshot for one session.
type DashboardView struct {
	Loaded   bool                 `json:"loaded"`
	Email    string               `json:"email"`
	Filter   models.TuitionFilter `json:"filter"`
	Tuitions []TuitionRow         `json:"tuitions"`
	Stats    models.TuitionStats  `json:"stats"`
	Edit     EditFlowView         `json:"edit"`
	Delete   DeleteFlowView       `json:"delete"`
}

// NewTuitionRows resolves the affordances for each tuition.
func NewTuitionRows(tuitions []models.Tuition) []TuitionRow {
	rows := make([]TuitionRow, 0, len(tuitions))
	for _, t := range tuitions {
		rows = append(rows, TuitionRow{Tuition: t, Editable: t.Editable(), Deletable: t.Deletable()})
	}
	return rows
}
