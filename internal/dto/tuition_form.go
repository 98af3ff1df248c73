package dto

import (
	"encoding/json"
	"strings"
)

// TuitionForm holds the raw edit inputs. Numbers stay strings until validated.
type TuitionForm struct {
	Subject      string `json:"subject" form:"subject" validate:"required"`
	Class        string `json:"class" form:"class" validate:"required"`
	Budget       string `json:"budget" form:"budget" validate:"required,minbudget"`
	Location     string `json:"location" form:"location" validate:"required"`
	DaysPerWeek  string `json:"daysPerWeek" form:"daysPerWeek" validate:"required,oneof=2 3 4 5 6"`
	TimeSlot     string `json:"timeSlot" form:"timeSlot" validate:"required"`
	Requirements string `json:"requirements" form:"requirements"`
}

// UnmarshalJSON accepts budget and daysPerWeek as JSON numbers or strings.
func (f *TuitionForm) UnmarshalJSON(data []byte) error {
	var wire struct {
		Subject      string          `json:"subject"`
		Class        string          `json:"class"`
		Budget       json.RawMessage `json:"budget"`
		Location     string          `json:"location"`
		DaysPerWeek  json.RawMessage `json:"daysPerWeek"`
		TimeSlot     string          `json:"timeSlot"`
		Requirements string          `json:"requirements"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*f = TuitionForm{
		Subject:      wire.Subject,
		Class:        wire.Class,
		Budget:       rawScalar(wire.Budget),
		Location:     wire.Location,
		DaysPerWeek:  rawScalar(wire.DaysPerWeek),
		TimeSlot:     wire.TimeSlot,
		Requirements: wire.Requirements,
	}
	return nil
}

func rawScalar(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}

