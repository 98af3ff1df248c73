package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TuitionStatus is assigned by the backend; the dashboard never writes it.
type TuitionStatus string

const (
	TuitionStatusPending   TuitionStatus = "pending"
	TuitionStatusApproved  TuitionStatus = "approved"
	TuitionStatusRejected  TuitionStatus = "rejected"
	TuitionStatusCompleted TuitionStatus = "completed"
)

// Mutable reports whether the owner may still edit or delete a tuition in this status.
func (s TuitionStatus) Mutable() bool {
	return s != TuitionStatusApproved && s != TuitionStatusCompleted
}

// StatusFilterAll is the pass-through status filter.
const StatusFilterAll = "all"

// MinBudget is the lowest budget a tuition may advertise.
const MinBudget = 1000

// DaysPerWeekOptions are the values offered by the edit form.
var DaysPerWeekOptions = []int{2, 3, 4, 5, 6}

// Subjects lists the catalogue offered when posting or editing a tuition.
var Subjects = []string{
	"Bangla",
	"English",
	"Mathematics",
	"Physics",
	"Chemistry",
	"Biology",
	"Higher Math",
	"ICT",
	"Accounting",
	"Finance",
	"Economics",
	"Business Studies",
	"General Science",
	"Religion",
	"Social Science",
	"Arabic",
}

// Classes lists the class levels offered when posting or editing a tuition.
var Classes = []string{
	"Play",
	"Nursery",
	"KG",
	"Class 1",
	"Class 2",
	"Class 3",
	"Class 4",
	"Class 5",
	"Class 6",
	"Class 7",
	"Class 8",
	"Class 9",
	"Class 10",
	"Class 11",
	"Class 12",
	"HSC 1st Year",
	"HSC 2nd Year",
	"Honours",
	"Masters",
}

// Tuition is a student's request for a tutor as stored by the backend.
type Tuition struct {
	ID           string        `json:"id"`
	Subject      string        `json:"subject"`
	Class        string        `json:"class"`
	Budget       int           `json:"budget"`
	Location     string        `json:"location"`
	DaysPerWeek  int           `json:"daysPerWeek"`
	TimeSlot     string        `json:"timeSlot"`
	Requirements string        `json:"requirements,omitempty"`
	Status       TuitionStatus `json:"status"`
	StudentEmail string        `json:"studentEmail,omitempty"`
	StudentName  string        `json:"studentName,omitempty"`
	CreatedAt    *time.Time    `json:"createdAt,omitempty"`
}

// wireTuition accepts the looser shapes the backend emits: "_id" keys and numbers sent as strings.
type wireTuition struct {
	MongoID      string          `json:"_id"`
	ID           string          `json:"id"`
	Subject      string          `json:"subject"`
	Class        string          `json:"class"`
	Budget       json.RawMessage `json:"budget"`
	Location     string          `json:"location"`
	DaysPerWeek  json.RawMessage `json:"daysPerWeek"`
	TimeSlot     string          `json:"timeSlot"`
	Requirements string          `json:"requirements"`
	Status       TuitionStatus   `json:"status"`
	StudentEmail string          `json:"studentEmail"`
	StudentName  string          `json:"studentName"`
	CreatedAt    *time.Time      `json:"createdAt"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tuition) UnmarshalJSON(data []byte) error {
	var w wireTuition
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	budget, err := looseInt(w.Budget)
	if err != nil {
		return fmt.Errorf("tuition budget: %w", err)
	}
	days, err := looseInt(w.DaysPerWeek)
	if err != nil {
		return fmt.Errorf("tuition daysPerWeek: %w", err)
	}
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	*t = Tuition{
		ID:           id,
		Subject:      w.Subject,
		Class:        w.Class,
		Budget:       budget,
		Location:     w.Location,
		DaysPerWeek:  days,
		TimeSlot:     w.TimeSlot,
		Requirements: w.Requirements,
		Status:       w.Status,
		StudentEmail: w.StudentEmail,
		StudentName:  w.StudentName,
		CreatedAt:    w.CreatedAt,
	}
	return nil
}

func looseInt(raw json.RawMessage) (int, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || trimmed == `""` {
		return 0, nil
	}
	trimmed = strings.Trim(trimmed, `"`)
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Editable reports whether the edit affordance is enabled.
func (t Tuition) Editable() bool {
	return t.Status.Mutable()
}

// Deletable reports whether the delete affordance is enabled.
func (t Tuition) Deletable() bool {
	return t.Status.Mutable()
}

// TuitionUpdate is the full form payload sent on edit. Status is never part of it.
type TuitionUpdate struct {
	Subject      string `json:"subject"`
	Class        string `json:"class"`
	Budget       int    `json:"budget"`
	Location     string `json:"location"`
	DaysPerWeek  int    `json:"daysPerWeek"`
	TimeSlot     string `json:"timeSlot"`
	Requirements string `json:"requirements"`
}

// Apply overlays the update on a copy of the tuition, leaving id and status untouched.
func (u TuitionUpdate) Apply(t Tuition) Tuition {
	t.Subject = u.Subject
	t.Class = u.Class
	t.Budget = u.Budget
	t.Location = u.Location
	t.DaysPerWeek = u.DaysPerWeek
	t.TimeSlot = u.TimeSlot
	t.Requirements = u.Requirements
	return t
}

// TuitionFilter holds the dashboard's search inputs.
type TuitionFilter struct {
	Search string `form:"search" json:"search"`
	Status string `form:"status" json:"status"`
}

// TuitionStats are counts derived from the cached list.
type TuitionStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Completed int `json:"completed"`
}
