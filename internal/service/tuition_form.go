package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/dto"
	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

const (
	msgFillRequired   = "Please fill all required fields"
	msgUpdateSuccess  = "Tuition updated successfully"
	msgUpdateFailure  = "Failed to update tuition"
	msgBudgetTooLarge = "Budget is too large"
	minBudgetTag      = "minbudget"
	validationMessage = "invalid tuition form"
)

// FormFromTuition pre-populates the form with the tuition's current values.
func FormFromTuition(t models.Tuition) dto.TuitionForm {
	form := dto.TuitionForm{
		Subject:      t.Subject,
		Class:        t.Class,
		Location:     t.Location,
		TimeSlot:     t.TimeSlot,
		Requirements: t.Requirements,
	}
	if t.Budget != 0 {
		form.Budget = strconv.Itoa(t.Budget)
	}
	if t.DaysPerWeek != 0 {
		form.DaysPerWeek = strconv.Itoa(t.DaysPerWeek)
	}
	return form
}

func normalizeForm(f dto.TuitionForm) dto.TuitionForm {
	return dto.TuitionForm{
		Subject:      strings.TrimSpace(f.Subject),
		Class:        strings.TrimSpace(f.Class),
		Budget:       strings.TrimSpace(f.Budget),
		Location:     strings.TrimSpace(f.Location),
		DaysPerWeek:  strings.TrimSpace(f.DaysPerWeek),
		TimeSlot:     strings.TrimSpace(f.TimeSlot),
		Requirements: strings.TrimSpace(f.Requirements),
	}
}

// formPayload converts a form that already passed validation.
func formPayload(f dto.TuitionForm) models.TuitionUpdate {
	budget, _ := parseBudget(f.Budget)
	days, _ := strconv.Atoi(f.DaysPerWeek)
	return models.TuitionUpdate{
		Subject:      f.Subject,
		Class:        f.Class,
		Budget:       budget,
		Location:     f.Location,
		DaysPerWeek:  days,
		TimeSlot:     f.TimeSlot,
		Requirements: f.Requirements,
	}
}

// parseBudget accepts integers or decimals within the int32 range.
func parseBudget(raw string) (int, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func budgetTooLarge(raw string) bool {
	f, err := strconv.ParseFloat(raw, 64)
	return (err == nil || errors.Is(err, strconv.ErrRange)) && f > math.MaxInt32
}

var fieldMessages = map[string]map[string]string{
	"subject":     {"required": "Subject is required"},
	"class":       {"required": "Class is required"},
	"budget":      {"required": "Budget is required", minBudgetTag: "Budget must be at least 1000"},
	"location":    {"required": "Location is required"},
	"daysPerWeek": {"required": "Days per week is required", "oneof": "Days per week must be between 2 and 6"},
	"timeSlot":    {"required": "Time slot is required"},
}

// NewTuitionValidate returns a validator configured for TuitionForm. Build it once and share it.
func NewTuitionValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(minBudgetTag, func(fl validator.FieldLevel) bool {
		budget, ok := parseBudget(fl.Field().String())
		return ok && budget >= models.MinBudget
	})
	return v
}

type tuitionUpdater interface {
	Update(ctx context.Context, id string, payload models.TuitionUpdate) error
}

// TuitionFormValidator validates and submits the edit form of a single tuition.
type TuitionFormValidator struct {
	mu       sync.Mutex
	original models.Tuition
	form     dto.TuitionForm
	errors   map[string]string

	backend  tuitionUpdater
	validate *validator.Validate
	notifier Notifier
	logger   *zap.Logger
}

// NewTuitionFormValidator opens a form pre-populated from the tuition.
// validate must come from NewTuitionValidate; nil builds one.
func NewTuitionFormValidator(original models.Tuition, backend tuitionUpdater, validate *validator.Validate, notifier Notifier, logger *zap.Logger) *TuitionFormValidator {
	if validate == nil {
		validate = NewTuitionValidate()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuitionFormValidator{
		original: original,
		form:     FormFromTuition(original),
		errors:   map[string]string{},
		backend:  backend,
		validate: validate,
		notifier: notifier,
		logger:   logger,
	}
}

// Original returns the tuition the form was opened for.
func (v *TuitionFormValidator) Original() models.Tuition {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.original
}

// Form returns the current input values.
func (v *TuitionFormValidator) Form() dto.TuitionForm {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form
}

// Errors returns a copy of the field errors from the last validation.
func (v *TuitionFormValidator) Errors() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make(map[string]string, len(v.errors))
	for k, msg := range v.errors {
		out[k] = msg
	}
	return out
}

// SetForm replaces the input values.
func (v *TuitionFormValidator) SetForm(form dto.TuitionForm) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form = form
}

// Validate checks every rule independently and records the resulting field errors.
func (v *TuitionFormValidator) Validate() map[string]string {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form = normalizeForm(v.form)
	v.errors = v.check(v.form)
	out := make(map[string]string, len(v.errors))
	for k, msg := range v.errors {
		out[k] = msg
	}
	return out
}

func (v *TuitionFormValidator) check(form dto.TuitionForm) map[string]string {
	fields := map[string]string{}
	err := v.validate.Struct(form)
	if err == nil {
		return fields
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["form"] = err.Error()
		return fields
	}
	for _, fe := range verrs {
		msg := fieldMessages[fe.Field()][fe.Tag()]
		if fe.Tag() == minBudgetTag && budgetTooLarge(form.Budget) {
			msg = msgBudgetTooLarge
		}
		if msg == "" {
			msg = fe.Field() + " is invalid"
		}
		fields[fe.Field()] = msg
	}
	return fields
}

// Submit validates the form and, when it passes, sends exactly one update.
// On success onSuccess receives the original tuition overlaid by the form values; it returns
// false when the result was discarded, in which case no success toast is raised.
// On failure the form keeps its values so the user can retry.
func (v *TuitionFormValidator) Submit(ctx context.Context, onSuccess func(models.Tuition) bool) error {
	v.mu.Lock()
	backend := v.backend
	v.mu.Unlock()
	return v.submitWith(ctx, backend, onSuccess)
}

// submitWith is Submit sending the update through backend instead of the one bound at open.
func (v *TuitionFormValidator) submitWith(ctx context.Context, backend tuitionUpdater, onSuccess func(models.Tuition) bool) error {
	if fields := v.Validate(); len(fields) > 0 {
		v.notify(ctx, models.NotificationError, msgFillRequired)
		return appErrors.Validation(validationMessage, fields)
	}

	v.mu.Lock()
	original := v.original
	payload := formPayload(v.form)
	v.mu.Unlock()

	if err := backend.Update(ctx, original.ID, payload); err != nil {
		v.logger.Warn("tuition update failed", zap.String("tuition_id", original.ID), zap.Error(err))
		v.notify(ctx, models.NotificationError, msgUpdateFailure)
		return err
	}

	merged := payload.Apply(original)
	if onSuccess != nil && !onSuccess(merged) {
		return nil
	}
	v.notify(ctx, models.NotificationSuccess, msgUpdateSuccess)
	return nil
}

func (v *TuitionFormValidator) notify(ctx context.Context, level models.NotificationLevel, message string) {
	if v.notifier != nil {
		v.notifier.Notify(ctx, level, message)
	}
}
