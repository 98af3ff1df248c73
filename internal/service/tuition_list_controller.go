package service

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/dto"
	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
)

const (
	msgLoadFailure   = "Failed to load your tuitions"
	msgDeleteSuccess = "Tuition deleted successfully"
	msgDeleteFailure = "Failed to delete tuition"
)

// TuitionBackend is the authenticated capability the controller calls on behalf of its student.
type TuitionBackend interface {
	ListByStudent(ctx context.Context, email string) ([]models.Tuition, error)
	Update(ctx context.Context, id string, payload models.TuitionUpdate) error
	Delete(ctx context.Context, id string) error
}

// TuitionListController owns one student's tuition list, its filtered view and the edit/delete dialogs.
//
// The cache changes only after the backend confirms a mutation. The filtered view and stats are
// recomputed from the cache whenever the cache or the filter changes.
type TuitionListController struct {
	mu sync.Mutex

	backend  TuitionBackend
	notifier Notifier
	validate *validator.Validate
	logger   *zap.Logger

	email    string
	loaded   bool
	loadSeq  uint64
	closed   bool
	all      []models.Tuition
	filter   models.TuitionFilter
	filtered []models.Tuition
	stats    models.TuitionStats

	editFlow   SubFlow[*TuitionFormValidator]
	deleteFlow SubFlow[models.Tuition]
}

// ControllerParams groups controller dependencies.
type ControllerParams struct {
	Backend  TuitionBackend
	Notifier Notifier
	Validate *validator.Validate
	Logger   *zap.Logger
}

// NewTuitionListController constructs an empty, unloaded controller.
func NewTuitionListController(params ControllerParams) *TuitionListController {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validate
	if validate == nil {
		validate = NewTuitionValidate()
	}
	c := &TuitionListController{
		backend:  params.Backend,
		notifier: params.Notifier,
		validate: validate,
		logger:   logger,
		all:      []models.Tuition{},
		filter:   models.TuitionFilter{Status: models.StatusFilterAll},
	}
	c.recompute()
	return c
}

// Rebind swaps the backend capability, e.g. after the student's token was refreshed.
func (c *TuitionListController) Rebind(backend TuitionBackend) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.backend = backend
}

// Close tears the controller down. Completions of in-flight calls are discarded afterwards.
func (c *TuitionListController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.editFlow.Close()
	c.deleteFlow.Close()
}

// Loaded reports whether a load has completed, successfully or not.
func (c *TuitionListController) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Load fetches every tuition owned by userEmail and replaces the cache wholesale.
// On failure the cache becomes empty and an error toast is raised.
func (c *TuitionListController) Load(ctx context.Context, userEmail string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.loadSeq++
	seq := c.loadSeq
	c.email = userEmail
	backend := c.backend
	c.mu.Unlock()

	tuitions, err := backend.ListByStudent(ctx, userEmail)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.loadSeq {
		return nil
	}
	c.loaded = true
	if err != nil {
		c.logger.Warn("tuition load failed", zap.String("email", userEmail), zap.Error(err))
		c.all = []models.Tuition{}
		c.recompute()
		c.notify(ctx, models.NotificationError, msgLoadFailure)
		return err
	}
	c.all = append(make([]models.Tuition, 0, len(tuitions)), tuitions...)
	c.recompute()
	return nil
}

// ApplyFilter sets the search inputs and returns the recomputed view.
func (c *TuitionListController) ApplyFilter(searchTerm, statusFilter string) []models.Tuition {
	c.mu.Lock()
	defer c.mu.Unlock()
	if statusFilter == "" {
		statusFilter = models.StatusFilterAll
	}
	c.filter = models.TuitionFilter{Search: searchTerm, Status: statusFilter}
	c.recompute()
	return c.filteredCopy()
}

// Tuitions returns a copy of the authoritative cache.
func (c *TuitionListController) Tuitions() []models.Tuition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Tuition(nil), c.all...)
}

// Filtered returns a copy of the current filtered view.
func (c *TuitionListController) Filtered() []models.Tuition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filteredCopy()
}

// Stats returns the counts derived from the cache.
func (c *TuitionListController) Stats() models.TuitionStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// RequestEdit opens the edit dialog pre-populated with the tuition's current values.
// Approved and completed tuitions are refused with ErrLocked and nothing changes.
func (c *TuitionListController) RequestEdit(id string) (*dto.TuitionFormView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.mutableTuition(id)
	if err != nil {
		return nil, err
	}
	form := NewTuitionFormValidator(t, c.backend, c.validate, c.notifier, c.logger)
	if err := c.editFlow.Open(form); err != nil {
		return nil, err
	}
	return formView(form), nil
}

// SubmitEdit validates and submits the open edit dialog.
// A validation or backend failure leaves the dialog open with the submitted values.
func (c *TuitionListController) SubmitEdit(ctx context.Context, values dto.TuitionForm) error {
	c.mu.Lock()
	form, err := c.editFlow.Begin()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	form.SetForm(values)
	// The backend is resolved now so a token refreshed after the dialog opened is used.
	backend := c.backend
	c.mu.Unlock()

	err = form.submitWith(ctx, backend, c.applyEdit)
	if err != nil {
		c.mu.Lock()
		if current, ok := c.editFlow.Target(); ok && current == form {
			_ = c.editFlow.Fail()
		}
		c.mu.Unlock()
	}
	return err
}

// OnEditSucceeded replaces the cached entry with the same id, keeping every other entry and the order,
// and closes the edit dialog. The success toast is raised by the form.
func (c *TuitionListController) OnEditSucceeded(updated models.Tuition) {
	c.applyEdit(updated)
}

// applyEdit patches the cache and reports whether the controller was still live.
func (c *TuitionListController) applyEdit(updated models.Tuition) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	for i := range c.all {
		if c.all[i].ID == updated.ID {
			c.all[i] = updated
			break
		}
	}
	c.recompute()
	if form, ok := c.editFlow.Target(); ok && form.Original().ID == updated.ID {
		c.editFlow.Close()
	}
	return true
}

// EditForm returns the open edit dialog, if any.
func (c *TuitionListController) EditForm() (*dto.TuitionFormView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	form, ok := c.editFlow.Target()
	if !ok {
		return nil, false
	}
	return formView(form), true
}

// CloseEdit dismisses the edit dialog.
func (c *TuitionListController) CloseEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editFlow.Close()
}

// RequestDelete opens the confirmation dialog. Approved and completed tuitions are refused with ErrLocked.
func (c *TuitionListController) RequestDelete(id string) (models.Tuition, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.mutableTuition(id)
	if err != nil {
		return models.Tuition{}, err
	}
	if err := c.deleteFlow.Open(t); err != nil {
		return models.Tuition{}, err
	}
	return t, nil
}

// OnDeleteConfirmed deletes the tuition targeted by the confirmation dialog.
// On success the entry leaves the cache and the dialog closes. On failure the cache is untouched
// and the dialog stays open until CloseDelete.
func (c *TuitionListController) OnDeleteConfirmed(ctx context.Context) error {
	c.mu.Lock()
	target, err := c.deleteFlow.Begin()
	if err != nil {
		c.mu.Unlock()
		return err
	}
	backend := c.backend
	c.mu.Unlock()

	err = backend.Delete(ctx, target.ID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return err
	}
	stillTargeted := false
	if current, ok := c.deleteFlow.Target(); ok && current.ID == target.ID {
		stillTargeted = c.deleteFlow.State() == SubFlowSubmitting
	}
	if err != nil {
		c.logger.Warn("tuition delete failed", zap.String("tuition_id", target.ID), zap.Error(err))
		if stillTargeted {
			_ = c.deleteFlow.Fail()
		}
		c.notify(ctx, models.NotificationError, msgDeleteFailure)
		return err
	}

	kept := make([]models.Tuition, 0, len(c.all))
	for _, t := range c.all {
		if t.ID != target.ID {
			kept = append(kept, t)
		}
	}
	c.all = kept
	c.recompute()
	if stillTargeted {
		_ = c.deleteFlow.Succeed()
	}
	c.notify(ctx, models.NotificationSuccess, msgDeleteSuccess)
	return nil
}

// CloseDelete dismisses the confirmation dialog.
func (c *TuitionListController) CloseDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteFlow.Close()
}

// View snapshots the dashboard state.
func (c *TuitionListController) View() dto.DashboardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := dto.DashboardView{
		Loaded:   c.loaded,
		Email:    c.email,
		Filter:   c.filter,
		Tuitions: dto.NewTuitionRows(c.filtered),
		Stats:    c.stats,
		Edit:     dto.EditFlowView{State: string(c.editFlow.State())},
		Delete:   dto.DeleteFlowView{State: string(c.deleteFlow.State())},
	}
	if form, ok := c.editFlow.Target(); ok {
		view.Edit.Form = formView(form)
	}
	if target, ok := c.deleteFlow.Target(); ok {
		view.Delete.Target = &target
	}
	return view
}

func (c *TuitionListController) mutableTuition(id string) (models.Tuition, error) {
	for _, t := range c.all {
		if t.ID != id {
			continue
		}
		if !t.Status.Mutable() {
			return models.Tuition{}, appErrors.Clone(appErrors.ErrLocked, string(t.Status)+" tuitions cannot be changed")
		}
		return t, nil
	}
	return models.Tuition{}, appErrors.Clone(appErrors.ErrNotFound, "tuition not found")
}

// recompute must be called with mu held.
func (c *TuitionListController) recompute() {
	c.filtered = ApplyFilter(c.all, c.filter)
	c.stats = ComputeStats(c.all)
}

func (c *TuitionListController) filteredCopy() []models.Tuition {
	return append([]models.Tuition(nil), c.filtered...)
}

func (c *TuitionListController) notify(ctx context.Context, level models.NotificationLevel, message string) {
	if c.notifier != nil {
		c.notifier.Notify(ctx, level, message)
	}
}

func formView(form *TuitionFormValidator) *dto.TuitionFormView {
	return &dto.TuitionFormView{
		TuitionID:   form.Original().ID,
		Values:      form.Form(),
		Errors:      form.Errors(),
		Subjects:    models.Subjects,
		Classes:     models.Classes,
		DaysPerWeek: models.DaysPerWeekOptions,
	}
}
