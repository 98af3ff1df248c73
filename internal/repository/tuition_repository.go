package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tuition-web/internal/models"
	appErrors "github.com/noah-isme/tuition-web/pkg/errors"
	"github.com/noah-isme/tuition-web/pkg/httpclient"
)

// BackendObserver records the outcome of backend calls.
type BackendObserver interface {
	ObserveBackendCall(operation string, success bool, duration time.Duration)
}

type updateResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TuitionRepository talks to the tuition REST API on behalf of one authenticated student.
type TuitionRepository struct {
	client   *httpclient.Client
	observer BackendObserver
	logger   *zap.Logger
}

// NewTuitionRepository constructs a repository. The client must already carry the student's credential.
func NewTuitionRepository(client *httpclient.Client, observer BackendObserver, logger *zap.Logger) *TuitionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TuitionRepository{client: client, observer: observer, logger: logger}
}

// ListByStudent fetches every tuition owned by the email.
func (r *TuitionRepository) ListByStudent(ctx context.Context, email string) ([]models.Tuition, error) {
	var tuitions []models.Tuition
	err := r.call(ctx, "list", "", func() error {
		return r.client.Do(ctx, http.MethodGet, "/my-tuitions", url.Values{"studentEmail": {email}}, nil, &tuitions)
	})
	if err != nil {
		return nil, err
	}
	if tuitions == nil {
		tuitions = []models.Tuition{}
	}
	return tuitions, nil
}

// Update overwrites every editable field of the tuition.
func (r *TuitionRepository) Update(ctx context.Context, id string, payload models.TuitionUpdate) error {
	return r.call(ctx, "update", id, func() error {
		var result updateResult
		if err := r.client.Do(ctx, http.MethodPut, tuitionPath(id), nil, payload, &result); err != nil {
			return err
		}
		if !result.Success {
			if result.Message != "" {
				return fmt.Errorf("update rejected: %s", result.Message)
			}
			return fmt.Errorf("update rejected")
		}
		return nil
	})
}

// Delete hard-deletes the tuition.
func (r *TuitionRepository) Delete(ctx context.Context, id string) error {
	return r.call(ctx, "delete", id, func() error {
		return r.client.Do(ctx, http.MethodDelete, tuitionPath(id), nil, nil, nil)
	})
}

func (r *TuitionRepository) call(ctx context.Context, operation, id string, fn func() error) error {
	start := time.Now()
	err := fn()
	if r.observer != nil {
		r.observer.ObserveBackendCall(operation, err == nil, time.Since(start))
	}
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	r.logger.Warn("backend call failed", zap.String("operation", operation), zap.String("tuition_id", id), zap.Error(err))
	return appErrors.WrapAs(err, appErrors.ErrNetwork, fmt.Sprintf("failed to %s tuition", operation))
}

func tuitionPath(id string) string {
	return "/tuitions/" + url.PathEscape(id)
}
