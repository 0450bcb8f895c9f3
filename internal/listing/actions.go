package listing

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/jwalitptl/clinic-dashboard/pkg/errors"
)

// ErrNotConfirmed is returned when the user declines a delete.
var ErrNotConfirmed = errors.New("delete not confirmed")

// Confirmer asks the user to approve an irreversible action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed is a Confirmer with a fixed answer, for callers that collected
// the answer up front.
func Confirmed(answer bool) Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) {
		return answer, nil
	})
}

// Open selects the row with the given id and opens the detail modal.
// An already open modal has its selection replaced.
func (v *View) Open(id string) (Detail, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, a := range v.items {
		if a.ID.String() == id {
			v.modal.Open(a)
			v.metrics.RowActions.WithLabelValues("view", "ok").Inc()
			d, _ := v.modal.Detail()
			return d, nil
		}
	}
	v.metrics.RowActions.WithLabelValues("view", "not_found").Inc()
	return Detail{}, apperrors.NotFound("appointment", fmt.Errorf("id %q is not on the current page", id))
}

func (v *View) CloseModal() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modal.Close()
}

// invalidID catches ids that leaked from an unset client-side value.
func invalidID(id string) bool {
	return id == "" || id == "undefined" || id == "null"
}

// Edit returns the edit destination for id. The edit form itself lives
// elsewhere.
func (v *View) Edit(id string) (string, error) {
	if invalidID(id) {
		v.mu.Lock()
		v.setNoticeLocked(NoticeError, InvalidIDMessage)
		v.mu.Unlock()
		v.metrics.RowActions.WithLabelValues("edit", "invalid").Inc()
		return "", apperrors.Validation(InvalidIDMessage)
	}
	v.metrics.RowActions.WithLabelValues("edit", "ok").Inc()
	return v.editPrefix + "/" + url.PathEscape(id), nil
}

// Delete asks for confirmation, deletes id on the backend and drops the
// matching rows locally. Total is left as reported by the last fetch; the
// view is flagged for Reconcile.
func (v *View) Delete(ctx context.Context, id string, confirm Confirmer) (Snapshot, error) {
	if invalidID(id) {
		v.mu.Lock()
		v.setNoticeLocked(NoticeError, InvalidIDMessage)
		s := v.snapshotLocked()
		v.mu.Unlock()
		return s, apperrors.Validation(InvalidIDMessage)
	}

	ok, err := confirm.Confirm(ctx, DeletePrompt)
	if err != nil {
		return v.Snapshot(), fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		v.metrics.RowActions.WithLabelValues("delete", "declined").Inc()
		return v.Snapshot(), ErrNotConfirmed
	}

	err = v.backend.DeleteAppointment(ctx, id)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.metrics.RowActions.WithLabelValues("delete", "failed").Inc()
		v.logger.Error().Err(err).Str("appointment_id", id).Msg("error deleting appointment")
		v.setNoticeLocked(NoticeError, DeleteFailedMessage)
		return v.snapshotLocked(), apperrors.Delete(DeleteFailedMessage, err)
	}

	kept := v.items[:0:0]
	for _, a := range v.items {
		if a.ID.String() != id {
			kept = append(kept, a)
		}
	}
	v.items = kept
	if d, open := v.modal.Detail(); open && d.ID == id {
		v.modal.Close()
	}
	v.needsReconcile = true
	v.setNoticeLocked(NoticeSuccess, DeleteSuccessMessage)
	v.metrics.RowActions.WithLabelValues("delete", "ok").Inc()
	v.logger.Info().Str("appointment_id", id).Msg("appointment deleted")

	return v.snapshotLocked(), nil
}
