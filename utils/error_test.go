package utils_test

import (
	"fmt"
	"net/http"
	"testing"

	"bitbucket.org/mmdatafocus/pharmacy_backend/utils"
)

func TestKindOfAndHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		kind   utils.ErrorKind
		status int
	}{
		{utils.NotFoundError("x"), utils.KindNotFound, http.StatusNotFound},
		{utils.ForbiddenOperation("x"), utils.KindForbidden, http.StatusForbidden},
		{utils.PreconditionFailedError("x"), utils.KindPreconditionFailed, http.StatusPreconditionFailed},
		{utils.BadRequestError("x"), utils.KindBadRequest, http.StatusBadRequest},
		{utils.ConflictError("x"), utils.KindConflict, http.StatusConflict},
		{utils.ErrorRecordNotFound, utils.KindNotFound, http.StatusNotFound},
		{fmt.Errorf("boom"), utils.KindInternal, http.StatusInternalServerError},
	}

	for _, c := range cases {
		if got := utils.KindOf(c.err); got != c.kind {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, got, c.kind)
		}
		if got := utils.HTTPStatus(c.err); got != c.status {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.status)
		}
	}
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("saving order: %w", utils.ForbiddenOperation("over-supply"))
	if utils.KindOf(err) != utils.KindForbidden {
		t.Errorf("wrapped error lost its kind")
	}
}
