package response

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/teamgrid/backend/internal/membership"
)

func TestErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", membership.NotFound("group 1 not found"), http.StatusNotFound},
		{"invalid batch", membership.InvalidBatch("a user couldn't be found"), http.StatusBadRequest},
		{"already member", membership.AlreadyMember("duplicate"), http.StatusBadRequest},
		{"self reference", membership.SelfReference("itself"), http.StatusBadRequest},
		{"depth exceeded", membership.DepthExceeded("limit"), http.StatusBadRequest},
		{"limit exceeded", membership.LimitExceeded("cap"), http.StatusBadRequest},
		{"not member", membership.NotMember("never joined"), http.StatusBadRequest},
		{"store failure", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			Error(c, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestInternalErrorIsNotLeaked(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}
