package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/todo-team-api/internal/services"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	FromService(c, err)
	return w
}

func TestFromServiceStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrTodoNotFound, http.StatusNotFound, ErrCodeNotFound},
		{fmt.Errorf("loading: %w", services.ErrTeamNotFound), http.StatusNotFound, ErrCodeNotFound},
		{services.ErrNotTeamAdmin, http.StatusForbidden, ErrCodeForbidden},
		{services.ErrTitleRequired, http.StatusBadRequest, ErrCodeInvalidInput},
		{services.ErrPasswordTooShort, http.StatusBadRequest, ErrCodeInvalidInput},
		{services.ErrEmailTaken, http.StatusConflict, ErrCodeConflict},
		{services.ErrLastTeamAdmin, http.StatusConflict, ErrCodeConflict},
		{services.ErrInvalidCredentials, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{services.ErrAIServiceNotConfigured, http.StatusServiceUnavailable, ErrCodeServiceUnavailable},
		{services.ErrAINoValidTodos, http.StatusUnprocessableEntity, ErrCodeInvalidInput},
		{errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tc := range cases {
		w := respond(tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())

		var body APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Code, tc.err.Error())
	}
}

func TestFromServiceHidesInternalErrors(t *testing.T) {
	w := respond(errors.New("dial tcp 10.0.0.5:3306: connection refused"))

	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestFromServiceMissingAdmins(t *testing.T) {
	w := respond(&services.MissingAdminsError{Teams: []string{"Alpha", "Beta"}})
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Code    string `json:"code"`
		Details struct {
			Teams []string `json:"teams"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeMissingAdmins, body.Code)
	assert.Equal(t, []string{"Alpha", "Beta"}, body.Details.Teams)
}
