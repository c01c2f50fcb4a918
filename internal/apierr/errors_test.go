package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("create booking: %w", Validation("name is required"))
	require.True(t, errors.Is(err, ErrValidation))
	require.False(t, errors.Is(err, ErrNotFound))
	require.Equal(t, "name is required", Message(err))
	require.Equal(t, http.StatusBadRequest, Status(err))
}

func TestPersistenceHidesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Persistence("insert booking", cause)
	require.True(t, errors.Is(err, ErrPersistence))
	require.True(t, errors.Is(err, cause))
	require.NotContains(t, Message(err), "connection refused")
	require.Equal(t, http.StatusInternalServerError, Status(err))
}

func TestStatusMapping(t *testing.T) {
	require.Equal(t, http.StatusNotFound, Status(NotFound("booking")))
	require.Equal(t, http.StatusUnauthorized, Status(Unauthorized("nope")))
	require.Equal(t, http.StatusUnsupportedMediaType, Status(UnsupportedFileType("x")))
	require.Equal(t, http.StatusRequestEntityTooLarge, Status(FileTooLarge("x")))
	require.Equal(t, http.StatusInternalServerError, Status(errors.New("plain")))
}

func TestRespondWritesUniformBody(t *testing.T) {
	g := gin.New()
	g.GET("/x", func(c *gin.Context) { Respond(c, NotFound("booking")) })

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["success"])
	require.Equal(t, "booking not found", body["message"])
}
