package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterhub/roster-api/internal/dto"
	"github.com/rosterhub/roster-api/internal/models"
	"github.com/rosterhub/roster-api/internal/service"
	"github.com/rosterhub/roster-api/internal/store"
	"github.com/rosterhub/roster-api/pkg/response"
)

type snapshotterStub struct {
	stored *models.Snapshot
}

func (s *snapshotterStub) Load(_ context.Context) (*models.Snapshot, error) {
	return s.stored, nil
}

func (s *snapshotterStub) Save(_ context.Context, snap models.Snapshot) error {
	s.stored = &snap
	return nil
}

func newTestRosterService() (*service.RosterService, *store.Roster) {
	roster := store.New()
	svc := service.NewRosterService(roster, &snapshotterStub{}, nil, nil, nil, nil)
	return svc, roster
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestMemberHandlerCreateAndList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestRosterService()
	handler := NewMemberHandler(svc)

	payload, _ := json.Marshal(dto.AddMemberRequest{Name: "Alice Cooper", Email: "alice@example.com"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/members", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	req, _ = http.NewRequest(http.MethodGet, "/members", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, envelope.Meta["count"])
}

func TestMemberHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestRosterService()
	handler := NewMemberHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/members", bytes.NewBufferString(`{"name":"Alice"`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMemberHandlerCreateDuplicateEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, roster := newTestRosterService()
	roster.AddMember(models.Member{ID: "1", Name: "Alice Cooper", Email: "alice@example.com"})
	handler := NewMemberHandler(svc)

	payload, _ := json.Marshal(dto.AddMemberRequest{Name: "Alice Again", Email: "alice@example.com"})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/members", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestMemberHandlerDelete(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, roster := newTestRosterService()
	roster.AddMember(models.Member{ID: "1", Name: "Alice Cooper", Email: "alice@example.com"})
	handler := NewMemberHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/members/1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "1"}}

	handler.Delete(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, roster.Members())
}

func TestMemberHandlerDeleteUnknown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _ := newTestRosterService()
	handler := NewMemberHandler(svc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodDelete, "/members/ghost", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	handler.Delete(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}
