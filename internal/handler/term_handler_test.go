package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/glossary-api/internal/dto"
	"github.com/noah-isme/glossary-api/internal/models"
	appErrors "github.com/noah-isme/glossary-api/pkg/errors"
)

type fakeTermSrv struct {
	publicTerms []models.PublicTerm
	adminTerms  []models.AdminTerm
	err         error

	lastQuery  dto.TermQuery
	lastCreate dto.CreateTermRequest
	lastUpdate dto.UpdateTermRequest
	lastDelete dto.DeleteTermRequest
	calls      int
}

func (f *fakeTermSrv) ListPublic(_ context.Context, q dto.TermQuery) ([]models.PublicTerm, error) {
	f.calls++
	f.lastQuery = q
	return f.publicTerms, f.err
}

func (f *fakeTermSrv) ListAdmin(_ context.Context, q dto.TermQuery) ([]models.AdminTerm, error) {
	f.calls++
	f.lastQuery = q
	return f.adminTerms, f.err
}

func (f *fakeTermSrv) Create(_ context.Context, req dto.CreateTermRequest) (*dto.TermCreated, error) {
	f.calls++
	f.lastCreate = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TermCreated{ID: 11, Message: "term created", InQuiz: true}, nil
}

func (f *fakeTermSrv) Update(_ context.Context, req dto.UpdateTermRequest) (*dto.TermUpdated, error) {
	f.calls++
	f.lastUpdate = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.TermUpdated{ID: *req.ID, Message: "term updated"}, nil
}

func (f *fakeTermSrv) Delete(_ context.Context, req dto.DeleteTermRequest) error {
	f.calls++
	f.lastDelete = req
	return f.err
}

type fakeExporter struct {
	file *dto.ExportFile
	err  error
	last dto.ExportQuery
}

func (f *fakeExporter) Export(_ context.Context, q dto.ExportQuery) (*dto.ExportFile, error) {
	f.last = q
	return f.file, f.err
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
		Details string `json:"details"`
	} `json:"error"`
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestTermHandlerListPublicBindsFilters(t *testing.T) {
	srv := &fakeTermSrv{publicTerms: []models.PublicTerm{{CategoryName: "Biology", TermName: "Cell", Definition: "Unit"}}}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodGet, "/api/public/terms?category_id=3&term_name=Ce", "")
	h.ListPublic(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.TermQuery{CategoryID: "3", TermName: "Ce"}, srv.lastQuery)

	var env struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "Cell", env.Data[0]["term_name"])
	assert.NotContains(t, env.Data[0], "alt1")
}

func TestTermHandlerListAdminEmptyResultIsArray(t *testing.T) {
	srv := &fakeTermSrv{adminTerms: []models.AdminTerm{}}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodGet, "/api/terms", "")
	h.ListAdmin(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestTermHandlerListRendersServiceError(t *testing.T) {
	srv := &fakeTermSrv{err: appErrors.Clone(appErrors.ErrValidation, "category_id must be numeric")}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodGet, "/api/terms?category_id=abc", "")
	h.ListAdmin(c)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Error.Code)
}

func TestTermHandlerCreate(t *testing.T) {
	srv := &fakeTermSrv{}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodPost, "/api/terms", `{"term_name":"Osmosis","category_name":"Biology","definition":"d","alt1":"A","alt2":"B","alt3":"C"}`)
	h.Create(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.lastCreate.TermName)
	assert.Equal(t, "Osmosis", *srv.lastCreate.TermName)
	assert.JSONEq(t, `{"data":{"id":11,"message":"term created","inquiz":true}}`, rec.Body.String())
}

func TestTermHandlerCreateMalformedBody(t *testing.T) {
	srv := &fakeTermSrv{}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodPost, "/api/terms", `{"term_name":`)
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.calls)
}

func TestTermHandlerCreateConflict(t *testing.T) {
	srv := &fakeTermSrv{err: appErrors.Clone(appErrors.ErrTermExists, `term "Osmosis" already exists`)}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodPost, "/api/terms", `{"term_name":"Osmosis","category_name":"Biology","definition":"d","alt1":"","alt2":"","alt3":""}`)
	h.Create(c)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TERM_EXISTS", decodeError(t, rec).Error.Code)
}

func TestTermHandlerUpdate(t *testing.T) {
	srv := &fakeTermSrv{}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodPut, "/api/terms", `{"id":5,"term_name":"Osmosis","category_name":"Biology","definition":"d","alt1":"","alt2":"","alt3":""}`)
	h.Update(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.lastUpdate.ID)
	assert.Equal(t, int64(5), *srv.lastUpdate.ID)
	require.NotNil(t, srv.lastUpdate.Alt1)
	assert.Equal(t, "", *srv.lastUpdate.Alt1)
}

func TestTermHandlerDeleteFromPath(t *testing.T) {
	srv := &fakeTermSrv{}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodDelete, "/api/terms/9", "")
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	h.Delete(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(9), *srv.lastDelete.ID)
}

func TestTermHandlerDeleteFromBody(t *testing.T) {
	srv := &fakeTermSrv{err: appErrors.Clone(appErrors.ErrTermNotFound, "term 9 not found")}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodDelete, "/api/terms", `{"id":9}`)
	h.Delete(c)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TERM_NOT_FOUND", decodeError(t, rec).Error.Code)
	assert.Equal(t, int64(9), *srv.lastDelete.ID)
}

func TestTermHandlerDeleteBadPathID(t *testing.T) {
	srv := &fakeTermSrv{}
	h := NewTermHandler(srv, nil)

	c, rec := newTestContext(http.MethodDelete, "/api/terms/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	h.Delete(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, srv.calls)
}

func TestTermHandlerExport(t *testing.T) {
	exporter := &fakeExporter{file: &dto.ExportFile{Filename: "glossary.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}}
	h := NewTermHandler(&fakeTermSrv{}, exporter)

	c, rec := newTestContext(http.MethodGet, "/api/terms/export?format=csv&category_name=Biology", "")
	h.Export(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "csv", exporter.last.Format)
	assert.Equal(t, "Biology", exporter.last.CategoryName)
	assert.Equal(t, `attachment; filename="glossary.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}
