package resource

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAlbumRouter(t *testing.T, withCreate bool) http.Handler {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/albums", NewHandler(newAlbumService(t), nil).Routes(withCreate))
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCRUD(t *testing.T) {
	h := newAlbumRouter(t, true)

	rec := do(h, http.MethodPost, "/albums", `{"title":"Blue Train","cover":"bt.png"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var created DataResponse[album]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "ok", created.Status)
	require.NotNil(t, created.Data)
	id := created.Data.ID
	assert.Contains(t, rec.Body.String(), `"digitalDownloads":null`)

	rec = do(h, http.MethodGet, "/albums/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got DataResponse[album]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Blue Train", got.Data.Title)

	rec = do(h, http.MethodPut, "/albums/"+id, `{"title":"Blue Train (Remastered)"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"msg":"Update successful"}`, rec.Body.String())

	rec = do(h, http.MethodDelete, "/albums/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"code":200,"msg":"Delete successful"}`, rec.Body.String())

	for _, tc := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPut, `{"title":"x"}`},
		{http.MethodDelete, ""},
	} {
		rec = do(h, tc.method, "/albums/"+id, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method)
		assert.Contains(t, rec.Body.String(), `"status":"error"`)
	}
}

func TestHandlerList(t *testing.T) {
	h := newAlbumRouter(t, true)
	for _, title := range []string{"Blue Train", "Kind of Blue", "Giant Steps"} {
		require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/albums", `{"title":"`+title+`"}`).Code)
	}

	rec := do(h, http.MethodGet, "/albums?title=Blue&pageSize=1&page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body ListResponse[album]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.PageSize)
	require.Len(t, body.List, 1)
	assert.Equal(t, "Kind of Blue", body.List[0].Title)

	rec = do(h, http.MethodGet, "/albums?title=nothing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"list":[]`)

	for _, q := range []string{"pageSize=0", "pageSize=-3", "page=-1", "page=two"} {
		rec = do(h, http.MethodGet, "/albums?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandlerRejectsBadBodies(t *testing.T) {
	h := newAlbumRouter(t, true)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/albums", `{"title":`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/albums", `{"title":42}`).Code)
}

func TestHandlerWithoutCreate(t *testing.T) {
	h := newAlbumRouter(t, false)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodPost, "/albums", `{"title":"x"}`).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/albums", "").Code)
}
