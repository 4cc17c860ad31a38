package handler_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classifieds-backend/internal/domains/ad"
	"classifieds-backend/internal/domains/category/handler"
	"classifieds-backend/internal/domains/category/service"
	"classifieds-backend/internal/mocks"
	"classifieds-backend/internal/shared/pagination"
)

func setupRouter(store *mocks.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewCategoryHandler(service.NewCategoryService(store.Categories()), pagination.New(10))
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestCategoryLifecycle(t *testing.T) {
	r := setupRouter(mocks.NewStore())

	w := perform(r, http.MethodPost, "/cat/create/", `{"name":"Sports"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body(t, w)
	assert.Equal(t, "Sports", created["name"])
	id := int64(created["id"].(float64))

	w = perform(r, http.MethodGet, fmt.Sprintf("/cat/%d/", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sports", body(t, w)["name"])

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w = perform(r, method, fmt.Sprintf("/cat/%d/update/", id), `{"name":"Outdoor `+method+`"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Outdoor "+method, body(t, w)["name"])
	}

	w = perform(r, http.MethodGet, "/cat/", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := body(t, w)
	assert.Equal(t, float64(1), list["total"])
	assert.Equal(t, float64(1), list["num_pages"])
	assert.Len(t, list["items"], 1)

	w = perform(r, http.MethodDelete, fmt.Sprintf("/cat/%d/delete/", id), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(id), body(t, w)["id"])

	w = perform(r, http.MethodGet, fmt.Sprintf("/cat/%d/", id), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryErrors(t *testing.T) {
	store := mocks.NewStore()
	alice := store.AddUser("alice", "Alice", "")
	sports := store.AddCategory("Sports")
	store.AddAd(ad.Ad{Name: "Bike", AuthorID: alice.ID, Price: decimal.NewFromInt(5), CategoryID: sports.ID})
	r := setupRouter(store)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"duplicate name", http.MethodPost, "/cat/create/", `{"name":"Sports"}`, http.StatusConflict, "DUPLICATE_NAME"},
		{"empty name", http.MethodPost, "/cat/create/", `{"name":"  "}`, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"bad json", http.MethodPost, "/cat/create/", `[`, http.StatusBadRequest, "BAD_REQUEST"},
		{"in use", http.MethodDelete, fmt.Sprintf("/cat/%d/delete/", sports.ID), "", http.StatusConflict, "CATEGORY_IN_USE"},
		{"unknown id", http.MethodGet, "/cat/424242/", "", http.StatusNotFound, "CATEGORY_NOT_FOUND"},
		{"bad id", http.MethodGet, "/cat/x/", "", http.StatusBadRequest, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(r, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			errObj := body(t, w)["error"].(map[string]interface{})
			assert.Equal(t, tt.wantCode, errObj["code"])
		})
	}
}
