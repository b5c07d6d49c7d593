package sites

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

type fixedRoles map[uuid.UUID]rbac.Role

func (f fixedRoles) RoleOf(ctx context.Context, id uuid.UUID) (rbac.Role, error) {
	return f[id], nil
}

func newTestRouter(repo *mockRepository, roles fixedRoles) http.Handler {
	mw := rbac.Middleware{Roles: roles, Logger: quietLogger()}
	h := NewHandler(quietLogger(), NewService(repo, nil, quietLogger()), mw)
	r := chi.NewRouter()
	r.Route("/sites", h.MountRoutes)
	return r
}

func call(router http.Handler, method, path, body string, as uuid.UUID) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(shared.ContextWithIdentity(req.Context(), shared.Identity{UserID: as, Method: shared.AuthBearer}))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHandler_SitePermissions(t *testing.T) {
	admin, editor, viewer := uuid.New(), uuid.New(), uuid.New()
	roles := fixedRoles{admin: rbac.RoleAdmin, editor: rbac.RoleEditor, viewer: rbac.RoleViewer}
	repo := newMockRepository()
	router := newTestRouter(repo, roles)

	// Only admins may create, edit or delete sites.
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodPost, "/sites/", `{"name":"A"}`, editor).Code)
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodPost, "/sites/", `{"name":"A"}`, viewer).Code)

	rr := call(router, http.MethodPost, "/sites/", `{"name":"A"}`, admin)
	require.Equal(t, http.StatusCreated, rr.Code)
	var site Site
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &site))

	assert.Equal(t, http.StatusForbidden, call(router, http.MethodPut, "/sites/"+site.ID.String(), `{"name":"B"}`, editor).Code)
	assert.Equal(t, http.StatusForbidden, call(router, http.MethodDelete, "/sites/"+site.ID.String(), "", editor).Code)

	// Everyone reads.
	for _, who := range []uuid.UUID{admin, editor, viewer} {
		rr := call(router, http.MethodGet, "/sites/", "", who)
		require.Equal(t, http.StatusOK, rr.Code)
		var page shared.Page[SiteWithBoreholeCount]
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, shared.DefaultPageSize, page.PageSize)
	}

	assert.Equal(t, http.StatusOK, call(router, http.MethodPut, "/sites/"+site.ID.String(), `{"name":"B"}`, admin).Code)
	assert.Equal(t, http.StatusNoContent, call(router, http.MethodDelete, "/sites/"+site.ID.String(), "", admin).Code)
	assert.Equal(t, http.StatusNotFound, call(router, http.MethodGet, "/sites/"+site.ID.String(), "", viewer).Code)
}

func TestHandler_RejectsUnknownFields(t *testing.T) {
	admin := uuid.New()
	router := newTestRouter(newMockRepository(), fixedRoles{admin: rbac.RoleAdmin})

	rr := call(router, http.MethodPost, "/sites/", `{"name":"A","owner":"x"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(router, http.MethodPost, "/sites/", `{"name":""}`, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}
