package userControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/apptest"
	"github.com/junaidrashid-git/restaurant-api/models"
)

func newRouter(env *app.Env, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/me", GetProfile(env))
	r.PUT("/me", UpdateProfile(env))
	r.GET("/admin/users", GetAllUsers(env))
	r.PATCH("/admin/users/:id/role", UpdateUserRole(env))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedUsers(t *testing.T, env *app.Env) {
	t.Helper()
	for _, u := range []models.User{
		{ID: "boss", Email: "boss@example.com", Role: models.RoleAdmin},
		{ID: "u1", Email: "u1@example.com", Name: "Dilani", Role: models.RoleCustomer, Address: models.Address{City: "Kandy"}},
		{ID: "u2", Email: "u2@example.com", Role: models.RoleCustomer},
	} {
		require.NoError(t, env.DB.Create(&u).Error)
	}
}

func TestProfile(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	seedUsers(t, env)
	r := newRouter(env, "u1")

	name := "Dilani Perera"
	w := do(r, http.MethodPut, "/me", UpdateUserInput{
		Name:    &name,
		Address: &models.Address{Line1: "7 Temple Rd", City: "Colombo", Division: "Kollupitiya"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me models.User
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/me", nil).Body.Bytes(), &me))
	assert.Equal(t, "Dilani Perera", me.Name)
	assert.Equal(t, "Colombo", me.Address.City)
	assert.Equal(t, "Kollupitiya", me.Address.Division)
	assert.Equal(t, models.RoleCustomer, me.Role, "profile updates never touch the role")

	assert.Equal(t, http.StatusNotFound, do(newRouter(env, "ghost"), http.MethodGet, "/me", nil).Code)
}

func TestAdminUsers(t *testing.T) {
	env, _ := apptest.NewEnv(t)
	seedUsers(t, env)
	r := newRouter(env, "boss")

	w := do(r, http.MethodPatch, "/admin/users/u2/role", UpdateRoleInput{Role: "Kitchen"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var kitchen []models.User
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/admin/users?role=kitchen", nil).Body.Bytes(), &kitchen))
	require.Len(t, kitchen, 1)
	assert.Equal(t, "u2", kitchen[0].ID)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/admin/users/u2/role", UpdateRoleInput{Role: "guest"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPatch, "/admin/users/u2/role", UpdateRoleInput{Role: "chef"}).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPatch, "/admin/users/boss/role", UpdateRoleInput{Role: "customer"}).Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPatch, "/admin/users/ghost/role", UpdateRoleInput{Role: "customer"}).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodGet, "/admin/users?role=chef", nil).Code)

	var all []models.User
	require.NoError(t, json.Unmarshal(do(r, http.MethodGet, "/admin/users", nil).Body.Bytes(), &all))
	assert.Len(t, all, 3)
}
