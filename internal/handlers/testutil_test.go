package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"prudence/internal/config"
	"prudence/internal/database"
	"prudence/internal/models"
	"prudence/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testPassword = "password123"

// setupServer поднимает роутер поверх чистой in-memory БД.
func setupServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{SessionSecret: "test-secret"}
	return server.NewRouter(cfg)
}

func createUser(t *testing.T, username string, role models.UserRole) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := models.User{
		Username:     username,
		Email:        username + "@test.local",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, database.DB.Create(&u).Error)
	return u
}

// testClient гоняет запросы через роутер, таская сессионную куку.
type testClient struct {
	t       *testing.T
	r       *gin.Engine
	cookies []*http.Cookie
}

func login(t *testing.T, r *gin.Engine, username string) *testClient {
	t.Helper()
	c := &testClient{t: t, r: r}
	w := c.do(http.MethodPost, "/api/auth/login", gin.H{
		"username": username,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())
	return c
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)

	if cs := w.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
