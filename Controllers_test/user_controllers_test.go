package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/register", "", map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@resto.test",
		"password": "s3cret-pass",
		"role":     "SERVER",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	data := dataField(t, w)
	assert.Equal(t, "SERVER", data["role"])
	assert.NotContains(t, data, "password")

	w = env.request(t, "POST", "/login", "", map[string]interface{}{
		"email":    "dana@resto.test",
		"password": "s3cret-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	loginData := dataField(t, w)
	assert.NotEmpty(t, loginData["token"])

	bearer, _ := loginData["token"].(string)
	w = env.request(t, "GET", "/profile", bearer, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	profile := dataField(t, w)
	assert.Equal(t, "dana@resto.test", profile["email"])
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/register", "", map[string]interface{}{
		"name":     "Eve",
		"email":    "eve@resto.test",
		"password": "s3cret-pass",
		"role":     "SOMMELIER",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	payload := map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@resto.test",
		"password": "s3cret-pass",
		"role":     "HOST",
	}
	w := env.request(t, "POST", "/register", "", payload)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "POST", "/register", "", payload)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", decode(t, w)["code"])
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, "POST", "/register", "", map[string]interface{}{
		"name":     "Dana",
		"email":    "dana@resto.test",
		"password": "s3cret-pass",
		"role":     "HOST",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, "POST", "/login", "", map[string]interface{}{
		"email":    "dana@resto.test",
		"password": "wrong-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, w)["code"])
}
