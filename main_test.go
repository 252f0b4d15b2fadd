package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"pokeusers/internal/config"
	"pokeusers/internal/models"
	"pokeusers/internal/pokeapi/pokeapitest"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testApp *App
	testCfg *config.Config
	pokeAPI *pokeapitest.Server
)

func TestMain(m *testing.M) {
	pokeAPI = pokeapitest.NewServer()

	// Initialize Viper for tests
	v := viper.New()
	v.Set("APP_PORT", ":8081")
	v.Set("APP_ENV", "test")
	v.Set("LOG_LEVEL", "error")
	v.Set("DB_DRIVER", "sqlite")
	v.Set("SQLITE_PATH", "file:pokeusers_main_test?mode=memory&cache=shared")
	v.Set("DB_AUTO_MIGRATE", true)
	v.Set("POKEMON_API_URL", pokeAPI.URL)
	v.Set("POKEMON_API_TIMEOUT", "2s")
	v.Set("POKEMON_CACHE_TTL", "10m")
	v.Set("POKEMON_CACHE_BACKEND", "memory")
	v.Set("BCRYPT_COST", 4)
	v.Set("METRICS_ENABLED", true)

	cfg, err := config.FromViper(v)
	if err != nil {
		panic(err)
	}
	testCfg = cfg

	testApp, err = NewApp(cfg, zerolog.Nop())
	if err != nil {
		panic(err)
	}

	code := m.Run()

	_ = testApp.Fiber.Shutdown()
	_ = testApp.Close()
	pokeAPI.Close()
	os.Exit(code)
}

func call(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := testApp.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

func TestHealthCheck(t *testing.T) {
	resp, body := call(t, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestUserJourney(t *testing.T) {
	resp, body := call(t, http.MethodPost, "/api/v1/users",
		`{"email":"ash@pokemon.com","name":"Ash Ketchum","password":"pikachu123"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.NotContains(t, body, "password")

	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	userPath := "/api/v1/users/" + created.Data.ID

	resp, body = call(t, http.MethodPost, "/api/v1/users",
		`{"email":"ash@pokemon.com","name":"Ash Again","password":"pikachu123"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, `"message":"Email already exists"`)

	resp, body = call(t, http.MethodPost, userPath+"/favorite-pokemon", `{"pokemonNameOrId":"pikachu"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"favoritePokemon":"pikachu"`)

	resp, body = call(t, http.MethodPut, userPath+"/pokemon-team", `{"pokemonIds":["bulbasaur",4,"7"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"pokemonTeam":["bulbasaur","charmander","squirtle"]`)

	resp, body = call(t, http.MethodPost, userPath+"/pokemon-team", `{"pokemonNameOrId":"charmander"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Pokemon already in team")

	resp, body = call(t, http.MethodGet, "/api/v1/users/by-team/charmander", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, created.Data.ID)

	resp, body = call(t, http.MethodDelete, userPath+"/pokemon-team/4", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Contains(t, body, `"pokemonTeam":["bulbasaur","squirtle"]`)

	resp, _ = call(t, http.MethodDelete, userPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, http.MethodGet, userPath, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	call(t, http.MethodGet, "/api/v1/users", "")

	resp, body := call(t, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "pokeusers_http_requests_total")
	assert.Contains(t, body, `path="/api/v1/users`)
}

func TestUnknownRoute(t *testing.T) {
	resp, body := call(t, http.MethodGet, "/api/v1/nope/x/y/z", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	var env struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &env), body)
	assert.False(t, env.Success)
	assert.Equal(t, "Cannot GET /api/v1/nope/x/y/z", env.Message)
}

func TestPanicIsHidden(t *testing.T) {
	app := newFiber(testCfg, zerolog.Nop())
	app.Get("/boom", func(c *fiber.Ctx) error {
		var user *models.User
		return c.SendString(user.Email)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Internal server error"}`, string(raw))
	assert.NotContains(t, string(raw), "nil pointer")
}
