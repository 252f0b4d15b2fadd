// Package pokeapi is the single point of contact with the external pokemon
// data source. It normalizes raw payloads into models.PokemonBasicInfo and
// models.PokemonDetails and memoizes them through a Cache.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pokeusers/internal/metrics"
	"pokeusers/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBaseURL = "https://pokeapi.co/api/v2"
	DefaultTimeout = 5 * time.Second

	// MaxRandomID bounds random draws to the national dex of generation VIII.
	MaxRandomID = 898

	kindBasic   = "basic"
	kindDetails = "details"

	maxConcurrentLookups = 8
)

var errNotFound = errors.New("pokemon not found upstream")

// Client resolves pokemon by name or numeric id.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	log        zerolog.Logger
	randIntN   func(n int) int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. A client passed through
// WithHTTPClient is copied, never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithCache injects the lookup cache.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger used for transient failures.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// WithRandom replaces the random source used by GetRandom. fn must return
// a value in [0, n).
func WithRandom(fn func(n int) int) Option {
	return func(c *Client) {
		c.randIntN = fn
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        zerolog.Nop(),
		randIntN:   rand.IntN,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache(DefaultCacheTTL)
	}
	return c
}

type namedResource struct {
	Name string `json:"name"`
}

type sprite struct {
	FrontDefault *string `json:"front_default"`
}

// apiPokemon mirrors the subset of the /pokemon/{id} document we read.
type apiPokemon struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Height  int    `json:"height"`
	Weight  int    `json:"weight"`
	Sprites struct {
		sprite
		Other map[string]sprite `json:"other"`
	} `json:"sprites"`
	Types []struct {
		Slot int           `json:"slot"`
		Type namedResource `json:"type"`
	} `json:"types"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     namedResource `json:"stat"`
	} `json:"stats"`
	Abilities []struct {
		Ability namedResource `json:"ability"`
	} `json:"abilities"`
}

func (p *apiPokemon) spriteURL() string {
	if p.Sprites.FrontDefault != nil && *p.Sprites.FrontDefault != "" {
		return *p.Sprites.FrontDefault
	}
	if art, ok := p.Sprites.Other["official-artwork"]; ok && art.FrontDefault != nil {
		return *art.FrontDefault
	}
	return ""
}

func (p *apiPokemon) basicInfo() models.PokemonBasicInfo {
	types := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		types = append(types, t.Type.Name)
	}
	return models.PokemonBasicInfo{
		ID:     p.ID,
		Name:   p.Name,
		Sprite: p.spriteURL(),
		Types:  types,
	}
}

func (p *apiPokemon) details() models.PokemonDetails {
	var stats models.PokemonStats
	for _, s := range p.Stats {
		switch s.Stat.Name {
		case "hp":
			stats.HP = s.BaseStat
		case "attack":
			stats.Attack = s.BaseStat
		case "defense":
			stats.Defense = s.BaseStat
		case "speed":
			stats.Speed = s.BaseStat
		}
	}
	abilities := make([]string, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		abilities = append(abilities, a.Ability.Name)
	}
	return models.PokemonDetails{
		PokemonBasicInfo: p.basicInfo(),
		Height:           p.Height,
		Weight:           p.Weight,
		Stats:            stats,
		Abilities:        abilities,
	}
}

// fetch issues one GET /pokemon/{nameOrID}. A 404 yields errNotFound.
func (c *Client) fetch(ctx context.Context, nameOrID string) (*apiPokemon, error) {
	endpoint := c.baseURL + "/pokemon/" + url.PathEscape(nameOrID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload apiPokemon
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if payload.ID == 0 || payload.Name == "" {
		return nil, fmt.Errorf("malformed payload: missing id or name")
	}
	return &payload, nil
}

func cacheKey(kind, nameOrID string) string {
	return kind + "-" + nameOrID
}

func lookup[T any](ctx context.Context, c *Client, kind, nameOrID string, normalize func(*apiPokemon) T) Result[T] {
	key := cacheKey(kind, nameOrID)
	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			metrics.ObserveCache(kind, true)
			return found(cached)
		}
	}
	metrics.ObserveCache(kind, false)

	start := time.Now()
	payload, err := c.fetch(ctx, nameOrID)
	switch {
	case errors.Is(err, errNotFound):
		metrics.ObserveLookup(kind, StatusNotFound.String(), time.Since(start))
		return notFound[T]()
	case err != nil:
		metrics.ObserveLookup(kind, StatusTransient.String(), time.Since(start))
		c.log.Warn().Err(err).Str("kind", kind).Str("pokemon", nameOrID).Msg("error fetching pokemon")
		return transient[T](err)
	}
	metrics.ObserveLookup(kind, StatusFound.String(), time.Since(start))

	value := normalize(payload)
	if raw, err := json.Marshal(value); err == nil {
		c.cache.Set(ctx, key, raw)
	}
	return found(value)
}

// Lookup resolves the basic info of a pokemon, keeping the three outcomes apart.
func (c *Client) Lookup(ctx context.Context, nameOrID string) Result[models.PokemonBasicInfo] {
	return lookup(ctx, c, kindBasic, nameOrID, (*apiPokemon).basicInfo)
}

// LookupDetails resolves the detailed view of a pokemon.
func (c *Client) LookupDetails(ctx context.Context, nameOrID string) Result[models.PokemonDetails] {
	return lookup(ctx, c, kindDetails, nameOrID, (*apiPokemon).details)
}

// LookupRandom resolves a pokemon drawn uniformly from [1, MaxRandomID].
func (c *Client) LookupRandom(ctx context.Context) Result[models.PokemonBasicInfo] {
	id := c.randIntN(MaxRandomID) + 1
	return c.Lookup(ctx, strconv.Itoa(id))
}

// GetBasicInfo returns nil when the pokemon does not exist or the source
// could not be reached.
func (c *Client) GetBasicInfo(ctx context.Context, nameOrID string) *models.PokemonBasicInfo {
	return c.Lookup(ctx, nameOrID).Ptr()
}

// GetDetails returns nil when the pokemon does not exist or the source
// could not be reached.
func (c *Client) GetDetails(ctx context.Context, nameOrID string) *models.PokemonDetails {
	return c.LookupDetails(ctx, nameOrID).Ptr()
}

// Exists reports whether nameOrID currently resolves. Transient failures
// report false.
func (c *Client) Exists(ctx context.Context, nameOrID string) bool {
	return c.Lookup(ctx, nameOrID).Found()
}

// GetRandom returns a random pokemon or nil if the draw did not resolve.
func (c *Client) GetRandom(ctx context.Context) *models.PokemonBasicInfo {
	return c.LookupRandom(ctx).Ptr()
}

// GetMultiple resolves ids concurrently and returns the ones that resolved,
// in input order.
func (c *Client) GetMultiple(ctx context.Context, ids []string) []models.PokemonBasicInfo {
	results := c.LookupAll(ctx, ids)
	out := make([]models.PokemonBasicInfo, 0, len(results))
	for _, r := range results {
		if r.Found() {
			out = append(out, r.Value)
		}
	}
	return out
}

// LookupAll resolves ids concurrently; result i belongs to ids[i].
func (c *Client) LookupAll(ctx context.Context, ids []string) []Result[models.PokemonBasicInfo] {
	results := make([]Result[models.PokemonBasicInfo], len(ids))
	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, id := range ids {
		g.Go(func() error {
			results[i] = c.Lookup(ctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// ClearCache drops every cached lookup.
func (c *Client) ClearCache(ctx context.Context) {
	c.cache.Clear(ctx)
}
