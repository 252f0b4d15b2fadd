// Package pokeapitest provides an in-process stand-in for the pokemon data
// source, for use in tests.
package pokeapitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
)

// Pokemon is one species served by the fake.
type Pokemon struct {
	ID        int
	Name      string
	Types     []string
	Sprite    *string // nil renders front_default as null
	Artwork   string  // official-artwork sprite, used when Sprite is nil
	Height    int
	Weight    int
	HP        int
	Attack    int
	Defense   int
	Speed     int
	Abilities []string
}

// Server answers GET /pokemon/{nameOrId}.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	byKey    map[string]Pokemon
	failures map[string]int
	hits     map[string]int
}

func strPtr(s string) *string { return &s }

// Starter is the default roster.
var Starter = []Pokemon{
	{ID: 1, Name: "bulbasaur", Types: []string{"grass", "poison"}, Sprite: strPtr("https://img/1.png"), Height: 7, Weight: 69, HP: 45, Attack: 49, Defense: 49, Speed: 45, Abilities: []string{"overgrow", "chlorophyll"}},
	{ID: 4, Name: "charmander", Types: []string{"fire"}, Sprite: strPtr("https://img/4.png"), Height: 6, Weight: 85, HP: 39, Attack: 52, Defense: 43, Speed: 65, Abilities: []string{"blaze", "solar-power"}},
	{ID: 7, Name: "squirtle", Types: []string{"water"}, Sprite: strPtr("https://img/7.png"), Height: 5, Weight: 90, HP: 44, Attack: 48, Defense: 65, Speed: 43, Abilities: []string{"torrent", "rain-dish"}},
	{ID: 25, Name: "pikachu", Types: []string{"electric"}, Sprite: strPtr("https://img/25.png"), Height: 4, Weight: 60, HP: 35, Attack: 55, Defense: 40, Speed: 90, Abilities: []string{"static", "lightning-rod"}},
	{ID: 133, Name: "eevee", Types: []string{"normal"}, Sprite: strPtr("https://img/133.png"), Height: 3, Weight: 65, HP: 55, Attack: 55, Defense: 50, Speed: 55, Abilities: []string{"run-away", "adaptability"}},
	{ID: 143, Name: "snorlax", Types: []string{"normal"}, Sprite: strPtr("https://img/143.png"), Height: 21, Weight: 4600, HP: 160, Attack: 110, Defense: 65, Speed: 30, Abilities: []string{"immunity", "thick-fat"}},
	{ID: 150, Name: "mewtwo", Types: []string{"psychic"}, Artwork: "https://img/artwork/150.png", Height: 20, Weight: 1220, HP: 106, Attack: 110, Defense: 90, Speed: 130, Abilities: []string{"pressure", "unnerve"}},
}

// NewServer starts a fake serving the Starter roster.
func NewServer() *Server {
	s := &Server{
		byKey:    make(map[string]Pokemon),
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}
	for _, p := range Starter {
		s.Add(p)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Add serves p under its name and its id.
func (s *Server) Add(p Pokemon) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byKey[p.Name] = p
	s.byKey[strconv.Itoa(p.ID)] = p
}

// Fail makes requests for key answer with status until cleared with status 0.
func (s *Server) Fail(key string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// Hits returns how many requests reached key.
func (s *Server) Hits(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[key]
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutPrefix(r.URL.Path, "/pokemon/")
	if !ok || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	s.mu.Lock()
	s.hits[key]++
	status, failing := s.failures[key]
	p, known := s.byKey[key]
	s.mu.Unlock()

	switch {
	case failing:
		w.WriteHeader(status)
		fmt.Fprint(w, "upstream failure")
	case !known:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "Not Found")
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Document(p))
	}
}

// Document renders p the way the real API does, limited to the fields the
// client reads plus some noise it must ignore.
func Document(p Pokemon) map[string]interface{} {
	types := make([]interface{}, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]interface{}{
			"slot": i + 1,
			"type": map[string]interface{}{"name": t, "url": "https://pokeapi.co/api/v2/type/" + t},
		})
	}
	stat := func(name string, value int) map[string]interface{} {
		return map[string]interface{}{"base_stat": value, "effort": 0, "stat": map[string]interface{}{"name": name}}
	}
	abilities := make([]interface{}, 0, len(p.Abilities))
	for _, a := range p.Abilities {
		abilities = append(abilities, map[string]interface{}{"ability": map[string]interface{}{"name": a}, "is_hidden": false})
	}

	var front interface{}
	if p.Sprite != nil {
		front = *p.Sprite
	}
	var artwork interface{}
	if p.Artwork != "" {
		artwork = p.Artwork
	}

	return map[string]interface{}{
		"id":              p.ID,
		"name":            p.Name,
		"height":          p.Height,
		"weight":          p.Weight,
		"base_experience": 64,
		"sprites": map[string]interface{}{
			"front_default": front,
			"back_default":  nil,
			"other": map[string]interface{}{
				"official-artwork": map[string]interface{}{"front_default": artwork},
			},
		},
		"types": types,
		"stats": []interface{}{
			stat("hp", p.HP),
			stat("attack", p.Attack),
			stat("defense", p.Defense),
			stat("special-attack", 1),
			stat("special-defense", 1),
			stat("speed", p.Speed),
		},
		"abilities": abilities,
	}
}
