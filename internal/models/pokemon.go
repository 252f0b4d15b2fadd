package models

// PokemonBasicInfo is the normalized short view of a pokemon.
type PokemonBasicInfo struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Sprite string   `json:"sprite"`
	Types  []string `json:"types"`
}

// PokemonStats holds the base stats kept from the data source.
type PokemonStats struct {
	HP      int `json:"hp"`
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
}

// PokemonDetails extends PokemonBasicInfo with size, stats and abilities.
type PokemonDetails struct {
	PokemonBasicInfo
	Height    int          `json:"height"`
	Weight    int          `json:"weight"`
	Stats     PokemonStats `json:"stats"`
	Abilities []string     `json:"abilities"`
}
