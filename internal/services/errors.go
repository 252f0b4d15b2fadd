package services

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailAlreadyExists       = errors.New("email already exists")
	ErrTeamFull                 = errors.New("pokemon team is full")
	ErrTeamEmpty                = errors.New("pokemon team is empty")
	ErrDuplicateInTeam          = errors.New("pokemon already in team")
	ErrTeamTooLarge             = errors.New("pokemon team cannot have more than 6 pokemon")
	ErrOneOrMorePokemonNotFound = errors.New("one or more pokemon not found")
	ErrRandomFetchFailed        = errors.New("could not fetch random pokemon")

	// ErrPokemonServiceUnavailable is only returned in strict lookup mode,
	// when the data source failed instead of answering "not found".
	ErrPokemonServiceUnavailable = errors.New("pokemon data source unavailable")
)

// PokemonNotFoundError reports an identifier that did not resolve.
type PokemonNotFoundError struct {
	Input string
}

func (e *PokemonNotFoundError) Error() string {
	return fmt.Sprintf("pokemon %q not found", e.Input)
}

// FieldError describes one rejected input field.
type FieldError struct {
	Property    string      `json:"property"`
	Constraints []string    `json:"constraints"`
	Value       interface{} `json:"value"`
}

// ValidationError carries per-field validation failures.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}
