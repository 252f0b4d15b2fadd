package handlers

import (
	"errors"
	"fmt"

	"pokeusers/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

var publicMessages = []struct {
	err     error
	status  int
	message string
}{
	{services.ErrUserNotFound, fiber.StatusBadRequest, "User not found"},
	{services.ErrEmailAlreadyExists, fiber.StatusBadRequest, "Email already exists"},
	{services.ErrTeamFull, fiber.StatusBadRequest, "Pokemon team is full (maximum 6 pokemon)"},
	{services.ErrTeamEmpty, fiber.StatusBadRequest, "Pokemon team is empty"},
	{services.ErrDuplicateInTeam, fiber.StatusBadRequest, "Pokemon already in team"},
	{services.ErrTeamTooLarge, fiber.StatusBadRequest, "Pokemon team cannot have more than 6 pokemon"},
	{services.ErrOneOrMorePokemonNotFound, fiber.StatusBadRequest, "One or more pokemon not found"},
	{services.ErrRandomFetchFailed, fiber.StatusBadRequest, "Could not fetch random pokemon"},
	{services.ErrPokemonServiceUnavailable, fiber.StatusServiceUnavailable, "Pokemon data source is unavailable, try again later"},
}

// mapError returns the status and public message of a domain error.
// ok is false for unexpected errors, which must not leak.
func mapError(err error) (status int, message string, ok bool) {
	var notFound *services.PokemonNotFoundError
	if errors.As(err, &notFound) {
		return fiber.StatusBadRequest, fmt.Sprintf("Pokemon %q not found", notFound.Input), true
	}
	for _, m := range publicMessages {
		if errors.Is(err, m.err) {
			return m.status, m.message, true
		}
	}
	return 0, "", false
}

// respondError writes the envelope for err. Unexpected errors are logged and
// answered with a 500 carrying fallback as message.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error, fallback string) error {
	var invalid *services.ValidationError
	if errors.As(err, &invalid) {
		return fail(c, fiber.StatusBadRequest, "Validation failed", invalid.Fields)
	}
	if status, message, ok := mapError(err); ok {
		return fail(c, status, message, nil)
	}
	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(fallback)
	return fail(c, fiber.StatusInternalServerError, fallback, nil)
}

// ErrorHandler answers errors that escape the route handlers, such as
// unmatched routes and recovered panics, with the response envelope.
func ErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return fail(c, fe.Code, fe.Message, nil)
		}
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
		return fail(c, fiber.StatusInternalServerError, "Internal server error", nil)
	}
}
