package handlers

import (
	"pokeusers/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// PokemonHandler handles the favorite pokemon and team endpoints of a user.
type PokemonHandler struct {
	service  *services.PokemonService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewPokemonHandler creates a new PokemonHandler.
func NewPokemonHandler(service *services.PokemonService, log zerolog.Logger) *PokemonHandler {
	return &PokemonHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// PokemonRequest names one pokemon by name or numeric id.
type PokemonRequest struct {
	PokemonNameOrID NameOrID `json:"pokemonNameOrId" validate:"required"`
}

// SetTeamRequest replaces the whole team.
type SetTeamRequest struct {
	PokemonIDs []NameOrID `json:"pokemonIds" validate:"required,max=6,dive,required"`
}

// RegisterRoutes registers the pokemon routes under /users/:id.
func (h *PokemonHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users/:id")
	userRoutes.Post("/favorite-pokemon", h.HandleSetFavorite)
	userRoutes.Get("/favorite-pokemon", h.HandleGetFavorite)
	userRoutes.Get("/favorite-pokemon/details", h.HandleGetFavoriteDetails)
	userRoutes.Post("/pokemon-team", h.HandleAddToTeam)
	userRoutes.Get("/pokemon-team", h.HandleGetTeam)
	userRoutes.Put("/pokemon-team", h.HandleSetTeam)
	userRoutes.Delete("/pokemon-team/:pokemonNameOrId", h.HandleRemoveFromTeam)
	userRoutes.Post("/random-pokemon", h.HandleAssignRandom)
}

// HandleSetFavorite stores the favorite pokemon of a user.
func (h *PokemonHandler) HandleSetFavorite(c *fiber.Ctx) error {
	var req PokemonRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err, "Error setting favorite pokemon")
	}
	result, err := h.service.SetFavorite(c.UserContext(), c.Params("id"), string(req.PokemonNameOrID))
	if err != nil {
		return respondError(c, h.log, err, "Error setting favorite pokemon")
	}
	return respond(c, fiber.StatusOK, "Favorite pokemon set successfully", result)
}

// HandleGetFavorite returns the favorite pokemon, re-resolved.
func (h *PokemonHandler) HandleGetFavorite(c *fiber.Ctx) error {
	pokemon, err := h.service.GetFavorite(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Error fetching favorite pokemon")
	}
	if pokemon == nil {
		return fail(c, fiber.StatusNotFound, "User has no favorite pokemon", nil)
	}
	return respond(c, fiber.StatusOK, "", pokemon)
}

// HandleGetFavoriteDetails returns the favorite pokemon with stats and abilities.
func (h *PokemonHandler) HandleGetFavoriteDetails(c *fiber.Ctx) error {
	details, err := h.service.GetFavoriteDetails(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Error fetching favorite pokemon")
	}
	if details == nil {
		return fail(c, fiber.StatusNotFound, "User has no favorite pokemon", nil)
	}
	return respond(c, fiber.StatusOK, "", details)
}

// HandleAddToTeam adds one pokemon to the team.
func (h *PokemonHandler) HandleAddToTeam(c *fiber.Ctx) error {
	var req PokemonRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err, "Error adding pokemon to team")
	}
	result, err := h.service.AddToTeam(c.UserContext(), c.Params("id"), string(req.PokemonNameOrID))
	if err != nil {
		return respondError(c, h.log, err, "Error adding pokemon to team")
	}
	return respond(c, fiber.StatusOK, "Pokemon added to team", result)
}

// HandleRemoveFromTeam removes one pokemon from the team.
func (h *PokemonHandler) HandleRemoveFromTeam(c *fiber.Ctx) error {
	user, err := h.service.RemoveFromTeam(c.UserContext(), c.Params("id"), pathParam(c, "pokemonNameOrId"))
	if err != nil {
		return respondError(c, h.log, err, "Error removing pokemon from team")
	}
	return respond(c, fiber.StatusOK, "Pokemon removed from team", user)
}

// HandleGetTeam returns the resolved team.
func (h *PokemonHandler) HandleGetTeam(c *fiber.Ctx) error {
	team, err := h.service.GetTeam(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Error fetching pokemon team")
	}
	return respond(c, fiber.StatusOK, "", team)
}

// HandleSetTeam replaces the whole team.
func (h *PokemonHandler) HandleSetTeam(c *fiber.Ctx) error {
	var req SetTeamRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err, "Error setting pokemon team")
	}
	ids := make([]string, len(req.PokemonIDs))
	for i, id := range req.PokemonIDs {
		ids[i] = string(id)
	}
	user, err := h.service.SetTeam(c.UserContext(), c.Params("id"), ids)
	if err != nil {
		return respondError(c, h.log, err, "Error setting pokemon team")
	}
	return respond(c, fiber.StatusOK, "Pokemon team set successfully", user)
}

// HandleAssignRandom sets a random favorite pokemon.
func (h *PokemonHandler) HandleAssignRandom(c *fiber.Ctx) error {
	result, err := h.service.AssignRandom(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err, "Error assigning random pokemon")
	}
	return respond(c, fiber.StatusOK, "Random pokemon assigned", result)
}
