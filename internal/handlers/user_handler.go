package handlers

import (
	"errors"
	"strconv"

	"pokeusers/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
	log      zerolog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService, log zerolog.Logger) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
		log:      log,
	}
}

// CreateUserRequest is the signup payload.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2"`
	Password string `json:"password" validate:"required,min=6"`
}

// UpdateUserRequest is the partial update payload. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email" validate:"omitempty,email"`
	Name     *string `json:"name" validate:"omitempty,min=2"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// RegisterRoutes registers the user routes. Static paths come before /:id.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreate)
	userRoutes.Get("/", h.HandleList)
	userRoutes.Get("/search", h.HandleSearch)
	userRoutes.Get("/stats", h.HandleStats)
	userRoutes.Get("/by-favorite/:pokemon", h.HandleFindByFavorite)
	userRoutes.Get("/by-team/:pokemon", h.HandleFindByTeamMember)
	userRoutes.Get("/:id", h.HandleGet)
	userRoutes.Patch("/:id", h.HandleUpdate)
	userRoutes.Delete("/:id", h.HandleDelete)
	userRoutes.Post("/:id/activate", h.HandleActivate)
	userRoutes.Post("/:id/deactivate", h.HandleDeactivate)
}

// HandleCreate registers a new user.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err, "Error creating user")
	}

	user, err := h.service.Create(c.UserContext(), services.CreateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.log, err, "Error creating user")
	}
	return respond(c, fiber.StatusCreated, "", user)
}

// HandleList returns all users, or one page when page or limit is given.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	if c.Query("page") == "" && c.Query("limit") == "" {
		users, err := h.service.List(c.UserContext())
		if err != nil {
			return respondError(c, h.log, err, "Error fetching users")
		}
		return respond(c, fiber.StatusOK, "", users)
	}

	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		return fail(c, fiber.StatusBadRequest, "page must be a positive integer", nil)
	}
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		return fail(c, fiber.StatusBadRequest, "limit must be between 1 and 100", nil)
	}
	result, err := h.service.ListPage(c.UserContext(), page, limit)
	if err != nil {
		return respondError(c, h.log, err, "Error fetching users")
	}
	return respond(c, fiber.StatusOK, "", result)
}

// HandleGet returns one user. A missing user is a 404 on this read path.
func (h *UserHandler) HandleGet(c *fiber.Ctx) error {
	user, err := h.service.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, services.ErrUserNotFound) {
		return fail(c, fiber.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return respondError(c, h.log, err, "Error fetching user")
	}
	return respond(c, fiber.StatusOK, "", user)
}

// HandleUpdate applies a partial update.
func (h *UserHandler) HandleUpdate(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, h.log, err, "Error updating user")
	}

	user, err := h.service.Update(c.UserContext(), c.Params("id"), services.UpdateUserInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		return respondError(c, h.log, err, "Error updating user")
	}
	return respond(c, fiber.StatusOK, "", user)
}

// HandleDelete removes a user.
func (h *UserHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, h.log, err, "Error deleting user")
	}
	return respond(c, fiber.StatusOK, "User deleted successfully", nil)
}

// HandleSearch finds users by name fragment.
func (h *UserHandler) HandleSearch(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fail(c, fiber.StatusBadRequest, "Query parameter is required", nil)
	}
	users, err := h.service.Search(c.UserContext(), query)
	if err != nil {
		return respondError(c, h.log, err, "Error searching users")
	}
	return respond(c, fiber.StatusOK, "", users)
}

// HandleStats returns account counters.
func (h *UserHandler) HandleStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err, "Error fetching stats")
	}
	return respond(c, fiber.StatusOK, "", stats)
}

// HandleFindByFavorite lists users whose favorite is :pokemon.
func (h *UserHandler) HandleFindByFavorite(c *fiber.Ctx) error {
	users, err := h.service.FindByFavoritePokemon(c.UserContext(), pathParam(c, "pokemon"))
	if err != nil {
		return respondError(c, h.log, err, "Error fetching users")
	}
	return respond(c, fiber.StatusOK, "", users)
}

// HandleFindByTeamMember lists users with :pokemon in their team.
func (h *UserHandler) HandleFindByTeamMember(c *fiber.Ctx) error {
	users, err := h.service.FindByPokemonInTeam(c.UserContext(), pathParam(c, "pokemon"))
	if err != nil {
		return respondError(c, h.log, err, "Error fetching users")
	}
	return respond(c, fiber.StatusOK, "", users)
}

// HandleActivate sets the active flag.
func (h *UserHandler) HandleActivate(c *fiber.Ctx) error {
	return h.setActive(c, true)
}

// HandleDeactivate clears the active flag.
func (h *UserHandler) HandleDeactivate(c *fiber.Ctx) error {
	return h.setActive(c, false)
}

func (h *UserHandler) setActive(c *fiber.Ctx, active bool) error {
	var (
		err     error
		message = "User activated successfully"
	)
	if active {
		err = h.service.Activate(c.UserContext(), c.Params("id"))
	} else {
		message = "User deactivated successfully"
		err = h.service.Deactivate(c.UserContext(), c.Params("id"))
	}
	if errors.Is(err, services.ErrUserNotFound) {
		return fail(c, fiber.StatusNotFound, "User not found", nil)
	}
	if err != nil {
		return respondError(c, h.log, err, "Error updating user status")
	}
	return respond(c, fiber.StatusOK, message, nil)
}
