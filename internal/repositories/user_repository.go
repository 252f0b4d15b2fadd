package repositories

import (
	"context"
	"errors"

	"pokeusers/internal/models"
)

// ErrUserNotFound is returned (wrapped) when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context) ([]models.User, error)
	List(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	UpdateFavoritePokemon(ctx context.Context, id, pokemonName string) (*models.User, error)
	UpdatePokemonTeam(ctx context.Context, id string, team models.Team) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) error

	SearchByName(ctx context.Context, query string) ([]models.User, error)
	FindByFavoritePokemon(ctx context.Context, pokemonName string) ([]models.User, error)
	FindByPokemonInTeam(ctx context.Context, pokemonName string) ([]models.User, error)
	Stats(ctx context.Context) (*models.UserStats, error)
}
