package repositories

import (
	"context"
	"errors"
	"fmt"

	"pokeusers/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.PokemonTeam == nil {
		user.PokemonTeam = models.Team{}
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// notFoundIfMalformed rejects ids the uuid column could never hold, so that
// postgres does not fail the cast.
func notFoundIfMalformed(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if err := notFoundIfMalformed(id); err != nil {
		return nil, err
	}
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}

// EmailExists reports whether any user is registered with email.
func (r *GORMUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users by email: %w", err)
	}
	return count > 0, nil
}

// GetAll retrieves all users.
func (r *GORMUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	return users, nil
}

// List returns one page of users, newest first, and the total user count.
func (r *GORMUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// Update writes every column of an existing user.
func (r *GORMUserRepository) Update(ctx context.Context, user *models.User) error {
	if err := notFoundIfMalformed(user.ID); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(user).Select("*").Omit("id", "created_at").Updates(user)
	if res.Error != nil {
		return fmt.Errorf("failed to update user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrUserNotFound)
	}
	return nil
}

// Delete hard-deletes a user by ID.
func (r *GORMUserRepository) Delete(ctx context.Context, id string) error {
	if err := notFoundIfMalformed(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Delete(&models.User{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// UpdateFavoritePokemon stores pokemonName as the user's favorite and returns the fresh row.
func (r *GORMUserRepository) UpdateFavoritePokemon(ctx context.Context, id, pokemonName string) (*models.User, error) {
	if err := r.updateColumn(ctx, id, "favorite_pokemon", pokemonName); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePokemonTeam replaces the user's team and returns the fresh row.
func (r *GORMUserRepository) UpdatePokemonTeam(ctx context.Context, id string, team models.Team) (*models.User, error) {
	if team == nil {
		team = models.Team{}
	}
	if err := r.updateColumn(ctx, id, "pokemon_team", team); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SetActive flips the soft-delete flag.
func (r *GORMUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.updateColumn(ctx, id, "is_active", active)
}

func (r *GORMUserRepository) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	if err := notFoundIfMalformed(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	return nil
}

// SearchByName returns users whose name contains query, ignoring case.
func (r *GORMUserRepository) SearchByName(ctx context.Context, query string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// FindByFavoritePokemon returns users whose favorite is pokemonName.
func (r *GORMUserRepository) FindByFavoritePokemon(ctx context.Context, pokemonName string) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Where("favorite_pokemon = ?", pokemonName).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to find users by favorite pokemon: %w", err)
	}
	return users, nil
}

// FindByPokemonInTeam returns users that have pokemonName in their team.
func (r *GORMUserRepository) FindByPokemonInTeam(ctx context.Context, pokemonName string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("(',' || pokemon_team || ',') LIKE ?", "%,"+pokemonName+",%").
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find users by team member: %w", err)
	}
	return users, nil
}

// Stats counts users by activation, favorite and team state.
func (r *GORMUserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	var stats models.UserStats
	db := r.db.WithContext(ctx)
	counts := []struct {
		dst   *int64
		where string
		args  []interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.Active, "is_active = ?", []interface{}{true}},
		{&stats.Inactive, "is_active = ?", []interface{}{false}},
		{&stats.WithFavoritePokemon, "favorite_pokemon IS NOT NULL AND favorite_pokemon <> ''", nil},
		{&stats.WithTeam, "pokemon_team IS NOT NULL AND pokemon_team <> ''", nil},
	}
	for _, c := range counts {
		q := db.Model(&models.User{})
		if c.where != "" {
			q = q.Where(c.where, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("failed to compute user stats: %w", err)
		}
	}
	return &stats, nil
}
