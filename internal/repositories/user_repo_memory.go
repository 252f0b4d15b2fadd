package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"pokeusers/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users map[string]models.User
	mu    sync.RWMutex
	now   func() time.Time
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

// cloneUser detaches the slices and pointers so callers cannot mutate stored state.
func cloneUser(u models.User) models.User {
	if u.FavoritePokemon != nil {
		fav := *u.FavoritePokemon
		u.FavoritePokemon = &fav
	}
	team := make(models.Team, len(u.PokemonTeam))
	copy(team, u.PokemonTeam)
	u.PokemonTeam = team
	return u
}

func (r *MemoryUserRepository) sorted(match func(models.User) bool) []models.User {
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		if match == nil || match(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: email %s already stored", user.Email)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.PokemonTeam == nil {
		user.PokemonTeam = models.Team{}
	}
	now := r.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = cloneUser(*user)
	return nil
}

// GetByID returns a user by its ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	found := cloneUser(u)
	return &found, nil
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrUserNotFound)
}

// EmailExists reports whether any user is registered with email.
func (r *MemoryUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

// GetAll returns all users, newest first.
func (r *MemoryUserRepository) GetAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(nil), nil
}

// List returns one page of users, newest first.
func (r *MemoryUserRepository) List(_ context.Context, offset, limit int) ([]models.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sorted(nil)
	total := int64(len(all))
	if offset >= len(all) {
		return []models.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// Update modifies an existing user.
func (r *MemoryUserRepository) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user with ID %s: %w", user.ID, ErrUserNotFound)
	}
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = r.now()
	r.users[user.ID] = cloneUser(*user)
	return nil
}

// Delete removes a user by its ID.
func (r *MemoryUserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	delete(r.users, id)
	return nil
}

func (r *MemoryUserRepository) mutate(id string, fn func(u *models.User)) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
	}
	fn(&u)
	u.UpdatedAt = r.now()
	r.users[id] = cloneUser(u)
	updated := cloneUser(u)
	return &updated, nil
}

// UpdateFavoritePokemon stores pokemonName as the user's favorite.
func (r *MemoryUserRepository) UpdateFavoritePokemon(_ context.Context, id, pokemonName string) (*models.User, error) {
	return r.mutate(id, func(u *models.User) {
		u.FavoritePokemon = &pokemonName
	})
}

// UpdatePokemonTeam replaces the user's team.
func (r *MemoryUserRepository) UpdatePokemonTeam(_ context.Context, id string, team models.Team) (*models.User, error) {
	return r.mutate(id, func(u *models.User) {
		u.PokemonTeam = team
	})
}

// SetActive flips the soft-delete flag.
func (r *MemoryUserRepository) SetActive(_ context.Context, id string, active bool) error {
	_, err := r.mutate(id, func(u *models.User) {
		u.IsActive = active
	})
	return err
}

// SearchByName returns users whose name contains query, ignoring case.
func (r *MemoryUserRepository) SearchByName(_ context.Context, query string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	return r.sorted(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Name), q)
	}), nil
}

// FindByFavoritePokemon returns users whose favorite is pokemonName.
func (r *MemoryUserRepository) FindByFavoritePokemon(_ context.Context, pokemonName string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(u models.User) bool {
		return u.FavoritePokemon != nil && *u.FavoritePokemon == pokemonName
	}), nil
}

// FindByPokemonInTeam returns users that have pokemonName in their team.
func (r *MemoryUserRepository) FindByPokemonInTeam(_ context.Context, pokemonName string) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(u models.User) bool {
		return u.PokemonTeam.Contains(pokemonName)
	}), nil
}

// Stats counts users by activation, favorite and team state.
func (r *MemoryUserRepository) Stats(_ context.Context) (*models.UserStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.UserStats{Total: int64(len(r.users))}
	for _, u := range r.users {
		if u.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if u.HasFavorite() {
			stats.WithFavoritePokemon++
		}
		if len(u.PokemonTeam) > 0 {
			stats.WithTeam++
		}
	}
	return stats, nil
}
