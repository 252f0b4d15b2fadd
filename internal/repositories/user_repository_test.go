package repositories_test

import (
	"context"
	"testing"
	"time"

	"pokeusers/internal/database"
	"pokeusers/internal/models"
	"pokeusers/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) repositories.UserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would otherwise get its own empty database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return repositories.NewGORMUserRepository(db)
}

// forEachRepo runs fn against every UserRepository implementation.
func forEachRepo(t *testing.T, fn func(t *testing.T, repo repositories.UserRepository)) {
	impls := map[string]func(t *testing.T) repositories.UserRepository{
		"memory": func(*testing.T) repositories.UserRepository { return repositories.NewMemoryUserRepository() },
		"gorm":   newSQLiteRepo,
	}
	for name, newRepo := range impls {
		t.Run(name, func(t *testing.T) {
			fn(t, newRepo(t))
		})
	}
}

func createUser(t *testing.T, repo repositories.UserRepository, email, name string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: name, Password: "hash", IsActive: true}
	require.NoError(t, repo.Create(context.Background(), u))
	// keep created_at strictly increasing for ordering assertions
	time.Sleep(2 * time.Millisecond)
	return u
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		u := createUser(t, repo, "ash@pokemon.com", "Ash")

		assert.NotEmpty(t, u.ID)
		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "ash@pokemon.com", got.Email)
		assert.True(t, got.IsActive)
		assert.Nil(t, got.FavoritePokemon)
		assert.Empty(t, got.PokemonTeam)

		byEmail, err := repo.GetByEmail(ctx, "ash@pokemon.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		exists, err := repo.EmailExists(ctx, "ash@pokemon.com")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.EmailExists(ctx, "gary@pokemon.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestUserRepository_NotFound(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()

		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		_, err = repo.GetByEmail(ctx, "missing@pokemon.com")
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, "missing"), repositories.ErrUserNotFound)
		assert.ErrorIs(t, repo.SetActive(ctx, "missing", false), repositories.ErrUserNotFound)
		_, err = repo.UpdateFavoritePokemon(ctx, "missing", "pikachu")
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
		_, err = repo.UpdatePokemonTeam(ctx, "missing", models.Team{"pikachu"})
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		createUser(t, repo, "ash@pokemon.com", "Ash")

		err := repo.Create(context.Background(), &models.User{Email: "ash@pokemon.com", Name: "Other", Password: "hash"})
		assert.Error(t, err)
	})
}

func TestUserRepository_ListNewestFirst(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		for _, name := range []string{"Ash", "Misty", "Brock"} {
			createUser(t, repo, name+"@pokemon.com", name)
		}

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "Brock", all[0].Name)

		page, total, err := repo.List(ctx, 1, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, page, 1)
		assert.Equal(t, "Misty", page[0].Name)

		page, total, err = repo.List(ctx, 10, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Empty(t, page)
	})
}

func TestUserRepository_Update(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		u := createUser(t, repo, "ash@pokemon.com", "Ash")

		u.Name = "Ash Ketchum"
		u.IsActive = false
		require.NoError(t, repo.Update(ctx, u))

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "Ash Ketchum", got.Name)
		assert.False(t, got.IsActive)
	})
}

func TestUserRepository_FavoriteAndTeam(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		u := createUser(t, repo, "ash@pokemon.com", "Ash")

		updated, err := repo.UpdateFavoritePokemon(ctx, u.ID, "pikachu")
		require.NoError(t, err)
		require.NotNil(t, updated.FavoritePokemon)
		assert.Equal(t, "pikachu", *updated.FavoritePokemon)

		updated, err = repo.UpdatePokemonTeam(ctx, u.ID, models.Team{"pikachu", "eevee"})
		require.NoError(t, err)
		assert.Equal(t, models.Team{"pikachu", "eevee"}, updated.PokemonTeam)

		updated, err = repo.UpdatePokemonTeam(ctx, u.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, updated.PokemonTeam)
	})
}

func TestUserRepository_Delete(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		u := createUser(t, repo, "ash@pokemon.com", "Ash")

		require.NoError(t, repo.Delete(ctx, u.ID))
		_, err := repo.GetByID(ctx, u.ID)
		assert.ErrorIs(t, err, repositories.ErrUserNotFound)
	})
}

func TestUserRepository_Queries(t *testing.T) {
	forEachRepo(t, func(t *testing.T, repo repositories.UserRepository) {
		ctx := context.Background()
		ash := createUser(t, repo, "ash@pokemon.com", "Ash Ketchum")
		misty := createUser(t, repo, "misty@pokemon.com", "Misty")
		brock := createUser(t, repo, "brock@pokemon.com", "Brock")

		_, err := repo.UpdateFavoritePokemon(ctx, ash.ID, "pikachu")
		require.NoError(t, err)
		_, err = repo.UpdatePokemonTeam(ctx, misty.ID, models.Team{"staryu", "pikachu"})
		require.NoError(t, err)
		_, err = repo.UpdatePokemonTeam(ctx, brock.ID, models.Team{"pikachu2"})
		require.NoError(t, err)
		require.NoError(t, repo.SetActive(ctx, brock.ID, false))

		found, err := repo.SearchByName(ctx, "KETCH")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, ash.ID, found[0].ID)

		byFavorite, err := repo.FindByFavoritePokemon(ctx, "pikachu")
		require.NoError(t, err)
		require.Len(t, byFavorite, 1)
		assert.Equal(t, ash.ID, byFavorite[0].ID)

		byTeam, err := repo.FindByPokemonInTeam(ctx, "pikachu")
		require.NoError(t, err)
		require.Len(t, byTeam, 1, "membership is exact, not a substring match")
		assert.Equal(t, misty.ID, byTeam[0].ID)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.UserStats{Total: 3, Active: 2, Inactive: 1, WithFavoritePokemon: 1, WithTeam: 2}, *stats)
	})
}
