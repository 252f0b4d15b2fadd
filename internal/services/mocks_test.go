package services_test

import (
	"context"

	"pokeusers/internal/models"
	"pokeusers/internal/pokeapi"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, offset, limit int) ([]models.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateFavoritePokemon(ctx context.Context, id, pokemonName string) (*models.User, error) {
	args := m.Called(ctx, id, pokemonName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePokemonTeam(ctx context.Context, id string, team models.Team) (*models.User, error) {
	args := m.Called(ctx, id, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockUserRepository) SearchByName(ctx context.Context, query string) ([]models.User, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) FindByFavoritePokemon(ctx context.Context, pokemonName string) ([]models.User, error) {
	args := m.Called(ctx, pokemonName)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) FindByPokemonInTeam(ctx context.Context, pokemonName string) ([]models.User, error) {
	args := m.Called(ctx, pokemonName)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

type basicResult = pokeapi.Result[models.PokemonBasicInfo]

// MockPokemonLookup is a mock implementation of services.PokemonLookup
type MockPokemonLookup struct {
	mock.Mock
}

func (m *MockPokemonLookup) Lookup(ctx context.Context, nameOrID string) basicResult {
	args := m.Called(ctx, nameOrID)
	return args.Get(0).(basicResult)
}

func (m *MockPokemonLookup) LookupDetails(ctx context.Context, nameOrID string) pokeapi.Result[models.PokemonDetails] {
	args := m.Called(ctx, nameOrID)
	return args.Get(0).(pokeapi.Result[models.PokemonDetails])
}

func (m *MockPokemonLookup) LookupRandom(ctx context.Context) basicResult {
	args := m.Called(ctx)
	return args.Get(0).(basicResult)
}

func (m *MockPokemonLookup) LookupAll(ctx context.Context, ids []string) []basicResult {
	args := m.Called(ctx, ids)
	return args.Get(0).([]basicResult)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

var (
	pikachu    = models.PokemonBasicInfo{ID: 25, Name: "pikachu", Sprite: "https://img/25.png", Types: []string{"electric"}}
	charmander = models.PokemonBasicInfo{ID: 4, Name: "charmander", Sprite: "https://img/4.png", Types: []string{"fire"}}
	eevee      = models.PokemonBasicInfo{ID: 133, Name: "eevee", Sprite: "https://img/133.png", Types: []string{"normal"}}
)

func found(p models.PokemonBasicInfo) basicResult {
	return basicResult{Status: pokeapi.StatusFound, Value: p}
}

func missing() basicResult {
	return basicResult{Status: pokeapi.StatusNotFound}
}

func unavailable() basicResult {
	return basicResult{Status: pokeapi.StatusTransient, Err: context.DeadlineExceeded}
}

func strPtr(s string) *string { return &s }
