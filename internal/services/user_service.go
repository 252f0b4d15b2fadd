package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"pokeusers/internal/models"
	"pokeusers/internal/repositories"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles business logic for user accounts.
type UserService struct {
	repo       repositories.UserRepository
	bcryptCost int
	events     EventPublisher
	log        zerolog.Logger
}

// UserServiceOption configures a UserService.
type UserServiceOption func(*UserService)

// WithBcryptCost sets the cost used to hash passwords.
func WithBcryptCost(cost int) UserServiceOption {
	return func(s *UserService) {
		s.bcryptCost = cost
	}
}

// WithUserEvents publishes user lifecycle events through pub.
func WithUserEvents(pub EventPublisher) UserServiceOption {
	return func(s *UserService) {
		s.events = pub
	}
}

// WithUserLogger sets the service logger.
func WithUserLogger(log zerolog.Logger) UserServiceOption {
	return func(s *UserService) {
		s.log = log
	}
}

// NewUserService creates a new UserService.
func NewUserService(repo repositories.UserRepository, opts ...UserServiceOption) *UserService {
	s := &UserService{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUserInput is the payload of a signup.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
}

// UpdateUserInput lists the fields a caller may change. A nil field is left
// untouched; JSON null and an absent key are therefore the same.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Password *string
}

func (s *UserService) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func translateRepoErr(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}

// Create registers a new user with a hashed password.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	exists, err := s.repo.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:       in.Email,
		Name:        in.Name,
		Password:    hashed,
		IsActive:    true,
		PokemonTeam: models.Team{},
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	publishEvent(ctx, s.events, s.log, EventUserCreated, map[string]interface{}{
		"userId": user.ID,
		"email":  user.Email,
	})
	return user, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAll(ctx)
}

// ListPage returns the page-th slice of limit users, newest first.
func (s *UserService) ListPage(ctx context.Context, page, limit int) (*models.UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	users, total, err := s.repo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &models.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

// Update merges the non-nil fields of in into the stored user.
func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoErr(err)
	}

	if in.Email != nil && *in.Email != user.Email {
		exists, err := s.repo.EmailExists(ctx, *in.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Password != nil {
		hashed, err := s.hashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

// Delete removes a user permanently.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translateRepoErr(err)
	}
	publishEvent(ctx, s.events, s.log, EventUserDeleted, map[string]interface{}{"userId": id})
	return nil
}

// Activate sets the active flag.
func (s *UserService) Activate(ctx context.Context, id string) error {
	return translateRepoErr(s.repo.SetActive(ctx, id, true))
}

// Deactivate clears the active flag. Deactivated users remain fully usable.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	return translateRepoErr(s.repo.SetActive(ctx, id, false))
}

// Search finds users by a case-insensitive name fragment.
func (s *UserService) Search(ctx context.Context, query string) ([]models.User, error) {
	return s.repo.SearchByName(ctx, query)
}

// Stats returns account counters.
func (s *UserService) Stats(ctx context.Context) (*models.UserStats, error) {
	return s.repo.Stats(ctx)
}

// FindByFavoritePokemon lists users whose favorite is pokemonName.
func (s *UserService) FindByFavoritePokemon(ctx context.Context, pokemonName string) ([]models.User, error) {
	return s.repo.FindByFavoritePokemon(ctx, pokemonName)
}

// FindByPokemonInTeam lists users that keep pokemonName in their team.
func (s *UserService) FindByPokemonInTeam(ctx context.Context, pokemonName string) ([]models.User, error) {
	return s.repo.FindByPokemonInTeam(ctx, pokemonName)
}
