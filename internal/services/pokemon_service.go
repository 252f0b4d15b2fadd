package services

import (
	"context"
	"errors"
	"fmt"

	"pokeusers/internal/metrics"
	"pokeusers/internal/models"
	"pokeusers/internal/pokeapi"
	"pokeusers/internal/repositories"

	"github.com/rs/zerolog"
)

// PokemonLookup resolves pokemon identifiers. Implemented by *pokeapi.Client.
type PokemonLookup interface {
	Lookup(ctx context.Context, nameOrID string) pokeapi.Result[models.PokemonBasicInfo]
	LookupDetails(ctx context.Context, nameOrID string) pokeapi.Result[models.PokemonDetails]
	LookupRandom(ctx context.Context) pokeapi.Result[models.PokemonBasicInfo]
	LookupAll(ctx context.Context, ids []string) []pokeapi.Result[models.PokemonBasicInfo]
}

// PokemonAssignment is the result of a favorite or team mutation.
type PokemonAssignment struct {
	User    *models.User             `json:"user"`
	Pokemon *models.PokemonBasicInfo `json:"pokemon"`
}

// PokemonService manages the favorite pokemon and the team of a user.
type PokemonService struct {
	repo   repositories.UserRepository
	lookup PokemonLookup
	strict bool
	events EventPublisher
	log    zerolog.Logger
}

// PokemonServiceOption configures a PokemonService.
type PokemonServiceOption func(*PokemonService)

// WithStrictLookups makes data source failures surface as
// ErrPokemonServiceUnavailable instead of a not-found error.
func WithStrictLookups(strict bool) PokemonServiceOption {
	return func(s *PokemonService) {
		s.strict = strict
	}
}

// WithPokemonEvents publishes favorite and team changes through pub.
func WithPokemonEvents(pub EventPublisher) PokemonServiceOption {
	return func(s *PokemonService) {
		s.events = pub
	}
}

// WithPokemonLogger sets the service logger.
func WithPokemonLogger(log zerolog.Logger) PokemonServiceOption {
	return func(s *PokemonService) {
		s.log = log
	}
}

// NewPokemonService creates a new PokemonService.
func NewPokemonService(repo repositories.UserRepository, lookup PokemonLookup, opts ...PokemonServiceOption) *PokemonService {
	s := &PokemonService{
		repo:   repo,
		lookup: lookup,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *PokemonService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, translateRepoErr(err)
	}
	return user, nil
}

// unresolved maps a failed lookup to the caller-facing error.
func (s *PokemonService) unresolved(input string, status pokeapi.Status, cause error) error {
	if s.strict && status == pokeapi.StatusTransient {
		return fmt.Errorf("%w: %v", ErrPokemonServiceUnavailable, cause)
	}
	return &PokemonNotFoundError{Input: input}
}

func (s *PokemonService) resolve(ctx context.Context, nameOrID string) (*models.PokemonBasicInfo, error) {
	res := s.lookup.Lookup(ctx, nameOrID)
	if !res.Found() {
		return nil, s.unresolved(nameOrID, res.Status, res.Err)
	}
	return res.Ptr(), nil
}

// teamChange is the state threaded through the ordered team checks.
type teamChange struct {
	user    *models.User
	input   string
	pokemon *models.PokemonBasicInfo
}

// teamStep is one check of a team mutation. Steps run in order and the
// first failure wins.
type teamStep func(ctx context.Context, s *PokemonService, c *teamChange) error

func resolvePokemon(ctx context.Context, s *PokemonService, c *teamChange) error {
	p, err := s.resolve(ctx, c.input)
	if err != nil {
		return err
	}
	c.pokemon = p
	return nil
}

func teamHasRoom(_ context.Context, _ *PokemonService, c *teamChange) error {
	if c.user.PokemonTeam.IsFull() {
		return ErrTeamFull
	}
	return nil
}

func notAlreadyInTeam(_ context.Context, _ *PokemonService, c *teamChange) error {
	if c.user.PokemonTeam.Contains(c.pokemon.Name) {
		return ErrDuplicateInTeam
	}
	return nil
}

func teamNotEmpty(_ context.Context, _ *PokemonService, c *teamChange) error {
	if len(c.user.PokemonTeam) == 0 {
		return ErrTeamEmpty
	}
	return nil
}

var (
	addToTeamSteps      = []teamStep{resolvePokemon, teamHasRoom, notAlreadyInTeam}
	removeFromTeamSteps = []teamStep{teamNotEmpty, resolvePokemon}
)

func (s *PokemonService) runSteps(ctx context.Context, steps []teamStep, c *teamChange) error {
	for _, step := range steps {
		if err := step(ctx, s, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *PokemonService) publishTeam(ctx context.Context, user *models.User) {
	publishEvent(ctx, s.events, s.log, EventTeamUpdated, map[string]interface{}{
		"userId": user.ID,
		"team":   user.PokemonTeam,
	})
}

func (s *PokemonService) publishFavorite(ctx context.Context, user *models.User) {
	publishEvent(ctx, s.events, s.log, EventFavoriteUpdated, map[string]interface{}{
		"userId":  user.ID,
		"pokemon": user.FavoritePokemon,
	})
}

// SetFavorite stores the canonical name of nameOrID as the user's favorite.
func (s *PokemonService) SetFavorite(ctx context.Context, userID, nameOrID string) (res *PokemonAssignment, err error) {
	defer func() { metrics.ObserveTeamMutation("set_favorite", err) }()

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	pokemon, err := s.resolve(ctx, nameOrID)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.UpdateFavoritePokemon(ctx, userID, pokemon.Name)
	if err != nil {
		return nil, fmt.Errorf("error updating favorite pokemon: %w", translateRepoErr(err))
	}
	s.publishFavorite(ctx, user)
	return &PokemonAssignment{User: user, Pokemon: pokemon}, nil
}

// GetFavorite re-resolves the stored favorite against the data source.
// It returns nil when the user does not exist or has no favorite.
func (s *PokemonService) GetFavorite(ctx context.Context, userID string) (*models.PokemonBasicInfo, error) {
	name, err := s.favoriteName(ctx, userID)
	if err != nil || name == "" {
		return nil, err
	}
	res := s.lookup.Lookup(ctx, name)
	if s.strict && res.Status == pokeapi.StatusTransient {
		return nil, fmt.Errorf("%w: %v", ErrPokemonServiceUnavailable, res.Err)
	}
	return res.Ptr(), nil
}

// GetFavoriteDetails is GetFavorite with stats, size and abilities.
func (s *PokemonService) GetFavoriteDetails(ctx context.Context, userID string) (*models.PokemonDetails, error) {
	name, err := s.favoriteName(ctx, userID)
	if err != nil || name == "" {
		return nil, err
	}
	res := s.lookup.LookupDetails(ctx, name)
	if s.strict && res.Status == pokeapi.StatusTransient {
		return nil, fmt.Errorf("%w: %v", ErrPokemonServiceUnavailable, res.Err)
	}
	return res.Ptr(), nil
}

func (s *PokemonService) favoriteName(ctx context.Context, userID string) (string, error) {
	user, err := s.loadUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if !user.HasFavorite() {
		return "", nil
	}
	return *user.FavoritePokemon, nil
}

// AddToTeam appends the canonical name of nameOrID to the user's team.
// Checks run in this order: the pokemon resolves, the team has room, the
// pokemon is not already a member.
func (s *PokemonService) AddToTeam(ctx context.Context, userID, nameOrID string) (res *PokemonAssignment, err error) {
	defer func() { metrics.ObserveTeamMutation("add_to_team", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	change := &teamChange{user: user, input: nameOrID}
	if err := s.runSteps(ctx, addToTeamSteps, change); err != nil {
		return nil, err
	}

	team := append(append(models.Team{}, user.PokemonTeam...), change.pokemon.Name)
	updated, err := s.repo.UpdatePokemonTeam(ctx, userID, team)
	if err != nil {
		return nil, fmt.Errorf("error updating pokemon team: %w", translateRepoErr(err))
	}
	s.publishTeam(ctx, updated)
	return &PokemonAssignment{User: updated, Pokemon: change.pokemon}, nil
}

// RemoveFromTeam drops every occurrence of the canonical name of nameOrID.
// An empty team fails before the identifier is resolved; removing a
// non-member is a no-op.
func (s *PokemonService) RemoveFromTeam(ctx context.Context, userID, nameOrID string) (res *models.User, err error) {
	defer func() { metrics.ObserveTeamMutation("remove_from_team", err) }()

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	change := &teamChange{user: user, input: nameOrID}
	if err := s.runSteps(ctx, removeFromTeamSteps, change); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdatePokemonTeam(ctx, userID, user.PokemonTeam.Without(change.pokemon.Name))
	if err != nil {
		return nil, fmt.Errorf("error updating pokemon team: %w", translateRepoErr(err))
	}
	s.publishTeam(ctx, updated)
	return updated, nil
}

// GetTeam resolves every team member. Members that no longer resolve are
// left out of the result but stay stored.
func (s *PokemonService) GetTeam(ctx context.Context, userID string) ([]models.PokemonBasicInfo, error) {
	user, err := s.loadUser(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return []models.PokemonBasicInfo{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(user.PokemonTeam) == 0 {
		return []models.PokemonBasicInfo{}, nil
	}
	return resolvedOnly(s.lookup.LookupAll(ctx, user.PokemonTeam)), nil
}

// SetTeam replaces the whole team. Every id must resolve; duplicates in ids
// are kept as given.
func (s *PokemonService) SetTeam(ctx context.Context, userID string, ids []string) (res *models.User, err error) {
	defer func() { metrics.ObserveTeamMutation("set_team", err) }()

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	if len(ids) > models.MaxTeamSize {
		return nil, ErrTeamTooLarge
	}

	for _, r := range s.lookup.LookupAll(ctx, ids) {
		if r.Found() {
			continue
		}
		if s.strict && r.Status == pokeapi.StatusTransient {
			return nil, fmt.Errorf("%w: %v", ErrPokemonServiceUnavailable, r.Err)
		}
		return nil, ErrOneOrMorePokemonNotFound
	}

	resolved := resolvedOnly(s.lookup.LookupAll(ctx, ids))
	team := make(models.Team, 0, len(resolved))
	for _, p := range resolved {
		team = append(team, p.Name)
	}
	updated, err := s.repo.UpdatePokemonTeam(ctx, userID, team)
	if err != nil {
		return nil, fmt.Errorf("error updating pokemon team: %w", translateRepoErr(err))
	}
	s.publishTeam(ctx, updated)
	return updated, nil
}

// AssignRandom stores a randomly drawn pokemon as the user's favorite.
func (s *PokemonService) AssignRandom(ctx context.Context, userID string) (res *PokemonAssignment, err error) {
	defer func() { metrics.ObserveTeamMutation("assign_random", err) }()

	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	drawn := s.lookup.LookupRandom(ctx)
	if !drawn.Found() {
		if s.strict && drawn.Status == pokeapi.StatusTransient {
			return nil, fmt.Errorf("%w: %v", ErrPokemonServiceUnavailable, drawn.Err)
		}
		return nil, ErrRandomFetchFailed
	}
	pokemon := drawn.Ptr()
	user, err := s.repo.UpdateFavoritePokemon(ctx, userID, pokemon.Name)
	if err != nil {
		return nil, fmt.Errorf("error updating favorite pokemon: %w", translateRepoErr(err))
	}
	s.publishFavorite(ctx, user)
	return &PokemonAssignment{User: user, Pokemon: pokemon}, nil
}

func resolvedOnly(results []pokeapi.Result[models.PokemonBasicInfo]) []models.PokemonBasicInfo {
	out := make([]models.PokemonBasicInfo, 0, len(results))
	for _, r := range results {
		if r.Found() {
			out = append(out, r.Value)
		}
	}
	return out
}
