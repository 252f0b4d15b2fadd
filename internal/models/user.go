package models

import "time"

// MaxTeamSize is the largest number of pokemon a user may keep in a team.
const MaxTeamSize = 6

// User represents an account that can track a favorite pokemon and a team.
type User struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email           string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Name            string    `json:"name" gorm:"type:varchar(255);not null"`
	Password        string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	IsActive        bool      `json:"isActive" gorm:"not null;default:true"`
	FavoritePokemon *string   `json:"favoritePokemon" gorm:"type:varchar(255)"`
	PokemonTeam     Team      `json:"pokemonTeam" gorm:"type:text"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TableName pins the table name shared with the SQL migrations.
func (User) TableName() string {
	return "users"
}

// HasFavorite reports whether a favorite pokemon is stored for the user.
func (u *User) HasFavorite() bool {
	return u.FavoritePokemon != nil && *u.FavoritePokemon != ""
}

// UserStats aggregates account counters.
type UserStats struct {
	Total               int64 `json:"total"`
	Active              int64 `json:"active"`
	Inactive            int64 `json:"inactive"`
	WithFavoritePokemon int64 `json:"withFavoritePokemon"`
	WithTeam            int64 `json:"withTeam"`
}

// UserPage is one offset/limit slice of the user list.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	TotalPages int    `json:"totalPages"`
}
