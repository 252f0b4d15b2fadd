package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Team is the ordered list of canonical pokemon names of a user.
// It is stored as a comma separated text column.
type Team []string

// Value implements driver.Valuer.
func (t Team) Value() (driver.Value, error) {
	return strings.Join(t, ","), nil
}

// Scan implements sql.Scanner.
func (t *Team) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*t = Team{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Team", src)
	}
	if raw == "" {
		*t = Team{}
		return nil
	}
	*t = strings.Split(raw, ",")
	return nil
}

// MarshalJSON renders an empty team as [] instead of null.
func (t Team) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// Contains reports whether name is a member of the team.
func (t Team) Contains(name string) bool {
	for _, member := range t {
		if member == name {
			return true
		}
	}
	return false
}

// Without returns a copy of the team with every occurrence of name removed.
func (t Team) Without(name string) Team {
	out := make(Team, 0, len(t))
	for _, member := range t {
		if member != name {
			out = append(out, member)
		}
	}
	return out
}

// IsFull reports whether no more members can be added.
func (t Team) IsFull() bool {
	return len(t) >= MaxTeamSize
}
