// Package profile holds the team roster: who the tracked users are, what
// role each one plays, and which context flags are attached to them.
//
// Conventions:
// - Provide New(...Option) initializers that apply defaults first.
// - External errors must be wrapped with this package's sentinels.
package profile

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/cadence/internal/domain/model"
)

// Default roster configuration constants.
const (
	defaultGraceWeeks = 2

	dateLayout = "2006-01-02"
)

// RoleSource resolves a user's role for weight selection.
type RoleSource interface {
	RoleFor(userID string) (string, error)
}

// FlagSource resolves the context flags attached to a user.
type FlagSource interface {
	FlagsFor(userID string) []model.ContextFlag
}

// User is one roster entry.
type User struct {
	ID    string
	Role  string
	Flags []model.ContextFlag
}

// Roster is an in-memory user registry implementing RoleSource and
// FlagSource. It is safe for concurrent reads and flag updates.
type Roster struct {
	mu         sync.RWMutex
	users      map[string]*User
	graceWeeks int
}

// rosterFile mirrors the YAML roster document. Date fields are untyped
// because the yaml parser decodes bare dates (from: 2025-03-03) as
// time.Time and quoted ones as strings; a missing until leaves the flag
// open-ended.
type rosterFile struct {
	Users []struct {
		ID    string `koanf:"id"`
		Role  string `koanf:"role"`
		Flags []struct {
			Kind  string `koanf:"kind"`
			From  any    `koanf:"from"`
			Until any    `koanf:"until"`
		} `koanf:"flags"`
	} `koanf:"users"`
}

// NewRoster creates an empty roster.
func NewRoster(opts ...Option) *Roster {
	r := &Roster{
		users:      make(map[string]*User),
		graceWeeks: defaultGraceWeeks,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// LoadRoster reads a YAML roster file. Role-change flags without an until
// date are closed after the configured grace period so suppression ends
// when the settling-in window does.
func LoadRoster(path string, opts ...Option) (*Roster, error) {
	r := NewRoster(opts...)

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadRoster, path, err)
	}

	var doc rosterFile
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadRoster, path, err)
	}

	for _, u := range doc.Users {
		if u.ID == "" {
			return nil, fmt.Errorf("%w: %s: user entry without id", ErrLoadRoster, path)
		}
		user := &User{ID: u.ID, Role: u.Role}
		for _, f := range u.Flags {
			flag, err := r.parseFlag(f.Kind, f.From, f.Until)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: user %s: %v", ErrLoadRoster, path, u.ID, err)
			}
			user.Flags = append(user.Flags, flag)
		}
		r.users[user.ID] = user
	}

	return r, nil
}

func (r *Roster) parseFlag(kind string, from, until any) (model.ContextFlag, error) {
	flag := model.ContextFlag{Kind: model.FlagKind(kind)}

	switch flag.Kind {
	case model.FlagPTO, model.FlagOnboarding, model.FlagRoleChange, model.FlagOnCall:
	default:
		return model.ContextFlag{}, fmt.Errorf("unknown flag kind %q", kind)
	}

	t, ok, err := parseDate(from)
	if err != nil {
		return model.ContextFlag{}, fmt.Errorf("flag %q from date: %v", kind, err)
	}
	if !ok {
		return model.ContextFlag{}, fmt.Errorf("flag %q has no from date", kind)
	}
	flag.From = t

	t, ok, err = parseDate(until)
	if err != nil {
		return model.ContextFlag{}, fmt.Errorf("flag %q until date: %v", kind, err)
	}
	switch {
	case ok:
		flag.Until = t
	case flag.Kind == model.FlagRoleChange:
		flag.Until = flag.From.AddDate(0, 0, r.graceWeeks*model.DaysPerWeek)
	}

	return flag, nil
}

// parseDate normalizes a roster date value to UTC midnight. The bool is
// false when the value is absent.
func parseDate(v any) (time.Time, bool, error) {
	switch d := v.(type) {
	case nil:
		return time.Time{}, false, nil
	case time.Time:
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC), true, nil
	case string:
		if d == "" {
			return time.Time{}, false, nil
		}
		t, err := time.ParseInLocation(dateLayout, d, time.UTC)
		if err != nil {
			return time.Time{}, false, err
		}
		return t, true, nil
	default:
		return time.Time{}, false, fmt.Errorf("unsupported date value %v", v)
	}
}

// Add registers or replaces a roster entry.
func (r *Roster) Add(user User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := user
	r.users[u.ID] = &u
}

// AddFlag attaches a context flag to an existing user.
func (r *Roster) AddFlag(userID string, flag model.ContextFlag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	u.Flags = append(u.Flags, flag)
	return nil
}

// RoleFor returns the user's role.
func (r *Roster) RoleFor(userID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	return u.Role, nil
}

// FlagsFor returns a copy of the user's context flags. Unknown users have
// no flags.
func (r *Roster) FlagsFor(userID string) []model.ContextFlag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok || len(u.Flags) == 0 {
		return nil
	}
	out := make([]model.ContextFlag, len(u.Flags))
	copy(out, u.Flags)
	return out
}

// Users returns all roster ids in stable order.
func (r *Roster) Users() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
