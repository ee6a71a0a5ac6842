package repository

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avisions/backoffice/internal/model"
	"github.com/avisions/backoffice/internal/utils"
)

// usersKey is the single document holding every back-office account.
const usersKey = "av:admin:users"

// UserRepo persists user records as one JSON blob in the KV store. Every
// mutation is a full read-modify-write of the collection: concurrent
// writers race and the last one wins. The collection is edited by a
// handful of human operators, so this is treated as a single-writer
// assumption rather than guarded with optimistic locking.
type UserRepo struct {
	store Store
}

// NewUserRepo returns a repo over the given store (Redis or in-memory).
func NewUserRepo(store Store) *UserRepo { return &UserRepo{store: store} }

func (r *UserRepo) load(ctx context.Context) ([]model.User, error) {
	raw, err := r.store.Get(ctx, usersKey)
	if err == ErrKeyMissing {
		return []model.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw) == "" {
		return []model.User{}, nil
	}
	var users []model.User
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		// A corrupt blob is unrecoverable data, not a transient failure;
		// log it and treat the collection as empty.
		log.Printf("users: corrupt collection blob: %v", err)
		return []model.User{}, nil
	}
	return users, nil
}

func (r *UserRepo) save(ctx context.Context, users []model.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, usersKey, string(raw))
}

// List returns the public projection of every user. Credential fields
// never leave this package.
func (r *UserRepo) List(ctx context.Context) ([]model.PublicUser, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.PublicUser, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out, nil
}

// Count reports how many users exist. It never returns an error: when the
// backing store is unreachable it logs and resolves to zero, which reopens
// the bootstrap path. A store outage on an initialized system therefore
// temporarily looks like a fresh install.
func (r *UserRepo) Count(ctx context.Context) int {
	users, err := r.load(ctx)
	if err != nil {
		log.Printf("users: count failed, treating store as empty: %v", err)
		return 0
	}
	return len(users)
}

// FindByEmail looks a user up case-insensitively. Returns (nil, nil) when
// no user matches; the caller decides whether absence is an error.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	e := normalizeEmail(email)
	for i := range users {
		if normalizeEmail(users[i].Email) == e {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetByID returns the full record for id, or (nil, nil) when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Create validates email uniqueness against the live collection, derives a
// fresh salt and hash, and persists the new user at the head of the list.
// Nothing is written when uniqueness fails.
func (r *UserRepo) Create(ctx context.Context, name, email string, role model.Role, password string, active bool) (model.PublicUser, error) {
	users, err := r.load(ctx)
	if err != nil {
		return model.PublicUser{}, err
	}
	e := normalizeEmail(email)
	for _, u := range users {
		if normalizeEmail(u.Email) == e {
			return model.PublicUser{}, ErrEmailExists
		}
	}
	salt, err := utils.NewSalt()
	if err != nil {
		return model.PublicUser{}, err
	}
	now := nowISO()
	user := model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        e,
		Role:         role,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: utils.HashPassword(password, salt),
		PasswordSalt: salt,
	}
	next := append([]model.User{user}, users...)
	if err := r.save(ctx, next); err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// Update applies a partial patch. An email change re-validates uniqueness
// against everyone but the user itself; a password change regenerates the
// salt so a hash is never recomputed over a reused salt. UpdatedAt is
// always refreshed.
func (r *UserRepo) Update(ctx context.Context, id string, patch model.UserPatch) (model.PublicUser, error) {
	users, err := r.load(ctx)
	if err != nil {
		return model.PublicUser{}, err
	}
	idx := -1
	for i := range users {
		if users[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return model.PublicUser{}, ErrUserNotFound
	}
	u := users[idx]

	if patch.Email != nil && strings.TrimSpace(*patch.Email) != "" {
		e := normalizeEmail(*patch.Email)
		if e != normalizeEmail(u.Email) {
			for _, other := range users {
				if normalizeEmail(other.Email) == e {
					return model.PublicUser{}, ErrEmailExists
				}
			}
		}
		u.Email = e
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		u.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Role != nil && model.ValidRole(*patch.Role) {
		u.Role = *patch.Role
	}
	if patch.Active != nil {
		u.Active = *patch.Active
	}
	if patch.Password != nil && *patch.Password != "" {
		salt, err := utils.NewSalt()
		if err != nil {
			return model.PublicUser{}, err
		}
		u.PasswordSalt = salt
		u.PasswordHash = utils.HashPassword(*patch.Password, salt)
	}
	u.UpdatedAt = nowISO()

	users[idx] = u
	if err := r.save(ctx, users); err != nil {
		return model.PublicUser{}, err
	}
	return u.Public(), nil
}

// Remove deletes a user by id. A missing id is reported as
// ErrUserNotFound, never as a silent success.
func (r *UserRepo) Remove(ctx context.Context, id string) error {
	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	next := users[:0:0]
	for _, u := range users {
		if u.ID != id {
			next = append(next, u)
		}
	}
	if len(next) == len(users) {
		return ErrUserNotFound
	}
	return r.save(ctx, next)
}

// VerifyPassword recomputes the stored hash for the given credentials and
// returns the full record on a match, nil otherwise. Callers still have to
// check Active before treating the user as authenticated.
func (r *UserRepo) VerifyPassword(ctx context.Context, email, password string) (*model.User, error) {
	u, err := r.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	if !utils.CheckPassword(password, u.PasswordSalt, u.PasswordHash) {
		return nil, nil
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nowISO() string {
	return time.Now().UTC().Format(time.RFC3339)
}
