package repository

import (
	"context"
	"sort"
	"strings"
)

// subscribersKey is the set of newsletter subscriber emails. A set rather
// than a blob: subscriptions arrive from the public site one at a time and
// must be duplicate-free without a read-modify-write cycle.
const subscribersKey = "newsletter_subscribers"

// NewsletterRepo manages the subscriber set.
type NewsletterRepo struct {
	store Store
}

func NewNewsletterRepo(store Store) *NewsletterRepo { return &NewsletterRepo{store: store} }

// Subscribe adds a normalized email. Adding an existing subscriber is a
// no-op by set semantics.
func (r *NewsletterRepo) Subscribe(ctx context.Context, email string) error {
	return r.store.SAdd(ctx, subscribersKey, normalizeEmail(email))
}

// List returns all subscribers sorted for stable admin output.
func (r *NewsletterRepo) List(ctx context.Context) ([]string, error) {
	members, err := r.store.SMembers(ctx, subscribersKey)
	if err != nil {
		return nil, err
	}
	sort.Strings(members)
	return members, nil
}

// Remove deletes a subscriber, reporting ErrNotFound when the email was
// not subscribed.
func (r *NewsletterRepo) Remove(ctx context.Context, email string) error {
	n, err := r.store.SRem(ctx, subscribersKey, strings.TrimSpace(email))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Update replaces oldEmail with newEmail (normalized). Used by the admin
// manager to fix typos without losing the subscription.
func (r *NewsletterRepo) Update(ctx context.Context, oldEmail, newEmail string) error {
	n, err := r.store.SRem(ctx, subscribersKey, strings.TrimSpace(oldEmail))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return r.store.SAdd(ctx, subscribersKey, normalizeEmail(newEmail))
}
