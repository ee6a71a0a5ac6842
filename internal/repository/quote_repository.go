package repository

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/avisions/backoffice/internal/model"
)

// Quote submissions are stored as one hash per submission plus a set of
// ids as the index, so individual requests can be deleted without
// rewriting a collection document.
const quoteIndexKey = "devis_submissions"

func quoteKey(id string) string { return "devis:" + id }

// QuoteRepo persists quote-request form submissions.
type QuoteRepo struct {
	store Store
}

func NewQuoteRepo(store Store) *QuoteRepo { return &QuoteRepo{store: store} }

// Add assigns an id and creation timestamp, writes the submission hash and
// indexes it. The populated record is returned for mail templating.
func (r *QuoteRepo) Add(ctx context.Context, q model.QuoteRequest) (model.QuoteRequest, error) {
	q.ID = uuid.NewString()
	q.CreatedAt = nowISO()
	q.Email = normalizeEmail(q.Email)
	q.Name = strings.TrimSpace(q.Name)

	services, err := json.Marshal(q.Services)
	if err != nil {
		return model.QuoteRequest{}, err
	}
	fields := map[string]string{
		"id":          q.ID,
		"eventType":   q.EventType,
		"services":    string(services),
		"eventDate":   q.EventDate,
		"guestCount":  q.GuestCount,
		"location":    q.Location,
		"name":        q.Name,
		"email":       q.Email,
		"phone":       q.Phone,
		"company":     q.Company,
		"description": q.Description,
		"createdAt":   q.CreatedAt,
	}
	if err := r.store.HSet(ctx, quoteKey(q.ID), fields); err != nil {
		return model.QuoteRequest{}, err
	}
	if err := r.store.SAdd(ctx, quoteIndexKey, q.ID); err != nil {
		return model.QuoteRequest{}, err
	}
	return q, nil
}

// List returns every submission, newest first. A dangling index entry
// (hash deleted out of band) is skipped, not an error.
func (r *QuoteRepo) List(ctx context.Context) ([]model.QuoteRequest, error) {
	ids, err := r.store.SMembers(ctx, quoteIndexKey)
	if err != nil {
		return nil, err
	}
	out := make([]model.QuoteRequest, 0, len(ids))
	for _, id := range ids {
		fields, err := r.store.HGetAll(ctx, quoteKey(id))
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		out = append(out, quoteFromFields(fields))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// Remove deletes a submission and its index entry. ErrNotFound when the id
// was never indexed.
func (r *QuoteRepo) Remove(ctx context.Context, id string) error {
	n, err := r.store.SRem(ctx, quoteIndexKey, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	_, err = r.store.Del(ctx, quoteKey(id))
	return err
}

func quoteFromFields(fields map[string]string) model.QuoteRequest {
	q := model.QuoteRequest{
		ID:          fields["id"],
		EventType:   fields["eventType"],
		EventDate:   fields["eventDate"],
		GuestCount:  fields["guestCount"],
		Location:    fields["location"],
		Name:        fields["name"],
		Email:       fields["email"],
		Phone:       fields["phone"],
		Company:     fields["company"],
		Description: fields["description"],
		CreatedAt:   fields["createdAt"],
	}
	if raw := fields["services"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &q.Services); err != nil {
			log.Printf("quotes: bad services field for %s: %v", q.ID, err)
		}
	}
	return q
}
