package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avisions/backoffice/internal/repository"
)

func newNewsletterFixture() *NewsletterHandler {
	return NewNewsletterHandler(repository.NewNewsletterRepo(repository.NewMemoryStore()))
}

func TestSubscribeValidation(t *testing.T) {
	t.Parallel()
	h := newNewsletterFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/newsletter", `{"email":"not-an-email"}`, "")
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = jsonCtx(t, http.MethodPost, "/v1/newsletter", `{"email":""}`, "")
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscribeThenList(t *testing.T) {
	t.Parallel()
	h := newNewsletterFixture()

	c, rec := jsonCtx(t, http.MethodPost, "/v1/newsletter", `{"email":"Fan@Example.com"}`, "")
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	// Duplicate subscription is absorbed, not an error.
	c, rec = jsonCtx(t, http.MethodPost, "/v1/newsletter", `{"email":"fan@example.com"}`, "")
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = jsonCtx(t, http.MethodGet, "/v1/admin/newsletter", "", "")
	require.NoError(t, h.List(c))
	require.JSONEq(t, `{"subscribers":["fan@example.com"]}`, rec.Body.String())
}

func TestUnsubscribeNotFound(t *testing.T) {
	t.Parallel()
	h := newNewsletterFixture()

	c, rec := jsonCtx(t, http.MethodDelete, "/v1/admin/newsletter", `{"email":"ghost@x.com"}`, "")
	require.NoError(t, h.Unsubscribe(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSubscriber(t *testing.T) {
	t.Parallel()
	h := newNewsletterFixture()
	require.NoError(t, h.Subscribers.Subscribe(context.Background(), "old@x.com"))

	c, rec := jsonCtx(t, http.MethodPatch, "/v1/admin/newsletter",
		`{"oldEmail":"old@x.com","newEmail":"new@x.com"}`, "")
	require.NoError(t, h.Update(c))
	require.Equal(t, http.StatusOK, rec.Code)

	subscribers, err := h.Subscribers.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"new@x.com"}, subscribers)
}
