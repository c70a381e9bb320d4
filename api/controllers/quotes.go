package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/api/responses"
	"github.com/evdock/evdock-backend/api/validators"
	"github.com/evdock/evdock-backend/internal/quotes"
	"github.com/evdock/evdock-backend/pkg/db/models"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/logger"
)

// ComputeQuote prices a (dealer, vehicle, quantity) request, applying the
// best active promotion, and persists the issued quote.
func ComputeQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quotes.ComputeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.ActorUserID = actor

		quote, err := svc.Compute(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, quote)
	}
}

// GetQuote returns one quote.
func GetQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "quoteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// ListQuotes pages through quotes with optional filters.
func ListQuotes(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := quoteFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), quotes.ListInput{Filters: filters, Pagination: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope{Items: list, NextCursor: next})
	}
}

// AcceptQuote marks an issued quote accepted.
func AcceptQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc.Accept, logg)
}

// RejectQuote marks an issued quote rejected.
func RejectQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc.Reject, logg)
}

// ConvertQuote marks an accepted quote converted into an order.
func ConvertQuote(svc quotes.Service, logg *logger.Logger) http.HandlerFunc {
	return quoteTransition(svc.Convert, logg)
}

func quoteTransition(fn func(ctx context.Context, id uuid.UUID) (*models.Quote, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "quoteID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := fn(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

func quoteFilters(r *http.Request) (quotes.ListFilters, error) {
	var filters quotes.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("dealer_id")); raw != "" {
		dealerID, err := uuid.Parse(raw)
		if err != nil {
			return quotes.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id")
		}
		filters.DealerID = &dealerID
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseQuoteStatus(raw)
		if err != nil {
			return quotes.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}

	return filters, nil
}
