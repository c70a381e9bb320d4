package controllers

import (
	"net/http"
	"strings"

	"github.com/evdock/evdock-backend/api/responses"
	"github.com/evdock/evdock-backend/api/validators"
	"github.com/evdock/evdock-backend/internal/dealers"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/logger"
)

// CreateDealer registers a dealership.
func CreateDealer(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload dealers.CreateDealerInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.Create(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dealer)
	}
}

// GetDealer returns one dealership record.
func GetDealer(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "dealerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dealer)
	}
}

// ListDealers pages through the dealer network with optional filters.
func ListDealers(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := dealerFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), dealers.ListInput{Filters: filters, Pagination: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope{Items: list, NextCursor: next})
	}
}

// UpdateDealer applies a partial update to a dealership.
func UpdateDealer(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "dealerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload dealers.UpdateDealerInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dealer)
	}
}

// DeleteDealer removes a dealership record.
func DeleteDealer(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "dealerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func dealerFilters(r *http.Request) (dealers.ListFilters, error) {
	var filters dealers.ListFilters
	query := r.URL.Query()

	if region := strings.TrimSpace(query.Get("region")); region != "" {
		filters.Region = &region
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseDealerStatus(raw)
		if err != nil {
			return dealers.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(query.Get("tier")); raw != "" {
		tier, err := enums.ParseDealerTier(raw)
		if err != nil {
			return dealers.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier")
		}
		filters.Tier = &tier
	}

	return filters, nil
}
