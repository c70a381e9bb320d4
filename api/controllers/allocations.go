package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/evdock/evdock-backend/api/responses"
	"github.com/evdock/evdock-backend/api/validators"
	"github.com/evdock/evdock-backend/internal/allocations"
	"github.com/evdock/evdock-backend/pkg/enums"
	pkgerrors "github.com/evdock/evdock-backend/pkg/errors"
	"github.com/evdock/evdock-backend/pkg/logger"
)

// CreateAllocation runs the allocation saga for an order: stock is reduced
// first and the allocation row committed second, with compensation on failure.
func CreateAllocation(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload allocations.AllocateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.ActorUserID = actor

		allocation, err := svc.Allocate(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, allocation)
	}
}

// GetAllocation returns one allocation.
func GetAllocation(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "allocationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allocation, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, allocation)
	}
}

// ListAllocations pages through allocations with optional filters.
func ListAllocations(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := allocationFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, next, err := svc.List(r.Context(), allocations.ListInput{Filters: filters, Pagination: params})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, listEnvelope{Items: list, NextCursor: next})
	}
}

// UpdateAllocationStatus ships or delivers a committed allocation. The
// backing order is driven to the matching state.
func UpdateAllocationStatus(svc allocations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "allocationID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload allocations.UpdateStatusInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payload.AllocationID = id
		payload.ActorUserID = actor

		allocation, err := svc.UpdateStatus(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, allocation)
	}
}

func allocationFilters(r *http.Request) (allocations.ListFilters, error) {
	var filters allocations.ListFilters
	query := r.URL.Query()

	if raw := strings.TrimSpace(query.Get("order_id")); raw != "" {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			return allocations.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order_id")
		}
		filters.OrderID = &orderID
	}
	if raw := strings.TrimSpace(query.Get("dealer_id")); raw != "" {
		dealerID, err := uuid.Parse(raw)
		if err != nil {
			return allocations.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id")
		}
		filters.DealerID = &dealerID
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := enums.ParseAllocationStatus(raw)
		if err != nil {
			return allocations.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		filters.Status = &status
	}

	return filters, nil
}
