package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/api/middleware"
	"github.com/threadline/warehouse-backend/api/responses"
	"github.com/threadline/warehouse-backend/api/validators"
	"github.com/threadline/warehouse-backend/internal/allocation"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/logger"
)

func TransactionMatches(svc allocation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txnID, err := validators.ParseUUIDParam(r, "txnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matches, err := svc.GetTransactionMatches(r.Context(), txnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, matches)
	}
}

type allocateRequest struct {
	Type         string  `json:"type" validate:"required,oneof=production rto adjustment"`
	AllocationID *string `json:"allocation_id,omitempty" validate:"omitempty,uuid"`
	RTOCondition *string `json:"rto_condition,omitempty" validate:"omitempty,oneof=good unopened damaged wrong_product"`
}

func TransactionAllocate(svc allocation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		txnID, err := validators.ParseUUIDParam(r, "txnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req allocateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		allocationType, err := enums.ParseAllocationType(req.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid allocation type"))
			return
		}

		input := allocation.Input{TransactionID: txnID, Type: allocationType}
		if req.AllocationID != nil {
			parsed, perr := uuid.Parse(*req.AllocationID)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "allocation_id must be a uuid"))
				return
			}
			input.AllocationID = &parsed
		}
		if req.RTOCondition != nil {
			condition, perr := enums.ParseRTOCondition(*req.RTOCondition)
			if perr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeBadRequest, perr, "invalid rto condition"))
				return
			}
			input.RTOCondition = &condition
		}

		res, err := svc.Allocate(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}
