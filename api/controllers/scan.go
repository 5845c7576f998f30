package controllers

import (
	"net/http"

	"github.com/threadline/warehouse-backend/api/middleware"
	"github.com/threadline/warehouse-backend/api/responses"
	"github.com/threadline/warehouse-backend/api/validators"
	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/logger"
)

type instantScanRequest struct {
	SkuCode string `json:"sku_code" validate:"required,min=1"`
}

// ScanInstantInward is the one-tap barcode path: qty 1, unallocated receipt.
func ScanInstantInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req instantScanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.InstantInwardBySkuCode(r.Context(), actor, req.SkuCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type quickScanRequest struct {
	SkuCode string  `json:"sku_code" validate:"required,min=1"`
	Qty     int     `json:"qty" validate:"required,gt=0"`
	Reason  *string `json:"reason,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

func ScanQuickInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req quickScanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reason := enums.ReasonReceived
		if req.Reason != nil && *req.Reason != "" {
			reason = enums.TxnReason(*req.Reason)
		}

		res, err := svc.QuickInwardBySkuCode(r.Context(), actor, req.SkuCode, req.Qty, reason, req.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}
