package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/threadline/warehouse-backend/api/middleware"
	"github.com/threadline/warehouse-backend/api/responses"
	"github.com/threadline/warehouse-backend/api/validators"
	"github.com/threadline/warehouse-backend/internal/inventory"
	"github.com/threadline/warehouse-backend/pkg/enums"
	pkgerrors "github.com/threadline/warehouse-backend/pkg/errors"
	"github.com/threadline/warehouse-backend/pkg/logger"
	pkgredis "github.com/threadline/warehouse-backend/pkg/redis"
	"github.com/threadline/warehouse-backend/pkg/types"
)

type movementRequest struct {
	SkuID            string  `json:"sku_id" validate:"required,uuid"`
	Qty              int     `json:"qty" validate:"required,gt=0"`
	Reason           string  `json:"reason" validate:"required"`
	ReferenceID      *string `json:"reference_id,omitempty" validate:"omitempty,uuid"`
	Notes            *string `json:"notes,omitempty"`
	Location         *string `json:"warehouse_location,omitempty"`
	AdjustmentReason *string `json:"adjustment_reason,omitempty"`
}

func (req movementRequest) toInput() (inventory.InwardInput, error) {
	skuID, err := uuid.Parse(req.SkuID)
	if err != nil {
		return inventory.InwardInput{}, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid")
	}
	input := inventory.InwardInput{
		SkuID:             skuID,
		Qty:               req.Qty,
		Reason:            enums.TxnReason(req.Reason),
		Notes:             req.Notes,
		WarehouseLocation: req.Location,
		AdjustmentReason:  req.AdjustmentReason,
	}
	if req.ReferenceID != nil {
		refID, err := uuid.Parse(*req.ReferenceID)
		if err != nil {
			return inventory.InwardInput{}, pkgerrors.New(pkgerrors.CodeBadRequest, "reference_id must be a uuid")
		}
		input.ReferenceID = &refID
	}
	return input, nil
}

func InventoryInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc.Inward, logg)
}

func InventoryOutward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc.Outward, logg)
}

func movementHandler(
	call func(context.Context, types.Actor, inventory.InwardInput) (*inventory.MutationResult, error),
	logg *logger.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req movementRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := call(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type quickInwardRequest struct {
	Items []struct {
		SkuID string `json:"sku_id" validate:"required,uuid"`
		Qty   int    `json:"qty" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
	Reason string  `json:"reason" validate:"required"`
	Notes  *string `json:"notes,omitempty"`
}

func InventoryQuickInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req quickInwardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := inventory.QuickInwardInput{
			Reason: enums.TxnReason(req.Reason),
			Notes:  req.Notes,
			Items:  make([]inventory.QuickInwardItem, 0, len(req.Items)),
		}
		for _, item := range req.Items {
			skuID, err := uuid.Parse(item.SkuID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid"))
				return
			}
			input.Items = append(input.Items, inventory.QuickInwardItem{SkuID: skuID, Qty: item.Qty})
		}

		res, err := svc.QuickInward(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type instantInwardRequest struct {
	SkuID   string  `json:"sku_id" validate:"required,uuid"`
	Qty     int     `json:"qty" validate:"required,gt=0"`
	BatchID *string `json:"batch_id,omitempty" validate:"omitempty,uuid"`
}

func InventoryInstantInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req instantInwardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := uuid.Parse(req.SkuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid"))
			return
		}
		var batchID *uuid.UUID
		if req.BatchID != nil {
			parsed, err := uuid.Parse(*req.BatchID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "batch_id must be a uuid"))
				return
			}
			batchID = &parsed
		}

		res, err := svc.InstantInward(r.Context(), actor, skuID, req.Qty, batchID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type adjustRequest struct {
	SkuID            string  `json:"sku_id" validate:"required,uuid"`
	AdjustedQuantity int     `json:"adjusted_quantity" validate:"required"`
	Notes            *string `json:"notes,omitempty"`
}

func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req adjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := uuid.Parse(req.SkuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid"))
			return
		}

		res, err := svc.Adjust(r.Context(), actor, inventory.AdjustInput{
			SkuID:            skuID,
			AdjustedQuantity: req.AdjustedQuantity,
			Reason:           enums.ReasonAdjustment,
			Notes:            req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type allocateOutwardRequest struct {
	SkuID  string  `json:"sku_id" validate:"required,uuid"`
	Qty    int     `json:"qty" validate:"required,gt=0"`
	Reason *string `json:"reason,omitempty"`
}

func InventoryAllocate(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req allocateOutwardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := uuid.Parse(req.SkuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid"))
			return
		}
		var reason *enums.TxnReason
		if req.Reason != nil {
			parsed := enums.TxnReason(*req.Reason)
			reason = &parsed
		}

		res, err := svc.AllocateTransaction(r.Context(), actor, skuID, req.Qty, reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}

type editTransactionRequest struct {
	Qty   *int    `json:"qty,omitempty" validate:"omitempty,gt=0"`
	Notes *string `json:"notes,omitempty"`
}

func InventoryEditTransaction(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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
		var req editTransactionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.EditInward(r.Context(), actor, txnID, inventory.EditInwardInput{Qty: req.Qty, Notes: req.Notes})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func InventoryDeleteTransaction(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		res, err := svc.DeleteInward(r.Context(), actor, txnID, validators.ParseQueryBool(r, "force"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// AdminDeleteTransaction is the privileged delete with downstream reversal.
func AdminDeleteTransaction(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		res, err := svc.DeleteTransaction(r.Context(), actor, txnID, validators.ParseQueryBool(r, "force"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

type undoInwardRequest struct {
	SkuID string `json:"sku_id" validate:"required,uuid"`
}

func InventoryUndoInward(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		var req undoInwardRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		skuID, err := uuid.Parse(req.SkuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku_id must be a uuid"))
			return
		}

		res, err := svc.UndoInward(r.Context(), actor, skuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

func InventoryUndoTransaction(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
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

		res, err := svc.UndoTransaction(r.Context(), actor, txnID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, res)
	}
}

// InventoryBalance serves the derived balance with a short-lived read-through
// cache. The ledger stays the source of truth; a stale entry only survives
// until the next mutation invalidates it.
func InventoryBalance(svc inventory.Service, cache *pkgredis.Client, ttl time.Duration, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skuID, err := validators.ParseUUIDParam(r, "skuId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cache != nil {
			if cached, cerr := cache.Get(r.Context(), cache.BalanceKey(skuID.String())); cerr == nil && cached != "" {
				var bal inventory.Balance
				if json.Unmarshal([]byte(cached), &bal) == nil {
					responses.WriteSuccess(w, &bal)
					return
				}
			}
		}

		bal, err := svc.GetBalance(r.Context(), skuID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if cache != nil {
			if payload, merr := json.Marshal(bal); merr == nil {
				if serr := cache.Set(r.Context(), cache.BalanceKey(skuID.String()), string(payload), ttl); serr != nil && logg != nil {
					logg.Warn(logg.WithSkuID(r.Context(), skuID.String()), "balance cache write failed")
				}
			}
		}
		responses.WriteSuccess(w, bal)
	}
}

func SkuLookup(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")
		if code == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeBadRequest, "sku code is required"))
			return
		}

		sku, err := svc.GetSkuByCode(r.Context(), code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sku)
	}
}

func InventoryTransactions(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skuID, err := validators.ParseUUIDParam(r, "skuId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListTransactions(r.Context(), skuID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"transactions": rows})
	}
}
