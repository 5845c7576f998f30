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

type rtoReceiveRequest struct {
	Condition string  `json:"condition" validate:"required,oneof=good unopened damaged wrong_product"`
	Notes     *string `json:"notes,omitempty"`
}

// RTOReceiveLine books a returned order line back into stock.
func RTOReceiveLine(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := middleware.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		lineID, err := validators.ParseUUIDParam(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req rtoReceiveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		condition, err := enums.ParseRTOCondition(req.Condition)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeBadRequest, err, "invalid rto condition"))
			return
		}

		res, err := svc.RTOInwardLine(r.Context(), actor, lineID, condition, req.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, res)
	}
}
