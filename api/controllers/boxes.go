package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/boxes"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func parseBoxID(r *http.Request) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "boxId"))
	if raw == "" {
		return primitive.NilObjectID, pkgerrors.New(pkgerrors.CodeValidation, "box id is required")
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid box id")
	}
	return id, nil
}

func BoxesList(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.BoxesForDay(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func BoxesDays(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.DeliveryDays(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, days)
	}
}

type addBoxRequest struct {
	Delivered    string `json:"delivered" validate:"required"`
	ProductTitle string `json:"product_title" validate:"required"`
	SeedFromCore bool   `json:"seed_from_core"`
}

// BoxesAdd creates a box from a platform catalog lookup. A duplicate for the
// same day and product is the soft-rejection path: the existing box comes
// back alongside the 202 error envelope.
func BoxesAdd(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addBoxRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		box, err := svc.AddBox(r.Context(), req.Delivered, req.ProductTitle, req.SeedFromCore)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, box)
	}
}

func BoxesRemove(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseBoxID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.RemoveBox(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id.Hex()})
	}
}

func BoxesRemoveDay(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.RemoveBoxesForDay(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": count})
	}
}

type duplicateBoxesRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

func BoxesDuplicate(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req duplicateBoxesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.DuplicateBoxes(r.Context(), req.From, req.To)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type addProductRequest struct {
	List    string        `json:"list" validate:"required"`
	Product boxes.Product `json:"product" validate:"required"`
}

func BoxesAddProduct(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseBoxID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req addProductRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.AddProduct(r.Context(), id, req.List, req.Product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func BoxesRemoveProduct(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseBoxID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rawProduct := strings.TrimSpace(chi.URLParam(r, "productId"))
		productID, err := primitive.ObjectIDFromHex(rawProduct)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		list := strings.TrimSpace(r.URL.Query().Get("list"))
		if list == "" {
			list = boxes.ListIncluded
		}
		if err := svc.RemoveProduct(r.Context(), id, list, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": productID.Hex()})
	}
}

type toggleBoxesRequest struct {
	BoxID     string `json:"box_id"`
	Delivered string `json:"delivered"`
	Active    *bool  `json:"active" validate:"required"`
}

func BoxesToggle(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req toggleBoxesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var boxID *primitive.ObjectID
		if req.BoxID != "" {
			id, err := primitive.ObjectIDFromHex(req.BoxID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid box id"))
				return
			}
			boxID = &id
		}
		result, err := svc.ToggleActive(r.Context(), boxID, req.Delivered, *req.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type coreBoxRequest struct {
	ProductTitle string `json:"product_title" validate:"required"`
}

func BoxesCore(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		box, err := svc.CoreBox(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, box)
	}
}

func BoxesCreateCore(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req coreBoxRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		box, err := svc.CreateCoreBox(r.Context(), req.ProductTitle)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, box)
	}
}

func BoxesDeleteCore(svc boxes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteCoreBox(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": true})
	}
}
