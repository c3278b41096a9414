package controllers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/orders"
	"github.com/harvestlane/veggiebox-backend/internal/packing"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func parseOrderID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

// OrdersList returns the orders for one delivery day, optionally filtered by
// import source.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sources := validators.QueryList(r, "sources")

		list, err := svc.ListByDay(r.Context(), day, sources)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func OrdersDays(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.Days(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, days)
	}
}

// OrdersDetail looks up one order. A missing order is a success with null
// data, not an error.
func OrdersDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersCreate(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var order orders.Order
		if err := validators.DecodeJSONBody(r, &order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), order)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func OrdersEdit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var order orders.Order
		if err := validators.DecodeJSONBody(r, &order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order.ID = id
		if err := svc.Edit(r.Context(), order); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func OrdersDelete(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderNumber := strings.TrimSpace(r.URL.Query().Get("order_number"))
		if err := svc.Delete(r.Context(), id, orderNumber); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id})
	}
}

type reassignDayRequest struct {
	IDs       []int64 `json:"ids" validate:"required,min=1"`
	Delivered string  `json:"delivered" validate:"required"`
}

func OrdersReassignDay(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req reassignDayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.ReassignDay(r.Context(), req.IDs, req.Delivered)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": updated, "delivered": req.Delivered})
	}
}

// OrdersSearch proxies the platform's order search.
func OrdersSearch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := validators.RequireQuery(r, "query")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		results, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, results)
	}
}

// OrdersSearchDetail proxies the platform's order lookup by global id.
func OrdersSearchDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gid, err := validators.RequireQuery(r, "gid")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.SearchDetail(r.Context(), gid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// OrdersImport accepts a CSV or spreadsheet upload for one delivery day.
// Any other upload type is rejected before the body is parsed.
func OrdersImport(svc orders.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		file, format, err := validators.OpenUpload(r, "file", maxUploadBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		var result *orders.ImportResult
		switch format {
		case validators.FormatCSV:
			result, err = svc.ImportCSV(r.Context(), file, day)
		default:
			result, err = svc.ImportXLSX(r.Context(), file, day)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// OrdersExport returns the day's orders as a spreadsheet attachment. The
// workbook is rendered in full before any byte is written, so failures still
// produce a JSON error response.
func OrdersExport(svc packing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := svc.OrdersWorkbook(r.Context(), day, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, packing.Filename("orders", day))
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "orders export write failed", err)
		}
	}
}
