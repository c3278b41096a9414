package controllers

import (
	"bytes"
	"net/http"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/packing"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

// PickingList returns the day's per-product pick counts as JSON.
func PickingList(svc packing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		picks, err := svc.PickingList(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, picks)
	}
}

func exportWorkbook(logg *logger.Logger, prefix string, build func(r *http.Request, day string, buf *bytes.Buffer) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := validators.RequireQuery(r, "day")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var buf bytes.Buffer
		if err := build(r, day, &buf); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteAttachment(w, packing.Filename(prefix, day))
		if _, err := buf.WriteTo(w); err != nil && logg != nil {
			logg.Error(r.Context(), "export write failed", err)
		}
	}
}

// PickingListExport returns the picking list as a spreadsheet attachment.
func PickingListExport(svc packing.Service, logg *logger.Logger) http.HandlerFunc {
	return exportWorkbook(logg, "picking", func(r *http.Request, day string, buf *bytes.Buffer) error {
		return svc.PickingWorkbook(r.Context(), day, buf)
	})
}

// PackingSheetExport returns the packing sheet as a spreadsheet attachment.
func PackingSheetExport(svc packing.Service, logg *logger.Logger) http.HandlerFunc {
	return exportWorkbook(logg, "packing", func(r *http.Request, day string, buf *bytes.Buffer) error {
		return svc.PackingWorkbook(r.Context(), day, buf)
	})
}
