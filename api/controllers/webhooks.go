package controllers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/internal/webhooks"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/shopify"
)

// WebhookOrderCreated acknowledges the delivery as soon as the payload
// decodes; storage and tagging happen detached so the sender never waits on
// downstream calls. Webhook payloads are decoded leniently rather than with
// the strict request validator, since the platform owns the shape.
func WebhookOrderCreated(svc webhooks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer io.Copy(io.Discard, r.Body)

		var payload shopify.Order
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload"))
			return
		}
		if err := svc.HandleOrderCreated(r.Context(), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "accepted"})
	}
}

func WebhookOrderFulfilled(svc webhooks.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer io.Copy(io.Discard, r.Body)

		var event webhooks.FulfilledEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload"))
			return
		}
		if err := svc.HandleOrderFulfilled(r.Context(), event); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}
