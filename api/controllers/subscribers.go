package controllers

import (
	"net/http"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/subscribers"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func SubscribersList(repo subscribers.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list subscribers"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

func SubscribersCreate(repo subscribers.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req subscribeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		existing, err := repo.FindByEmail(r.Context(), req.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "check subscriber"))
			return
		}
		if existing != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDuplicate, "email already subscribed"))
			return
		}

		stored, err := repo.Insert(r.Context(), subscribers.Subscriber{Email: req.Email, Name: req.Name})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store subscriber"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, stored)
	}
}

func SubscribersDelete(repo subscribers.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email, err := validators.RequireQuery(r, "email")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.DeleteByEmail(r.Context(), email); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete subscriber"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": email})
	}
}
