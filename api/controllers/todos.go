package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/todos"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func parseTodoID(r *http.Request) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "todoId"))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid todo id")
	}
	return id, nil
}

func TodosList(repo todos.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := strings.TrimSpace(r.URL.Query().Get("day"))
		list, err := repo.List(r.Context(), day)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list todos"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

type createTodoRequest struct {
	Text      string `json:"text" validate:"required"`
	Delivered string `json:"delivered"`
}

func TodosCreate(repo todos.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTodoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		stored, err := repo.Insert(r.Context(), todos.Todo{Text: req.Text, Delivered: req.Delivered})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store todo"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, stored)
	}
}

type updateTodoRequest struct {
	Done *bool `json:"done" validate:"required"`
}

func TodosSetDone(repo todos.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseTodoID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req updateTodoRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.SetDone(r.Context(), id, *req.Done); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "todo not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "update todo"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"updated": id.Hex(), "done": *req.Done})
	}
}

func TodosDelete(repo todos.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseTodoID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.DeleteByID(r.Context(), id); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "todo not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete todo"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": id.Hex()})
	}
}
