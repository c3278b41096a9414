package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/api/validators"
	"github.com/harvestlane/veggiebox-backend/internal/settings"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
)

func settingKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	return key, nil
}

func SettingsList(repo settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "list settings"))
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func SettingsGet(repo settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := settingKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		setting, err := repo.FindByKey(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "load setting"))
			return
		}
		responses.WriteSuccess(w, setting)
	}
}

func SettingsUpsert(repo settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := settingKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var setting settings.Setting
		if err := validators.DecodeJSONBody(r, &setting); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		setting.Key = key
		stored, err := repo.Upsert(r.Context(), setting)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "store setting"))
			return
		}
		responses.WriteSuccess(w, stored)
	}
}

func SettingsDelete(repo settings.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := settingKey(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.DeleteByKey(r.Context(), key); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "delete setting"))
			return
		}
		responses.WriteSuccess(w, map[string]any{"deleted": key})
	}
}
