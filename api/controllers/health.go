package controllers

import (
	"net/http"

	"github.com/harvestlane/veggiebox-backend/api/responses"
	"github.com/harvestlane/veggiebox-backend/pkg/config"
	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/mongo"
	"github.com/harvestlane/veggiebox-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VeggieBox-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores. Redis is optional infrastructure;
// its status is reported but does not fail readiness.
func HealthReady(cfg *config.Config, logg *logger.Logger, store mongo.Pinger, dedupe redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-VeggieBox-Env", cfg.App.Env)

		status := map[string]string{"status": "ready", "mongo": "ok", "redis": "ok"}

		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "document store unavailable"))
			return
		}
		if err := store.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "document store unreachable"))
			return
		}

		if dedupe == nil {
			status["redis"] = "absent"
		} else if err := dedupe.Ping(r.Context()); err != nil {
			status["redis"] = "unreachable"
			if logg != nil {
				logg.Warn(r.Context(), "redis unreachable during readiness check")
			}
		}

		responses.WriteSuccess(w, status)
	}
}
