package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/harvestlane/veggiebox-backend/api/controllers"
	"github.com/harvestlane/veggiebox-backend/api/middleware"
	"github.com/harvestlane/veggiebox-backend/internal/boxes"
	"github.com/harvestlane/veggiebox-backend/internal/orders"
	"github.com/harvestlane/veggiebox-backend/internal/packing"
	"github.com/harvestlane/veggiebox-backend/internal/settings"
	"github.com/harvestlane/veggiebox-backend/internal/subscribers"
	"github.com/harvestlane/veggiebox-backend/internal/todos"
	"github.com/harvestlane/veggiebox-backend/internal/webhooks"
	"github.com/harvestlane/veggiebox-backend/pkg/config"
	"github.com/harvestlane/veggiebox-backend/pkg/logger"
	"github.com/harvestlane/veggiebox-backend/pkg/metrics"
	"github.com/harvestlane/veggiebox-backend/pkg/mongo"
	"github.com/harvestlane/veggiebox-backend/pkg/redis"
)

// Deps carries everything the route table wires into handlers.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	Store           mongo.Pinger
	Dedupe          redis.Pinger
	HTTPMetrics     *metrics.HTTP
	MetricsRegistry *prometheus.Registry

	Orders      orders.Service
	Boxes       boxes.Service
	Packing     packing.Service
	Webhooks    webhooks.Service
	Settings    settings.Repository
	Subscribers subscribers.Repository
	Todos       todos.Repository
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

	maxUploadBytes := int64(cfg.Import.MaxUploadMB) << 20

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Store, deps.Dedupe))
	})

	if deps.MetricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/webhooks/orders", func(r chi.Router) {
		r.Post("/created", controllers.WebhookOrderCreated(deps.Webhooks, logg))
		r.Post("/fulfilled", controllers.WebhookOrderFulfilled(deps.Webhooks, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.Orders, logg))
			r.Post("/", controllers.OrdersCreate(deps.Orders, logg))
			r.Get("/days", controllers.OrdersDays(deps.Orders, logg))
			r.Get("/search", controllers.OrdersSearch(deps.Orders, logg))
			r.Get("/search/detail", controllers.OrdersSearchDetail(deps.Orders, logg))
			r.Post("/import", controllers.OrdersImport(deps.Orders, maxUploadBytes, logg))
			r.Get("/export", controllers.OrdersExport(deps.Packing, logg))
			r.Post("/reassign-day", controllers.OrdersReassignDay(deps.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersDetail(deps.Orders, logg))
			r.Put("/{orderId}", controllers.OrdersEdit(deps.Orders, logg))
			r.Delete("/{orderId}", controllers.OrdersDelete(deps.Orders, logg))
		})

		r.Route("/boxes", func(r chi.Router) {
			r.Get("/", controllers.BoxesList(deps.Boxes, logg))
			r.Post("/", controllers.BoxesAdd(deps.Boxes, logg))
			r.Delete("/", controllers.BoxesRemoveDay(deps.Boxes, logg))
			r.Get("/days", controllers.BoxesDays(deps.Boxes, logg))
			r.Post("/duplicate", controllers.BoxesDuplicate(deps.Boxes, logg))
			r.Post("/toggle", controllers.BoxesToggle(deps.Boxes, logg))
			r.Get("/core", controllers.BoxesCore(deps.Boxes, logg))
			r.Post("/core", controllers.BoxesCreateCore(deps.Boxes, logg))
			r.Delete("/core", controllers.BoxesDeleteCore(deps.Boxes, logg))
			r.Delete("/{boxId}", controllers.BoxesRemove(deps.Boxes, logg))
			r.Post("/{boxId}/products", controllers.BoxesAddProduct(deps.Boxes, logg))
			r.Delete("/{boxId}/products/{productId}", controllers.BoxesRemoveProduct(deps.Boxes, logg))
		})

		r.Route("/packing", func(r chi.Router) {
			r.Get("/picking-list", controllers.PickingList(deps.Packing, logg))
			r.Get("/picking-list/export", controllers.PickingListExport(deps.Packing, logg))
			r.Get("/packing-sheet/export", controllers.PackingSheetExport(deps.Packing, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.SettingsList(deps.Settings, logg))
			r.Get("/{key}", controllers.SettingsGet(deps.Settings, logg))
			r.Put("/{key}", controllers.SettingsUpsert(deps.Settings, logg))
			r.Delete("/{key}", controllers.SettingsDelete(deps.Settings, logg))
		})

		r.Route("/subscribers", func(r chi.Router) {
			r.Get("/", controllers.SubscribersList(deps.Subscribers, logg))
			r.Post("/", controllers.SubscribersCreate(deps.Subscribers, logg))
			r.Delete("/", controllers.SubscribersDelete(deps.Subscribers, logg))
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", controllers.TodosList(deps.Todos, logg))
			r.Post("/", controllers.TodosCreate(deps.Todos, logg))
			r.Patch("/{todoId}", controllers.TodosSetDone(deps.Todos, logg))
			r.Delete("/{todoId}", controllers.TodosDelete(deps.Todos, logg))
		})
	})

	return r
}
