package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/evdock/evdock-backend/api/controllers"
	"github.com/evdock/evdock-backend/api/middleware"
	"github.com/evdock/evdock-backend/internal/allocations"
	"github.com/evdock/evdock-backend/internal/catalog"
	"github.com/evdock/evdock-backend/internal/dealers"
	"github.com/evdock/evdock-backend/internal/inventory"
	"github.com/evdock/evdock-backend/internal/orders"
	"github.com/evdock/evdock-backend/internal/promotions"
	"github.com/evdock/evdock-backend/internal/quotes"
	"github.com/evdock/evdock-backend/pkg/config"
	"github.com/evdock/evdock-backend/pkg/db"
	"github.com/evdock/evdock-backend/pkg/logger"
	"github.com/evdock/evdock-backend/pkg/redis"
)

// Services bundles the domain services the router mounts. Grouping them
// keeps NewRouter's signature stable as the surface grows.
type Services struct {
	Catalog     catalog.Service
	Dealers     dealers.Service
	Inventory   inventory.Service
	Orders      orders.Service
	Allocations allocations.Service
	Promotions  promotions.Service
	Quotes      quotes.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A typed nil *redis.Client must not reach the interface-valued
	// middleware parameter, or the nil check there never fires.
	var idemStore redis.IdempotencyStore
	var readyCache redis.Pinger
	if redisClient != nil {
		idemStore = redisClient
		readyCache = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, readyCache))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", controllers.ListVehicles(svcs.Catalog, logg))
			r.Post("/", controllers.CreateVehicle(svcs.Catalog, logg))
			r.Get("/{vehicleID}", controllers.GetVehicle(svcs.Catalog, logg))
			r.Patch("/{vehicleID}", controllers.UpdateVehicle(svcs.Catalog, logg))
			r.Delete("/{vehicleID}", controllers.DeleteVehicle(svcs.Catalog, logg))
		})

		r.Route("/dealers", func(r chi.Router) {
			r.Get("/", controllers.ListDealers(svcs.Dealers, logg))
			r.Post("/", controllers.CreateDealer(svcs.Dealers, logg))
			r.Get("/{dealerID}", controllers.GetDealer(svcs.Dealers, logg))
			r.Patch("/{dealerID}", controllers.UpdateDealer(svcs.Dealers, logg))
			r.Delete("/{dealerID}", controllers.DeleteDealer(svcs.Dealers, logg))
		})

		r.Route("/warehouses", func(r chi.Router) {
			r.Get("/", controllers.ListWarehouses(svcs.Inventory, logg))
			r.Post("/", controllers.CreateWarehouse(svcs.Inventory, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(svcs.Inventory, logg))
			r.Post("/", controllers.CreateInventoryItem(svcs.Inventory, logg))
			r.Get("/{itemID}", controllers.GetInventoryItem(svcs.Inventory, logg))
			r.Patch("/{itemID}", controllers.UpdateInventoryItem(svcs.Inventory, logg))
			r.Delete("/{itemID}", controllers.DeleteInventoryItem(svcs.Inventory, logg))
			r.Post("/{itemID}/adjust", controllers.AdjustInventory(svcs.Inventory, logg))
			r.Get("/{itemID}/movements", controllers.ListInventoryMovements(svcs.Inventory, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(svcs.Orders, logg))
			r.Post("/", controllers.CreateOrder(svcs.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(svcs.Orders, logg))
			r.Post("/{orderID}/status", controllers.UpdateOrderStatus(svcs.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(svcs.Orders, logg))
		})

		r.Route("/allocations", func(r chi.Router) {
			r.Get("/", controllers.ListAllocations(svcs.Allocations, logg))
			r.Post("/", controllers.CreateAllocation(svcs.Allocations, logg))
			r.Get("/{allocationID}", controllers.GetAllocation(svcs.Allocations, logg))
			r.Post("/{allocationID}/status", controllers.UpdateAllocationStatus(svcs.Allocations, logg))
		})

		r.Route("/promotions", func(r chi.Router) {
			r.Get("/", controllers.ListPromotions(svcs.Promotions, logg))
			r.Post("/", controllers.CreatePromotion(svcs.Promotions, logg))
			r.Get("/{promotionID}", controllers.GetPromotion(svcs.Promotions, logg))
			r.Patch("/{promotionID}", controllers.UpdatePromotion(svcs.Promotions, logg))
			r.Post("/{promotionID}/activate", controllers.ActivatePromotion(svcs.Promotions, logg))
			r.Post("/{promotionID}/pause", controllers.PausePromotion(svcs.Promotions, logg))
			r.Post("/{promotionID}/archive", controllers.ArchivePromotion(svcs.Promotions, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", controllers.ListQuotes(svcs.Quotes, logg))
			r.Post("/", controllers.ComputeQuote(svcs.Quotes, logg))
			r.Get("/{quoteID}", controllers.GetQuote(svcs.Quotes, logg))
			r.Post("/{quoteID}/accept", controllers.AcceptQuote(svcs.Quotes, logg))
			r.Post("/{quoteID}/reject", controllers.RejectQuote(svcs.Quotes, logg))
			r.Post("/{quoteID}/convert", controllers.ConvertQuote(svcs.Quotes, logg))
		})
	})

	return r
}
