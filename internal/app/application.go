// Package app wires the travel platform's services together and manages
// their lifecycle.
package app

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/nekoneko-space/travel-platform/internal/app/services/agents"
	bookingsvc "github.com/nekoneko-space/travel-platform/internal/app/services/bookings"
	paymentsvc "github.com/nekoneko-space/travel-platform/internal/app/services/payments"
	routesvc "github.com/nekoneko-space/travel-platform/internal/app/services/routes"
	safetysvc "github.com/nekoneko-space/travel-platform/internal/app/services/safety"
	usersvc "github.com/nekoneko-space/travel-platform/internal/app/services/users"
	weathersvc "github.com/nekoneko-space/travel-platform/internal/app/services/weather"
	"github.com/nekoneko-space/travel-platform/internal/app/storage"
	"github.com/nekoneko-space/travel-platform/internal/app/storage/memory"
	"github.com/nekoneko-space/travel-platform/internal/app/system"
	"github.com/nekoneko-space/travel-platform/internal/config"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users    storage.UserStore
	Bookings storage.BookingStore
	Training storage.TrainingStore
	Health   storage.HealthStore
	Payments storage.PaymentStore
}

// Application ties domain services together and manages their lifecycle.
type Application struct {
	manager *system.Manager
	log     *logger.Logger

	Users    *usersvc.Service
	Bookings *bookingsvc.Service
	Payments *paymentsvc.Service
	Safety   *safetysvc.Service
	Weather  *weathersvc.Service
	Routes   *routesvc.Service
	Desk     *agents.Desk
	Team     *agents.Team
}

// New builds a fully initialised application with the provided stores. The
// payment gateway may be nil, in which case charges settle locally.
func New(cfg *config.Config, stores Stores, gateway paymentsvc.Gateway, log *logger.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Bookings == nil {
		stores.Bookings = mem
	}
	if stores.Training == nil {
		stores.Training = mem
	}
	if stores.Health == nil {
		stores.Health = mem
	}
	if stores.Payments == nil {
		stores.Payments = mem
	}
	if gateway == nil {
		if cfg.Payment.SecretKey != "" {
			gateway = paymentsvc.NewHTTPGateway(cfg.Payment.BaseURL, cfg.Payment.SecretKey)
			log.WithField("base_url", cfg.Payment.BaseURL).Info("charges settle through the hosted processor")
		} else {
			gateway = paymentsvc.NewSimulatedGateway()
		}
	}

	manager := system.NewManager()

	userService := usersvc.New(stores.Users, log)
	bookingService := bookingsvc.New(stores.Users, stores.Bookings, log)
	paymentService := paymentsvc.New(stores.Payments, bookingService, gateway, log)
	safetyService := safetysvc.New(stores.Health, stores.Training, log)
	routeService := routesvc.New(log)

	var cache weathersvc.Cache
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cache = weathersvc.NewRedisCache(client)
		log.WithField("addr", cfg.Redis.Addr).Info("weather cache backed by redis")
	} else {
		cache = weathersvc.NewMemoryCache()
	}
	weatherService := weathersvc.New(cache, cfg.Weather.CacheTTL(), log)

	var completer agents.Completer
	if cfg.Agent.APIKey != "" {
		completer = agents.NewClient(cfg.Agent.BaseURL, cfg.Agent.APIKey, cfg.Agent.Model)
	} else {
		log.Warn("no agent api key configured; assistants will answer with acknowledgements only")
	}
	model := cfg.Agent.Model
	bookingAgent := agents.NewAgent(agents.BookingAgent(model), completer, log)
	safetyAgent := agents.NewAgent(agents.SafetyAgent(model), completer, log)
	supportAgent := agents.NewAgent(agents.CustomerServiceAgent(model), completer, log)
	coordinator := agents.NewAgent(agents.CoordinatorAgent(model), completer, log)
	team := agents.NewTeam(log, bookingAgent, safetyAgent, supportAgent, coordinator)
	desk := agents.NewDesk(supportAgent, log)

	refresher := weathersvc.NewRefresher(weatherService, cfg.Weather.RefreshSpec, log)
	if err := manager.Register(refresher); err != nil {
		return nil, fmt.Errorf("register %s: %w", refresher.Name(), err)
	}

	return &Application{
		manager:  manager,
		log:      log,
		Users:    userService,
		Bookings: bookingService,
		Payments: paymentService,
		Safety:   safetyService,
		Weather:  weatherService,
		Routes:   routeService,
		Desk:     desk,
		Team:     team,
	}, nil
}

// Attach registers an additional lifecycle-managed service. Call before Start.
func (a *Application) Attach(service system.Service) error {
	return a.manager.Register(service)
}

// Start begins all registered services.
func (a *Application) Start(ctx context.Context) error {
	return a.manager.Start(ctx)
}

// Stop stops all services.
func (a *Application) Stop(ctx context.Context) error {
	return a.manager.Stop(ctx)
}
