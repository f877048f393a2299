package router

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"petclinic/internal/adapters/auth/jwtverifier"
	"petclinic/internal/adapters/catalog/productsapi"
	"petclinic/internal/adapters/directory/httpdirectory"
	"petclinic/internal/adapters/messaging/inproc"
	mem "petclinic/internal/adapters/storage/memory"
	"petclinic/internal/adapters/storage/redisstore"
	"petclinic/internal/adapters/storage/sqlstore"
	"petclinic/internal/domain/billing"
	"petclinic/internal/domain/carts"
	"petclinic/internal/domain/customers"
	"petclinic/internal/domain/inventory"
	"petclinic/internal/domain/notifications"
	"petclinic/internal/domain/products"
	"petclinic/internal/domain/users"
	"petclinic/internal/domain/vets"
	"petclinic/internal/gateway"
	"petclinic/internal/middleware"
	"petclinic/internal/platform/config"
	"petclinic/internal/platform/jobs"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/metrics"
	"petclinic/internal/ports/auth"
	"petclinic/internal/ports/catalog"
	"petclinic/internal/ports/directory"
	"petclinic/internal/ports/events"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
)

const (
	All     = "all"
	Gateway = "gateway"

	// devSecret firma tokens cuando no hay JWT_SECRET (modo dev).
	devSecret = "petclinic-dev-secret"

	rateLimitCleanupSpec = "@every 5m"
)

// Backends son los servicios de dominio que puede levantar un proceso.
var Backends = []string{
	gateway.ServiceBilling,
	gateway.ServiceCustomers,
	gateway.ServiceVets,
	gateway.ServiceInventory,
	gateway.ServiceProducts,
	gateway.ServiceCarts,
	gateway.ServiceAuth,
	gateway.ServiceNotifications,
}

// EventSource es un consumidor de eventos (kafka).
type EventSource interface {
	Run(ctx context.Context, topics []string, h events.Handler) error
}

type Options struct {
	// Service: uno de Backends, "gateway" o "all" (vacío = all).
	Service string
	Config  config.Config
	Log     logger.Logger

	// Opcional: si viene, usa SQL. Si no, in-memory.
	DB *sqlx.DB
	// Opcional: carritos en Redis.
	Redis *redis.Client

	// Publisher nil => bus in-process.
	Publisher events.Publisher
	// Consumer nil => notifications se suscribe al bus in-process.
	Consumer EventSource

	// Verifier del gateway; nil => modo dev.
	Verifier auth.AuthVerifier
	// Scheduler nil => no se agendan jobs.
	Scheduler *jobs.Scheduler

	// Overrides para tests.
	Catalog   catalog.Catalog
	Directory directory.Resolver
}

// Known informa si name es un servicio que NewRouter sabe montar.
func Known(name string) bool {
	switch name {
	case All, Gateway:
		return true
	}
	for _, b := range Backends {
		if b == name {
			return true
		}
	}
	return false
}

// NewRouter arma el handler del proceso. ctx acota la vida del consumidor de eventos.
func NewRouter(ctx context.Context, opts Options) (http.Handler, error) {
	name := strings.ToLower(strings.TrimSpace(opts.Service))
	if name == "" {
		name = All
	}
	if !Known(name) {
		return nil, fmt.Errorf("router: unknown service %q", opts.Service)
	}
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	on := func(s string) bool { return name == All || name == s }

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(metrics.Instrument(name))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	pub := opts.Publisher
	bus, _ := pub.(*inproc.Bus)
	if pub == nil {
		bus = inproc.NewBus(log)
		pub = bus
	}

	cfg := opts.Config
	db := opts.DB
	sched := opts.Scheduler

	var (
		productsSvc  *products.Service
		customersSvc *customers.Service
		vetsSvc      *vets.Service
	)

	if on(gateway.ServiceProducts) {
		var (
			repo    products.Repository
			bundles products.BundleRepository
			ratings products.RatingRepository
			subs    products.SubscriptionRepository
		)
		if db != nil {
			repo, bundles = sqlstore.NewProductRepo(db), sqlstore.NewBundleRepo(db)
			ratings, subs = sqlstore.NewProductRatingRepo(db), sqlstore.NewSubscriptionRepo(db)
		} else {
			repo, bundles = mem.NewProductRepo(), mem.NewBundleRepo()
			ratings, subs = mem.NewProductRatingRepo(), mem.NewSubscriptionRepo()
		}
		productsSvc = products.NewService(repo, bundles, ratings, subs, products.WithPublisher(pub), products.WithLogger(log))
		products.RegisterRoutes(r, productsSvc)
		if sched != nil {
			if err := products.RegisterJobs(sched, productsSvc, cfg.Products.StatusSchedule, cfg.Products.ResetSchedule); err != nil {
				return nil, err
			}
		}
	}

	if on(gateway.ServiceCustomers) {
		var (
			owners   customers.OwnerRepository
			pets     customers.PetRepository
			petTypes customers.PetTypeRepository
		)
		if db != nil {
			owners, pets, petTypes = sqlstore.NewOwnerRepo(db), sqlstore.NewPetRepo(db), sqlstore.NewPetTypeRepo(db)
		} else {
			owners, pets, petTypes = mem.NewOwnerRepo(), mem.NewPetRepo(), mem.NewPetTypeRepo()
		}
		customersSvc = customers.NewService(owners, pets, petTypes)
		customers.RegisterRoutes(r, customersSvc)
	}

	if on(gateway.ServiceVets) {
		var (
			repo    vets.Repository
			ratings vets.RatingRepository
		)
		if db != nil {
			repo, ratings = sqlstore.NewVetRepo(db), sqlstore.NewVetRatingRepo(db)
		} else {
			repo, ratings = mem.NewVetRepo(), mem.NewVetRatingRepo()
		}
		vetsSvc = vets.NewService(repo, ratings)
		vets.RegisterRoutes(r, vetsSvc)
	}

	if on(gateway.ServiceBilling) {
		var repo billing.Repository = mem.NewBillRepo()
		if db != nil {
			repo = sqlstore.NewBillRepo(db)
		}
		dir, err := resolveDirectory(opts, customersSvc, vetsSvc)
		if err != nil {
			return nil, err
		}
		billingSvc := billing.NewService(repo, billing.WithDirectory(dir), billing.WithPublisher(pub))
		billing.RegisterRoutes(r, billingSvc)
		if sched != nil {
			if err := billing.RegisterJobs(sched, billingSvc, cfg.Billing.OverdueSchedule); err != nil {
				return nil, err
			}
		}
	}

	if on(gateway.ServiceCarts) {
		var (
			repo   carts.Repository = mem.NewCartRepo()
			promos carts.PromoRepository
		)
		if opts.Redis != nil {
			repo = redisstore.NewCartRepo(opts.Redis)
		}
		if db != nil {
			promos = sqlstore.NewPromoRepo(db)
		} else {
			promos = mem.NewPromoRepo()
		}
		cat, err := resolveCatalog(opts, productsSvc)
		if err != nil {
			return nil, err
		}
		carts.RegisterRoutes(r, carts.NewService(repo, promos, cat, carts.WithPublisher(pub)))
	}

	if on(gateway.ServiceInventory) {
		var (
			repo  inventory.Repository
			types inventory.TypeRepository
			items inventory.ProductRepository
		)
		if db != nil {
			repo, types, items = sqlstore.NewInventoryRepo(db), sqlstore.NewInventoryTypeRepo(db), sqlstore.NewInventoryProductRepo(db)
		} else {
			repo, types, items = mem.NewInventoryRepo(), mem.NewInventoryTypeRepo(), mem.NewInventoryProductRepo()
		}
		inventory.RegisterRoutes(r, inventory.NewService(repo, types, items))
	}

	if on(gateway.ServiceAuth) {
		svc, err := newUsers(ctx, cfg, db, log)
		if err != nil {
			return nil, err
		}
		users.RegisterRoutes(r, svc)
	}

	if on(gateway.ServiceNotifications) {
		var repo notifications.Repository = mem.NewNotificationRepo()
		if db != nil {
			repo = sqlstore.NewNotificationRepo(db)
		}
		svc := notifications.NewService(repo, log)
		switch {
		case opts.Consumer != nil:
			go func() {
				if err := opts.Consumer.Run(ctx, events.AllTopics(), svc.HandleEvent); err != nil {
					log.Error("event consumer stopped", map[string]any{"error": err.Error()})
				}
			}()
		case bus != nil:
			for _, topic := range events.AllTopics() {
				bus.Subscribe(topic, svc.HandleEvent)
			}
		}
		notifications.RegisterRoutes(r, svc)
	}

	if on(Gateway) {
		gw, err := gateway.New(gateway.Config{
			Services: map[string]string{
				gateway.ServiceAuth:          cfg.Services.Auth,
				gateway.ServiceBilling:       cfg.Services.Billing,
				gateway.ServiceCustomers:     cfg.Services.Customers,
				gateway.ServiceVets:          cfg.Services.Vets,
				gateway.ServiceInventory:     cfg.Services.Inventory,
				gateway.ServiceProducts:      cfg.Services.Products,
				gateway.ServiceCarts:         cfg.Services.Carts,
				gateway.ServiceNotifications: cfg.Services.Notifications,
			},
			Timeout:        cfg.Gateway.ClientTimeout,
			Verifier:       opts.Verifier,
			RateLimitRPS:   cfg.Gateway.RateLimitRPS,
			RateLimitBurst: cfg.Gateway.RateLimitBurst,
		}, log)
		if err != nil {
			return nil, err
		}
		gw.RegisterRoutes(r)
		if sched != nil {
			if err := gateway.RegisterJobs(sched, gw, rateLimitCleanupSpec); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// newUsers arma el servicio auth y siembra roles y admin.
func newUsers(ctx context.Context, cfg config.Config, db *sqlx.DB, log logger.Logger) (*users.Service, error) {
	secret := cfg.Auth.JWTSecret
	if strings.TrimSpace(secret) == "" {
		log.Warn("JWT_SECRET not set, using development secret", nil)
		secret = devSecret
	}
	tokens, err := jwtverifier.New(secret, cfg.Auth.JWTTTL)
	if err != nil {
		return nil, err
	}

	var (
		repo  users.Repository
		roles users.RoleRepository
	)
	if db != nil {
		repo, roles = sqlstore.NewUserRepo(db), sqlstore.NewRoleRepo(db)
	} else {
		repo, roles = mem.NewUserRepo(), mem.NewRoleRepo()
	}

	svc := users.NewService(repo, roles, tokens)
	if err := svc.SeedRoles(ctx); err != nil {
		return nil, fmt.Errorf("router: seed roles: %w", err)
	}
	if p := cfg.Auth.AdminPassword; p != "" {
		created, err := svc.SeedAdmin(ctx, "", p)
		if err != nil {
			return nil, fmt.Errorf("router: seed admin: %w", err)
		}
		if created {
			log.Info("admin user created", map[string]any{"username": users.AdminUsername})
		}
	}
	return svc, nil
}

func resolveCatalog(opts Options, productsSvc *products.Service) (catalog.Catalog, error) {
	switch {
	case opts.Catalog != nil:
		return opts.Catalog, nil
	case productsSvc != nil:
		return localCatalog{svc: productsSvc}, nil
	}
	c, err := productsapi.NewClient(productsapi.Config{
		BaseURL: opts.Config.Services.Products,
		Timeout: opts.Config.Gateway.ClientTimeout,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func resolveDirectory(opts Options, customersSvc *customers.Service, vetsSvc *vets.Service) (directory.Resolver, error) {
	switch {
	case opts.Directory != nil:
		return opts.Directory, nil
	case customersSvc != nil && vetsSvc != nil:
		return localDirectory{owners: customersSvc, vets: vetsSvc}, nil
	}
	d, err := httpdirectory.NewResolver(httpdirectory.Config{
		CustomersURL: opts.Config.Services.Customers,
		VetsURL:      opts.Config.Services.Vets,
		Timeout:      opts.Config.Gateway.ClientTimeout,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}
