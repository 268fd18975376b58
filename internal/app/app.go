package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	adaptermiddleware "agency-rbac/internal/adapters/http/middleware"
	"agency-rbac/internal/application"
	"agency-rbac/internal/config"
	"agency-rbac/internal/domain"
	"agency-rbac/internal/infrastructure/auth"
	"agency-rbac/internal/infrastructure/dynamodb"
	"agency-rbac/internal/infrastructure/iplookup"
	"agency-rbac/internal/infrastructure/memory"
	"agency-rbac/internal/infrastructure/seed"
	httpiface "agency-rbac/internal/interfaces/http"
	"agency-rbac/internal/observability"
	"agency-rbac/internal/ports"
)

const (
	segmentName      = "agency-rbac-http"
	adminRoleID      = "admin"
	manageCapability = "manage_permissions"
	auditCapability  = "view_audit_logs"
)

type repositories struct {
	permissions ports.PermissionRepository
	roles       ports.RoleRepository
	users       ports.UserRepository
	overrides   ports.OverrideRepository
	auditLogs   ports.AuditRepository
	activities  ports.AuditRepository
}

// App is the wired service: the echo router plus the pieces startup needs.
type App struct {
	Echo    *echo.Echo
	Metrics *observability.Metrics

	Catalog       *application.CatalogService
	Roles         *application.RoleService
	Users         *application.UserService
	Overrides     *application.OverrideService
	Authorization *application.AuthorizationService
	Security      *application.SecurityService
	Audit         *application.AuditService

	seeder *application.Seeder
	seed   application.Seed
	logger ports.Logger
}

// New wires repositories, services and the HTTP surface according to cfg.
func New(ctx context.Context, cfg config.Config, logger ports.Logger) (*App, error) {
	repos, err := newRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}
	catalogSeed, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	opts := []application.Option{application.WithRecorder(metrics)}

	ips := iplookup.NewClient(cfg.IPLookupURL, cfg.IPLookupTimeout, cfg.IPLookupPerSecond, logger)
	auditSvc := application.NewAuditService(repos.auditLogs, repos.activities, ips, logger, opts...)
	auditSvc.Subscribe(application.NewCollectionSink(domain.CollectionAuditLogs, repos.auditLogs))
	auditSvc.Subscribe(application.NewCollectionSink(domain.CollectionActivities, repos.activities, domain.ActionSecurityUpdated))

	a := &App{
		Metrics: metrics,
		Audit:   auditSvc,
		logger:  logger,
	}
	a.Catalog = application.NewCatalogService(repos.permissions, logger, opts...)
	a.Roles = application.NewRoleService(repos.roles, repos.users, a.Catalog, auditSvc, logger, opts...)
	a.Users = application.NewUserService(repos.users, repos.roles, auditSvc, logger, opts...)
	a.Overrides = application.NewOverrideService(repos.overrides, repos.users, a.Catalog, auditSvc, logger, opts...)
	a.Authorization = application.NewAuthorizationService(repos.users, repos.roles, repos.overrides, logger)
	a.Security = application.NewSecurityService(repos.users, auditSvc, logger, opts...)
	a.seeder = application.NewSeeder(a.Catalog, a.Roles, a.Users, logger)
	a.seed = application.Seed{Permissions: catalogSeed.Permissions, Roles: catalogSeed.Roles}
	if cfg.BootstrapAdminID != "" {
		a.seed.Admin = &domain.User{ID: cfg.BootstrapAdminID, Email: cfg.BootstrapAdminEmail, RoleID: adminRoleID}
	}

	mw, err := a.middleware(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Echo = httpiface.NewMainRouter(httpiface.Handlers{
		Catalog:       httpiface.NewCatalogHandler(a.Catalog),
		Roles:         httpiface.NewRolesHandler(a.Roles),
		Users:         httpiface.NewUsersHandler(a.Users, a.Roles, a.Overrides, a.Authorization),
		Security:      httpiface.NewSecurityHandler(a.Security),
		Audit:         httpiface.NewAuditHandler(a.Audit),
		Authorization: httpiface.NewAuthorizationHandler(a.Authorization),
		Metrics:       metrics.Handler(),
	}, mw)
	return a, nil
}

// Seed makes sure the catalog, default roles and bootstrap admin exist.
// Failures are logged and returned; the service keeps running either way.
func (a *App) Seed(ctx context.Context) error {
	ctx, seg := xray.BeginSegment(ctx, segmentName+"-seed")
	err := a.seeder.EnsureSeeded(ctx, a.seed)
	seg.Close(err)
	if err != nil {
		a.logger.Error(ctx, "seeding failed", "error", err)
	}
	return err
}

func (a *App) middleware(cfg config.Config, logger ports.Logger) (httpiface.Middleware, error) {
	var cognito echo.MiddlewareFunc
	if cfg.AuthMode == config.AuthCognito {
		cognito = auth.NewCognitoMiddleware(cfg.UserPoolID, cfg.Region).Handler
	}
	authMiddleware, err := adaptermiddleware.AuthMiddleware(cfg.AuthMode, cfg.APIKey, cognito)
	if err != nil {
		return httpiface.Middleware{}, err
	}
	mw := httpiface.Middleware{
		XRay:          adaptermiddleware.XRayMiddleware(segmentName),
		RequestLogger: adaptermiddleware.RequestLogger(logger),
		Metrics:       a.Metrics.Middleware(),
		Auth:          authMiddleware,
		Actor:         adaptermiddleware.ActorMiddleware(cfg.AuthMode),
	}
	if cfg.EnforceOperatorPermissions {
		mw.RequireManage = adaptermiddleware.RequirePermission(a.Authorization, manageCapability)
		mw.RequireAuditRead = adaptermiddleware.RequirePermission(a.Authorization, auditCapability)
	}
	return mw, nil
}

func newRepositories(ctx context.Context, cfg config.Config) (repositories, error) {
	switch cfg.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		return repositories{
			permissions: memory.NewPermissionRepository(store),
			roles:       memory.NewRoleRepository(store),
			users:       memory.NewUserRepository(store),
			overrides:   memory.NewOverrideRepository(store),
			auditLogs:   memory.NewAuditRepository(store, domain.CollectionAuditLogs),
			activities:  memory.NewAuditRepository(store, domain.CollectionActivities),
		}, nil
	case config.StoreDynamoDB:
		client, err := dynamodb.NewClient(ctx, cfg.Region, cfg.TableName, cfg.DynamoDBEndpoint)
		if err != nil {
			return repositories{}, fmt.Errorf("dynamodb client: %w", err)
		}
		return repositories{
			permissions: dynamodb.NewPermissionRepository(client),
			roles:       dynamodb.NewRoleRepository(client),
			users:       dynamodb.NewUserRepository(client),
			overrides:   dynamodb.NewOverrideRepository(client),
			auditLogs:   dynamodb.NewAuditRepository(client, domain.CollectionAuditLogs),
			activities:  dynamodb.NewAuditRepository(client, domain.CollectionActivities),
		}, nil
	default:
		return repositories{}, fmt.Errorf("unsupported store backend %q", cfg.Store)
	}
}
