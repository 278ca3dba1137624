package di

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"memoryhub/application/commands"
	"memoryhub/application/commands/bus"
	commandhandlers "memoryhub/application/commands/handlers"
	"memoryhub/application/ports"
	"memoryhub/application/queries"
	querybus "memoryhub/application/queries/bus"
	queryhandlers "memoryhub/application/queries/handlers"
	"memoryhub/application/services"
	domainconfig "memoryhub/domain/config"
	domainservices "memoryhub/domain/services"
	"memoryhub/infrastructure/config"
	"memoryhub/infrastructure/messaging"
	"memoryhub/infrastructure/messaging/eventbridge"
	"memoryhub/infrastructure/persistence/dynamodb"
	"memoryhub/infrastructure/persistence/inmemory"
	"memoryhub/infrastructure/recall"
	"memoryhub/interfaces/http/rest"
	"memoryhub/interfaces/http/rest/handlers"
	"memoryhub/interfaces/http/rest/middleware"
	"memoryhub/pkg/auth"
	pkgerrors "memoryhub/pkg/errors"
	"memoryhub/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	serviceName        = "memoryhub"
	slowQueryThreshold = 500 * time.Millisecond
	rateLimitKeyPrefix = "API"

	cacheCleanupInterval = 5 * time.Minute
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	if cfg.LogLevel != "" {
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}

	return zapCfg.Build(zap.Fields(zap.String("service", serviceName)))
}

// ProvideAWSConfig creates AWS configuration. Without any AWS-backed
// component the default chain is never consulted.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	if !cfg.UsesAWS() {
		return aws.Config{Region: cfg.AWSRegion}, nil
	}
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig selects business rules for the environment
func ProvideDomainConfig(cfg *config.Config) (*domainconfig.DomainConfig, error) {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	if err := domainCfg.Validate(); err != nil {
		return nil, err
	}
	return domainCfg, nil
}

// ProvideMemoryRepository picks the storage backend for memories
func ProvideMemoryRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.MemoryRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		return dynamodb.NewMemoryRepository(client, cfg.DynamoDBTable, logger)
	}
	return inmemory.NewMemoryRepository()
}

// ProvideUserRepository picks the storage backend for accounts
func ProvideUserRepository(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) ports.UserRepository {
	if cfg.StorageBackend == config.StorageDynamoDB {
		return dynamodb.NewUserRepository(client, cfg.DynamoDBTable, logger)
	}
	return inmemory.NewUserRepository()
}

// ProvideEventPublisher publishes to EventBridge when a bus is configured and
// falls back to logging otherwise
func ProvideEventPublisher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName != "" {
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
	}
	return messaging.NewLoggingPublisher(logger)
}

// ProvideRecallClient creates the memory-recall client
func ProvideRecallClient(cfg *config.Config, logger *zap.Logger) ports.RecallClient {
	failures := cfg.RecallBreakerFailures
	if failures < 1 {
		failures = 1
	}
	return recall.NewClient(recall.Config{
		BaseURL:         cfg.RecallBaseURL,
		APIKey:          cfg.RecallAPIKey,
		Timeout:         cfg.RecallTimeout,
		BreakerFailures: uint32(failures),
		BreakerCooldown: cfg.RecallBreakerCooldown,
	}, nil, logger)
}

// ProvideCache creates the process-local cache
func ProvideCache() *inmemory.Cache {
	return inmemory.NewCache(cacheCleanupInterval)
}

// ProvideProjectsCache returns nil on DynamoDB, where writes made by other
// instances would never invalidate this process's entries
func ProvideProjectsCache(cfg *config.Config, cache ports.Cache) *queries.ProjectsCache {
	if cfg.StorageBackend == config.StorageDynamoDB {
		return nil
	}
	return queries.NewProjectsCache(cache, queries.ProjectsCacheTTL)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector() *observability.Collector {
	return observability.NewCollector(serviceName)
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(serviceName, cfg.EnableTracing)
}

// ProvideCloudWatchSink returns a sink that only talks to CloudWatch on Lambda
// with metrics enabled
func ProvideCloudWatchSink(cfg *config.Config, client *awscloudwatch.Client, logger *zap.Logger) *observability.CloudWatchSink {
	namespace := fmt.Sprintf("MemoryHub/%s", cfg.Environment)
	if !cfg.EnableMetrics || !cfg.IsLambda {
		return observability.NewCloudWatchSink(namespace, nil, logger)
	}
	return observability.NewCloudWatchSink(namespace, client, logger)
}

// ProvideEngine creates the classification and scoring engine
func ProvideEngine() domainservices.Engine {
	return domainservices.NewEngine()
}

// ProvideCreateMemoryHandler creates the create memory handler
func ProvideCreateMemoryHandler(
	cfg *config.Config,
	domainCfg *domainconfig.DomainConfig,
	repo ports.MemoryRepository,
	engine domainservices.Engine,
	publisher ports.EventPublisher,
	recallClient ports.RecallClient,
	projects *queries.ProjectsCache,
	metrics *observability.Collector,
	sink *observability.CloudWatchSink,
	logger *zap.Logger,
) *commandhandlers.CreateMemoryHandler {
	return commandhandlers.NewCreateMemoryHandler(commandhandlers.CreateMemoryDeps{
		MemoryRepo:     repo,
		Enricher:       engine,
		DomainConfig:   domainCfg,
		EventPublisher: publisher,
		Recall:         recallClient,
		RecallTimeout:  cfg.RecallTimeout,
		Projects:       projects,
		Metrics:        metrics,
		Failures:       sink,
		Logger:         logger,
	})
}

// ProvideDeleteMemoryHandler creates the delete memory handler
func ProvideDeleteMemoryHandler(
	repo ports.MemoryRepository,
	publisher ports.EventPublisher,
	projects *queries.ProjectsCache,
	metrics *observability.Collector,
	logger *zap.Logger,
) *commandhandlers.DeleteMemoryHandler {
	return commandhandlers.NewDeleteMemoryHandler(repo, publisher, projects, metrics, logger)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates the command bus and registers every command handler
func ProvideCommandBus(
	createHandler *commandhandlers.CreateMemoryHandler,
	deleteHandler *commandhandlers.DeleteMemoryHandler,
	tracer *observability.Tracer,
	sink *observability.CloudWatchSink,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	commandBus := bus.NewCommandBus(
		bus.LoggingMiddleware(logger),
		bus.TracingMiddleware(tracer),
		bus.MetricsMiddleware(sink),
	)

	if err := commandBus.Register(commands.CreateMemoryCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			createCmd, ok := cmd.(commands.CreateMemoryCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			_, err := createHandler.Handle(ctx, createCmd)
			return err
		},
	}); err != nil {
		return nil, err
	}

	if err := commandBus.Register(commands.DeleteMemoryCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			deleteCmd, ok := cmd.(commands.DeleteMemoryCommand)
			if !ok {
				return fmt.Errorf("invalid command type %T", cmd)
			}
			return deleteHandler.Handle(ctx, deleteCmd)
		},
	}); err != nil {
		return nil, err
	}

	return commandBus, nil
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// ProvideQueryBus creates the query bus and registers every query handler
func ProvideQueryBus(
	cfg *config.Config,
	repo ports.MemoryRepository,
	recallClient ports.RecallClient,
	projects *queries.ProjectsCache,
	metrics *observability.Collector,
	tracer *observability.Tracer,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(
		querybus.LoggingMiddleware(logger, slowQueryThreshold),
		querybus.TracingMiddleware(tracer),
	)

	searchHandler := queryhandlers.NewSearchMemoriesHandler(repo, recallClient, cfg.RecallTimeout, metrics, logger)
	listHandler := queryhandlers.NewListMemoriesHandler(repo, logger)
	projectsHandler := queryhandlers.NewListProjectsHandler(repo, projects, metrics, logger)
	getHandler := queryhandlers.NewGetMemoryHandler(repo, logger)

	registrations := []struct {
		query   querybus.Query
		handler func(context.Context, querybus.Query) (interface{}, error)
	}{
		{queries.SearchMemoriesQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.SearchMemoriesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return searchHandler.Handle(ctx, q)
		}},
		{queries.ListMemoriesQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListMemoriesQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return listHandler.Handle(ctx, q)
		}},
		{queries.ListProjectsQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.ListProjectsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return projectsHandler.Handle(ctx, q)
		}},
		{queries.GetMemoryQuery{}, func(ctx context.Context, query querybus.Query) (interface{}, error) {
			q, ok := query.(queries.GetMemoryQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type %T", query)
			}
			return getHandler.Handle(ctx, q)
		}},
	}

	for _, reg := range registrations {
		if err := queryBus.Register(reg.query, &QueryHandlerAdapter{handler: reg.handler}); err != nil {
			return nil, err
		}
	}

	return queryBus, nil
}

// ProvideJWTGenerator creates the token signer
func ProvideJWTGenerator(cfg *config.Config) (*auth.JWTGenerator, error) {
	return auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
		ExpiryTime:    cfg.AccessTokenTTL,
	})
}

// ProvideJWTValidator creates the token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	return auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     cfg.JWTSecret,
		Issuer:        cfg.JWTIssuer,
		Audience:      cfg.JWTAudience,
	})
}

// ProvideAuthService creates the account service
func ProvideAuthService(
	cfg *config.Config,
	domainCfg *domainconfig.DomainConfig,
	users ports.UserRepository,
	generator *auth.JWTGenerator,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *services.AuthService {
	return services.NewAuthService(users, generator, publisher, domainCfg, cfg.BcryptCost, logger)
}

// ProvideRateLimiter keeps counters in process by default and in DynamoDB
// when instances must share them
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) auth.RateLimiter {
	if cfg.RateLimitBackend == config.StorageDynamoDB {
		return auth.NewDistributedRateLimiter(
			client,
			cfg.DynamoDBTable,
			cfg.RateLimitRequests,
			cfg.RateLimitWindow,
			rateLimitKeyPrefix,
		)
	}
	return auth.NewSlidingWindowLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
}

// ProvideErrorHandler creates the HTTP error renderer. Development responses
// include internal messages and stack traces.
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideRouter creates the chi router
func ProvideRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	authService *services.AuthService,
	validator *auth.JWTValidator,
	limiter auth.RateLimiter,
	repo ports.MemoryRepository,
	metrics *observability.Collector,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(commandBus, queryBus, authService, metrics, errorHandler, rest.RouterConfig{
		AllowedOrigins:   cfg.AllowedOrigins,
		EnableCORS:       cfg.EnableCORS,
		RequestTimeout:   cfg.RequestTimeout,
		RecallConfigured: cfg.RecallEnabled(),
		StorageBackend:   cfg.StorageBackend,
		Auth: middleware.AuthConfig{
			Validator:    validator,
			Limiter:      limiter,
			Limit:        cfg.RateLimitRequests,
			Window:       cfg.RateLimitWindow,
			ErrorHandler: errorHandler,
			Logger:       logger,
		},
		ReadinessChecks: map[string]handlers.ReadinessCheck{
			"storage": func(ctx context.Context) error {
				_, err := repo.GetByOwner(ctx, "readiness-check")
				return err
			},
		},
	}, logger)
}

// ProvideHTTPHandler builds the final handler tree
func ProvideHTTPHandler(router *rest.Router) http.Handler {
	return router.Setup()
}
