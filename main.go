package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-maze/api"
	api_i "github.com/beka-birhanu/vinom-maze/api/i"
	"github.com/beka-birhanu/vinom-maze/api/identity"
	"github.com/beka-birhanu/vinom-maze/api/mazeapi"
	"github.com/beka-birhanu/vinom-maze/config"
	logger "github.com/beka-birhanu/vinom-maze/infrastruture/log"
	"github.com/beka-birhanu/vinom-maze/infrastruture/repo"
	"github.com/beka-birhanu/vinom-maze/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-maze/infrastruture/token"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const (
	sweepInterval = time.Minute
	tokenTTL      = 24 * time.Hour
)

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	sqliteRepo         *repo.SQLiteHistoryRepo
	redisClient        *redis.Client
	historyRepo        i.HistoryRepo
	leaderboard        i.Leaderboard
	gameSessionManager *service.GameSessionManager
	jwtTokenizer       i.Tokenizer
	mazeController     api_i.Controller
	router             *api.Router
	appLogger          *logger.Logger
)

func newLogger(name, color string) *logger.Logger {
	l, err := logger.New(name, color, os.Stdout, logger.Options{
		Level: config.Envs.LogLevel,
		File:  config.Envs.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initHistoryRepo(ctx context.Context) {
	switch config.Envs.HistoryBackend {
	case config.HistoryBackendMongo:
		initMongo(ctx)
		mongoRepo := repo.NewMongoHistoryRepo(mongoClient, config.Envs.DBName, "results")
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			appLogger.Warning(fmt.Sprintf("Creating history indexes: %v", err))
		}
		historyRepo = mongoRepo
	default:
		var err error
		sqliteRepo, err = repo.NewSQLiteHistoryRepo(config.Envs.SQLitePath)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Opening SQLite history: %v", err))
			os.Exit(1)
		}
		if err := sqliteRepo.Migrate(); err != nil {
			appLogger.Error(fmt.Sprintf("Migrating SQLite history: %v", err))
			os.Exit(1)
		}
		historyRepo = sqliteRepo
	}
	appLogger.Info(fmt.Sprintf("History repository initialized (%s)", config.Envs.HistoryBackend))
}

func initLeaderboard(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		appLogger.Warning("REDIS_ADDR not set, leaderboard disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
		DB:       config.Envs.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}

	board, err := sortedstorage.NewRedisLeaderboard(redisClient, config.Envs.LeaderboardKey)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	leaderboard = board
	appLogger.Info("Leaderboard initialized")
}

func initSessionManager() {
	var err error
	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		DefaultMaze: maze.Config{
			Width:     config.Envs.MazeWidth,
			Height:    config.Envs.MazeHeight,
			Algorithm: maze.Algorithm(config.Envs.MazeAlgorithm),
		},
		History:     historyRepo,
		Leaderboard: leaderboard,
		Logger:      newLogger("SESSION-MANAGER", config.ColorCyan),
		SessionTTL:  time.Duration(config.Envs.SessionTTLMinutes) * time.Minute,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initMazeController() {
	var err error
	mazeController, err = mazeapi.NewController(&mazeapi.Config{
		Sessions:    gameSessionManager,
		History:     historyRepo,
		Leaderboard: leaderboard,
		Tokenizer:   jwtTokenizer,
		TokenTTL:    tokenTTL,
		Logger:      newLogger("MAZE-API", config.ColorPurple),
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating maze controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Maze controller initialized")
}

func initRouter(t i.Tokenizer) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{mazeController},
		AuthorizationMiddleware: identity.Authoriz(t),
	})
	appLogger.Info("Router initialized")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize dependencies
	appLogger = newLogger("APP", config.ColorGreen)
	defer func() {
		_ = appLogger.Sync()
	}()

	initCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	initHistoryRepo(initCtx)
	defer func() {
		if mongoClient != nil {
			_ = mongoClient.Disconnect(context.Background())
		}
		if sqliteRepo != nil {
			_ = sqliteRepo.Close()
		}
	}()

	initLeaderboard(initCtx)
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	initSessionManager()
	defer gameSessionManager.StopAll()

	initJWTTokenizer()
	initMazeController()
	initRouter(jwtTokenizer)

	// Run the HTTP server and the idle-session sweeper until interrupted
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return router.Run(gctx)
	})
	g.Go(func() error {
		gameSessionManager.RunSweeper(gctx, sweepInterval)
		return nil
	})
	if err := g.Wait(); err != nil {
		appLogger.Error(fmt.Sprintf("Running server: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Server stopped")
}
