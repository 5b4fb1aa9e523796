package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// History backends selectable with HISTORY_BACKEND.
const (
	HistoryBackendMongo  = "mongo"
	HistoryBackendSQLite = "sqlite"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP            string // Host IP for the server
	RESTPort          int    // Port for the REST API
	GinMode           string // Mode for the Gin framework (e.g., release, debug, test)
	MazeWidth         int    // Width of mazes dealt when a request names none
	MazeHeight        int    // Height of mazes dealt when a request names none
	MazeAlgorithm     string // Default carving algorithm (dfs or wilson)
	SessionTTLMinutes int    // Idle minutes after which a session is dropped
	HistoryBackend    string // Where finished runs are stored (mongo or sqlite)
	DBHost            string // Hostname or IP address for the database
	DBPort            int    // Port number for the database
	DBUser            string // Username for the database
	DBPassword        string // Password for the database
	DBName            string // Name of the database
	SQLitePath        string // Database file for the sqlite backend
	RedisAddr         string // Redis address for the leaderboard; empty disables it
	RedisPassword     string // Redis password
	RedisDB           int    // Redis database number
	LeaderboardKey    string // Sorted set holding best scores
	JWTSecret         string // Secret key for JWT signing
	JWTIssuer         string // Issuer claim for JWTs
	LogLevel          string // debug, info, warn or error
	LogFile           string // Rotating log file; empty logs to the console only
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	cfg := Config{
		HostIP:            getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:          getEnvAsIntWithDefault("REST_PORT", 8080),
		GinMode:           getEnvWithDefault("GIN_MODE", "release"),
		MazeWidth:         getEnvAsIntWithDefault("MAZE_WIDTH", 15),
		MazeHeight:        getEnvAsIntWithDefault("MAZE_HEIGHT", 20),
		MazeAlgorithm:     getEnvWithDefault("MAZE_ALGORITHM", "dfs"),
		SessionTTLMinutes: getEnvAsIntWithDefault("SESSION_TTL_MINUTES", 30),
		HistoryBackend:    getEnvWithDefault("HISTORY_BACKEND", HistoryBackendSQLite),
		SQLitePath:        getEnvWithDefault("SQLITE_PATH", "maze.db"),
		RedisAddr:         getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:     getEnvWithDefault("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsIntWithDefault("REDIS_DB", 0),
		LeaderboardKey:    getEnvWithDefault("LEADERBOARD_KEY", "maze:leaderboard"),
		JWTSecret:         mustGetEnv("JWT_SECRET"),
		JWTIssuer:         getEnvWithDefault("JWT_ISSUER", "vinom-maze"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		LogFile:           getEnvWithDefault("LOG_FILE", ""),
	}

	switch cfg.HistoryBackend {
	case HistoryBackendMongo:
		cfg.DBHost = mustGetEnv("DB_HOST")
		cfg.DBPort = mustGetEnvAsInt("DB_PORT")
		cfg.DBUser = mustGetEnv("DB_USER")
		cfg.DBPassword = mustGetEnv("DB_PASS")
		cfg.DBName = mustGetEnv("DB_NAME")
	case HistoryBackendSQLite:
	default:
		log.Fatalf("[APP] [FATAL] HISTORY_BACKEND must be %q or %q, got %q",
			HistoryBackendMongo, HistoryBackendSQLite, cfg.HistoryBackend)
	}

	return cfg
}

// mustGetEnv retrieves the value of an environment variable or logs a fatal error if not set.
func mustGetEnv(key string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		log.Fatalf("[APP] [FATAL] Environment variable %s is not set", key)
	}
	return value
}

// mustGetEnvAsInt retrieves the value of an environment variable as an integer or logs a fatal error if not set or cannot be parsed.
func mustGetEnvAsInt(key string) int {
	valueStr := mustGetEnv(key)
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault is getEnvWithDefault for integers. Unparsable values are fatal.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	if _, exists := os.LookupEnv(key); !exists {
		return defaultValue
	}
	return mustGetEnvAsInt(key)
}
