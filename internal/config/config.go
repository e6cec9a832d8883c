package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matchpulse/matchpulse/internal/domain/provider"
	"github.com/matchpulse/matchpulse/internal/platform/logging"
	"github.com/matchpulse/matchpulse/internal/platform/ratelimit"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                  string
	ServiceName             string
	ServiceVersion          string
	HTTPAddr                string
	DBURL                   string
	DBDisablePreparedBinary bool
	CacheEnabled            bool
	CacheTTL                time.Duration
	CORSAllowedOrigins      []string
	ReadTimeout             time.Duration
	WriteTimeout            time.Duration
	PprofEnabled            bool
	PprofAddr               string
	SwaggerEnabled          bool

	UptraceEnabled             bool
	UptraceDSN                 string
	UptraceLogsEnabled         bool
	UptraceCaptureRequestBody  bool
	UptraceRequestBodyMaxBytes int
	BetterStackEnabled         bool
	BetterStackEndpoint        string
	BetterStackToken           string
	BetterStackTimeout         time.Duration
	BetterStackMinLevel        logging.Level
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	FootballDataBaseURL      string
	FootballDataAPIKey       string
	FootballDataMaxRetries   int
	FootballDataRateCapacity int
	FootballDataRateInterval time.Duration

	APIFootballBaseURL      string
	APIFootballAPIKey       string
	APIFootballMaxRetries   int
	APIFootballRateCapacity int
	APIFootballRateInterval time.Duration

	TheSportsDBBaseURL      string
	TheSportsDBAPIKey       string
	TheSportsDBMaxRetries   int
	TheSportsDBRateCapacity int
	TheSportsDBRateInterval time.Duration

	PredictorEnabled bool
	PredictorBaseURL string
	PredictorAPIKey  string

	GatewayPoolSize              int
	GatewayCallTimeout           time.Duration
	GatewayCircuitEnabled        bool
	GatewayCircuitFailureCount   int
	GatewayCircuitOpenTimeout    time.Duration
	GatewayCircuitHalfOpenMaxReq int

	InternalJobToken string

	BroadcastLiveInterval       time.Duration
	BroadcastPredictionInterval time.Duration
	BroadcastScanWindow         time.Duration
	BroadcastPredictionWindow   time.Duration

	JobSyncAllInterval   time.Duration
	JobLiveInterval      time.Duration
	IngestionWorkerCount int

	LogLevel logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}

	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}

	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}
	uptraceCaptureRequestBody, err := strconv.ParseBool(getEnv("UPTRACE_CAPTURE_REQUEST_BODY", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_CAPTURE_REQUEST_BODY: %w", err)
	}
	uptraceRequestBodyMaxBytes, err := getEnvAsInt("UPTRACE_REQUEST_BODY_MAX_BYTES", 8192)
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_REQUEST_BODY_MAX_BYTES: %w", err)
	}
	if uptraceRequestBodyMaxBytes <= 0 {
		return Config{}, fmt.Errorf("UPTRACE_REQUEST_BODY_MAX_BYTES must be > 0")
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackMinLevel := parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "error"))

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	footballDataMaxRetries, err := getEnvAsInt("FOOTBALLDATA_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALLDATA_MAX_RETRIES: %w", err)
	}
	if footballDataMaxRetries < 0 {
		return Config{}, fmt.Errorf("FOOTBALLDATA_MAX_RETRIES must be >= 0")
	}
	footballDataRateCapacity, err := getEnvAsInt("FOOTBALLDATA_RATE_CAPACITY", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALLDATA_RATE_CAPACITY: %w", err)
	}
	if footballDataRateCapacity < 1 {
		return Config{}, fmt.Errorf("FOOTBALLDATA_RATE_CAPACITY must be >= 1")
	}
	footballDataRateInterval, err := time.ParseDuration(getEnv("FOOTBALLDATA_RATE_INTERVAL", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FOOTBALLDATA_RATE_INTERVAL: %w", err)
	}
	if footballDataRateInterval <= 0 {
		return Config{}, fmt.Errorf("FOOTBALLDATA_RATE_INTERVAL must be > 0")
	}

	apiFootballMaxRetries, err := getEnvAsInt("APIFOOTBALL_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_MAX_RETRIES: %w", err)
	}
	if apiFootballMaxRetries < 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_MAX_RETRIES must be >= 0")
	}
	apiFootballRateCapacity, err := getEnvAsInt("APIFOOTBALL_RATE_CAPACITY", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_RATE_CAPACITY: %w", err)
	}
	if apiFootballRateCapacity < 1 {
		return Config{}, fmt.Errorf("APIFOOTBALL_RATE_CAPACITY must be >= 1")
	}
	apiFootballRateInterval, err := time.ParseDuration(getEnv("APIFOOTBALL_RATE_INTERVAL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APIFOOTBALL_RATE_INTERVAL: %w", err)
	}
	if apiFootballRateInterval <= 0 {
		return Config{}, fmt.Errorf("APIFOOTBALL_RATE_INTERVAL must be > 0")
	}

	theSportsDBMaxRetries, err := getEnvAsInt("THESPORTSDB_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_MAX_RETRIES: %w", err)
	}
	if theSportsDBMaxRetries < 0 {
		return Config{}, fmt.Errorf("THESPORTSDB_MAX_RETRIES must be >= 0")
	}
	theSportsDBRateCapacity, err := getEnvAsInt("THESPORTSDB_RATE_CAPACITY", 10000)
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_RATE_CAPACITY: %w", err)
	}
	if theSportsDBRateCapacity < 1 {
		return Config{}, fmt.Errorf("THESPORTSDB_RATE_CAPACITY must be >= 1")
	}
	theSportsDBRateInterval, err := time.ParseDuration(getEnv("THESPORTSDB_RATE_INTERVAL", "1h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse THESPORTSDB_RATE_INTERVAL: %w", err)
	}
	if theSportsDBRateInterval <= 0 {
		return Config{}, fmt.Errorf("THESPORTSDB_RATE_INTERVAL must be > 0")
	}

	predictorEnabled, err := strconv.ParseBool(getEnv("PREDICTOR_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PREDICTOR_ENABLED: %w", err)
	}
	predictorBaseURL := strings.TrimSpace(getEnv("PREDICTOR_BASE_URL", ""))
	if predictorEnabled && predictorBaseURL == "" {
		return Config{}, fmt.Errorf("PREDICTOR_BASE_URL is required when PREDICTOR_ENABLED=true")
	}

	gatewayPoolSize, err := getEnvAsInt("GATEWAY_POOL_SIZE", 16)
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_POOL_SIZE: %w", err)
	}
	if gatewayPoolSize < 1 {
		return Config{}, fmt.Errorf("GATEWAY_POOL_SIZE must be >= 1")
	}
	gatewayCallTimeout, err := time.ParseDuration(getEnv("GATEWAY_CALL_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_CALL_TIMEOUT: %w", err)
	}
	if gatewayCallTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_CALL_TIMEOUT must be > 0")
	}
	gatewayCircuitEnabled, err := strconv.ParseBool(getEnv("GATEWAY_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_CIRCUIT_ENABLED: %w", err)
	}
	gatewayCircuitFailureCount, err := getEnvAsInt("GATEWAY_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if gatewayCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("GATEWAY_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	gatewayCircuitOpenTimeout, err := time.ParseDuration(getEnv("GATEWAY_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if gatewayCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("GATEWAY_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	gatewayCircuitHalfOpenMaxReq, err := getEnvAsInt("GATEWAY_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse GATEWAY_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if gatewayCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("GATEWAY_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	broadcastLiveInterval, err := time.ParseDuration(getEnv("BROADCAST_LIVE_INTERVAL", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_LIVE_INTERVAL: %w", err)
	}
	if broadcastLiveInterval <= 0 {
		return Config{}, fmt.Errorf("BROADCAST_LIVE_INTERVAL must be > 0")
	}
	broadcastPredictionInterval, err := time.ParseDuration(getEnv("BROADCAST_PREDICTION_INTERVAL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_PREDICTION_INTERVAL: %w", err)
	}
	if broadcastPredictionInterval <= 0 {
		return Config{}, fmt.Errorf("BROADCAST_PREDICTION_INTERVAL must be > 0")
	}
	broadcastScanWindow, err := time.ParseDuration(getEnv("BROADCAST_SCAN_WINDOW", "168h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_SCAN_WINDOW: %w", err)
	}
	if broadcastScanWindow <= 0 {
		return Config{}, fmt.Errorf("BROADCAST_SCAN_WINDOW must be > 0")
	}
	broadcastPredictionWindow, err := time.ParseDuration(getEnv("BROADCAST_PREDICTION_WINDOW", "168h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BROADCAST_PREDICTION_WINDOW: %w", err)
	}
	if broadcastPredictionWindow <= 0 {
		return Config{}, fmt.Errorf("BROADCAST_PREDICTION_WINDOW must be > 0")
	}

	jobSyncAllInterval, err := time.ParseDuration(getEnv("JOB_SYNC_ALL_INTERVAL", "6h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_SYNC_ALL_INTERVAL: %w", err)
	}
	if jobSyncAllInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_SYNC_ALL_INTERVAL must be > 0")
	}
	jobLiveInterval, err := time.ParseDuration(getEnv("JOB_LIVE_INTERVAL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_LIVE_INTERVAL: %w", err)
	}
	if jobLiveInterval <= 0 {
		return Config{}, fmt.Errorf("JOB_LIVE_INTERVAL must be > 0")
	}
	ingestionWorkerCount, err := getEnvAsInt("INGESTION_WORKER_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse INGESTION_WORKER_COUNT: %w", err)
	}
	if ingestionWorkerCount < 1 {
		return Config{}, fmt.Errorf("INGESTION_WORKER_COUNT must be >= 1")
	}

	cfg := Config{
		AppEnv:                  appEnv,
		ServiceName:             getEnv("APP_SERVICE_NAME", "matchpulse-api"),
		ServiceVersion:          getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: true,
		CORSAllowedOrigins:      splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		PprofEnabled:            pprofEnabled,
		PprofAddr:               pprofAddr,
		SwaggerEnabled:          swaggerEnabled,

		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		UptraceLogsEnabled:         uptraceLogsEnabled,
		UptraceCaptureRequestBody:  uptraceCaptureRequestBody,
		UptraceRequestBodyMaxBytes: uptraceRequestBodyMaxBytes,
		BetterStackEnabled:         betterStackEnabled,
		BetterStackEndpoint:        betterStackEndpoint,
		BetterStackToken:           strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:         betterStackTimeout,
		BetterStackMinLevel:        betterStackMinLevel,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		FootballDataBaseURL:      strings.TrimSpace(getEnv("FOOTBALLDATA_BASE_URL", "https://api.football-data.org/v4")),
		FootballDataAPIKey:       strings.TrimSpace(getEnv("FOOTBALLDATA_API_KEY", "")),
		FootballDataMaxRetries:   footballDataMaxRetries,
		FootballDataRateCapacity: footballDataRateCapacity,
		FootballDataRateInterval: footballDataRateInterval,

		APIFootballBaseURL:      strings.TrimSpace(getEnv("APIFOOTBALL_BASE_URL", "https://v3.football.api-sports.io")),
		APIFootballAPIKey:       strings.TrimSpace(getEnv("APIFOOTBALL_API_KEY", "")),
		APIFootballMaxRetries:   apiFootballMaxRetries,
		APIFootballRateCapacity: apiFootballRateCapacity,
		APIFootballRateInterval: apiFootballRateInterval,

		TheSportsDBBaseURL:      strings.TrimSpace(getEnv("THESPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")),
		TheSportsDBAPIKey:       strings.TrimSpace(getEnv("THESPORTSDB_API_KEY", "3")),
		TheSportsDBMaxRetries:   theSportsDBMaxRetries,
		TheSportsDBRateCapacity: theSportsDBRateCapacity,
		TheSportsDBRateInterval: theSportsDBRateInterval,

		PredictorEnabled: predictorEnabled,
		PredictorBaseURL: predictorBaseURL,
		PredictorAPIKey:  strings.TrimSpace(getEnv("PREDICTOR_API_KEY", "")),

		GatewayPoolSize:              gatewayPoolSize,
		GatewayCallTimeout:           gatewayCallTimeout,
		GatewayCircuitEnabled:        gatewayCircuitEnabled,
		GatewayCircuitFailureCount:   gatewayCircuitFailureCount,
		GatewayCircuitOpenTimeout:    gatewayCircuitOpenTimeout,
		GatewayCircuitHalfOpenMaxReq: gatewayCircuitHalfOpenMaxReq,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		BroadcastLiveInterval:       broadcastLiveInterval,
		BroadcastPredictionInterval: broadcastPredictionInterval,
		BroadcastScanWindow:         broadcastScanWindow,
		BroadcastPredictionWindow:   broadcastPredictionWindow,

		JobSyncAllInterval:   jobSyncAllInterval,
		JobLiveInterval:      jobLiveInterval,
		IngestionWorkerCount: ingestionWorkerCount,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}
	cfg.DBDisablePreparedBinary = dbDisablePreparedBinary

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}
	cfg.CacheEnabled = cacheEnabled
	cfg.CacheTTL = cacheTTL

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg.ReadTimeout = readTimeout
	cfg.WriteTimeout = writeTimeout
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))

	return cfg, nil
}

// RateBuckets maps the configured per-provider quotas into limiter bucket
// configs. The prediction model has no admission quota; its protection is the
// circuit breaker alone.
func (c Config) RateBuckets() map[provider.Provider]ratelimit.BucketConfig {
	return map[provider.Provider]ratelimit.BucketConfig{
		provider.FootballData: {Capacity: c.FootballDataRateCapacity, RefillInterval: c.FootballDataRateInterval},
		provider.APIFootball:  {Capacity: c.APIFootballRateCapacity, RefillInterval: c.APIFootballRateInterval},
		provider.TheSportsDB:  {Capacity: c.TheSportsDBRateCapacity, RefillInterval: c.TheSportsDBRateInterval},
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
