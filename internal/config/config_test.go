package config

import (
	"os"
	"testing"
	"time"
)

var allEnvVars = []string{
	"HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "ENVIRONMENT",
	"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSL_MODE",
	"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_CONN_MAX_IDLE_TIME", "DB_LOG_LEVEL",
	"REDIS_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE",
	"REDIS_DIAL_TIMEOUT", "REDIS_READ_TIMEOUT", "REDIS_WRITE_TIMEOUT",
	"CACHE_ENABLED", "CACHE_TTL", "CACHE_WARM", "CACHE_WARM_INTERVAL",
	"CACHE_BREAKER_THRESHOLD", "CACHE_BREAKER_COOLDOWN",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPM", "RATE_LIMIT_BURST", "RATE_LIMIT_CLEANUP",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

func setEnvVars(vars map[string]string) {
	for k, v := range vars {
		os.Setenv(k, v)
	}
}

func clearEnvVars(vars []string) {
	for _, k := range vars {
		os.Unsetenv(k)
	}
}

func withEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	clearEnvVars(allEnvVars)
	setEnvVars(vars)
	t.Cleanup(func() { clearEnvVars(allEnvVars) })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withEnv(t, nil)

	config, err := LoadConfig("blog")
	if err != nil {
		t.Fatalf("Expected no error with default config, got: %v", err)
	}

	if config.App != "blog" {
		t.Errorf("Expected app 'blog', got %s", config.App)
	}

	if config.Server.Host != "localhost" {
		t.Errorf("Expected default host 'localhost', got %s", config.Server.Host)
	}

	if config.Server.Port != "8080" {
		t.Errorf("Expected default port '8080', got %s", config.Server.Port)
	}

	if config.Server.Environment != "development" {
		t.Errorf("Expected default environment 'development', got %s", config.Server.Environment)
	}

	if config.Database.Driver != DriverSQLite {
		t.Errorf("Expected default driver 'sqlite', got %s", config.Database.Driver)
	}

	if config.Database.Path != "blog.db" {
		t.Errorf("Expected default database path 'blog.db', got %s", config.Database.Path)
	}

	if config.Database.MaxOpenConns != 25 {
		t.Errorf("Expected default max open conns 25, got %d", config.Database.MaxOpenConns)
	}

	if config.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}

	if config.Cache.Enabled {
		t.Error("Expected cache to be disabled by default")
	}

	if config.Cache.TTL != 5*time.Minute {
		t.Errorf("Expected default cache TTL 5m, got %v", config.Cache.TTL)
	}

	if !config.Cache.Warm || config.Cache.WarmInterval != 0 {
		t.Errorf("Expected one-shot warming by default, got warm=%v interval=%v", config.Cache.Warm, config.Cache.WarmInterval)
	}

	if config.Cache.BreakerThreshold != 5 || config.Cache.BreakerCooldown != 30*time.Second {
		t.Errorf("Expected breaker 5 failures / 30s, got %d / %v", config.Cache.BreakerThreshold, config.Cache.BreakerCooldown)
	}

	if !config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be enabled by default")
	}

	if config.Log.Level != "info" {
		t.Errorf("Expected default log level 'info', got %s", config.Log.Level)
	}
}

func TestLoadConfig_TodoDefaults(t *testing.T) {
	withEnv(t, nil)

	config, err := LoadConfig("todo")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if config.Server.Port != "8081" {
		t.Errorf("Expected todo port '8081', got %s", config.Server.Port)
	}

	if config.Database.Path != "todo.db" {
		t.Errorf("Expected todo database 'todo.db', got %s", config.Database.Path)
	}

	if config.Database.Name != "todo" {
		t.Errorf("Expected todo database name 'todo', got %s", config.Database.Name)
	}
}

func TestLoadConfig_UnknownApp(t *testing.T) {
	withEnv(t, nil)

	if _, err := LoadConfig("wiki"); err == nil {
		t.Error("Expected error for unknown application")
	}
}

func TestLoadConfig_CustomEnvironment(t *testing.T) {
	withEnv(t, map[string]string{
		"HOST":                   "0.0.0.0",
		"PORT":                   "9000",
		"DB_DRIVER":              "POSTGRES",
		"DB_HOST":                "db.example.com",
		"DB_PASSWORD":            "secure_password",
		"DB_MAX_OPEN_CONNS":      "50",
		"REDIS_ENABLED":          "true",
		"REDIS_HOST":             "redis.example.com",
		"REDIS_DB":               "1",
		"CACHE_ENABLED":          "true",
		"CACHE_TTL":              "90s",
		"CACHE_WARM_INTERVAL":    "2m",
		"CACHE_BREAKER_COOLDOWN": "1m",
		"RATE_LIMIT_ENABLED":     "false",
		"READ_TIMEOUT":           "45s",
		"CORS_ALLOWED_ORIGINS":   "https://a.example.com, https://b.example.com,",
		"LOG_FORMAT":             "JSON",
	})

	config, err := LoadConfig("blog")
	if err != nil {
		t.Fatalf("Expected no error with custom config, got: %v", err)
	}

	if config.GetServerAddr() != "0.0.0.0:9000" {
		t.Errorf("Expected server addr '0.0.0.0:9000', got %s", config.GetServerAddr())
	}

	if config.Database.Driver != DriverPostgres {
		t.Errorf("Expected driver to be normalised to 'postgres', got %s", config.Database.Driver)
	}

	if config.Database.MaxOpenConns != 50 {
		t.Errorf("Expected max open conns 50, got %d", config.Database.MaxOpenConns)
	}

	if !config.Redis.Enabled || config.Redis.DB != 1 {
		t.Errorf("Expected Redis enabled on DB 1, got enabled=%v db=%d", config.Redis.Enabled, config.Redis.DB)
	}

	if config.Cache.TTL != 90*time.Second {
		t.Errorf("Expected cache TTL 90s, got %v", config.Cache.TTL)
	}

	if config.Cache.WarmInterval != 2*time.Minute {
		t.Errorf("Expected warm interval 2m, got %v", config.Cache.WarmInterval)
	}

	if config.Cache.BreakerCooldown != time.Minute {
		t.Errorf("Expected breaker cooldown 1m, got %v", config.Cache.BreakerCooldown)
	}

	if config.RateLimit.Enabled {
		t.Error("Expected rate limiting to be disabled")
	}

	if config.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Expected read timeout 45s, got %v", config.Server.ReadTimeout)
	}

	if len(config.CORS.AllowedOrigins) != 2 || config.CORS.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("Unexpected CORS origins: %v", config.CORS.AllowedOrigins)
	}

	if config.Log.Format != "json" {
		t.Errorf("Expected log format 'json', got %s", config.Log.Format)
	}
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		errorMsg string
	}{
		{
			name:     "Unsupported driver",
			envVars:  map[string]string{"DB_DRIVER": "mysql"},
			errorMsg: `unsupported database driver "mysql"`,
		},
		{
			name: "Postgres in production without password",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
				"DB_DRIVER":   "postgres",
			},
			errorMsg: "database password is required in production",
		},
		{
			name: "Rate limit without budget",
			envVars: map[string]string{
				"RATE_LIMIT_RPM": "0",
			},
			errorMsg: "rate limit requests per minute must be positive",
		},
		{
			name: "Cache breaker without threshold",
			envVars: map[string]string{
				"CACHE_ENABLED":           "true",
				"CACHE_BREAKER_THRESHOLD": "0",
			},
			errorMsg: "cache breaker threshold and cooldown must be positive",
		},
		{
			name: "Sqlite in production needs no password",
			envVars: map[string]string{
				"ENVIRONMENT": "production",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withEnv(t, tt.envVars)

			config, err := LoadConfig("todo")
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("Expected no error, got: %v", err)
				}
				if config == nil {
					t.Error("Expected config to be loaded")
				}
				return
			}
			if err == nil {
				t.Fatalf("Expected error %q, got none", tt.errorMsg)
			}
			if err.Error() != tt.errorMsg {
				t.Errorf("Expected error '%s', got '%s'", tt.errorMsg, err.Error())
			}
		})
	}
}

func TestConfig_GetDatabaseDSN(t *testing.T) {
	config := &Config{
		Database: DatabaseConfig{
			Driver:   DriverPostgres,
			Host:     "localhost",
			Port:     "5432",
			User:     "testuser",
			Password: "testpass",
			Name:     "testdb",
			SSLMode:  "require",
		},
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=require"
	if actual := config.GetDatabaseDSN(); actual != expected {
		t.Errorf("Expected DSN '%s', got '%s'", expected, actual)
	}

	config.Database.Driver = DriverSQLite
	config.Database.Path = "/var/lib/blog/blog.db"
	if actual := config.GetDatabaseDSN(); actual != "/var/lib/blog/blog.db" {
		t.Errorf("Expected sqlite DSN to be the file path, got '%s'", actual)
	}
}

func TestConfig_GetRedisAddr(t *testing.T) {
	config := &Config{
		Redis: RedisConfig{
			Host: "redis.example.com",
			Port: "6380",
		},
	}

	expected := "redis.example.com:6380"
	if actual := config.GetRedisAddr(); actual != expected {
		t.Errorf("Expected Redis addr '%s', got '%s'", expected, actual)
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		environment string
		expected    bool
	}{
		{"production", true},
		{"development", false},
		{"staging", false},
		{"", false},
	}

	for _, test := range tests {
		config := &Config{Server: ServerConfig{Environment: test.environment}}

		if actual := config.IsProduction(); actual != test.expected {
			t.Errorf("For environment '%s', expected IsProduction() = %v, got %v",
				test.environment, test.expected, actual)
		}
	}
}

func TestGetEnvAsInt(t *testing.T) {
	key := "TEST_INT_VAR"
	defaultValue := 42

	os.Unsetenv(key)
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d, got %d", defaultValue, result)
	}

	t.Setenv(key, "100")
	if result := getEnvAsInt(key, defaultValue); result != 100 {
		t.Errorf("Expected env value 100, got %d", result)
	}

	t.Setenv(key, "not-a-number")
	if result := getEnvAsInt(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %d for invalid int, got %d", defaultValue, result)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	key := "TEST_BOOL_VAR"
	defaultValue := true

	testCases := []struct {
		value    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1", true},
		{"0", false},
		{"invalid", defaultValue},
	}

	for _, tc := range testCases {
		t.Setenv(key, tc.value)
		if result := getEnvAsBool(key, defaultValue); result != tc.expected {
			t.Errorf("For value '%s', expected %v, got %v", tc.value, tc.expected, result)
		}
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	key := "TEST_DURATION_VAR"
	defaultValue := 30 * time.Second

	t.Setenv(key, "5m")
	if result := getEnvAsDuration(key, defaultValue); result != 5*time.Minute {
		t.Errorf("Expected env value 5m, got %v", result)
	}

	t.Setenv(key, "not-a-duration")
	if result := getEnvAsDuration(key, defaultValue); result != defaultValue {
		t.Errorf("Expected default value %v for invalid duration, got %v", defaultValue, result)
	}
}

func TestGetEnvAsList(t *testing.T) {
	key := "TEST_LIST_VAR"
	defaultValue := []string{"x"}

	t.Setenv(key, " , ,")
	if result := getEnvAsList(key, defaultValue); len(result) != 1 || result[0] != "x" {
		t.Errorf("Expected default for blank list, got %v", result)
	}

	t.Setenv(key, "a,b")
	if result := getEnvAsList(key, defaultValue); len(result) != 2 {
		t.Errorf("Expected two entries, got %v", result)
	}
}

func BenchmarkLoadConfig(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := LoadConfig("blog"); err != nil {
			b.Fatalf("Failed to load config: %v", err)
		}
	}
}
