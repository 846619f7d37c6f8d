package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	AppEnv   string
	LogLevel string

	StorageDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisURL string

	ServerPort string

	JWTSecret         string
	AccessTokenMaxAge int

	// OperatorAccounts may run schema initializers.
	OperatorAccounts []string
	// DeployerAccount initializes the first schema version on an empty store.
	DeployerAccount      string
	InitialSchemaVersion int

	// SchemaRefreshInterval is how often the server rereads the deployed version.
	SchemaRefreshInterval time.Duration

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 3600
	}

	initialSchema, err := strconv.Atoi(os.Getenv("INITIAL_SCHEMA_VERSION"))
	if err != nil || initialSchema <= 0 {
		initialSchema = 1
	}

	schemaRefresh, err := strconv.Atoi(os.Getenv("SCHEMA_REFRESH_SECONDS"))
	if err != nil || schemaRefresh <= 0 {
		schemaRefresh = 15
	}

	deployer := getEnv("DEPLOYER_ACCOUNT", "deployer")
	operators := splitList(os.Getenv("OPERATOR_ACCOUNTS"))
	if !contains(operators, deployer) {
		operators = append(operators, deployer)
	}

	return &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StorageDriver: getEnv("STORAGE_DRIVER", DriverPostgres),

		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "require"),

		RedisURL: os.Getenv("REDIS_URL"),

		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AccessTokenMaxAge: accessTokenMaxAge,

		OperatorAccounts:      operators,
		DeployerAccount:       deployer,
		InitialSchemaVersion:  initialSchema,
		SchemaRefreshInterval: time.Duration(schemaRefresh) * time.Second,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}, nil
}

// IsOperator reports whether account is listed in OPERATOR_ACCOUNTS.
func (c *Config) IsOperator(account string) bool {
	return contains(c.OperatorAccounts, account)
}

// MediaEnabled reports whether all R2 settings are present.
func (c *Config) MediaEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicURL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
