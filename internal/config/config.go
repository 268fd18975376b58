package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type AuthMode string

const (
	AuthNone    AuthMode = "none"
	AuthAPIKey  AuthMode = "api_key"
	AuthCognito AuthMode = "cognito"
)

// ParseAuthMode maps the AUTH_MODE value to a mode; empty means none.
func ParseAuthMode(raw string) (AuthMode, error) {
	switch mode := AuthMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return AuthNone, nil
	case AuthNone, AuthAPIKey, AuthCognito:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid auth mode %q", raw)
	}
}

type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StoreDynamoDB StoreBackend = "dynamodb"
)

type Config struct {
	TableName        string
	Region           string
	Store            StoreBackend
	DynamoDBEndpoint string
	Port             string

	AuthMode   AuthMode
	UserPoolID string
	APIKey     string

	LogLevel string

	IPLookupURL       string
	IPLookupTimeout   time.Duration
	IPLookupPerSecond float64

	EnforceOperatorPermissions bool
	BootstrapAdminID           string
	BootstrapAdminEmail        string
	SeedFile                   string
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv and validates it.
func LoadFrom(getenv func(string) string) (Config, error) {
	var errs []error

	authMode, err := ParseAuthMode(getenv("AUTH_MODE"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg := Config{
		TableName:           getenv("TABLE_NAME"),
		Region:              getenv("AWS_REGION"),
		Store:               StoreBackend(withDefault(getenv("STORE_BACKEND"), string(StoreDynamoDB))),
		DynamoDBEndpoint:    getenv("DYNAMODB_ENDPOINT"),
		Port:                withDefault(getenv("PORT"), "8080"),
		AuthMode:            authMode,
		UserPoolID:          getenv("COGNITO_USER_POOL_ID"),
		APIKey:              getenv("API_KEY"),
		LogLevel:            withDefault(getenv("LOG_LEVEL"), "info"),
		IPLookupURL:         getenv("IP_LOOKUP_URL"),
		BootstrapAdminID:    getenv("BOOTSTRAP_ADMIN_ID"),
		BootstrapAdminEmail: getenv("BOOTSTRAP_ADMIN_EMAIL"),
		SeedFile:            getenv("SEED_FILE"),
	}

	cfg.IPLookupTimeout, err = time.ParseDuration(withDefault(getenv("IP_LOOKUP_TIMEOUT"), "2s"))
	if err != nil {
		errs = append(errs, fmt.Errorf("IP_LOOKUP_TIMEOUT: %w", err))
	}
	cfg.IPLookupPerSecond, err = strconv.ParseFloat(withDefault(getenv("IP_LOOKUP_RATE"), "5"), 64)
	if err != nil || cfg.IPLookupPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("IP_LOOKUP_RATE must be a positive number"))
	}
	cfg.EnforceOperatorPermissions, err = strconv.ParseBool(withDefault(getenv("ENFORCE_OPERATOR_PERMISSIONS"), "false"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ENFORCE_OPERATOR_PERMISSIONS: %w", err))
	}

	switch cfg.Store {
	case StoreMemory:
	case StoreDynamoDB:
		if cfg.TableName == "" || cfg.Region == "" {
			errs = append(errs, errors.New("TABLE_NAME and AWS_REGION are required for the dynamodb store"))
		}
	default:
		errs = append(errs, fmt.Errorf("invalid store backend %q", cfg.Store))
	}
	if cfg.AuthMode == AuthCognito && (cfg.UserPoolID == "" || cfg.Region == "") {
		errs = append(errs, errors.New("COGNITO_USER_POOL_ID and AWS_REGION are required for cognito auth mode"))
	}
	if cfg.AuthMode == AuthAPIKey && cfg.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required for api_key auth mode"))
	}
	if (cfg.BootstrapAdminID == "") != (cfg.BootstrapAdminEmail == "") {
		errs = append(errs, errors.New("BOOTSTRAP_ADMIN_ID and BOOTSTRAP_ADMIN_EMAIL must be set together"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
