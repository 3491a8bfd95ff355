package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Print failure policies
const (
	// PrintPolicyReport keeps the request successful and reports failed print jobs
	PrintPolicyReport = "report"
	// PrintPolicyStrict fails the request when any print job fails
	PrintPolicyStrict = "strict"
)

// Event bus backends
const (
	EventBusLog      = "log"
	EventBusRabbitMQ = "rabbitmq"
	EventBusKafka    = "kafka"
)

// PrinterCategories lists the printer routing classes that can carry an endpoint
var PrinterCategories = []string{"food", "shashlik", "salad", "drink", "dessert", "other"}

// PrinterEndpoint is the raw-socket address of one physical printer
type PrinterEndpoint struct {
	IP   string `json:"ip"`
	Port int    `json:"port"`
}

// Configured reports whether the endpoint has an address to dial
func (e PrinterEndpoint) Configured() bool {
	return e.IP != "" && e.Port > 0
}

// Address returns the host:port form used for dialing
func (e PrinterEndpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.IP, e.Port)
}

func (e PrinterEndpoint) String() string {
	if !e.Configured() {
		return "(unset)"
	}
	return e.Address()
}

// Config holds all application configuration
type Config struct {
	DatabaseURL string
	Port        string
	GoEnv       string
	LogLevel    string
	CORSOrigins []string

	Auth0Domain   string
	Auth0Audience string
	JWTSecret     string
	JWTIssuer     string
	JWTAudience   string

	// AuthRequiredScope, when set, must appear in every token's scope claim
	AuthRequiredScope string

	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Printers maps a printer category to its endpoint
	Printers       map[string]PrinterEndpoint
	ReceiptPrinter PrinterEndpoint
	ReceiptTitle   string

	PrinterMaxAttempts  int
	PrinterRetryDelay   time.Duration
	PrinterDialTimeout  time.Duration
	PrinterWriteTimeout time.Duration
	PrintConcurrency    int
	PrintFailurePolicy  string

	EventBus         string
	RabbitMQHost     string
	RabbitMQPort     int
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQVHost    string
	RabbitMQExchange string
	KafkaBrokers     string
	KafkaTopic       string
}

var configInstance *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	// Determine which environment file to load
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try to load environment-specific file first
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		// If environment-specific file doesn't exist, try .env
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	config := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Port:        getEnv("PORT", "8080"),
		GoEnv:       getEnv("GO_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")),

		Auth0Domain:   getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience: getEnv("AUTH0_AUDIENCE", ""),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", "floor-api"),
		JWTAudience:   getEnv("JWT_AUDIENCE", "floor-api"),

		AuthRequiredScope: getEnv("AUTH_REQUIRED_SCOPE", ""),

		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),

		Printers: loadPrinterEndpoints(),
		ReceiptPrinter: PrinterEndpoint{
			IP:   getEnv("PRINTER_TOTAL_IP", ""),
			Port: getEnvInt("PRINTER_TOTAL_PORT", 9100),
		},
		ReceiptTitle: getEnv("RECEIPT_TITLE", "Restaurant"),

		PrinterMaxAttempts:  getEnvInt("PRINTER_MAX_ATTEMPTS", 3),
		PrinterRetryDelay:   getEnvDuration("PRINTER_RETRY_DELAY", 2*time.Second),
		PrinterDialTimeout:  getEnvDuration("PRINTER_DIAL_TIMEOUT", 3*time.Second),
		PrinterWriteTimeout: getEnvDuration("PRINTER_WRITE_TIMEOUT", 5*time.Second),
		PrintConcurrency:    getEnvInt("PRINT_CONCURRENCY", 1),
		PrintFailurePolicy:  getEnv("PRINT_FAILURE_POLICY", PrintPolicyReport),

		EventBus:         getEnv("EVENT_BUS", EventBusLog),
		RabbitMQHost:     getEnv("RABBITMQ_HOST", "localhost"),
		RabbitMQPort:     getEnvInt("RABBITMQ_PORT", 5672),
		RabbitMQUser:     getEnv("RABBITMQ_USER", "guest"),
		RabbitMQPassword: getEnv("RABBITMQ_PASSWORD", "guest"),
		RabbitMQVHost:    getEnv("RABBITMQ_VHOST", "/"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "floor_events"),
		KafkaBrokers:     getEnv("KAFKA_BROKERS", ""),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "floor-events"),
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	configInstance = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.PrintFailurePolicy {
	case PrintPolicyReport, PrintPolicyStrict:
	default:
		return fmt.Errorf("PRINT_FAILURE_POLICY must be %q or %q, got %q", PrintPolicyReport, PrintPolicyStrict, c.PrintFailurePolicy)
	}
	switch c.EventBus {
	case EventBusLog, EventBusRabbitMQ:
	case EventBusKafka:
		if strings.TrimSpace(c.KafkaBrokers) == "" {
			return fmt.Errorf("KAFKA_BROKERS is required when EVENT_BUS=kafka")
		}
	default:
		return fmt.Errorf("EVENT_BUS must be one of log, rabbitmq, kafka, got %q", c.EventBus)
	}
	if c.PrinterMaxAttempts < 1 {
		return fmt.Errorf("PRINTER_MAX_ATTEMPTS must be at least 1")
	}
	if c.PrintConcurrency < 1 {
		return fmt.Errorf("PRINT_CONCURRENCY must be at least 1")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// StrictPrinting reports whether print failures fail the triggering request
func (c *Config) StrictPrinting() bool {
	return c.PrintFailurePolicy == PrintPolicyStrict
}

// GetConfig returns the configuration produced by the last successful Load
func GetConfig() *Config {
	return configInstance
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	configInstance = cfg
}

// loadPrinterEndpoints reads PRINTER_<CATEGORY>_IP / _PORT for every category
func loadPrinterEndpoints() map[string]PrinterEndpoint {
	endpoints := make(map[string]PrinterEndpoint, len(PrinterCategories))
	for _, category := range PrinterCategories {
		prefix := "PRINTER_" + strings.ToUpper(category)
		ep := PrinterEndpoint{
			IP:   getEnv(prefix+"_IP", ""),
			Port: getEnvInt(prefix+"_PORT", 9100),
		}
		if ep.IP != "" {
			endpoints[category] = ep
		}
	}
	return endpoints
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s=%q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s=%q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
