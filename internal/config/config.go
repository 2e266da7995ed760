package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config application configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dispenser DispenserParams `yaml:"dispenser"`
	NATS      NATSConfig      `yaml:"nats"`
	CORS      CORSConfig      `yaml:"cors"`  // CORS configuration
	Admin     AdminConfig     `yaml:"admin"` // Admin API access control configuration
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	TrustedProxies []string `yaml:"trustedProxies"` // proxies allowed to set X-Forwarded-For
	Mode           string   `yaml:"mode"`           // gin mode: debug | release | test
}

// DispenserParams raw disbursement settings as read from yaml/env. Validate
// turns them into a DispenserConfig.
type DispenserParams struct {
	RPCEndpoint        string          `yaml:"rpcEndpoint"`
	PrivateKey         string          `yaml:"privateKey"`         // hex, with or without 0x
	ContractAddress    string          `yaml:"contractAddress"`    // ERC-1155 contract
	TreasuryAddress    string          `yaml:"treasuryAddress"`    // account holding the supply
	TokenID            string          `yaml:"tokenId"`            // decimal
	AmountPerRecipient string          `yaml:"amountPerRecipient"` // decimal, default 1
	ExpectedChainID    uint64          `yaml:"expectedChainId"`    // default 137
	FeeModel           string          `yaml:"feeModel"`           // eip1559 | legacy
	FeeFloors          FeeFloorsConfig `yaml:"feeFloors"`
	GasLimit           *uint64         `yaml:"gasLimit"`          // default 200000, 0 = estimate
	InclusionDeadline  int             `yaml:"inclusionDeadline"` // seconds, default 12
	EligibilityPolicy  string          `yaml:"eligibilityPolicy"` // any_holding | full_amount
	MonitorInterval    int             `yaml:"monitorInterval"`   // seconds, default 60, <0 disables
}

// FeeFloorsConfig fee minimums in gwei (decimal strings)
type FeeFloorsConfig struct {
	PriorityFeeGwei string `yaml:"priorityFeeGwei"` // default 40
	MaxFeeGwei      string `yaml:"maxFeeGwei"`      // default 80
	GasPriceGwei    string `yaml:"gasPriceGwei"`    // default 60, legacy model only
}

// NATSConfig NATS message server configuration
type NATSConfig struct {
	URL           string `yaml:"url"`
	Timeout       int    `yaml:"timeout"`
	ReconnectWait int    `yaml:"reconnect_wait"`
	MaxReconnects int    `yaml:"max_reconnects"`
	SubjectPrefix string `yaml:"subject_prefix"` // default "giveaway"
}

// CORSConfig CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowedOrigins"`   // List of allowed origins
	AllowCredentials bool     `yaml:"allowCredentials"` // Whether to allow credentials
	MaxAge           int      `yaml:"maxAge"`           // Max age for preflight requests (seconds)
}

// AdminConfig Admin API access control configuration
type AdminConfig struct {
	AllowedIPs []string `yaml:"allowedIPs"` // List of allowed IP addresses or CIDR ranges
	JWTSecret  string   `yaml:"jwtSecret"`  // HS256 secret for admin tokens, empty disables the admin API
	JWTIssuer  string   `yaml:"jwtIssuer"`
}

// LogConfig logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name, default info
	Format string `yaml:"format"` // text | json
}

const (
	defaultConfigPath      = "config.yaml"
	localConfigPath        = "config.local.yaml"
	defaultServerPort      = 8080
	defaultExpectedChainID = 137
	defaultGasLimit        = 200000
	defaultInclusionWait   = 12
	defaultMonitorInterval = 60
	defaultJWTIssuer       = "nft-giveaway"
	defaultSubjectPrefix   = "giveaway"
)

// LoadConfig loads the configuration file, applies defaults and environment
// overrides. An empty configPath means config.local.yaml if present, else
// config.yaml; a missing default file is not an error so env-only deployments work.
func LoadConfig(configPath string) (*Config, error) {
	explicit := configPath != ""
	if !explicit {
		configPath = defaultConfigPath
		if _, err := os.Stat(localConfigPath); err == nil {
			configPath = localConfigPath
			logrus.Infof("Using local configuration file: %s", localConfigPath)
		}
	}

	var cfg Config
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		logrus.WithField("path", configPath).Info("Loaded configuration file")
	case errors.Is(err, os.ErrNotExist) && !explicit:
		logrus.WithField("path", configPath).Info("No configuration file, using defaults and environment")
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if len(cfg.CORS.AllowedOrigins) > 0 {
		logrus.WithField("origins", cfg.CORS.AllowedOrigins).Info("CORS allowed origins loaded")
	}
	if len(cfg.Admin.AllowedIPs) > 0 {
		logrus.WithField("count", len(cfg.Admin.AllowedIPs)).Info("Admin IP whitelist loaded")
	}

	return &cfg, nil
}

// ParseConfig parses yaml bytes and applies defaults, without touching the environment
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}

	d := &cfg.Dispenser
	if d.AmountPerRecipient == "" {
		d.AmountPerRecipient = "1"
	}
	if d.ExpectedChainID == 0 {
		d.ExpectedChainID = defaultExpectedChainID
	}
	if d.FeeModel == "" {
		d.FeeModel = "eip1559"
	}
	if d.FeeFloors.PriorityFeeGwei == "" {
		d.FeeFloors.PriorityFeeGwei = "40"
	}
	if d.FeeFloors.MaxFeeGwei == "" {
		d.FeeFloors.MaxFeeGwei = "80"
	}
	if d.FeeFloors.GasPriceGwei == "" {
		d.FeeFloors.GasPriceGwei = "60"
	}
	if d.GasLimit == nil {
		limit := uint64(defaultGasLimit)
		d.GasLimit = &limit
	}
	if d.InclusionDeadline == 0 {
		d.InclusionDeadline = defaultInclusionWait
	}
	if d.EligibilityPolicy == "" {
		d.EligibilityPolicy = "any_holding"
	}
	if d.MonitorInterval == 0 {
		d.MonitorInterval = defaultMonitorInterval
	}

	if cfg.NATS.Timeout == 0 {
		cfg.NATS.Timeout = 10
	}
	if cfg.NATS.ReconnectWait == 0 {
		cfg.NATS.ReconnectWait = 5
	}
	if cfg.NATS.MaxReconnects == 0 {
		cfg.NATS.MaxReconnects = -1
	}
	if cfg.NATS.SubjectPrefix == "" {
		cfg.NATS.SubjectPrefix = defaultSubjectPrefix
	}

	if cfg.CORS.MaxAge == 0 {
		cfg.CORS.MaxAge = 3600
	}
	if cfg.Admin.JWTIssuer == "" {
		cfg.Admin.JWTIssuer = defaultJWTIssuer
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// overrideFromEnv environment variables win over the file. Names match the
// serverless deployment (RPC_URL, PRIVATE_KEY, ADMIN_ADDRESS...).
func overrideFromEnv(cfg *Config) {
	// server configuration
	if host := os.Getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	setString(&cfg.Server.Mode, "GIN_MODE")
	if proxies := os.Getenv("TRUSTED_PROXIES"); proxies != "" {
		cfg.Server.TrustedProxies = splitList(proxies)
	}

	d := &cfg.Dispenser
	setString(&d.RPCEndpoint, "RPC_URL")
	setString(&d.PrivateKey, "PRIVATE_KEY")
	setString(&d.ContractAddress, "CONTRACT_ADDRESS")
	setString(&d.TreasuryAddress, "ADMIN_ADDRESS")
	setString(&d.TreasuryAddress, "TREASURY_ADDRESS")
	setString(&d.TokenID, "TOKEN_ID")
	setString(&d.AmountPerRecipient, "AMOUNT_PER_USER")
	setString(&d.FeeModel, "FEE_MODEL")
	setString(&d.FeeFloors.PriorityFeeGwei, "MIN_PRIORITY_FEE_GWEI")
	setString(&d.FeeFloors.MaxFeeGwei, "MIN_MAX_FEE_GWEI")
	setString(&d.FeeFloors.GasPriceGwei, "MIN_GAS_PRICE_GWEI")
	setString(&d.EligibilityPolicy, "ELIGIBILITY_POLICY")

	if chainID := os.Getenv("EXPECTED_CHAIN_ID"); chainID != "" {
		if id, err := strconv.ParseUint(chainID, 10, 64); err == nil {
			d.ExpectedChainID = id
		} else {
			logrus.WithField("value", chainID).Warn("Ignoring unparsable EXPECTED_CHAIN_ID")
		}
	}
	if gasLimit := os.Getenv("GAS_LIMIT"); gasLimit != "" {
		if limit, err := strconv.ParseUint(gasLimit, 10, 64); err == nil {
			d.GasLimit = &limit
		}
	}
	if deadline := os.Getenv("INCLUSION_DEADLINE"); deadline != "" {
		if s, err := strconv.Atoi(deadline); err == nil {
			d.InclusionDeadline = s
		}
	}
	if interval := os.Getenv("MONITOR_INTERVAL"); interval != "" {
		if s, err := strconv.Atoi(interval); err == nil {
			d.MonitorInterval = s
		}
	}

	// NATS configuration
	setString(&cfg.NATS.URL, "NATS_URL")
	if natsTimeout := os.Getenv("NATS_TIMEOUT"); natsTimeout != "" {
		if t, err := strconv.Atoi(natsTimeout); err == nil {
			cfg.NATS.Timeout = t
		}
	}

	// CORS configuration, comma separated
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		cfg.CORS.AllowedOrigins = splitList(corsOrigins)
	}
	if adminIPs := os.Getenv("ADMIN_ALLOWED_IPS"); adminIPs != "" {
		cfg.Admin.AllowedIPs = splitList(adminIPs)
	}

	setString(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
}

// splitList splits a comma separated env value, dropping blanks
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}
