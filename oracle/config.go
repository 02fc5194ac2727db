package oracle

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/basexlabs/basex-oracle/protocol"
)

const (
	DefaultConfigFile = "/etc/basex-oracle/config.toml"

	PrivateKeyEnvVar     = "PRIVATE_KEY"
	AnalysisAPIURLEnvVar = "ANALYSIS_API_URL"
	GasLimitEnvVar       = "GAS_LIMIT"
	MetricsPortEnvVar    = "METRICS_PORT"
	PyroscopeURLEnvVar   = "PYROSCOPE_URL"
	LogLevelEnvVar       = "LOG_LEVEL"

	rpcURLSuffix          = "_RPC_URL"
	contractAddressSuffix = "_CONTRACT_ADDRESS"
	chainIDSuffix         = "_CHAIN_ID"

	DefaultAnalysisAPIURL = "http://localhost:3000"
	DefaultGasLimit       = 500_000
	DefaultMetricsPort    = 9090
)

// DefaultNetworks returns the networks the oracle serves out of the box. Their RPC endpoint
// and contract address come from the environment.
func DefaultNetworks() map[string]protocol.NetworkConfig {
	return map[string]protocol.NetworkConfig{
		"sepolia": {
			Name:      "sepolia",
			ChainID:   11155111,
			EnvPrefix: "SEPOLIA",
		},
		"baseSepolia": {
			Name:      "baseSepolia",
			ChainID:   84532,
			EnvPrefix: "BASE",
		},
	}
}

type Configuration struct {
	Networks            map[string]protocol.NetworkConfig `toml:"networks"`
	AnalysisAPIURL      string                            `toml:"analysis_api_url"`
	AnalysisTimeout     string                            `toml:"analysis_timeout"`
	AnalysisInterval    string                            `toml:"analysis_interval"`
	GasLimit            uint64                            `toml:"gas_limit"`
	ConfirmationTimeout string                            `toml:"confirmation_timeout"`
	PollInterval        string                            `toml:"poll_interval"`
	ProbeTimeout        string                            `toml:"probe_timeout"`
	ResubscribeDelay    string                            `toml:"resubscribe_delay"`
	ReaderCacheExpiry   string                            `toml:"reader_cache_expiry"`
	WorkersPerNetwork   int                               `toml:"workers_per_network"`
	SkipFulfilled       *bool                             `toml:"skip_fulfilled"`
	MetricsPort         int                               `toml:"metrics_port"`
	PyroscopeURL        string                            `toml:"pyroscope_url"`
	LogLevel            string                            `toml:"log_level"`
	// PrivateKey is only read from the environment.
	PrivateKey string `toml:"-"`
}

// NewDefaultConfiguration returns a configuration with the default networks and no secrets.
func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		Networks:       DefaultNetworks(),
		AnalysisAPIURL: DefaultAnalysisAPIURL,
		GasLimit:       DefaultGasLimit,
		MetricsPort:    DefaultMetricsPort,
	}
}

// LoadConfiguration reads the optional TOML file at path over the defaults, then applies
// environment overrides from getenv. An empty path skips the file.
func LoadConfiguration(path string, getenv func(string) string) (*Configuration, error) {
	cfg := NewDefaultConfiguration()
	if path != "" {
		var fileCfg Configuration
		if _, err := toml.DecodeFile(path, &fileCfg); err != nil {
			return nil, fmt.Errorf("%w: failed to decode %s: %w", protocol.ErrConfiguration, path, err)
		}
		cfg.merge(&fileCfg)
	}
	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge overlays the non-zero values of other. File networks are merged per field over
// the defaults so a file may set only the RPC URL of a default network.
func (c *Configuration) merge(other *Configuration) {
	for key, n := range other.Networks {
		base, ok := c.Networks[key]
		if !ok {
			base = protocol.NetworkConfig{Name: key}
		}
		if n.Name != "" {
			base.Name = n.Name
		}
		if n.RPCEndpoint != "" {
			base.RPCEndpoint = n.RPCEndpoint
		}
		if n.ContractAddress != "" {
			base.ContractAddress = n.ContractAddress
		}
		if n.ChainID != 0 {
			base.ChainID = n.ChainID
		}
		if n.EnvPrefix != "" {
			base.EnvPrefix = n.EnvPrefix
		}
		c.Networks[key] = base
	}
	setIf(&c.AnalysisAPIURL, other.AnalysisAPIURL)
	setIf(&c.AnalysisTimeout, other.AnalysisTimeout)
	setIf(&c.AnalysisInterval, other.AnalysisInterval)
	setIf(&c.ConfirmationTimeout, other.ConfirmationTimeout)
	setIf(&c.PollInterval, other.PollInterval)
	setIf(&c.ProbeTimeout, other.ProbeTimeout)
	setIf(&c.ResubscribeDelay, other.ResubscribeDelay)
	setIf(&c.ReaderCacheExpiry, other.ReaderCacheExpiry)
	setIf(&c.PyroscopeURL, other.PyroscopeURL)
	setIf(&c.LogLevel, other.LogLevel)
	setIf(&c.GasLimit, other.GasLimit)
	setIf(&c.MetricsPort, other.MetricsPort)
	setIf(&c.WorkersPerNetwork, other.WorkersPerNetwork)
	if other.SkipFulfilled != nil {
		c.SkipFulfilled = other.SkipFulfilled
	}
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// ApplyEnv overrides values from the environment. Network variables are looked up by each
// network's EnvPrefix: <PREFIX>_RPC_URL, <PREFIX>_CONTRACT_ADDRESS and <PREFIX>_CHAIN_ID.
func (c *Configuration) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		return nil
	}
	var errs []error

	networks := maps.Clone(c.Networks)
	for key, n := range networks {
		if n.Name == "" {
			n.Name = key
		}
		if n.EnvPrefix != "" {
			prefix := strings.ToUpper(n.EnvPrefix)
			setIf(&n.RPCEndpoint, getenv(prefix+rpcURLSuffix))
			setIf(&n.ContractAddress, getenv(prefix+contractAddressSuffix))
			if raw := getenv(prefix + chainIDSuffix); raw != "" {
				id, err := strconv.ParseUint(raw, 10, 64)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", prefix+chainIDSuffix, err))
				} else {
					n.ChainID = id
				}
			}
		}
		networks[key] = n
	}
	c.Networks = networks

	setIf(&c.PrivateKey, getenv(PrivateKeyEnvVar))
	setIf(&c.AnalysisAPIURL, getenv(AnalysisAPIURLEnvVar))
	setIf(&c.PyroscopeURL, getenv(PyroscopeURLEnvVar))
	setIf(&c.LogLevel, getenv(LogLevelEnvVar))
	if raw := getenv(GasLimitEnvVar); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", GasLimitEnvVar, err))
		} else {
			c.GasLimit = v
		}
	}
	if raw := getenv(MetricsPortEnvVar); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", MetricsPortEnvVar, err))
		} else {
			c.MetricsPort = v
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: invalid environment: %w", protocol.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// Validate checks the process-wide settings. Individual networks are validated when the
// registry connects them so that one broken network does not prevent the others from starting.
func (c *Configuration) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Networks, validation.Required),
		validation.Field(&c.PrivateKey, validation.Required.Error(PrivateKeyEnvVar+" must be set")),
		validation.Field(&c.AnalysisAPIURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.GasLimit, validation.Required),
		validation.Field(&c.WorkersPerNetwork, validation.Min(0)),
		validation.Field(&c.MetricsPort, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.AnalysisTimeout, validation.By(duration)),
		validation.Field(&c.AnalysisInterval, validation.By(duration)),
		validation.Field(&c.ConfirmationTimeout, validation.By(duration)),
		validation.Field(&c.PollInterval, validation.By(duration)),
		validation.Field(&c.ProbeTimeout, validation.By(duration)),
		validation.Field(&c.ResubscribeDelay, validation.By(duration)),
		validation.Field(&c.ReaderCacheExpiry, validation.By(duration)),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", protocol.ErrConfiguration, err)
	}
	return nil
}

func httpURL(value any) error {
	s, _ := value.(string)
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return errors.New("must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("must be an http or https URL")
	}
	return nil
}

func duration(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("must be a duration: %w", err)
	}
	return nil
}

// String redacts the private key so the configuration can be logged.
func (c Configuration) String() string {
	if c.PrivateKey != "" {
		c.PrivateKey = "<redacted>"
	}
	type plain Configuration
	return fmt.Sprintf("%+v", plain(c))
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func (c *Configuration) GetAnalysisTimeout() time.Duration {
	return parseDurationOr(c.AnalysisTimeout, 60*time.Second)
}

// GetAnalysisInterval returns the minimum spacing between analysis calls. Zero disables self rate limiting.
func (c *Configuration) GetAnalysisInterval() time.Duration {
	return parseDurationOr(c.AnalysisInterval, 0)
}

// GetConfirmationTimeout returns how long to wait for a receipt. Zero disables the bound.
func (c *Configuration) GetConfirmationTimeout() time.Duration {
	return parseDurationOr(c.ConfirmationTimeout, 10*time.Minute)
}

func (c *Configuration) GetPollInterval() time.Duration {
	return parseDurationOr(c.PollInterval, 5*time.Second)
}

func (c *Configuration) GetProbeTimeout() time.Duration {
	return parseDurationOr(c.ProbeTimeout, 10*time.Second)
}

func (c *Configuration) GetResubscribeDelay() time.Duration {
	return parseDurationOr(c.ResubscribeDelay, 5*time.Second)
}

func (c *Configuration) GetReaderCacheExpiry() time.Duration {
	return parseDurationOr(c.ReaderCacheExpiry, 5*time.Minute)
}

func (c *Configuration) GetWorkersPerNetwork() int {
	if c.WorkersPerNetwork <= 0 {
		return 1
	}
	return c.WorkersPerNetwork
}

// GetSkipFulfilled reports whether already fulfilled requests are skipped. Defaults to true.
func (c *Configuration) GetSkipFulfilled() bool {
	if c.SkipFulfilled == nil {
		return true
	}
	return *c.SkipFulfilled
}
