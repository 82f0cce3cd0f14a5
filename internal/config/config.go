package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultOwner       = "swf@example.com"
	DefaultEnvironment = "development"
	DefaultBackendURL  = "http://localhost:7007"
)

// JiraConfig holds the optional Jira integration of the workflow service.
type JiraConfig struct {
	Host        string `mapstructure:"host"`
	BearerToken string `mapstructure:"bearerToken"`
}

// WorkflowServiceConfig describes where workflow definitions live and who
// owns the generated templates.
type WorkflowServiceConfig struct {
	Path        string      `mapstructure:"path" validate:"required"`
	Container   string      `mapstructure:"container"`
	Owner       string      `mapstructure:"owner"`
	Environment string      `mapstructure:"environment"`
	Jira        *JiraConfig `mapstructure:"jira"`
}

// SWFConfig is the `swf` configuration block.
type SWFConfig struct {
	BaseURL         string                `mapstructure:"baseUrl" validate:"required,url"`
	Port            string                `mapstructure:"port" validate:"required,numeric"`
	WorkflowService WorkflowServiceConfig `mapstructure:"workflowService"`
	Editor          struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"editor"`
}

// Config holds the configuration for the application.
type Config struct {
	LogLevel string    `mapstructure:"log_level"`
	SWF      SWFConfig `mapstructure:"swf"`
	Backend  struct {
		BaseURL string `mapstructure:"baseUrl" validate:"required,url"`
	} `mapstructure:"backend"`
	Server struct {
		Port int `mapstructure:"port" validate:"gte=1,lte=65535"`
	} `mapstructure:"server"`
	Sync struct {
		Schedule       string `mapstructure:"schedule"`
		ParametersMode string `mapstructure:"parameters_mode" validate:"oneof=omit empty"`
	} `mapstructure:"sync"`
	NATS struct {
		Enable        bool   `mapstructure:"enable"`
		URL           string `mapstructure:"url"`
		SubjectPrefix string `mapstructure:"subject_prefix"`
	} `mapstructure:"nats"`
	DB struct {
		Enable   bool   `mapstructure:"enable"`
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"db"`
	Auth struct {
		Enable       bool   `mapstructure:"enable"`
		Issuer       string `mapstructure:"issuer"`
		ClientID     string `mapstructure:"client_id"`
		ClientSecret string `mapstructure:"client_secret"`
		RedirectURL  string `mapstructure:"redirect_url"`
	} `mapstructure:"auth"`
	TLS struct {
		Enable    bool     `mapstructure:"enable"`
		CertFile  string   `mapstructure:"cert_file"`
		KeyFile   string   `mapstructure:"key_file"`
		Hostnames []string `mapstructure:"hostnames"`
	} `mapstructure:"tls"`
}

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrIncompleteTLS = errors.New("tls enabled but cert/key file not provided")

	validate = validator.New()
)

// LoadConfig loads the configuration from a file and the environment. When
// configFile is empty, config.yaml is searched for in the working directory
// and ./config; a missing file is not an error in that case.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.SWF.BaseURL = strings.TrimRight(strings.TrimSpace(config.SWF.BaseURL), "/")
	config.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(config.Backend.BaseURL), "/")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("swf.baseUrl", "http://localhost")
	v.SetDefault("swf.port", "8899")
	v.SetDefault("swf.workflowService.path", "workflows")
	v.SetDefault("swf.workflowService.owner", DefaultOwner)
	v.SetDefault("swf.workflowService.environment", DefaultEnvironment)
	v.SetDefault("backend.baseUrl", DefaultBackendURL)
	v.SetDefault("server.port", 7007)
	v.SetDefault("sync.schedule", "")
	v.SetDefault("sync.parameters_mode", "omit")
	v.SetDefault("nats.url", "nats://127.0.0.1:4222")
	v.SetDefault("nats.subject_prefix", "swf")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.TLS.Enable && (c.TLS.CertFile == "" || c.TLS.KeyFile == "") {
		return ErrIncompleteTLS
	}
	return nil
}

// ServiceURL is the base URL of the workflow orchestration service
func (c *SWFConfig) ServiceURL() string {
	if c.BaseURL == "" {
		return ""
	}
	return c.BaseURL + ":" + c.Port
}

// Owner returns the configured template owner or the default one
func (c *SWFConfig) Owner() string {
	if c.WorkflowService.Owner == "" {
		return DefaultOwner
	}
	return c.WorkflowService.Owner
}

// Environment returns the deployment environment name used in location keys
func (c *SWFConfig) Environment() string {
	if c.WorkflowService.Environment == "" {
		return DefaultEnvironment
	}
	return c.WorkflowService.Environment
}

// DatabaseURL renders the pgx connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode,
	)
}
