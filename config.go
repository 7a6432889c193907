package zuora

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvUsername = "ZUORA_USERNAME"
	EnvPassword = "ZUORA_PASSWORD"
	EnvWSDL     = "ZUORA_WSDL"
	EnvSandbox  = "ZUORA_SANDBOX"
)

// Config holds everything a Client needs to reach Zuora.
//
// The endpoint is chosen from WSDL, then Sandbox, then the production default;
// see ResolveWSDL. Credentials are not checked until Authenticate.
type Config struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// WSDL is a local path or http(s) URL of a WSDL document. When set it
	// overrides Sandbox.
	WSDL    string `yaml:"wsdl"`
	Sandbox bool   `yaml:"sandbox"`

	// Logger receives the client's log lines. Defaults to a null logger.
	Logger hclog.Logger `yaml:"-"`
	// HTTPClient is used for SOAP calls and remote WSDL documents.
	// Defaults to a pooled client from go-cleanhttp.
	HTTPClient *http.Client `yaml:"-"`
	// TracerProvider creates the spans recorded around each call.
	// Defaults to the global OpenTelemetry provider.
	TracerProvider trace.TracerProvider `yaml:"-"`
}

// String implements fmt.Stringer without exposing the password.
func (c Config) String() string {
	return fmt.Sprintf("zuora.Config{Username:%q Password:%q WSDL:%q Sandbox:%t}",
		c.Username, redactSecret(c.Password), c.WSDL, c.Sandbox)
}

// GoString keeps %#v from printing the password.
func (c Config) GoString() string {
	return c.String()
}

// LoadConfig reads a YAML configuration file. ${VAR} references are expanded
// from the environment before parsing, so the password can stay out of the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from the ZUORA_* environment variables.
// Unset variables leave the corresponding field at its zero value.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Username: os.Getenv(EnvUsername),
		Password: os.Getenv(EnvPassword),
		WSDL:     strings.TrimSpace(os.Getenv(EnvWSDL)),
	}

	if raw := strings.TrimSpace(os.Getenv(EnvSandbox)); raw != "" {
		sandbox, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvSandbox, errors.Unwrap(err))
		}
		cfg.Sandbox = sandbox
	}
	return cfg, nil
}

func redactSecret(v string) string {
	if v == "" {
		return ""
	}
	return "[REDACTED]"
}
