// Command zuora calls the Zuora SOAP API from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/sendgrid/zuora"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zuora",
		Short:         "Call the Zuora SOAP API",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a YAML configuration file")
	flags.String("username", "", "API username (overrides "+zuora.EnvUsername+")")
	flags.String("password", "", "API password (overrides "+zuora.EnvPassword+")")
	flags.String("wsdl", "", "Path or URL of a WSDL document; takes precedence over --sandbox")
	flags.Bool("sandbox", false, "Use the sandbox endpoint")
	flags.String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	flags.Duration("timeout", time.Minute, "Timeout for the whole command")

	cmd.AddCommand(
		newEndpointCommand(),
		newLoginCommand(),
		newCallCommand(),
		newQueryCommand(),
	)
	return cmd
}

func newEndpointCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint",
		Short: "Print the SOAP endpoint selected by the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *zuora.Client) error {
				endpoint, err := c.Endpoint(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", zuora.ResolveWSDL(c.Config()), endpoint)
				return nil
			})
		},
	}
}

func newLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check the configured credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd, func(ctx context.Context, c *zuora.Client) error {
				if err := c.Authenticate(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "authenticated, server URL %s\n", c.Session().ServerURL)
				return nil
			})
		},
	}
}

func newCallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <operation>",
		Short: "Call a SOAP operation and print the response element",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opArgs, err := callArgs(cmd.Flags())
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *zuora.Client) error {
				payload, err := c.Request(ctx, args[0], opArgs...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "<%s>%s</%s>\n", payload.XMLName.Local, payload.Inner, payload.XMLName.Local)
				return nil
			})
		},
	}
	cmd.Flags().StringArrayP("param", "p", nil, "Operation argument in name=value form (repeatable)")
	cmd.Flags().String("body-file", "", "File whose XML is sent inside the operation element")
	return cmd
}

func newQueryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <zoql>",
		Short: "Run a ZOQL query and print the records as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := cmd.Flags().GetBool("all")
			if err != nil {
				return err
			}
			return withClient(cmd, func(ctx context.Context, c *zuora.Client) error {
				res, err := c.Query(ctx, args[0])
				if err != nil {
					return err
				}
				records := res.Records
				for all && !res.Done && res.QueryLocator != "" {
					if res, err = c.QueryMore(ctx, res.QueryLocator); err != nil {
						return err
					}
					records = append(records, res.Records...)
				}
				return writeRecords(cmd.OutOrStdout(), records)
			})
		},
	}
	cmd.Flags().Bool("all", false, "Follow query locators until every page is read")
	return cmd
}

// withClient builds a client from the command's configuration and logs out when fn returns.
func withClient(cmd *cobra.Command, fn func(context.Context, *zuora.Client) error) error {
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	c := zuora.New(cfg)
	err = fn(ctx, c)
	if lerr := c.Logout(ctx); lerr != nil {
		logger.Warn("logout failed", "error", lerr)
	}
	return err
}

func newLogger(cmd *cobra.Command) (hclog.Logger, error) {
	raw, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}
	level := hclog.LevelFromString(raw)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level %q", raw)
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "zuora",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	}), nil
}

// loadConfig builds the configuration from the config file, then the
// environment, then explicitly set flags, each overriding the one before.
func loadConfig(fs *pflag.FlagSet) (zuora.Config, error) {
	var cfg zuora.Config

	path, err := fs.GetString("config")
	if err != nil {
		return cfg, err
	}
	if path != "" {
		if cfg, err = zuora.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	if err := applyFlagOverrides(&cfg, fs); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *zuora.Config) error {
	env, err := zuora.ConfigFromEnv()
	if err != nil {
		return err
	}
	if env.Username != "" {
		cfg.Username = env.Username
	}
	if env.Password != "" {
		cfg.Password = env.Password
	}
	if env.WSDL != "" {
		cfg.WSDL = env.WSDL
	}
	if raw, ok := os.LookupEnv(zuora.EnvSandbox); ok && strings.TrimSpace(raw) != "" {
		cfg.Sandbox = env.Sandbox
	}
	return nil
}

func applyFlagOverrides(cfg *zuora.Config, fs *pflag.FlagSet) error {
	if fs.Changed("username") {
		val, err := fs.GetString("username")
		if err != nil {
			return err
		}
		cfg.Username = val
	}
	if fs.Changed("password") {
		val, err := fs.GetString("password")
		if err != nil {
			return err
		}
		cfg.Password = val
	}
	if fs.Changed("wsdl") {
		val, err := fs.GetString("wsdl")
		if err != nil {
			return err
		}
		cfg.WSDL = strings.TrimSpace(val)
	}
	if fs.Changed("sandbox") {
		val, err := fs.GetBool("sandbox")
		if err != nil {
			return err
		}
		cfg.Sandbox = val
	}
	return nil
}

func callArgs(fs *pflag.FlagSet) ([]interface{}, error) {
	params, err := fs.GetStringArray("param")
	if err != nil {
		return nil, err
	}

	var args []interface{}
	for _, p := range params {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", p)
		}
		args = append(args, zuora.Param(name, value))
	}

	bodyFile, err := fs.GetString("body-file")
	if err != nil {
		return nil, err
	}
	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return nil, fmt.Errorf("reading body file: %w", err)
		}
		args = append(args, zuora.RawXML(data))
	}
	return args, nil
}

type recordOutput struct {
	Type   string            `yaml:"type,omitempty"`
	Fields map[string]string `yaml:"fields"`
}

func writeRecords(w io.Writer, records []zuora.Record) error {
	out := make([]recordOutput, 0, len(records))
	for _, r := range records {
		ro := recordOutput{Type: r.Object(), Fields: make(map[string]string, len(r.Fields))}
		for _, f := range r.Fields {
			ro.Fields[f.XMLName.Local] = f.Value
		}
		out = append(out, ro)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}
