// Package config reads server and client settings from a .env file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// MaxClients is the most remote actors one game accepts.
const MaxClients = 4

// Config is the server's settings.
type Config struct {
	Address     string
	Port        int
	HTTPAddr    string // empty disables the HTTP surface
	SSHPort     int    // 0 disables SSH spectators
	HostKey     string
	LevelsPath  string // empty uses the built-in levels
	Clients     int
	Wait        time.Duration
	ReadTimeout time.Duration // 0 waits forever
	UseAnchor   bool
	Observe     bool
	StartLevel  int
	Seed        int64 // 0 seeds from the clock
	ResultsLog  bool
	LogLevel    zerolog.Level
}

// ClientConfig is the client's settings. URL, when set, selects WebSocket
// over TCP.
type ClientConfig struct {
	Address  string
	Port     int
	URL      string
	Name     string
	Kind     string
	Seed     int64
	LogLevel zerolog.Level
}

// env reads typed values from the environment, keeping the first error.
type env struct{ err error }

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func (e *env) int(k string, def int) int {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(k, v, err)
		return def
	}
	return n
}

func (e *env) int64(k string, def int64) int64 {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(k, v, err)
		return def
	}
	return n
}

func (e *env) bool(k string, def bool) bool {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(k, v, err)
		return def
	}
	return b
}

func (e *env) duration(k string, def time.Duration) time.Duration {
	v := getEnv(k, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(k, v, err)
		return def
	}
	return d
}

func (e *env) fail(k, v string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("%s=%q: %w", k, v, err)
	}
}

// levelFlag lets a zerolog level be set with -log-level.
type levelFlag struct{ l *zerolog.Level }

func (f levelFlag) String() string {
	if f.l == nil {
		return ""
	}
	return f.l.String()
}

func (f levelFlag) Set(s string) error {
	l, err := zerolog.ParseLevel(s)
	if err != nil {
		return err
	}
	*f.l = l
	return nil
}

func logLevel(e *env) zerolog.Level {
	v := getEnv("LOG_LEVEL", "info")
	l, err := zerolog.ParseLevel(v)
	if err != nil {
		e.fail("LOG_LEVEL", v, err)
		return zerolog.InfoLevel
	}
	return l
}

// Load builds the server config. args excludes the program name.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	var e env
	c := Config{
		Address:     getEnv("SNARL_ADDR", "127.0.0.1"),
		Port:        e.int("SNARL_PORT", 45678),
		HTTPAddr:    os.Getenv("SNARL_HTTP_ADDR"),
		SSHPort:     e.int("SNARL_SSH_PORT", 0),
		HostKey:     getEnv("SNARL_HOST_KEY", "server_host_key"),
		LevelsPath:  os.Getenv("SNARL_LEVELS"),
		Clients:     e.int("SNARL_CLIENTS", MaxClients),
		Wait:        e.duration("SNARL_WAIT", 60*time.Second),
		ReadTimeout: e.duration("SNARL_READ_TIMEOUT", 0),
		UseAnchor:   e.bool("SNARL_ANCHOR", false),
		Observe:     e.bool("SNARL_OBSERVE", false),
		StartLevel:  e.int("SNARL_START_LEVEL", 1),
		Seed:        e.int64("SNARL_SEED", 0),
		ResultsLog:  e.bool("SNARL_RESULTS", false),
		LogLevel:    logLevel(&e),
	}
	if _, set := os.LookupEnv("SNARL_HTTP_ADDR"); !set {
		c.HTTPAddr = ":8080"
	}
	if e.err != nil {
		return Config{}, e.err
	}

	fs := flag.NewFlagSet("snarl-server", flag.ContinueOnError)
	fs.StringVar(&c.Address, "address", c.Address, "address to listen on for TCP clients")
	fs.IntVar(&c.Port, "port", c.Port, "TCP port for clients")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "HTTP listen address for /health, /state and /ws (empty disables)")
	fs.IntVar(&c.SSHPort, "ssh-port", c.SSHPort, "SSH port for spectators (0 disables)")
	fs.StringVar(&c.HostKey, "host-key", c.HostKey, "path of the SSH host key")
	fs.StringVar(&c.LevelsPath, "levels", c.LevelsPath, "levels file (default: built-in levels)")
	fs.IntVar(&c.Clients, "clients", c.Clients, "number of remote clients to wait for (1-4)")
	fs.DurationVar(&c.Wait, "wait", c.Wait, "how long to wait for clients")
	fs.DurationVar(&c.ReadTimeout, "read-timeout", c.ReadTimeout, "per-read deadline on clients (0 waits forever)")
	fs.BoolVar(&c.UseAnchor, "anchor", c.UseAnchor, "include the view anchor in player updates")
	fs.BoolVar(&c.Observe, "observe", c.Observe, "watch the game in this terminal")
	fs.IntVar(&c.StartLevel, "start", c.StartLevel, "1-based level to start at")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed (0 uses the clock)")
	fs.BoolVar(&c.ResultsLog, "results", c.ResultsLog, "append final scores to the results log")
	fs.Var(levelFlag{&c.LogLevel}, "log-level", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return c, c.validate()
}

func (c Config) validate() error {
	var errs []error
	if c.Clients < 1 || c.Clients > MaxClients {
		errs = append(errs, fmt.Errorf("clients must be between 1 and %d, got %d", MaxClients, c.Clients))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.SSHPort < 0 || c.SSHPort > 65535 {
		errs = append(errs, fmt.Errorf("ssh port %d out of range", c.SSHPort))
	}
	if c.Wait <= 0 {
		errs = append(errs, fmt.Errorf("wait must be positive, got %s", c.Wait))
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("read timeout cannot be negative, got %s", c.ReadTimeout))
	}
	if c.StartLevel < 1 {
		errs = append(errs, fmt.Errorf("start level must be at least 1, got %d", c.StartLevel))
	}
	return errors.Join(errs...)
}

// ListenAddr is the TCP address clients connect to.
func (c Config) ListenAddr() string { return fmt.Sprintf("%s:%d", c.Address, c.Port) }

// LoadClient builds the client config. args excludes the program name.
func LoadClient(args []string) (ClientConfig, error) {
	_ = godotenv.Load()

	var e env
	c := ClientConfig{
		Address:  getEnv("SNARL_ADDR", "127.0.0.1"),
		Port:     e.int("SNARL_PORT", 45678),
		URL:      os.Getenv("SNARL_URL"),
		Name:     getEnv("SNARL_NAME", getEnv("USER", "player")),
		Kind:     getEnv("SNARL_KIND", "player"),
		Seed:     e.int64("SNARL_SEED", 0),
		LogLevel: logLevel(&e),
	}
	if e.err != nil {
		return ClientConfig{}, e.err
	}

	fs := flag.NewFlagSet("snarl-client", flag.ContinueOnError)
	fs.StringVar(&c.Address, "address", c.Address, "server address")
	fs.IntVar(&c.Port, "port", c.Port, "server TCP port")
	fs.StringVar(&c.URL, "url", c.URL, "WebSocket URL, e.g. ws://host:8080/ws (overrides -address and -port)")
	fs.StringVar(&c.Name, "name", c.Name, "name to join with")
	fs.StringVar(&c.Kind, "kind", c.Kind, "actor type: player, zombie or ghost")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "random seed for the strategy (0 uses the clock)")
	fs.Var(levelFlag{&c.LogLevel}, "log-level", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return ClientConfig{}, err
	}
	switch c.Kind {
	case "player", "zombie", "ghost":
	default:
		return ClientConfig{}, fmt.Errorf("unknown kind %q", c.Kind)
	}
	if c.Port < 1 || c.Port > 65535 {
		return ClientConfig{}, fmt.Errorf("port %d out of range", c.Port)
	}
	return c, nil
}

// Addr is the TCP address of the server.
func (c ClientConfig) Addr() string { return fmt.Sprintf("%s:%d", c.Address, c.Port) }
