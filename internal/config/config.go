// Package config provides functionality for managing configuration options
// for the application using a .env file, command-line flags, a JSON config
// file and environment variables.
//
// Precedence, lowest first: defaults, flags, the JSON file, environment
// variables. A .env file is loaded into the environment before anything
// else and never overrides variables that are already set.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the application.
type Options struct {
	// Address defines the server's listening address (ip:port).
	Address string `json:"address"`

	// StoreDriver selects the record store: "postgres" or "mongo".
	StoreDriver string `json:"store_driver"`
	// DatabaseDSN holds the Postgres connection string.
	DatabaseDSN string `json:"database_dsn"`
	MongoURI    string `json:"mongo_uri"`
	DBName      string `json:"db_name"`
	// RedisAddr enables the shared login attempt counter when set.
	RedisAddr string `json:"redis_addr"`

	SecretKey       string `json:"secret_key"`
	Algorithm       string `json:"algorithm"`
	TokenTTLMinutes int    `json:"access_token_expire_minutes"`

	MailHost     string `json:"mail_host"`
	MailPort     int    `json:"mail_port"`
	MailUsername string `json:"mail_username"`
	MailPassword string `json:"mail_password"`
	MailFrom     string `json:"mail_from"`
	// AdminEmail receives a copy of every submission. Defaults to MailUsername.
	AdminEmail string `json:"admin_email"`

	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"admin_password"`

	AllowedOrigins []string `json:"allowed_origins"`

	LoginMaxAttempts int  `json:"login_max_attempts"`
	LoginAutoLogin   bool `json:"login_autologin"`

	NotifyQueueSize int `json:"notify_queue_size"`
	NotifyWorkers   int `json:"notify_workers"`

	LogLevel string `json:"log_level"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// Config is the path to the Config file.
	Config string `json:"-"`
	// EnvFile is the path to the .env file.
	EnvFile string `json:"-"`
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It exits the process on malformed input.
func Parse() *Options {
	opts, err := parse(os.Args[1:], os.LookupEnv)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return opts
}

func defaults() *Options {
	return &Options{
		Address:          "localhost:8080",
		StoreDriver:      "postgres",
		MongoURI:         "mongodb://localhost:27017",
		DBName:           "sellharborx",
		Algorithm:        "HS256",
		TokenTTLMinutes:  60,
		MailHost:         "smtp.gmail.com",
		MailPort:         587,
		AllowedOrigins:   []string{"https://sellharborx.com", "https://www.sellharborx.com"},
		LoginMaxAttempts: 5,
		LoginAutoLogin:   true,
		NotifyQueueSize:  100,
		NotifyWorkers:    2,
		LogLevel:         "info",
	}
}

func parse(args []string, lookup func(string) (string, bool)) (*Options, error) {
	options := defaults()

	flags := flag.NewFlagSet("server", flag.ContinueOnError)
	flags.StringVar(&options.Address, "a", options.Address, "run on ip:port server")
	flags.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flags.StringVar(&options.StoreDriver, "s", options.StoreDriver, "record store: postgres or mongo")
	flags.StringVar(&options.Config, "config", "config.json", "path to config file")
	flags.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
	flags.StringVar(&options.EnvFile, "env", ".env", "path to .env file")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	if err := godotenv.Load(options.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", options.EnvFile, err)
	}

	// Override flags with environment variables if set
	if configPath, ok := lookup("CONFIG"); ok && configPath != "" {
		options.Config = configPath
	}
	if err := loadFile(options.Config, options); err != nil {
		return nil, err
	}
	if err := applyEnv(options, lookup); err != nil {
		return nil, err
	}

	if options.MailFrom == "" {
		options.MailFrom = options.MailUsername
	}
	if options.AdminEmail == "" {
		options.AdminEmail = options.MailUsername
	}
	if options.StoreDriver != "postgres" && options.StoreDriver != "mongo" {
		return nil, fmt.Errorf("unknown store driver %q", options.StoreDriver)
	}
	return options, nil
}

func loadFile(path string, options *Options) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error while reading config file: %w", err)
	}
	if err := json.Unmarshal(data, options); err != nil {
		return fmt.Errorf("error while parsing config file: %w", err)
	}
	return nil
}

func applyEnv(o *Options, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("SERVER_ADDRESS", &o.Address)
	str("STORE_DRIVER", &o.StoreDriver)
	str("DATABASE_DSN", &o.DatabaseDSN)
	str("MONGO_URI", &o.MongoURI)
	str("DB_NAME", &o.DBName)
	str("REDIS_ADDR", &o.RedisAddr)
	str("SECRET_KEY", &o.SecretKey)
	str("ALGORITHM", &o.Algorithm)
	num("ACCESS_TOKEN_EXPIRE_MINUTES", &o.TokenTTLMinutes)
	str("MAIL_HOST", &o.MailHost)
	num("MAIL_PORT", &o.MailPort)
	str("MAIL_USERNAME", &o.MailUsername)
	str("MAIL_PASSWORD", &o.MailPassword)
	str("MAIL_FROM", &o.MailFrom)
	str("ADMIN_EMAIL", &o.AdminEmail)
	str("ADMIN_USERNAME", &o.AdminUsername)
	str("ADMIN_PASSWORD", &o.AdminPassword)
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		o.AllowedOrigins = splitList(v)
	}
	num("LOGIN_MAX_ATTEMPTS", &o.LoginMaxAttempts)
	boolean("LOGIN_AUTOLOGIN", &o.LoginAutoLogin)
	num("NOTIFY_QUEUE_SIZE", &o.NotifyQueueSize)
	num("NOTIFY_WORKERS", &o.NotifyWorkers)
	str("LOG_LEVEL", &o.LogLevel)
	str("TLS_CERT", &o.TLSCert)
	str("TLS_KEY", &o.TLSKey)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
