// Package config provides functionality for managing configuration options
// for the gateway using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the gateway process.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string

	// AuthServiceURL is the base URL of the authentication backend.
	AuthServiceURL string

	// SecretsServiceURL is the base URL of the secrets backend.
	SecretsServiceURL string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Port, "a", "localhost:3000", "run on ip:port server")
	flag.StringVar(&options.AuthServiceURL, "auth", "http://localhost:50051", "auth service base URL")
	flag.StringVar(&options.SecretsServiceURL, "secrets", "http://localhost:50053", "secrets service base URL")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if authURL := os.Getenv("AUTH_SERVICE_URL"); authURL != "" {
		options.AuthServiceURL = authURL
	}
	if secretsURL := os.Getenv("SECRETS_SERVICE_URL"); secretsURL != "" {
		options.SecretsServiceURL = secretsURL
	}

	return options
}
