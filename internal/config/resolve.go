package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvBaseURL = "REXSTER_BASE_URL"
	EnvGraph   = "REXSTER_GRAPH"
	EnvProfile = "REXSTER_PROFILE"
)

// Endpoint is the resolved server and graph a command talks to.
type Endpoint struct {
	BaseURL     string
	Graph       string
	ReturnKeys  []string
	ContentType string
	Profile     string // empty when nothing came from a stored profile
}

// Overrides carries values given on the command line.
type Overrides struct {
	BaseURL string
	Graph   string
	Profile string

	// AllowMissingGraph is set by server level commands that never address
	// a graph.
	AllowMissingGraph bool
}

// ResolveEndpoint merges, from lowest to highest precedence, the stored
// profile, REXSTER_* environment variables and command line overrides.
// An explicitly named profile that does not exist is an error; a missing
// implicit profile is not.
func ResolveEndpoint(o Overrides) (Endpoint, error) {
	var ep Endpoint

	name := strings.TrimSpace(o.Profile)
	explicit := name != ""
	if !explicit {
		name = strings.TrimSpace(os.Getenv(EnvProfile))
		explicit = name != ""
	}
	if !explicit {
		if current, err := CurrentProfile(); err == nil {
			name = current
		}
	}

	if name != "" {
		profile, err := LoadProfile(name)
		switch {
		case err == nil:
			ep.BaseURL = profile.BaseURL
			ep.Graph = profile.Graph
			ep.ReturnKeys = profile.ReturnKeys
			ep.ContentType = profile.ContentType
			ep.Profile = name
		case explicit:
			return Endpoint{}, err
		}
		// A missing or unreadable implicit profile does not block env and
		// flag configuration.
	}

	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		ep.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGraph)); v != "" {
		ep.Graph = v
	}
	if v := strings.TrimSpace(o.BaseURL); v != "" {
		ep.BaseURL = v
	}
	if v := strings.TrimSpace(o.Graph); v != "" {
		ep.Graph = v
	}

	if ep.BaseURL == "" && ep.Graph == "" {
		return Endpoint{}, ErrNotConfigured
	}
	if ep.BaseURL == "" {
		return Endpoint{}, fmt.Errorf("base URL is required (set %s or pass --base-url)", EnvBaseURL)
	}
	if ep.Graph == "" && !o.AllowMissingGraph {
		return Endpoint{}, fmt.Errorf("graph name is required (set %s or pass --graph)", EnvGraph)
	}
	return ep, nil
}

// LoadDotEnv loads .env from dir when it exists. Variables already present
// in the environment are kept.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
