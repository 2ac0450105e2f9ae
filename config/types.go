package config

import "time"

type AppConfig struct {
	ListenAddr string         `yaml:"listen_addr" env:"READYROOM_LISTEN_ADDR" env-default:"0.0.0.0:8080"`
	DBPath     string         `yaml:"db_path" env:"READYROOM_DB_PATH" env-default:"data/readyroom.db"`
	AppEnv     string         `yaml:"app_env" env:"READYROOM_APP_ENV"`
	Auth       AuthConfig     `yaml:"auth"`
	Security   SecurityConfig `yaml:"security"`
}

type AuthConfig struct {
	Auth0Domain string `yaml:"auth0_domain" env:"READYROOM_AUTH0_DOMAIN"`
	Audience    string `yaml:"audience" env:"READYROOM_AUTH0_AUDIENCE"`
}

// Issuer is the expected `iss` claim, derived from the Auth0 tenant domain.
func (a AuthConfig) Issuer() string {
	if a.Auth0Domain == "" {
		return ""
	}
	return "https://" + a.Auth0Domain + "/"
}

// JWKSURL points at the tenant's published signing keys.
func (a AuthConfig) JWKSURL() string {
	if a.Auth0Domain == "" {
		return ""
	}
	return "https://" + a.Auth0Domain + "/.well-known/jwks.json"
}

type SecurityConfig struct {
	RateLimitPoints int           `yaml:"rate_limit_points" env:"READYROOM_RATE_LIMIT_POINTS" env-default:"60"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window" env:"READYROOM_RATE_LIMIT_WINDOW" env-default:"1m"`
	TrustedProxies  []string      `yaml:"trusted_proxies" env:"READYROOM_TRUSTED_PROXIES" env-separator:","`
}
