package config

import "time"

// Config holds firewall service configuration
type Config struct {
	Server   Server   `yaml:"server"`
	Redis    Redis    `yaml:"redis"`
	Firewall Firewall `yaml:"firewall"`
	Audit    Audit    `yaml:"audit"`
	Auth     Auth     `yaml:"auth"`
}

// Server configuration for the HTTP listener
type Server struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
}

// Redis configuration for the shared state store client. Durations are in
// seconds, matching the rest of the file format.
type Redis struct {
	URL               string `yaml:"url"`
	ConnectTimeout    int    `yaml:"connectTimeout"`
	HeartbeatInterval int    `yaml:"heartbeatInterval"`
	RetryInitial      int    `yaml:"retryInitial"`
	RetryMax          int    `yaml:"retryMax"`
}

// ConnectTimeoutDuration returns the dial/probe timeout
func (r *Redis) ConnectTimeoutDuration() time.Duration {
	return time.Duration(r.ConnectTimeout) * time.Second
}

// HeartbeatIntervalDuration returns the monitor heartbeat interval
func (r *Redis) HeartbeatIntervalDuration() time.Duration {
	return time.Duration(r.HeartbeatInterval) * time.Second
}

// RetryInitialDuration returns the initial reconnect backoff
func (r *Redis) RetryInitialDuration() time.Duration {
	return time.Duration(r.RetryInitial) * time.Second
}

// RetryMaxDuration returns the reconnect backoff cap
func (r *Redis) RetryMaxDuration() time.Duration {
	return time.Duration(r.RetryMax) * time.Second
}

// Firewall holds the inspection pipeline thresholds. Durations are in
// seconds.
type Firewall struct {
	MaxRequestsPerSecond int `yaml:"maxRequestsPerSecond"`
	RateWindow           int `yaml:"rateWindow"`
	BanThreshold         int `yaml:"banThreshold"`
	BanDuration          int `yaml:"banDuration"`
	ViolationWindow      int `yaml:"violationWindow"`
}

// RateWindowTTL returns the rate counter window
func (f *Firewall) RateWindowTTL() time.Duration {
	return time.Duration(f.RateWindow) * time.Second
}

// BanDurationTTL returns how long a ban flag lives
func (f *Firewall) BanDurationTTL() time.Duration {
	return time.Duration(f.BanDuration) * time.Second
}

// ViolationWindowTTL returns the sliding violation window
func (f *Firewall) ViolationWindowTTL() time.Duration {
	return time.Duration(f.ViolationWindow) * time.Second
}

// Audit configuration for the violation audit store. An empty path disables
// durable audit records.
type Audit struct {
	Path string `yaml:"path"`
}

// Auth configuration for the credential lookup collaborator
type Auth struct {
	// Mode selects the resolver: "none", "sqlite" or "jwt"
	Mode      string `yaml:"mode"`
	Path      string `yaml:"path"`
	JWTSecret string `yaml:"jwtSecret"`
}
