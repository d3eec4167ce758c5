package config

// Default returns the configuration defaults. File and environment values
// overlay these.
func Default() *Config {
	return &Config{
		Server: Server{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Redis: Redis{
			URL:               "redis://localhost:6379/0",
			ConnectTimeout:    10,
			HeartbeatInterval: 10,
			RetryInitial:      2,
			RetryMax:          60,
		},
		Firewall: Firewall{
			MaxRequestsPerSecond: 20,
			RateWindow:           1,
			BanThreshold:         10,
			BanDuration:          86400,
			ViolationWindow:      86400,
		},
		Auth: Auth{
			Mode: "none",
		},
	}
}
