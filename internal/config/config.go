package config

import (
	"os"
	"strings"
	"time"
)

type APIConfig struct {
	Addr           string
	MailDriver     string
	MailDSN        string
	GameConfigPath string
	TickEvery      time.Duration
	Season         string
}

type CLIConfig struct {
	APIBaseURL string
	PlayerID   string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("LADLE_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:           addr,
		MailDriver:     envMailDriverDefault(),
		MailDSN:        strings.TrimSpace(os.Getenv("LADLE_MAIL_DSN")),
		GameConfigPath: envDefault("LADLE_GAME_CONFIG", "game.toml"),
		TickEvery:      envDurationDefault("LADLE_TICK_EVERY", time.Minute),
		Season:         envDefault("LADLE_SEASON", "spring"),
	}
	return cfg, nil
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("LDL_API_BASE_URL", "http://localhost:8080"), "/"),
		PlayerID:   envDefault("LDL_PLAYER_ID", ""),
	}
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envMailDriverDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("LADLE_MAIL_DRIVER")))
	switch v {
	case "memory", "sqlite", "postgres":
		return v
	default:
		return "memory"
	}
}
