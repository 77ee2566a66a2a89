package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode      string        `mapstructure:"mode"`
	Port      int           `mapstructure:"port"`
	Secret    string        `mapstructure:"secret"`
	ReadLimit int64         `mapstructure:"read_limit"`

	PublicRoomName string `mapstructure:"public_room_name"`
	PublicRoomDesc string `mapstructure:"public_room_desc"`

	HeartbeatInterval    time.Duration `mapstructure:"heartbeat_interval"`
	AmbientCheckInterval time.Duration `mapstructure:"ambient_check_interval"`
	AmbientVideoID       string        `mapstructure:"ambient_video_id"`
	ChatHistoryLimit     int           `mapstructure:"chat_history_limit"`

	MoveMaxSpeed    float64       `mapstructure:"move_max_speed"`
	MoveSlack       float64       `mapstructure:"move_slack"`
	MoveMinInterval time.Duration `mapstructure:"move_min_interval"`

	ResolverBaseURL string        `mapstructure:"resolver_base_url"`
	ResolverTimeout time.Duration `mapstructure:"resolver_timeout"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "change-me")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("public_room_name", "Public Lobby")
	v.SetDefault("public_room_desc", "For making friends and familiarizing yourself with the controls")
	v.SetDefault("heartbeat_interval", "5s")
	v.SetDefault("ambient_check_interval", "15s")
	v.SetDefault("ambient_video_id", "5-gDL5G-VQQ")
	v.SetDefault("chat_history_limit", 100)
	v.SetDefault("move_max_speed", 240)
	v.SetDefault("move_slack", 40)
	v.SetDefault("move_min_interval", "50ms")
	v.SetDefault("resolver_base_url", "http://localhost:8090")
	v.SetDefault("resolver_timeout", "10s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d\n", cfg.Mode, cfg.Port)
	return &cfg, nil
}
