// Package config は環境変数・.env・YAMLファイルから設定を読み込む
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DatasetSourceConstants はデータセットの取得元
const (
	DatasetSourceHTTP     = "http"
	DatasetSourcePostgres = "postgres"
	DatasetSourceSupabase = "supabase"
)

// Endpoints はデータAPIのパス
type Endpoints struct {
	Regions           string `yaml:"regions"`
	Outline           string `yaml:"outline"`
	CulturalSites     string `yaml:"cultural_sites"`
	Branches          string `yaml:"branches"`
	Schools           string `yaml:"schools"`
	EthnicitySearch   string `yaml:"ethnicity_search"`
	RegionSearch      string `yaml:"region_search"`
	RegionEthnicities string `yaml:"region_ethnicities"`
}

// MapDefaults は地図の初期表示
type MapDefaults struct {
	CenterLat float64 `yaml:"center_lat"`
	CenterLng float64 `yaml:"center_lng"`
	Zoom      int     `yaml:"zoom"`
}

// Config はアプリケーション設定
type Config struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"log_level"`

	DataAPIBaseURL string    `yaml:"data_api_base_url"`
	DatasetSource  string    `yaml:"dataset_source"`
	Endpoints      Endpoints `yaml:"endpoints"`

	SupabaseURL        string `yaml:"-"`
	SupabaseAnonKey    string `yaml:"-"`
	SupabaseDBPassword string `yaml:"-"`
	DatabaseURL        string `yaml:"-"`

	RoutingBaseURL string        `yaml:"routing_base_url"`
	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"-"`
	RedisDB        int           `yaml:"redis_db"`
	RouteCacheTTL  time.Duration `yaml:"route_cache_ttl"`

	Map                MapDefaults   `yaml:"map"`
	SearchDebounce     time.Duration `yaml:"search_debounce"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	SessionIdleTimeout time.Duration `yaml:"session_idle_timeout"`

	// DotEnvLoaded は.envファイルを読み込めたか
	DotEnvLoaded bool `yaml:"-"`
}

// Default は既定値の設定を返す
func Default() *Config {
	return &Config{
		Port:           "8080",
		LogLevel:       "info",
		DataAPIBaseURL: "http://localhost:5000",
		DatasetSource:  DatasetSourceHTTP,
		Endpoints: Endpoints{
			Regions:           "/api/geojson/phuong-xa",
			Outline:           "/api/geojson/tinh-thanh",
			CulturalSites:     "/api/dia-diem-van-hoa",
			Branches:          "/api/phong-giao-dich",
			Schools:           "/api/truong-hoc",
			EthnicitySearch:   "/api/dan-toc/search",
			RegionSearch:      "/api/search",
			RegionEthnicities: "/api/dan-toc",
		},
		RoutingBaseURL:     "https://router.project-osrm.org",
		RouteCacheTTL:      10 * time.Minute,
		Map:                MapDefaults{CenterLat: 10.25, CenterLng: 105.97, Zoom: 10},
		SearchDebounce:     300 * time.Millisecond,
		HTTPTimeout:        10 * time.Second,
		SessionIdleTimeout: 30 * time.Minute,
	}
}

// Load は .env → YAML(MAP_CONFIG_FILE) → 環境変数 の順に設定を重ねる
func Load() (*Config, error) {
	cfg := Default()
	cfg.DotEnvLoaded = godotenv.Load() == nil

	if path := os.Getenv("MAP_CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("設定ファイルの読み込みに失敗 (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("設定ファイルのパースに失敗 (%s): %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("PORT", &c.Port)
	setString("LOG_LEVEL", &c.LogLevel)
	setString("DATA_API_BASE_URL", &c.DataAPIBaseURL)
	setString("DATASET_SOURCE", &c.DatasetSource)
	setString("SUPABASE_URL", &c.SupabaseURL)
	setString("SUPABASE_ANON_KEY", &c.SupabaseAnonKey)
	setString("SUPABASE_DB_PASSWORD", &c.SupabaseDBPassword)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("ROUTING_BASE_URL", &c.RoutingBaseURL)
	setString("REDIS_ADDR", &c.RedisAddr)
	setString("REDIS_PASSWORD", &c.RedisPassword)

	if v := strings.TrimSpace(getenv("REDIS_DB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("REDIS_DBの値が不正です: %q", v)
		}
		c.RedisDB = n
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"ROUTE_CACHE_TTL", &c.RouteCacheTTL},
		{"HTTP_TIMEOUT", &c.HTTPTimeout},
		{"SESSION_IDLE_TIMEOUT", &c.SessionIdleTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(getenv(d.key))
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sの値が不正です: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate は設定の組み合わせを検証する
func (c *Config) Validate() error {
	c.DatasetSource = strings.ToLower(c.DatasetSource)
	c.DataAPIBaseURL = strings.TrimRight(c.DataAPIBaseURL, "/")
	c.RoutingBaseURL = strings.TrimRight(c.RoutingBaseURL, "/")

	switch c.DatasetSource {
	case DatasetSourceHTTP:
		if c.DataAPIBaseURL == "" {
			return errors.New("DATA_API_BASE_URL環境変数が設定されていません")
		}
	case DatasetSourcePostgres:
		if c.DatabaseURL == "" && (c.SupabaseURL == "" || c.SupabaseDBPassword == "") {
			return errors.New("DATABASE_URL または SUPABASE_URL/SUPABASE_DB_PASSWORD が必要です")
		}
	case DatasetSourceSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return errors.New("SUPABASE_URL と SUPABASE_ANON_KEY が必要です")
		}
	default:
		return fmt.Errorf("DATASET_SOURCEの値が不正です: %q", c.DatasetSource)
	}
	if c.RoutingBaseURL == "" {
		return errors.New("ROUTING_BASE_URLが空です")
	}
	return nil
}

// RedisEnabled はRedisキャッシュを使うか
func (c *Config) RedisEnabled() bool {
	return c.RedisAddr != ""
}

// Addr はHTTPサーバーの待ち受けアドレス
func (c *Config) Addr() string {
	return ":" + c.Port
}
