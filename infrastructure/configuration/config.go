package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"world-vlog/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	YouTube     YouTube     `json:"youtube"`
	Storage     Storage     `json:"storage"`
	Cache       Cache       `json:"cache"`
	Search      Search      `json:"search"`
	Pool        Pool        `json:"pool"`
	Rating      Rating      `json:"rating"`
}

type App struct {
	Port         int      `json:"port"`
	SecretKey    string   `json:"secretKey"`
	TLSEnabled   bool     `json:"tlsEnabled"`
	TLSCertFile  string   `json:"tlsCertFile"`
	TLSKeyFile   string   `json:"tlsKeyFile"`
	AllowOrigins []string `json:"allowOrigins"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID   string `json:"projectID"`
	RatingTopic string `json:"ratingTopic"`
}

type ServiceBus struct {
	Namespace   string `json:"namespace"`
	RatingQueue string `json:"ratingQueue"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// Storage selects the backend for each persistent concern: mongo, postgres, mssql (and redis for ratings).
type Storage struct {
	CacheDriver  string `json:"cacheDriver"`
	RatingDriver string `json:"ratingDriver"`
}

type Cache struct {
	Version         int           `json:"version"`
	MemoryCapacity  int           `json:"memoryCapacity"`
	MemoryTTL       time.Duration `json:"memoryTTL"`
	PersistentTTL   time.Duration `json:"persistentTTL"`
	StoreTimeout    time.Duration `json:"storeTimeout"`
	BreakerFailures uint32        `json:"breakerFailures"`
	BreakerTimeout  time.Duration `json:"breakerTimeout"`
}

type Search struct {
	MinViews           int64         `json:"minViews"`
	MinDurationSeconds int           `json:"minDurationSeconds"`
	ExcludeTerms       []string      `json:"excludeTerms"`
	Timeout            time.Duration `json:"timeout"`
	DetailBatchSize    int           `json:"detailBatchSize"`
	PageSize           int           `json:"pageSize"`
}

type Pool struct {
	TTL           time.Duration `json:"ttl"`
	Size          int           `json:"size"`
	LikeWeight    int64         `json:"likeWeight"`
	DislikeWeight int64         `json:"dislikeWeight"`
}

type Rating struct {
	BatchSize int `json:"batchSize"`
}

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMSSQL    = "mssql"
	DriverRedis    = "redis"
)

var C Config

func init() {
	Reload()
}

// Reload re-reads the config file and environment, e.g. after LoadEnvFromFile populated new variables.
func Reload() {
	C = Config{}
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initStorage(&C)
	initCache(&C)
	initSearch(&C)
	initPool(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = getEnv("MONGO_HOST", "localhost")
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = getEnv("MONGO_PORT", "27017")
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}
	if C.Database.Mongo.Name == "" {
		C.Database.Mongo.Name = getEnv("MONGO_DB_NAME", "world_vlog")
	}

	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = getEnv("DB_PORT", "5432")
	}

	// Azure SQL in production
	if C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = os.Getenv("MSSQL_DB_NAME")
	}
	if C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = getEnv("MSSQL_HOST", "localhost")
	}
	if C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = os.Getenv("MSSQL_PASSWORD")
	}
	if C.Database.Mssql.Port == "" {
		C.Database.Mssql.Port = getEnv("MSSQL_PORT", "1433")
	}
	if C.Database.Mssql.User == "" {
		C.Database.Mssql.User = getEnv("MSSQL_USER", "sa")
	}

	if C.RedisClient.Host == "" {
		C.RedisClient.Host = getEnv("REDIS_HOST", "localhost")
	}
	if C.RedisClient.Port == "" {
		C.RedisClient.Port = getEnv("REDIS_PORT", "6379")
	}
	if C.RedisClient.Password == "" {
		C.RedisClient.Password = os.Getenv("REDIS_PASSWORD")
	}
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		C.App.AllowOrigins = splitList(v)
	}
	if len(C.App.AllowOrigins) == 0 {
		C.App.AllowOrigins = []string{"http://localhost:3000"}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; admin endpoints will reject every token. Provide SECRET_KEY via environment.")
	}
}

func initStorage(C *Config) {
	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		C.Storage.CacheDriver = v
	}
	if v := os.Getenv("RATING_DRIVER"); v != "" {
		C.Storage.RatingDriver = v
	}
	if C.Storage.CacheDriver == "" {
		C.Storage.CacheDriver = DriverMongo
	}
	if C.Storage.RatingDriver == "" {
		C.Storage.RatingDriver = C.Storage.CacheDriver
	}
}

func initCache(C *Config) {
	applyCacheDefaults(&C.Cache)
}

func applyCacheDefaults(c *Cache) {
	if c.Version == 0 {
		c.Version = 3
	}
	if c.MemoryCapacity <= 0 {
		c.MemoryCapacity = 300
	}
	if c.MemoryTTL <= 0 {
		c.MemoryTTL = 6 * time.Hour
	}
	if c.PersistentTTL <= 0 {
		c.PersistentTTL = 7 * 24 * time.Hour
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = 3 * time.Second
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
}

func initSearch(C *Config) {
	applySearchDefaults(&C.Search)
}

func applySearchDefaults(s *Search) {
	if s.MinViews <= 0 {
		s.MinViews = 10000
	}
	if s.MinDurationSeconds <= 0 {
		s.MinDurationSeconds = 10 * 60
	}
	if len(s.ExcludeTerms) == 0 {
		s.ExcludeTerms = DefaultExcludeTerms()
	}
	if s.Timeout <= 0 {
		s.Timeout = 10 * time.Second
	}
	if s.DetailBatchSize <= 0 || s.DetailBatchSize > 50 {
		s.DetailBatchSize = 50
	}
	if s.PageSize <= 0 || s.PageSize > 50 {
		s.PageSize = 8
	}
}

func initPool(C *Config) {
	if C.Pool.TTL <= 0 {
		C.Pool.TTL = 6 * time.Hour
	}
	if C.Pool.Size <= 0 {
		C.Pool.Size = 300
	}
	if C.Pool.LikeWeight == 0 {
		C.Pool.LikeWeight = 5
	}
	if C.Pool.DislikeWeight == 0 {
		C.Pool.DislikeWeight = 10
	}
	if C.Rating.BatchSize <= 0 {
		C.Rating.BatchSize = 30
	}
}

// DefaultExcludeTerms lists content we never want to surface on a travel map.
func DefaultExcludeTerms() []string {
	return []string{
		"nightlife", "night life", "red light", "red-light", "redlight",
		"reaction", "reacts to", "dangerous", "danger zone", "scam", "ghetto",
		"kabukicho", "歌舞伎町", "tobita", "飛田新地", "patpong", "soi cowboy",
		"walking street", "de wallen",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
