package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Storage backends understood by storage.OpenKV.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

type Config struct {
	Env          string
	Build        string
	AppName      string
	Debug        bool
	TestMode     bool
	SecretKey    string
	RollbarToken string

	Server struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ReadTimeout               time.Duration
		WriteTimeout              time.Duration
		ShutdownTimeout           time.Duration
		DisableRequestLogs        bool
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	Storage struct {
		Backend string
		Timeout time.Duration
		Seed    bool
		// Dir is where the file backend keeps its values.
		Dir string
		// Quota caps the size in bytes of a single stored value (file backend). 0 means unlimited.
		Quota int64
	}

	SQLite struct {
		DSN string
	}

	Database struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	Auth struct {
		AdminEmail string
		// AdminPasswordHash is a bcrypt hash; when empty AdminPassword is hashed at startup.
		AdminPasswordHash string
		AdminPassword     string
		AdminDomain       string
		DemoLogin         bool
	}
}

// DatabaseAddress returns the "host:port" of the database server.
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
}

// NewConfig reads the configuration from the environment.
// ENV selects the variable prefix (DEV by default) and the optional `config/.env.<env>` file to load first,
// e.g. DEV_STORAGE_BACKEND=sqlite.
func NewConfig() *Config {
	conf := loadConfig()
	if err := conf.check(); err != nil {
		log.Fatalf("config: %v", err)
	}
	return conf
}

// check rejects settings the server must not start with.
func (c *Config) check() error {
	if c.SecretKey == "" {
		return errors.Errorf("%s_SECRETKEY must be set", c.Env)
	}
	return nil
}

func loadConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "School Portal")
	v.SetDefault("secretKey", "q8!nw2v#k$0s7-zr=ut4h(x)l5e&j9p+dc3m%yg_6af*ob1i")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 4*time.Hour)

	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.timeout", 2*time.Second)
	v.SetDefault("storage.seed", true)
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.quota", int64(5<<20))

	v.SetDefault("sqlite.dsn", "file:schoolportal.db?_pragma=busy_timeout(5000)")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "schoolportal")
	v.SetDefault("database.user", "schoolportal")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "")

	v.SetDefault("auth.adminEmail", "admin")
	v.SetDefault("auth.adminPasswordHash", "")
	v.SetDefault("auth.adminPassword", "admin123")
	v.SetDefault("auth.adminDomain", "@admin.school.ru")
	v.SetDefault("auth.demoLogin", true)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("storage.backend", BackendMemory)
		v.SetDefault("server.disableRequestLogs", true)
	case "PROD":
		v.SetDefault("debug", false)
		v.SetDefault("auth.demoLogin", false)
		v.SetDefault("auth.adminPassword", "")
		v.SetDefault("secretKey", "")
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Build:        v.GetString("build"),
		AppName:      v.GetString("appName"),
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
	}

	conf.Server.Address = v.GetString("server.address")
	conf.Server.Host = v.GetString("server.host")
	conf.Server.DebugHost = v.GetString("server.debugHost")
	conf.Server.ReadTimeout = v.GetDuration("server.readTimeout")
	conf.Server.WriteTimeout = v.GetDuration("server.writeTimeout")
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Server.DisableRequestLogs = v.GetBool("server.disableRequestLogs")
	conf.Server.JWTExpirationDelta = v.GetDuration("server.jwtExpirationDelta")
	conf.Server.JWTRefreshExpirationDelta = v.GetDuration("server.jwtRefreshExpirationDelta")

	conf.Storage.Backend = strings.ToLower(v.GetString("storage.backend"))
	conf.Storage.Timeout = v.GetDuration("storage.timeout")
	conf.Storage.Seed = v.GetBool("storage.seed")
	conf.Storage.Dir = v.GetString("storage.dir")
	conf.Storage.Quota = v.GetInt64("storage.quota")

	conf.SQLite.DSN = v.GetString("sqlite.dsn")

	conf.Database.Engine = v.GetString("database.engine")
	conf.Database.Host = v.GetString("database.host")
	conf.Database.Port = v.GetInt("database.port")
	conf.Database.Name = v.GetString("database.name")
	conf.Database.User = v.GetString("database.user")
	conf.Database.Password = v.GetString("database.password")
	conf.Database.AdminUser = v.GetString("database.adminUser")
	conf.Database.AdminPassword = v.GetString("database.adminPassword")
	conf.Database.DisableTLS = v.GetBool("database.disableTLS")

	conf.Redis.Addr = v.GetString("redis.addr")
	conf.Redis.Password = v.GetString("redis.password")
	conf.Redis.DB = v.GetInt("redis.db")
	conf.Redis.Prefix = v.GetString("redis.prefix")

	conf.Auth.AdminEmail = CleanString(v.GetString("auth.adminEmail"), true /* lower */)
	conf.Auth.AdminPasswordHash = v.GetString("auth.adminPasswordHash")
	conf.Auth.AdminPassword = v.GetString("auth.adminPassword")
	conf.Auth.AdminDomain = CleanString(v.GetString("auth.adminDomain"), true /* lower */)
	conf.Auth.DemoLogin = v.GetBool("auth.demoLogin")

	return conf
}

// NewTestConfig returns the configuration used by tests: in-memory storage, no seed data, quiet server.
func NewTestConfig() *Config {
	if err := os.Setenv("ENV", "TEST"); err != nil {
		panic(fmt.Sprintf("setting ENV: %v", err))
	}
	conf := NewConfig()
	conf.Storage.Backend = BackendMemory
	conf.Storage.Seed = false
	conf.Server.DisableRequestLogs = true
	return conf
}

// Getwd returns the project root: the closest parent of the working directory holding a go.mod,
// or the working directory itself.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		if dir == filepath.Dir(dir) {
			return wd
		}
	}
}
