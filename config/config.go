package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host" json:"host"`
	Port      int    `yaml:"port" json:"port"`
	Secret    string `yaml:"secret" json:"secret"`
	JwtExpire int    `yaml:"jwt_expire" json:"jwt_expire"` // hours
}

type DBConfig struct {
	Type   string `yaml:"type" json:"type"` // postgres or sqlite
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Name   string `yaml:"name" json:"name"`
	User   string `yaml:"user" json:"user"`
	Passwd string `yaml:"passwd" json:"passwd"`
	Debug  bool   `yaml:"debug" json:"debug"`
}

type CartConfig struct {
	// TTLHours controls when the purge job drops carts that have not been
	// touched; 0 disables the purge.
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours"`
}

type PaymentConfig struct {
	// Provider selects the capture gateway: paypal or sandbox
	Provider     string `yaml:"provider" json:"provider"`
	PaypalApiUrl string `yaml:"paypal_api_url" json:"paypal_api_url"`
	PaypalToken  string `yaml:"paypal_token" json:"paypal_token"`
}

type SmtpConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
	From     string `yaml:"from" json:"from"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"` // development or production
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system" json:"system"`
	Web      WebConfig     `yaml:"web" json:"web"`
	Database DBConfig      `yaml:"database" json:"database"`
	Cart     CartConfig    `yaml:"cart" json:"cart"`
	Payment  PaymentConfig `yaml:"payment" json:"payment"`
	Smtp     SmtpConfig    `yaml:"smtp" json:"smtp"`
	Logger   LogConfig     `yaml:"logger" json:"logger"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "openmall",
			Location: "Asia/Kolkata",
			Workdir:  "/var/openmall",
			Debug:    true,
		},
		Web: WebConfig{
			Host:      "0.0.0.0",
			Port:      1816,
			Secret:    "9b6de5cc-openmall-0338-4f02-secret",
			JwtExpire: 72,
		},
		Database: DBConfig{
			Type:   "postgres",
			Host:   "127.0.0.1",
			Port:   5432,
			Name:   "openmall",
			User:   "postgres",
			Passwd: "openmall",
		},
		Cart:    CartConfig{TTLHours: 720},
		Payment: PaymentConfig{Provider: "sandbox", PaypalApiUrl: "https://api-m.sandbox.paypal.com"},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/openmall/openmall.log",
		},
	}
}

// LoadConfig reads the YAML configuration file and applies environment
// overrides. A missing file is not an error, defaults are used.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}
	setEnvValue("OPENMALL_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvValue("OPENMALL_WEB_HOST", &cfg.Web.Host)
	setEnvValue("OPENMALL_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("OPENMALL_WEB_PORT", &cfg.Web.Port)
	setEnvValue("OPENMALL_DB_TYPE", &cfg.Database.Type)
	setEnvValue("OPENMALL_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("OPENMALL_DB_PORT", &cfg.Database.Port)
	setEnvValue("OPENMALL_DB_NAME", &cfg.Database.Name)
	setEnvValue("OPENMALL_DB_USER", &cfg.Database.User)
	setEnvValue("OPENMALL_DB_PWD", &cfg.Database.Passwd)
	setEnvValue("OPENMALL_PAYMENT_PROVIDER", &cfg.Payment.Provider)
	setEnvValue("OPENMALL_PAYPAL_TOKEN", &cfg.Payment.PaypalToken)
	setEnvBoolValue("OPENMALL_SYSTEM_DEBUG", &cfg.System.Debug)
	return cfg
}

func (c *AppConfig) InitDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0o755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "metrics"), 0o755)
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToInt(evalue)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}
