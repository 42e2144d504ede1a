package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config 全局配置
// 启动时加载一次,通过构造函数注入各组件,不使用全局变量
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	GRPC         GRPCConfig         `mapstructure:"grpc"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	JWT          JWTConfig          `mapstructure:"jwt"`
	Log          LogConfig          `mapstructure:"log"`
	Payment      PaymentConfig      `mapstructure:"payment"`
	Notification NotificationConfig `mapstructure:"notification"`
	Tracing      TracingConfig      `mapstructure:"tracing"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug | release | test
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PublicURL 对外访问地址,用于拼接激活链接
	PublicURL string     `mapstructure:"public_url"`
	CORS      CORSConfig `mapstructure:"cors"`
}

// CORSConfig 前端商城跨域访问,allow_credentials为true时不能配置"*"
type CORSConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	AllowOrigins     []string      `mapstructure:"allow_origins"`
	AllowHeaders     []string      `mapstructure:"allow_headers"`
	AllowCredentials bool          `mapstructure:"allow_credentials"`
	MaxAge           time.Duration `mapstructure:"max_age"`
}

// GRPCConfig 健康检查端口,0表示不启动
type GRPCConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	Charset         string        `mapstructure:"charset"`
	ParseTime       bool          `mapstructure:"parse_time"`
	Loc             string        `mapstructure:"loc"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	// AutoMigrate true时启动用gorm.AutoMigrate建表(开发环境),否则执行migrations
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN user:password@tcp(host:port)/dbname?charset=utf8mb4&parseTime=True&loc=Asia%2FHo_Chi_Minh
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=%s&multiStatements=true",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.Charset, d.ParseTime, url.QueryEscape(d.Loc))
}

type RedisConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr 返回Redis地址
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpire  time.Duration `mapstructure:"access_token_expire"`
	RefreshTokenExpire time.Duration `mapstructure:"refresh_token_expire"`
}

type LogConfig struct {
	Level        string `mapstructure:"level"`  // debug | info | warn | error
	Format       string `mapstructure:"format"` // console | json
	Output       string `mapstructure:"output"` // stdout | stderr | /path/to/file
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// PaymentConfig 支付相关配置
type PaymentConfig struct {
	CatalogCurrency string `mapstructure:"catalog_currency"`
	// ExchangeRates 1单位外币折合多少目录币种,字符串避免浮点误差,如 usd: "25000"
	ExchangeRates    map[string]string `mapstructure:"exchange_rates"`
	DefaultCODStatus string            `mapstructure:"default_cod_status"`
	DefaultQRStatus  string            `mapstructure:"default_qr_status"`
	SePay            SePayConfig       `mapstructure:"sepay"`
	PayPal           PayPalConfig      `mapstructure:"paypal"`
	Breaker          BreakerConfig     `mapstructure:"breaker"`
	// CallbackLockTTL 同一笔支付回调的处理锁有效期
	CallbackLockTTL time.Duration `mapstructure:"callback_lock_ttl"`
}

// Rates 解析汇率
func (p PaymentConfig) Rates() (map[string]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal, len(p.ExchangeRates))
	for currency, raw := range p.ExchangeRates {
		rate, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("汇率%s格式错误: %w", currency, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("汇率%s必须大于0: %s", currency, raw)
		}
		rates[strings.ToUpper(currency)] = rate
	}
	return rates, nil
}

// SePayConfig 收款账户,用于生成转账二维码
type SePayConfig struct {
	Bank     string `mapstructure:"bank"`
	Account  string `mapstructure:"account"`
	Template string `mapstructure:"template"` // compact | qronly | 空
}

type PayPalConfig struct {
	// Mode sandbox | live,为空表示不启用PayPal
	Mode      string        `mapstructure:"mode"`
	ClientID  string        `mapstructure:"client_id"`
	Secret    string        `mapstructure:"secret"`
	Currency  string        `mapstructure:"currency"`
	ReturnURL string        `mapstructure:"return_url"`
	CancelURL string        `mapstructure:"cancel_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Enabled 是否启用PayPal
func (p PayPalConfig) Enabled() bool {
	return p.Mode != ""
}

// BreakerConfig 支付通道熔断
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
}

// NotificationConfig 邮件通知
type NotificationConfig struct {
	Driver     string     `mapstructure:"driver"` // mq | log
	MQURL      string     `mapstructure:"mq_url"`
	Exchange   string     `mapstructure:"exchange"`
	RoutingKey string     `mapstructure:"routing_key"`
	Queue      string     `mapstructure:"queue"`
	SMTP       SMTPConfig `mapstructure:"smtp"`
}

type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr host:port
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load 加载配置
// 1. 默认读取 ./config/config.yaml
// 2. BOOKSTORE_ENV=prod 时读取 config.prod.yaml
// 3. 环境变量覆盖,如 BOOKSTORE_DATABASE_PASSWORD → database.password
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	if env := v.GetString("env"); env != "" {
		v.SetConfigName("config." + env)
	}
	return load(v)
}

// LoadFile 从指定文件加载(测试、命令行参数)
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("BOOKSTORE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parse_time", true)
	v.SetDefault("database.loc", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("payment.catalog_currency", "VND")
	v.SetDefault("payment.default_cod_status", "PENDING")
	v.SetDefault("payment.default_qr_status", "COMPLETED")
	v.SetDefault("payment.paypal.currency", "USD")
	v.SetDefault("payment.paypal.timeout", 10*time.Second)
	v.SetDefault("payment.breaker.max_requests", 1)
	v.SetDefault("payment.breaker.interval", time.Minute)
	v.SetDefault("payment.breaker.timeout", 30*time.Second)
	v.SetDefault("payment.breaker.failure_threshold", 5)
	v.SetDefault("payment.callback_lock_ttl", 30*time.Second)
	v.SetDefault("notification.driver", "log")
	v.SetDefault("notification.exchange", "bookstore.notifications")
	v.SetDefault("notification.routing_key", "email.send")
	v.SetDefault("notification.queue", "bookstore.email")
	v.SetDefault("notification.smtp.timeout", 10*time.Second)
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("server.cors.allow_headers", []string{"Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("server.cors.max_age", 12*time.Hour)
}

func load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate 配置校验
func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("无效的服务端口: %d", cfg.Server.Port)
	}
	if cfg.GRPC.Port < 0 || cfg.GRPC.Port > 65535 {
		return fmt.Errorf("无效的gRPC端口: %d", cfg.GRPC.Port)
	}

	if cfg.Server.Mode == "release" &&
		(cfg.JWT.Secret == "" || cfg.JWT.Secret == "your-secret-key-change-in-production") {
		return fmt.Errorf("生产环境必须修改JWT密钥")
	}

	rates, err := cfg.Payment.Rates()
	if err != nil {
		return err
	}

	if pp := cfg.Payment.PayPal; pp.Enabled() {
		if pp.Mode != "sandbox" && pp.Mode != "live" {
			return fmt.Errorf("payment.paypal.mode只能是sandbox或live: %s", pp.Mode)
		}
		if pp.ClientID == "" || pp.Secret == "" {
			return fmt.Errorf("启用PayPal时必须配置client_id和secret")
		}
		if _, ok := rates[strings.ToUpper(pp.Currency)]; !ok &&
			!strings.EqualFold(pp.Currency, cfg.Payment.CatalogCurrency) {
			return fmt.Errorf("缺少%s的汇率配置", pp.Currency)
		}
	}

	if c := cfg.Server.CORS; c.Enabled && c.AllowCredentials {
		for _, o := range c.AllowOrigins {
			if o == "*" {
				return fmt.Errorf("server.cors.allow_credentials=true时allow_origins不能包含*")
			}
		}
	}

	switch cfg.Notification.Driver {
	case "log":
	case "mq":
		if cfg.Notification.MQURL == "" {
			return fmt.Errorf("notification.driver=mq时必须配置mq_url")
		}
	default:
		return fmt.Errorf("未知的通知驱动: %s", cfg.Notification.Driver)
	}

	return nil
}
