package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
	// InternalToken guards service-to-service routes (trial grant, usage reset).
	InternalToken string `mapstructure:"internal_token"`
}

// BillingConfig holds the card-payment provider (Stripe) settings.
type BillingConfig struct {
	StripeSecretKey     string            `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string            `mapstructure:"stripe_webhook_secret"`
	DefaultPriceID      string            `mapstructure:"default_price_id"`
	SuccessURL          string            `mapstructure:"success_url"`
	CancelURL           string            `mapstructure:"cancel_url"`
	// PricePlans maps additional price ids to plan slugs, merged over the
	// compiled catalog defaults at startup.
	PricePlans map[string]string `mapstructure:"price_plans"`
}

func (b *BillingConfig) Configured() bool {
	return b.StripeSecretKey != ""
}

// IAPConfig holds the Apple in-app purchase verification settings.
type IAPConfig struct {
	BundleID     string            `mapstructure:"bundle_id"`
	SharedSecret string            `mapstructure:"shared_secret"`
	Sandbox      bool              `mapstructure:"sandbox"`
	ProductPlans map[string]string `mapstructure:"product_plans"`
}

func (i *IAPConfig) Configured() bool {
	return i.BundleID != ""
}

// TrialConfig controls the free-trial grant applied at registration.
type TrialConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Plan    string `mapstructure:"plan"`
	Months  int    `mapstructure:"months"`
}
