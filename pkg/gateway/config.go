package gateway

import (
	"fmt"
	"time"
)

const (
	DefaultTable   = "gateway_transactions"
	DefaultTimeout = 30 * time.Second
)

// Config is read once at startup and shared by reference; drivers never write to it.
type Config struct {
	Table    string        `mapstructure:"table"`
	LogTable string        `mapstructure:"log-table"`
	Timezone string        `mapstructure:"timezone"`
	Timeout  time.Duration `mapstructure:"timeout"`

	Parsian      ParsianConfig      `mapstructure:"parsian"`
	Pasargad     PasargadConfig     `mapstructure:"pasargad"`
	Mellat       MellatConfig       `mapstructure:"mellat"`
	Saman        SamanConfig        `mapstructure:"saman"`
	Sadad        SadadConfig        `mapstructure:"sadad"`
	Zarinpal     ZarinpalConfig     `mapstructure:"zarinpal"`
	Asanpardakht AsanpardakhtConfig `mapstructure:"asanpardakht"`
	Paypal       PaypalConfig       `mapstructure:"paypal"`
	Payir        PayirConfig        `mapstructure:"payir"`

	location *time.Location
}

type ParsianConfig struct {
	Pin         string        `mapstructure:"pin"`
	CallbackURL string        `mapstructure:"callback-url"`
	SaleURL     string        `mapstructure:"sale-url"`
	ConfirmURL  string        `mapstructure:"confirm-url"`
	GateURL     string        `mapstructure:"gate-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PasargadConfig struct {
	MerchantID      string        `mapstructure:"merchant-id"`
	TerminalID      string        `mapstructure:"terminal-id"`
	CertificatePath string        `mapstructure:"certificate-path"`
	CallbackURL     string        `mapstructure:"callback-url"`
	GateURL         string        `mapstructure:"gate-url"`
	CheckURL        string        `mapstructure:"check-url"`
	VerifyURL       string        `mapstructure:"verify-url"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type MellatConfig struct {
	TerminalID  int64         `mapstructure:"terminal-id"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	CallbackURL string        `mapstructure:"callback-url"`
	ServerURL   string        `mapstructure:"server-url"`
	GateURL     string        `mapstructure:"gate-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SamanConfig struct {
	Merchant    string        `mapstructure:"merchant"`
	Password    string        `mapstructure:"password"`
	CallbackURL string        `mapstructure:"callback-url"`
	GateURL     string        `mapstructure:"gate-url"`
	VerifyURL   string        `mapstructure:"verify-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SadadConfig struct {
	Merchant       string        `mapstructure:"merchant"`
	TerminalID     string        `mapstructure:"terminal-id"`
	TransactionKey string        `mapstructure:"transaction-key"`
	CallbackURL    string        `mapstructure:"callback-url"`
	RequestURL     string        `mapstructure:"request-url"`
	VerifyURL      string        `mapstructure:"verify-url"`
	GateURL        string        `mapstructure:"gate-url"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type ZarinpalConfig struct {
	MerchantID  string        `mapstructure:"merchant-id"`
	Description string        `mapstructure:"description"`
	Email       string        `mapstructure:"email"`
	Mobile      string        `mapstructure:"mobile"`
	CallbackURL string        `mapstructure:"callback-url"`
	Sandbox     bool          `mapstructure:"sandbox"`
	APIURL      string        `mapstructure:"api-url"`
	GateURL     string        `mapstructure:"gate-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AsanpardakhtConfig struct {
	MerchantID       string        `mapstructure:"merchant-id"`
	MerchantConfigID string        `mapstructure:"merchant-config-id"`
	Username         string        `mapstructure:"username"`
	Password         string        `mapstructure:"password"`
	Key              string        `mapstructure:"key"`
	IV               string        `mapstructure:"iv"`
	CallbackURL      string        `mapstructure:"callback-url"`
	ServerURL        string        `mapstructure:"server-url"`
	GateURL          string        `mapstructure:"gate-url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type PaypalConfig struct {
	ClientID    string        `mapstructure:"client-id"`
	Secret      string        `mapstructure:"secret"`
	Mode        string        `mapstructure:"mode"`
	Currency    string        `mapstructure:"currency"`
	CallbackURL string        `mapstructure:"callback-url"`
	CancelURL   string        `mapstructure:"cancel-url"`
	APIURL      string        `mapstructure:"api-url"`
	GateURL     string        `mapstructure:"gate-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type PayirConfig struct {
	API         string        `mapstructure:"api"`
	CallbackURL string        `mapstructure:"callback-url"`
	ServerURL   string        `mapstructure:"server-url"`
	GateURL     string        `mapstructure:"gate-url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Init fills defaults and resolves the timezone. It must run before the config is shared.
func (c *Config) Init() error {
	if c.Table == "" {
		c.Table = DefaultTable
	}
	if c.LogTable == "" {
		c.LogTable = c.Table + "_logs"
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	c.location = time.Local
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid gateway timezone %q: %w", c.Timezone, err)
		}
		c.location = loc
	}

	return nil
}

func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// TimeoutOr returns the port specific timeout when set, otherwise the global one.
func (c *Config) TimeoutOr(portTimeout time.Duration) time.Duration {
	if portTimeout > 0 {
		return portTimeout
	}
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// Endpoint returns override when configured, otherwise the production URL.
func Endpoint(override, production string) string {
	if override != "" {
		return override
	}
	return production
}
