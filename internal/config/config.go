package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
	"github.com/quantumauth-io/quantum-web3-demo/internal/signing"
)

type ClientSettings struct {
	LocalHost string
	Port      string
}

type SessionSettings struct {
	DefaultChain string
	// InjectedRPCURL points at a wallet that was running before we started.
	InjectedRPCURL          string
	FallbackServiceURL      string
	LocalFallbackServiceURL string
	RefreshIntervalMs       int
	BalanceRetryTimeoutMs   int
}

type GasFeedSettings struct {
	URL       string
	TimeoutMs int
}

type TransferSettings struct {
	PollIntervalMs     int
	ConfirmationBlocks uint64
}

type DemoSettings struct {
	TargetAddress   string
	TokenAddress    string
	Message         string
	SendAmountEther string
	BuyAmountEther  string
	TokenAmount     string
	TokenDecimals   uint8
}

type Config struct {
	ClientSettings *ClientSettings
	Session        *SessionSettings
	GasFeed        *GasFeedSettings
	Transfer       *TransferSettings
	Demo           *DemoSettings
	Chains         []chains.ChainDescriptor
}

const ConstitutionPreamble = "We the People of the United States, in Order to form a more perfect Union, " +
	"establish Justice, insure domestic Tranquility, provide for the common defence, promote the general " +
	"Welfare, and secure the Blessings of Liberty to ourselves and our Posterity, do ordain and establish " +
	"this Constitution for the United States of America."

// DemoTypedFields is the typed-data list the demo asks wallets to sign.
func DemoTypedFields() []signing.TypedField {
	return []signing.TypedField{
		{Type: "string", Name: "message", Value: "Hi, Alice!"},
		{Type: "uint", Name: "value", Value: 42},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Default is used for any section the config file leaves out.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

func (c *Config) ApplyDefaults() {
	if c.ClientSettings == nil {
		c.ClientSettings = &ClientSettings{}
	}
	if c.ClientSettings.LocalHost == "" {
		c.ClientSettings.LocalHost = "127.0.0.1"
	}
	if c.ClientSettings.Port == "" {
		c.ClientSettings.Port = "6137"
	}

	if c.Session == nil {
		c.Session = &SessionSettings{}
	}
	if c.Session.DefaultChain == "" {
		c.Session.DefaultChain = constants.DefaultChain
	}
	if c.Session.FallbackServiceURL == "" {
		c.Session.FallbackServiceURL = constants.FallbackServiceProdURL
	}
	if c.Session.LocalFallbackServiceURL == "" {
		c.Session.LocalFallbackServiceURL = constants.FallbackServiceLocalURL
	}
	if c.Session.RefreshIntervalMs <= 0 {
		c.Session.RefreshIntervalMs = 5000
	}
	if c.Session.BalanceRetryTimeoutMs <= 0 {
		c.Session.BalanceRetryTimeoutMs = 10000
	}

	if c.GasFeed == nil {
		c.GasFeed = &GasFeedSettings{}
	}
	if c.GasFeed.URL == "" {
		c.GasFeed.URL = constants.GasFeedURL
	}
	if c.GasFeed.TimeoutMs <= 0 {
		c.GasFeed.TimeoutMs = 10000
	}

	if c.Transfer == nil {
		c.Transfer = &TransferSettings{}
	}
	if c.Transfer.PollIntervalMs <= 0 {
		c.Transfer.PollIntervalMs = constants.DefaultPollIntervalMs
	}
	if c.Transfer.ConfirmationBlocks == 0 {
		c.Transfer.ConfirmationBlocks = constants.DefaultConfirmationBlocks
	}

	if c.Demo == nil {
		c.Demo = &DemoSettings{}
	}
	if c.Demo.TargetAddress == "" {
		c.Demo.TargetAddress = constants.TargetAddr
	}
	if c.Demo.TokenAddress == "" {
		c.Demo.TokenAddress = constants.TokenAddr
	}
	if c.Demo.Message == "" {
		c.Demo.Message = ConstitutionPreamble
	}
	if c.Demo.SendAmountEther == "" {
		c.Demo.SendAmountEther = "0.002"
	}
	if c.Demo.BuyAmountEther == "" {
		c.Demo.BuyAmountEther = "0.03"
	}
	if c.Demo.TokenAmount == "" {
		c.Demo.TokenAmount = "3"
	}
	if c.Demo.TokenDecimals == 0 {
		c.Demo.TokenDecimals = constants.EtherDecimals
	}
}

// ApplyFallbackServiceFromEnv picks the fallback wallet service from QW3_ENV.
func (c *Config) ApplyFallbackServiceFromEnv() error {
	raw := strings.TrimSpace(os.Getenv("QW3_ENV"))

	switch strings.ToLower(raw) {
	case "":
		// keep whatever the config file says
		return nil

	case "prod", "production":
		c.Session.FallbackServiceURL = constants.FallbackServiceProdURL

	case "local":
		c.Session.FallbackServiceURL = constants.FallbackServiceLocalURL

	case "dev", "develop", "development":
		c.Session.FallbackServiceURL = constants.FallbackServiceDevURL

	default:
		return fmt.Errorf("invalid QW3_ENV %q (allowed: prod, local, dev, empty)", raw)
	}

	return nil
}

// ApplyInjectedFromEnv lets QW3_INJECTED_RPC point at an already running wallet.
func (c *Config) ApplyInjectedFromEnv() {
	c.Session.InjectedRPCURL = strings.TrimSpace(getEnv("QW3_INJECTED_RPC", c.Session.InjectedRPCURL))
}

// Validate normalizes demo addresses to their checksummed form.
func (c *Config) Validate() error {
	for name, p := range map[string]*string{
		"Demo.TargetAddress": &c.Demo.TargetAddress,
		"Demo.TokenAddress":  &c.Demo.TokenAddress,
	} {
		a := strings.TrimSpace(*p)
		if !common.IsHexAddress(a) {
			return fmt.Errorf("%s invalid address: %q", name, *p)
		}
		*p = common.HexToAddress(a).Hex()
	}
	if _, err := chains.NewRegistry(c.Chains); err != nil {
		return fmt.Errorf("chains: %w", err)
	}
	return nil
}

func (c *Config) Registry() (*chains.Registry, error) {
	return chains.NewRegistry(c.Chains)
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Session.RefreshIntervalMs) * time.Millisecond
}

func (c *Config) BalanceRetryTimeout() time.Duration {
	return time.Duration(c.Session.BalanceRetryTimeoutMs) * time.Millisecond
}

func (c *Config) GasFeedTimeout() time.Duration {
	return time.Duration(c.GasFeed.TimeoutMs) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Transfer.PollIntervalMs) * time.Millisecond
}

func (c *Config) Target() common.Address { return common.HexToAddress(c.Demo.TargetAddress) }

func (c *Config) Token() common.Address { return common.HexToAddress(c.Demo.TokenAddress) }
