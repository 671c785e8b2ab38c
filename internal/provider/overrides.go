package provider

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes the override environment variables (QW3_CHAIN, QW3_LOCAL).
const EnvPrefix = "QW3"

// Overrides are the session flags read once at startup.
type Overrides struct {
	// Chain forces the fallback provider against this chain slug or id.
	Chain string `envconfig:"CHAIN"`
	// Local selects the local fallback wallet service.
	Local bool `envconfig:"LOCAL"`
}

func (o Overrides) HasChain() bool {
	return strings.TrimSpace(o.Chain) != ""
}

// Merge fills unset fields of o from other.
func (o Overrides) Merge(other Overrides) Overrides {
	if !o.HasChain() {
		o.Chain = other.Chain
	}
	o.Local = o.Local || other.Local
	return o
}

// ParseOverrides reads overrides from a query string such as
// "?chain=kovan&local". The whole string is percent-decoded before it is
// split, and "local" is a presence flag.
func ParseOverrides(rawQuery string) Overrides {
	q := strings.TrimPrefix(strings.TrimSpace(rawQuery), "?")
	if decoded, err := url.PathUnescape(q); err == nil {
		q = decoded
	}

	var out Overrides
	for _, part := range strings.Split(q, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		// "a=b=c" keeps only "b"
		value, _, _ = strings.Cut(value, "=")

		switch key {
		case "chain":
			out.Chain = strings.TrimSpace(value)
		case "local":
			out.Local = true
		}
	}
	return out
}

// OverridesFromEnv reads QW3_CHAIN and QW3_LOCAL.
func OverridesFromEnv() (Overrides, error) {
	var o Overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return Overrides{}, fmt.Errorf("read overrides from env: %w", err)
	}
	return o, nil
}
