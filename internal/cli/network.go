package cli

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// Network selects which chain the tooling targets: a well-known alias or a
// custom node URL.
type Network struct {
	alias string
	url   *url.URL
}

// ParseNetwork accepts "mainnet", "testnet" or an http(s) URL.
func ParseNetwork(s string) (Network, error) {
	switch s {
	case "mainnet", "testnet":
		return Network{alias: s}, nil
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return Network{}, errors.Errorf("network must be mainnet, testnet or a URL, got %q", s)
	}
	if !strings.HasPrefix(u.Scheme, "http") {
		return Network{}, errors.Errorf("unsupported network scheme %q", u.Scheme)
	}
	return Network{alias: "custom", url: u}, nil
}

// IsMainnet reports whether the network is the production chain.
func (n Network) IsMainnet() bool { return n.alias == "mainnet" }

func (n Network) String() string {
	if n.url != nil {
		return n.url.String()
	}
	return n.alias
}
