package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-web3-demo/internal/chains"
	"github.com/quantumauth-io/quantum-web3-demo/internal/constants"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	assert.Equal(t, "ropsten", c.Session.DefaultChain)
	assert.Equal(t, constants.FallbackServiceProdURL, c.Session.FallbackServiceURL)
	assert.Equal(t, uint64(24), c.Transfer.ConfirmationBlocks)
	assert.Equal(t, "0.002", c.Demo.SendAmountEther)
	assert.True(t, strings.EqualFold(constants.TargetAddr, c.Target().Hex()))
	assert.Equal(t, c.Target().Hex(), c.Demo.TargetAddress, "validated addresses are checksummed")
	assert.Equal(t, 2, len(DemoTypedFields()))
}

func TestApplyFallbackServiceFromEnv(t *testing.T) {
	tests := []struct {
		env     string
		want    string
		wantErr bool
	}{
		{env: "", want: constants.FallbackServiceProdURL},
		{env: "prod", want: constants.FallbackServiceProdURL},
		{env: "LOCAL", want: constants.FallbackServiceLocalURL},
		{env: "develop", want: constants.FallbackServiceDevURL},
		{env: "staging", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("QW3_ENV", tt.env)
			c := Default()
			err := c.ApplyFallbackServiceFromEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Session.FallbackServiceURL)
		})
	}
}

func TestApplyInjectedFromEnv(t *testing.T) {
	t.Setenv("QW3_INJECTED_RPC", " http://127.0.0.1:8545 ")
	c := Default()
	c.ApplyInjectedFromEnv()
	assert.Equal(t, "http://127.0.0.1:8545", c.Session.InjectedRPCURL)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Demo.TargetAddress = "nope"
	assert.Error(t, c.Validate())

	c = Default()
	c.Chains = []chains.ChainDescriptor{{Name: "Local", Slug: "local", RawID: "1337", WSRPCURL: "ws://127.0.0.1:8546"}}
	require.NoError(t, c.Validate())
	reg, err := c.Registry()
	require.NoError(t, err)
	assert.Equal(t, "Local", reg.Resolve("1337").Name)

	c.Chains = append(c.Chains, chains.ChainDescriptor{Name: "Dup", Slug: "local", RawID: "1"})
	assert.Error(t, c.Validate())
}
