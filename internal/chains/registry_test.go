package chains

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolveKnown(t *testing.T) {
	reg := MustDefaultRegistry()

	for _, want := range DefaultChains {
		t.Run(want.Slug, func(t *testing.T) {
			bySlug := reg.Resolve(want.Slug)
			assert.Equal(t, want.Slug, bySlug.Slug)
			assert.Equal(t, want.RawID, bySlug.RawID)
			assert.Equal(t, want.WSRPCURL, bySlug.WSRPCURL)
			assert.False(t, bySlug.Custom)

			byID := reg.Resolve(want.RawID)
			assert.Equal(t, bySlug, byID)
		})
	}
}

func TestRegistryResolveRopsten(t *testing.T) {
	c := MustDefaultRegistry().Resolve("ropsten")

	assert.Equal(t, "ropsten", c.Slug)
	assert.Equal(t, "3", c.RawID)
	assert.Equal(t, ChainID(3), c.ID)
	assert.Equal(t, "Ropsten Test Network", c.Name)
	assert.Equal(t, "wss://ropsten.infura.io/ws", c.WSRPCURL)
}

func TestRegistryResolveUnknown(t *testing.T) {
	reg := MustDefaultRegistry()

	tests := []struct {
		name  string
		input string
	}{
		{name: "numeric", input: "999"},
		{name: "slug", input: "goerli"},
		{name: "empty", input: ""},
		{name: "mixed", input: "my chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := reg.Resolve(tt.input)

			assert.True(t, c.Custom)
			assert.Equal(t, tt.input, c.Slug)
			assert.Equal(t, tt.input, c.RawID)
			assert.Equal(t, "Custom Chain ("+tt.input+")", c.Name)
			assert.Empty(t, c.HTTPRPCURL)
			assert.Empty(t, c.WSRPCURL)
			assert.False(t, c.HasRPC())
			assert.Equal(t, "https://example.com/", c.ExplorerBaseURL)
		})
	}
}

func TestRegistryResolveTypedID(t *testing.T) {
	reg := MustDefaultRegistry()

	// hex form of kovan's id
	assert.Equal(t, "kovan", reg.Resolve("0x2a").Slug)

	// ids are compared as numbers, so hex and zero-padded forms of 3 are ropsten
	for _, in := range []string{"3", "03", "0x3", "0x03"} {
		c := reg.Resolve(in)
		assert.Equal(t, "ropsten", c.Slug, in)
		assert.False(t, c.Custom, in)
	}

	// a slug that looks nothing like a number must not match by id
	_, ok := reg.Lookup("kovan42")
	assert.False(t, ok)
}

func TestNewRegistryRejectsBadRows(t *testing.T) {
	_, err := NewRegistry([]ChainDescriptor{{Name: "x", Slug: "x", RawID: "abc"}})
	require.Error(t, err)

	_, err = NewRegistry([]ChainDescriptor{
		{Slug: "a", RawID: "1"},
		{Slug: "b", RawID: "1"},
	})
	require.Error(t, err)

	_, err = NewRegistry([]ChainDescriptor{{Slug: "", RawID: "5"}})
	require.Error(t, err)
}

func TestRegistryListIsCopy(t *testing.T) {
	reg := MustDefaultRegistry()
	list := reg.List()
	require.Len(t, list, len(DefaultChains))

	list[0].Slug = "mutated"
	assert.Equal(t, "mainnet", reg.List()[0].Slug)
}

func TestNetworkLabel(t *testing.T) {
	assert.Equal(t, "Ropsten Test Network", NetworkLabel("3"))
	assert.Equal(t, "Kovan Test Network", NetworkLabel("42"))
	assert.Equal(t, "Unknown Network", NetworkLabel("1337"))
	assert.Equal(t, "Unknown Network", NetworkLabel("private"))
}
