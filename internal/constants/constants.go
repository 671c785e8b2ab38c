package constants

const (
	AppName = "quantum-web3-demo"

	DefaultChain = "ropsten"

	// Fallback wallet service endpoints.
	FallbackServiceProdURL  = "https://app.hypermask.io/"
	FallbackServiceLocalURL = "http://localhost:41139/"
	FallbackServiceDevURL   = "https://dev.app.hypermask.io/"

	GasFeedURL = "https://ethgasstation.info/json/ethgasAPI.json"

	// Demo addresses.
	TargetAddr = "0x4c020de581b98292f1cce93698a1fec462b0c4d2"
	TokenAddr  = "0x8790b46fd9fe602a5a7ee8957cc9f558e58a31b5"

	NativeAddr = "0x0000000000000000000000000000000000000000"

	UnknownNetworkLabel = "Unknown Network"
	LoadingText         = "Loading..."
	NoAccountFoundText  = "no account found"

	CustomChainExplorer = "https://example.com/"

	// Matches web3's default confirmation depth.
	DefaultConfirmationBlocks = 24
	DefaultPollIntervalMs     = 2000

	EtherDecimals = 18
	GweiDecimals  = 9

	DisplayMaxFrac = 6
)
