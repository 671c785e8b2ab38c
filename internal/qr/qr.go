// Package qr renders account addresses as EIP-681 QR codes.
package qr

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/skip2/go-qrcode"
)

// AddressURI is the EIP-681 payment URI for addr, pinned to chainID when it
// is known (non-empty).
func AddressURI(addr common.Address, chainID string) string {
	if chainID == "" {
		return "ethereum:" + addr.Hex()
	}
	return fmt.Sprintf("ethereum:%s@%s", addr.Hex(), chainID)
}

// PNG encodes uri as a size x size PNG.
func PNG(uri string, size int) ([]byte, error) {
	code, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := code.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

// Terminal renders uri with half-block characters for a terminal.
func Terminal(uri string) (string, error) {
	code, err := qrcode.New(uri, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}
	return code.ToSmallString(false), nil
}
