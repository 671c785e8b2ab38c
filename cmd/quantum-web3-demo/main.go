package main

import (
	"github.com/quantumauth-io/quantum-web3-demo/cmd/quantum-web3-demo/cli"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Execute(cli.BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}
