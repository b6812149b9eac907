package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"cellweaver/internal/cli"
)

// defaultChainState is where the local chain fixture lives unless the
// environment says otherwise.
const defaultChainState = "chainstate.json"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	statePath := os.Getenv("CELLWEAVER_CHAIN_STATE")
	if statePath == "" {
		statePath = defaultChainState
	}

	mem, err := cli.LoadChainState(statePath)
	if err != nil {
		log.WithError(err).Error("loading chain state")
		os.Exit(1)
	}

	rt := &cli.Runtime{
		Chain:  mem,
		Submit: cli.LocalSubmitter(mem, statePath, log),
		Log:    log,
	}
	os.Exit(cli.Run(os.Args[1:], rt))
}
