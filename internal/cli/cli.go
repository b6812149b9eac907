package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	flags "github.com/jessevdk/go-flags"
	"github.com/pkg/errors"

	"cellweaver/internal/deploy"
	"cellweaver/internal/signer"
)

// globalOptions are shared by every command, mirroring the tool's outer
// surface: network selection, the deployment-record directory and the
// compiled-contract directory.
type globalOptions struct {
	Network        string `short:"n" long:"network" default:"testnet" description:"Chain to target: mainnet, testnet or a node URL"`
	DeploymentPath string `long:"deployment-path" default:"deployment" description:"Directory of contract deployment records"`
	ContractPath   string `long:"contract-path" default:"build/release" description:"Directory of compiled contract binaries"`
	Fee            uint64 `long:"fee" default:"10000" description:"Flat transaction fee in shannons"`
}

// Run parses args and dispatches to the selected command against the given
// runtime. It returns the process exit code.
func Run(args []string, rt *Runtime) int {
	if err := rt.validate(); err != nil {
		logrusFallback(err)
		return 1
	}

	var global globalOptions
	parser := flags.NewParser(&global, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "cellweaver"

	mustAdd := func(name, short, long string, cmd flags.Commander) {
		if _, err := parser.AddCommand(name, short, long, cmd); err != nil {
			panic(err)
		}
	}
	mustAdd("deploy", "Upload a contract to the chain",
		"Place a compiled contract binary into a new code cell and record where it lives.",
		&deployCommand{global: &global, rt: rt})
	mustAdd("migrate", "Update a deployed contract",
		"Consume the old code cell and redeploy the binary under a new tag.",
		&migrateCommand{global: &global, rt: rt})
	mustAdd("consume", "Consume a deployed contract",
		"Spend the code cell and release its capacity to a receiver.",
		&consumeCommand{global: &global, rt: rt})

	if _, err := parser.ParseArgs(args); err != nil {
		var flagErr *flags.Error
		if errors.As(err, &flagErr) && flagErr.Type == flags.ErrHelp {
			rt.Log.Info(flagErr.Message)
			return 0
		}
		rt.Log.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

func logrusFallback(err error) {
	// Runtime validation failed before a logger was guaranteed; stderr is
	// all that is left.
	fmt.Fprintln(os.Stderr, "cellweaver: "+err.Error())
}

func (g *globalOptions) network() (Network, error) {
	return ParseNetwork(g.Network)
}

func (g *globalOptions) store() (*deploy.Store, error) {
	return deploy.NewStore(g.DeploymentPath)
}

// parseKey turns a hex-encoded secp256k1 private key into a signer.
func parseKey(hexKey string) (*signer.Secp256k1Signer, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "decoding private key hex")
	}
	return signer.NewSecp256k1Signer(raw)
}
