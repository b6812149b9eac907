package cli

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"cellweaver/internal/chain"
	"cellweaver/internal/chainview"
	"cellweaver/internal/skeleton"
)

// chainStateFile is the serialized form of a local chain fixture.
type chainStateFile struct {
	Cells []skeleton.CellInfo `json:"cells"`
}

// LoadChainState reads a chain fixture from path. A missing file yields an
// empty chain, so a fresh working directory just works.
func LoadChainState(path string) (*chainview.MemoryChain, error) {
	m := chainview.NewMemoryChain()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, errors.Wrap(err, "reading chain state")
	}
	var state chainStateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, errors.Wrap(err, "parsing chain state")
	}
	for _, c := range state.Cells {
		m.AddCell(c)
	}
	return m, nil
}

// SaveChainState persists the fixture's live cells atomically.
func SaveChainState(path string, m *chainview.MemoryChain) error {
	data, err := json.MarshalIndent(chainStateFile{Cells: m.Snapshot()}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling chain state")
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return errors.Wrap(err, "creating temp chain state")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing chain state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing chain state")
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "committing chain state")
	}
	return nil
}

// LocalSubmitter commits signed transactions to the fixture and persists the
// resulting chain state. It stands in for real submission tooling, which is
// outside this module.
func LocalSubmitter(m *chainview.MemoryChain, statePath string, log *logrus.Logger) Submitter {
	return func(sk *skeleton.TransactionSkeleton) (chain.Hash, error) {
		txHash, err := m.Commit(sk)
		if err != nil {
			return chain.Hash{}, err
		}
		if err := SaveChainState(statePath, m); err != nil {
			return chain.Hash{}, err
		}
		log.WithField("tx_hash", txHash.String()).Debug("transaction committed to local chain state")
		return txHash, nil
	}
}
