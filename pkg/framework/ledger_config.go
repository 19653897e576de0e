package framework

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/ledger"
)

// LedgerNamespace is the datastore name space an embedded ledger keeps its
// definitions and delta log in.
const LedgerNamespace = "ledger"

type LedgerConfig struct {
	Mode string `mapstructure:"mode"`
	URL  string `mapstructure:"url"`
	DID  string `mapstructure:"did"`
}

// Handler opens the node side of an embedded ledger.
func (r *LedgerConfig) Handler(dp datastore.Provider) (*ledger.Handler, error) {
	store, err := dp.OpenStore(LedgerNamespace)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open ledger store")
	}

	dl, err := dp.DeltaLog(LedgerNamespace)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open ledger delta log")
	}

	return ledger.NewHandler(store, dl), nil
}

func (r *LedgerConfig) Client(dp datastore.Provider) (*ledger.Client, error) {
	var sub ledger.Submitter

	switch r.Mode {
	case "local":
		h, err := r.Handler(dp)
		if err != nil {
			return nil, err
		}
		sub = &ledger.LocalSubmitter{Handler: h}
	case "http":
		if r.URL == "" {
			return nil, errors.New("http ledger selected without url")
		}
		sub = ledger.NewHTTPSubmitter(r.URL)
	default:
		return nil, errors.New("no ledger configuration was provided")
	}

	return ledger.NewClient(sub, r.DID), nil
}
