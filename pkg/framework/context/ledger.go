package context

import (
	"github.com/pkg/errors"

	"github.com/scoir/canis-revreg/pkg/framework"
	"github.com/scoir/canis-revreg/pkg/ledger"
)

// LedgerHandler returns the embedded ledger node, shared by the ledger
// client of a local deployment and the submit endpoint.
func (r *Provider) LedgerHandler() (*ledger.Handler, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	lc, err := r.conf.Ledger()
	if err != nil {
		return nil, errors.Wrap(err, "ledger is not correctly configured")
	}

	return r.ledgerHandler(lc)
}

func (r *Provider) ledgerHandler(lc *framework.LedgerConfig) (*ledger.Handler, error) {
	if r.handler != nil {
		return r.handler, nil
	}

	dp, err := r.datastore()
	if err != nil {
		return nil, err
	}

	r.handler, err = lc.Handler(dp)
	return r.handler, err
}

func (r *Provider) Ledger() (*ledger.Client, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.ledger != nil {
		return r.ledger, nil
	}

	lc, err := r.conf.Ledger()
	if err != nil {
		return nil, errors.Wrap(err, "ledger is not correctly configured")
	}

	if lc.Mode == "local" {
		h, err := r.ledgerHandler(lc)
		if err != nil {
			return nil, err
		}

		r.ledger = ledger.NewClient(&ledger.LocalSubmitter{Handler: h}, lc.DID)
		return r.ledger, nil
	}

	dp, err := r.datastore()
	if err != nil {
		return nil, err
	}

	r.ledger, err = lc.Client(dp)
	return r.ledger, errors.Wrap(err, "unable to create ledger client")
}
