package context

import (
	"sync"

	"github.com/scoir/canis-revreg/pkg/amqp"
	"github.com/scoir/canis-revreg/pkg/config"
	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/framework"
	"github.com/scoir/canis-revreg/pkg/ledger"
)

// Provider lazily builds the shared dependencies of the canis-revreg
// binaries from a loaded configuration.
type Provider struct {
	conf       config.Config
	lock       sync.Mutex
	dp         datastore.Provider
	store      datastore.Store
	handler    *ledger.Handler
	ledger     *ledger.Client
	publishers map[string]amqp.Publisher
}

func NewProvider(conf config.Config) *Provider {
	return &Provider{
		conf:       conf,
		publishers: map[string]amqp.Publisher{},
	}
}

func (r *Provider) RegistryConfig() (*framework.RegistryConfig, error) {
	return r.conf.Registry()
}

func (r *Provider) LedgerConfig() (*framework.LedgerConfig, error) {
	return r.conf.Ledger()
}

func (r *Provider) APIEndpoint() (*framework.Endpoint, error) {
	return r.conf.Endpoint(apiKey)
}

// Close releases the datastore and every publisher.
func (r *Provider) Close() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	for queue, pub := range r.publishers {
		_ = pub.Close()
		delete(r.publishers, queue)
	}

	if r.dp == nil {
		return nil
	}

	return r.dp.Close()
}
