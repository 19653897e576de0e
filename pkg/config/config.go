package config

import "github.com/scoir/canis-revreg/pkg/framework"

// Provider rename to ConfigBuilder
type Provider interface {
	Load(file string) Config
}

// Config
type Config interface {
	WithAMQP(opts ...Option) Config
	AMQPAddress() string
	AMQPConfig() (*framework.AMQPConfig, error)

	WithDatastore(opts ...Option) Config
	DataStore() (*framework.DatastoreConfig, error)

	WithLedger(opts ...Option) Config
	Ledger() (*framework.LedgerConfig, error)

	WithRegistry(opts ...Option) Config
	Registry() (*framework.RegistryConfig, error)

	GetString(s string) string
	GetInt(s string) int

	Endpoint(s string) (*framework.Endpoint, error)
}
