package config

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scoir/canis-revreg/pkg/framework"
)

const (
	defaultAMQP      = "canis-amqp-config"
	defaultDataStore = "canis-data-store-config"
	defaultLedger    = "canis-revreg-ledger-config"
	defaultRegistry  = "canis-revreg-registry-config"
)

// Option configures the config...
type Option func(opts *vpr)

// WithFile merges the named file instead of the default one.
func WithFile(file string) Option {
	return func(opts *vpr) {
		opts.file = file
	}
}

type ViperConfigProvider struct {
	DefaultConfigName string
}

type vpr struct {
	*viper.Viper
	file string
}

func (r *ViperConfigProvider) Load(file string) Config {
	config := &vpr{
		Viper: viper.New(),
	}

	if file != "" {
		config.SetConfigFile(file)
	} else {
		config.SetConfigType("yaml")
		config.AddConfigPath("/etc/canis/")
		config.AddConfigPath("./deploy/compose/")
		config.SetConfigName(r.DefaultConfigName)
	}

	config.SetEnvPrefix("CANIS")
	config.AutomaticEnv()

	err := config.BindPFlags(pflag.CommandLine)
	if err != nil {
		log.Fatalln("failed to bind flags", err)
	}

	err = config.ReadInConfig()
	if err != nil {
		log.Fatalln("failed to read config after merge", config.ConfigFileUsed(), err)
	}

	return config
}

func (r *vpr) WithDatastore(opts ...Option) Config {
	return r.with(defaultDataStore, opts)
}

func (r *vpr) WithAMQP(opts ...Option) Config {
	return r.with(defaultAMQP, opts)
}

func (r *vpr) WithLedger(opts ...Option) Config {
	return r.with(defaultLedger, opts)
}

func (r *vpr) WithRegistry(opts ...Option) Config {
	return r.with(defaultRegistry, opts)
}

func (r *vpr) with(defawlt string, opts []Option) Config {
	for _, opt := range opts {
		opt(r)
	}

	file := r.file
	r.file = ""

	if file != "" {
		return r.withFile(r.SetConfigFile, file)
	}

	return r.withFile(r.SetConfigName, defawlt)
}

func (r *vpr) withFile(setter func(name string), file string) Config {
	setter(file)

	err := r.MergeInConfig()
	if err != nil {
		log.Fatalln("failed to merge", r.ConfigFileUsed(), err)
	}

	return r
}

func (r *vpr) AMQPAddress() string {
	amqpUser := r.GetString("amqp.user")
	amqpPwd := r.GetString("amqp.password")
	amqpHost := r.GetString("amqp.host")
	amqpPort := r.GetInt("amqp.port")
	amqpVHost := r.GetString("amqp.vhost")

	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", amqpUser, amqpPwd, amqpHost, amqpPort, amqpVHost)
}

func (r *vpr) AMQPConfig() (*framework.AMQPConfig, error) {
	config := &framework.AMQPConfig{}

	err := r.UnmarshalKey("amqp", config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func (r *vpr) DataStore() (*framework.DatastoreConfig, error) {
	dc := &framework.DatastoreConfig{}

	err := r.UnmarshalKey("datastore", dc)
	if err != nil {
		return nil, err
	}

	return dc, nil
}

func (r *vpr) Ledger() (*framework.LedgerConfig, error) {
	lc := &framework.LedgerConfig{}

	err := r.UnmarshalKey("ledger", lc)
	if err != nil {
		return nil, err
	}

	return lc, nil
}

func (r *vpr) Registry() (*framework.RegistryConfig, error) {
	rc := framework.DefaultRegistryConfig()

	err := r.UnmarshalKey("registry", rc)
	if err != nil {
		return nil, err
	}

	return rc, nil
}

// GetString uses Get because recursion
func (r *vpr) GetString(s string) string {
	ret, _ := r.Get(s).(string)

	return ret
}

// GetString uses Get because same recursion
func (r *vpr) GetInt(s string) int {
	ret, _ := r.Get(s).(int)

	return ret
}

func (r *vpr) Endpoint(key string) (*framework.Endpoint, error) {
	if !r.IsSet(key) {
		return nil, errors.Errorf("no endpoint configured at %s", key)
	}

	ep := &framework.Endpoint{}

	err := r.UnmarshalKey(key, ep)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load key "+key)
	}

	return ep, nil
}
