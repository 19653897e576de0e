/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/amqp"
	"github.com/scoir/canis-revreg/pkg/config"
	"github.com/scoir/canis-revreg/pkg/framework/context"
	"github.com/scoir/canis-revreg/pkg/watcher"
)

var (
	cfgFile        string
	prov           *Provider
	configProvider config.Provider
)

var rootCmd = &cobra.Command{
	Use:   "canis-revreg-watcher",
	Short: "The canis revocation witness watcher.",
	Long: `"The canis revocation witness watcher.".

 Keeps the witnesses of held credentials current as issuers publish deltas.
 Find more information at: https://canis.io/docs/reference/canis/overview`,
}

type Provider struct {
	ctx *context.Provider
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	configProvider = &config.ViperConfigProvider{
		DefaultConfigName: "canis-revreg-watcher-config",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/canis/canis-revreg-watcher-config.yaml)")
}

// initConfig reads in config file and ENV variables if set. The ledger the
// watcher reads is set in its own config file.
func initConfig() {
	conf := configProvider.Load(cfgFile).
		WithDatastore().
		WithRegistry().
		WithAMQP()

	prov = &Provider{ctx: context.NewProvider(conf)}
}

func (r *Provider) GetWallet() watcher.Wallet {
	w, err := r.ctx.Wallet()
	if err != nil {
		log.Fatalln("unable to open wallet", err)
	}

	return w
}

func (r *Provider) GetLedger() watcher.Ledger {
	lc, err := r.ctx.Ledger()
	if err != nil {
		log.Fatalln("unable to connect to ledger", err)
	}

	return lc
}

func (r *Provider) GetAMQPListener(queue string) amqp.Listener {
	l, err := r.ctx.AMQPListener(queue)
	if err != nil {
		log.Fatalln("unable to listen for delta events", err)
	}

	return l
}
