/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/controller"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/issuer"
	"github.com/scoir/canis-revreg/pkg/ledger"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the revocation registry API",
	Long:  `Starts the revocation registry API, publishing every new delta to AMQP`,
	Run:   runStart,
}

func runStart(_ *cobra.Command, _ []string) {
	defer func() { _ = ctx.Close() }()

	iss := newIssuer()

	lc, err := ctx.Ledger()
	if err != nil {
		log.Fatalln("unable to connect to ledger", err)
	}

	var handler *ledger.Handler
	if conf, err := ctx.LedgerConfig(); err == nil && conf.Mode == "local" {
		handler, err = ctx.LedgerHandler()
		if err != nil {
			log.Fatalln("unable to open embedded ledger", err)
		}
	}

	api := issuer.NewAPI(iss, deltastore.New(lc), lc, handler)
	runner, err := controller.New(ctx, api.Routes())
	if err != nil {
		log.Fatalln("unable to start revocation registry API", err)
	}

	err = runner.Launch()
	if err != nil {
		log.Fatalln("launch errored with", err)
	}
}

func newIssuer() *issuer.Issuer {
	rc, err := ctx.RegistryConfig()
	if err != nil {
		log.Fatalln("invalid registry key in configuration", err)
	}

	store, err := ctx.Store()
	if err != nil {
		log.Fatalln("unable to open datastore", err)
	}

	lc, err := ctx.Ledger()
	if err != nil {
		log.Fatalln("unable to connect to ledger", err)
	}

	opts := []issuer.Option{issuer.WithKeyBits(rc.KeyBits)}
	pub, err := ctx.AMQPPublisher(rc.DeltaQueue)
	if err != nil {
		log.WithError(err).Warnln("delta events disabled")
	} else {
		opts = append(opts, issuer.WithPublisher(pub))
	}

	return issuer.New(store, lc, opts...)
}

func init() {
	rootCmd.AddCommand(startCmd)
}
