/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/util"
	"github.com/scoir/canis-revreg/pkg/watcher"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the witness watcher",
	Long:  `Starts a witness watcher consuming revocation delta events`,
	Run:   runStart,
}

func runStart(_ *cobra.Command, _ []string) {
	defer func() { _ = prov.ctx.Close() }()

	rc, err := prov.ctx.RegistryConfig()
	if err != nil {
		log.Fatalln("invalid registry key in configuration", err)
	}

	log.Println("starting witness watcher on", rc.DeltaQueue)

	srv, err := watcher.New(prov, watcher.WithQueue(rc.DeltaQueue))
	if err != nil {
		log.Fatalln("unable to launch witness watcher", err)
	}

	err = backoff.RetryNotify(srv.Start, backoff.NewExponentialBackOff(), util.Logger)
	if err != nil {
		log.Println("witness watcher exited with error", err)
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
