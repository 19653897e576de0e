/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/config"
	"github.com/scoir/canis-revreg/pkg/framework/context"
)

var (
	cfgFile        string
	ctx            *context.Provider
	configProvider config.Provider
)

var rootCmd = &cobra.Command{
	Use:   "canis-revreg",
	Short: "The canis revocation registry service.",
	Long: `"The canis revocation registry service.".

 Find more information at: https://canis.io/docs/reference/canis/overview`,
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
		DefaultConfigName: "canis-revreg-config",
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/canis/canis-revreg-config.yaml)")
}

// initConfig reads in config file and ENV variables if set. The demo runs
// without one.
func initConfig() {
	if demoRunning() {
		return
	}

	conf := configProvider.Load(cfgFile).
		WithDatastore().
		WithLedger().
		WithRegistry().
		WithAMQP()

	ctx = context.NewProvider(conf)
}
