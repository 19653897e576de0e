/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/revocation"
)

var (
	issuerDID      string
	credDefID      string
	tag            string
	registryConfig string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a revocation registry",
	Long: `Creates a revocation registry, writing its definition and first entry to the ledger.
The registry config is the issuer JSON, for example
{"max_cred_num": 100, "issuance_type": "ISSUANCE_ON_DEMAND"}`,
	Run: runCreate,
}

func runCreate(_ *cobra.Command, _ []string) {
	defer func() { _ = ctx.Close() }()

	cfg, err := revocation.ParseRegistryConfig([]byte(registryConfig))
	if err != nil {
		log.Fatalln(err)
	}

	def, err := newIssuer().CreateRegistry(issuerDID, credDefID, tag, cfg)
	if err != nil {
		log.Fatalln("unable to create registry", err)
	}

	d, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Println(string(d))
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&issuerDID, "issuer-did", "", "DID of the issuer owning the registry")
	createCmd.Flags().StringVar(&credDefID, "cred-def-id", "", "credential definition the registry revokes")
	createCmd.Flags().StringVar(&tag, "tag", "default", "registry tag")
	createCmd.Flags().StringVar(&registryConfig, "registry-config", `{"max_cred_num": 100, "issuance_type": "ISSUANCE_ON_DEMAND"}`, "registry config JSON")
	_ = createCmd.MarkFlagRequired("issuer-did")
	_ = createCmd.MarkFlagRequired("cred-def-id")
}
