/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"code.cloudfoundry.org/clock/fakeclock"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	"github.com/scoir/canis-revreg/pkg/deltastore"
	"github.com/scoir/canis-revreg/pkg/framework"
	"github.com/scoir/canis-revreg/pkg/issuer"
	"github.com/scoir/canis-revreg/pkg/prover"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
	"github.com/scoir/canis-revreg/pkg/verifier"
	"github.com/scoir/canis-revreg/pkg/wallet"
	"github.com/scoir/canis-revreg/pkg/witness"
)

const (
	demoSchemaID  = "demo:2:degree:1.0"
	demoCredDefID = "demo:3:CL:12:default"
)

var demoKeyBits int

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Runs an issue, prove and revoke round in process",
	Long: `Creates a registry of five, issues index 1 at t=100, proves it, revokes it at t=200
and verifies the proof again, all against an in-memory ledger.`,
	Run: runDemo,
}

func runDemo(_ *cobra.Command, _ []string) {
	err := runScenario(os.Stdout, demoKeyBits)
	if err != nil {
		log.Fatalln("demo failed", err)
	}
}

func demoRunning() bool {
	c, _, err := rootCmd.Find(os.Args[1:])
	return err == nil && c == demoCmd
}

type scenario struct {
	out     io.Writer
	clk     *fakeclock.FakeClock
	issuer  *issuer.Issuer
	deltas  *deltastore.Store
	wallet  *wallet.Wallet
	def     *revocation.RegistryDefinition
	credID  string
	request *schema.IndyProofRequest
}

func runScenario(out io.Writer, keyBits int) error {
	s := &scenario{
		out:    out,
		clk:    fakeclock.NewFakeClock(time.Unix(50, 0)),
		wallet: wallet.New(memory.NewStore()),
	}

	did, err := revocation.NewIssuerDID(rand.Reader)
	if err != nil {
		return err
	}

	dp := memory.NewProvider()
	store, err := dp.OpenStore("revreg")
	if err != nil {
		return err
	}

	lc, err := (&framework.LedgerConfig{Mode: "local", DID: did}).Client(dp)
	if err != nil {
		return err
	}

	s.issuer = issuer.New(store, lc, issuer.WithClock(s.clk), issuer.WithKeyBits(keyBits))
	s.deltas = deltastore.New(lc)

	s.def, err = s.issuer.CreateRegistry(did, demoCredDefID, "demo", &revocation.RegistryConfig{
		MaxCredNum:   5,
		IssuanceType: revocation.IssuanceOnDemand,
	})
	if err != nil {
		return errors.Wrap(err, "unable to create registry")
	}
	fmt.Fprintf(out, "created registry %s with max_cred_num=%d\n", s.def.ID, s.def.MaxCredNum)

	s.clk.Increment(50 * time.Second)
	idx := uint32(1)
	_, issued, err := s.issuer.Issue(s.def.ID, &idx)
	if err != nil {
		return errors.Wrap(err, "unable to issue")
	}
	fmt.Fprintf(out, "t=%d issued=%v\n", issued.Timestamp, issued.Issued)

	err = s.hold(idx, issued.Timestamp)
	if err != nil {
		return err
	}

	proof, err := s.prove(issued.Timestamp)
	if err != nil {
		return err
	}
	s.report(fmt.Sprintf("proof claiming t=%d", issued.Timestamp), proof)

	s.clk.Increment(100 * time.Second)
	revoked, err := s.issuer.Revoke(s.def.ID, idx)
	if err != nil {
		return errors.Wrap(err, "unable to revoke")
	}
	fmt.Fprintf(out, "t=%d revoked=%v\n", revoked.Timestamp, revoked.Revoked)

	s.report(fmt.Sprintf("same proof claiming t=%d", issued.Timestamp), proof)

	now, err := reclaim(proof, revoked.Timestamp)
	if err != nil {
		return err
	}
	s.report(fmt.Sprintf("same proof claiming t=%d", revoked.Timestamp), now)

	return nil
}

// hold stores the credential of index in the wallet with its witness at ts.
func (r *scenario) hold(index uint32, ts int64) error {
	values := schema.IndyCredentialValues{}
	values.Add("name", "Alice Garcia")
	values.Add("age", 25)

	var err error
	r.credID, err = r.wallet.Save(&schema.IndyCredential{
		SchemaID:  demoSchemaID,
		CredDefID: demoCredDefID,
		RevRegID:  r.def.ID,
		CredRevID: &index,
		Values:    values,
	})
	if err != nil {
		return err
	}

	b, err := witness.NewBuilder(r.def)
	if err != nil {
		return err
	}

	d, err := r.deltas.DeltaBetween(r.def.ID, nil, ts)
	if err != nil {
		return err
	}

	state, err := b.Build(d, ts, index)
	if err != nil {
		return errors.Wrap(err, "unable to build witness")
	}

	return r.wallet.UpdateState(r.credID, state)
}

func (r *scenario) prove(ts int64) (*schema.IndyProof, error) {
	to := ts + 1000
	r.request = &schema.IndyProofRequest{
		Name:    "degree check",
		Version: "1.0",
		Nonce:   "1029384756",
		RequestedAttributes: map[string]*schema.IndyProofRequestAttr{
			"attr1_referent": {Name: "name"},
		},
		RequestedPredicates: map[string]*schema.IndyProofRequestPredicate{
			"pred1_referent": {Name: "age", PType: ">=", PValue: 18},
		},
		NonRevoked: &schema.NonRevokedInterval{To: &to},
	}

	proof, err := prover.New(r.wallet).CreateProof(r.request, &schema.IndyRequestedCredentials{
		RequestedAttributes: map[string]*schema.IndyRequestedAttribute{
			"attr1_referent": {CredID: r.credID, Timestamp: &ts, Revealed: true},
		},
		RequestedPredicates: map[string]schema.ProvingCredentialKey{
			"pred1_referent": {CredID: r.credID, Timestamp: &ts},
		},
	})

	return proof, errors.Wrap(err, "unable to create proof")
}

func (r *scenario) verify(proof *schema.IndyProof) *verifier.Result {
	deltas, err := verifier.ResolveDeltas(r.deltas, proof)
	if err != nil {
		return &verifier.Result{Reason: err}
	}

	return verifier.Verify(r.request, proof,
		map[string]*schema.Schema{
			demoSchemaID: {ID: demoSchemaID, Name: "degree", Version: "1.0", AttrNames: []string{"name", "age"}},
		},
		map[string]*schema.CredentialDefinition{
			demoCredDefID: {ID: demoCredDefID, SchemaID: demoSchemaID, Type: "CL", Tag: "default", SupportsRevocation: true},
		},
		map[string]*revocation.RegistryDefinition{r.def.ID: r.def},
		deltas)
}

func (r *scenario) report(what string, proof *schema.IndyProof) {
	res := r.verify(proof)
	if res.Valid {
		fmt.Fprintf(r.out, "%s: valid\n", what)
		return
	}

	fmt.Fprintf(r.out, "%s: invalid (%v)\n", what, res.Reason)
}

// reclaim copies proof with every identifier claiming ts.
func reclaim(proof *schema.IndyProof, ts int64) (*schema.IndyProof, error) {
	d, err := json.Marshal(proof)
	if err != nil {
		return nil, err
	}

	out := &schema.IndyProof{}
	err = json.Unmarshal(d, out)
	if err != nil {
		return nil, err
	}

	for _, ident := range out.Identifiers {
		at := ts
		ident.Timestamp = &at
	}

	return out, nil
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().IntVar(&demoKeyBits, "key-bits", 1024, "accumulator modulus size")
}
