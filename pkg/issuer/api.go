/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuer

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	goji "goji.io"
	"goji.io/pat"

	"github.com/scoir/canis-revreg/pkg/datastore"
	"github.com/scoir/canis-revreg/pkg/ledger"
	"github.com/scoir/canis-revreg/pkg/revocation"
	"github.com/scoir/canis-revreg/pkg/schema"
	"github.com/scoir/canis-revreg/pkg/util"
	"github.com/scoir/canis-revreg/pkg/verifier"
)

type CreateRegistryRequest struct {
	IssuerDID string          `json:"issuerDid"`
	CredDefID string          `json:"credDefId"`
	Tag       string          `json:"tag"`
	Config    json.RawMessage `json:"config"`
}

type IssueRequest struct {
	Index *uint32 `json:"index,omitempty"`
}

type IssueResponse struct {
	Index uint32            `json:"index"`
	Delta *revocation.Delta `json:"delta"`
}

type RevokeRequest struct {
	Index uint32 `json:"index"`
}

type StatusResponse struct {
	Index  uint32 `json:"index"`
	Status string `json:"status"`
}

type ListResponse struct {
	Count      int                              `json:"count"`
	Registries []*revocation.RegistryDefinition `json:"registries"`
}

type TimestampResponse struct {
	Timestamp int64 `json:"timestamp"`
}

type VerifyRequest struct {
	ProofRequest *schema.IndyProofRequest                  `json:"proofRequest"`
	Proof        *schema.IndyProof                         `json:"proof"`
	Schemas      map[string]*schema.Schema                 `json:"schemas"`
	CredDefs     map[string]*schema.CredentialDefinition   `json:"credDefs"`
	RevRegDefs   map[string]*revocation.RegistryDefinition `json:"revRegDefs,omitempty"`
}

type VerifyResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
	Kind   string `json:"kind,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// Deltas is the read side of the ledger the API answers range queries from.
type Deltas interface {
	verifier.DeltaSource
	LatestTimestampAtOrBefore(registryID string, t int64) (int64, error)
}

// Definitions resolves registry definitions a proof names but the caller
// did not supply.
type Definitions interface {
	GetRevocRegDef(id string) (*revocation.RegistryDefinition, error)
}

type API struct {
	issuer  *Issuer
	deltas  Deltas
	defs    Definitions
	handler *ledger.Handler
}

// NewAPI serves iss over HTTP. A nil handler leaves the ledger submit
// endpoint out.
func NewAPI(iss *Issuer, deltas Deltas, defs Definitions, handler *ledger.Handler) *API {
	return &API{
		issuer:  iss,
		deltas:  deltas,
		defs:    defs,
		handler: handler,
	}
}

func (r *API) Routes() *goji.Mux {
	mux := goji.NewMux()
	mux.Handle(pat.Post("/registries"), http.HandlerFunc(r.createRegistry))
	mux.Handle(pat.Get("/registries"), http.HandlerFunc(r.listRegistries))
	mux.Handle(pat.Get("/registries/:id"), http.HandlerFunc(r.getRegistry))
	mux.Handle(pat.Post("/registries/:id/issue"), http.HandlerFunc(r.issue))
	mux.Handle(pat.Post("/registries/:id/revoke"), http.HandlerFunc(r.revoke))
	mux.Handle(pat.Get("/registries/:id/status/:index"), http.HandlerFunc(r.status))
	mux.Handle(pat.Get("/registries/:id/delta"), http.HandlerFunc(r.delta))
	mux.Handle(pat.Get("/registries/:id/timestamp"), http.HandlerFunc(r.timestamp))
	mux.Handle(pat.Post("/verify"), http.HandlerFunc(r.verify))

	if r.handler != nil {
		mux.Handle(pat.Post("/ledger"), http.HandlerFunc(r.submit))
	}

	return mux
}

func (r *API) createRegistry(w http.ResponseWriter, req *http.Request) {
	body := &CreateRegistryRequest{}
	if !decode(w, req, body) {
		return
	}

	cfg, err := revocation.ParseRegistryConfig(body.Config)
	if err != nil {
		writeError(w, err)
		return
	}

	def, err := r.issuer.CreateRegistry(body.IssuerDID, body.CredDefID, body.Tag, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, def)
}

func (r *API) listRegistries(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	c := &datastore.RegistryCriteria{
		CredDefID: q.Get("credDefId"),
	}

	var err error
	if s := q.Get("start"); s != "" {
		c.Start, err = strconv.Atoi(s)
	}
	if s := q.Get("pageSize"); s != "" && err == nil {
		c.PageSize, err = strconv.Atoi(s)
	}
	if err != nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "invalid paging parameters")
		return
	}

	count, defs, err := r.issuer.ListDefinitions(c)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, &ListResponse{Count: count, Registries: defs})
}

func (r *API) getRegistry(w http.ResponseWriter, req *http.Request) {
	def, err := r.issuer.Definition(pat.Param(req, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, def)
}

func (r *API) issue(w http.ResponseWriter, req *http.Request) {
	body := &IssueRequest{}
	if !decode(w, req, body) {
		return
	}

	idx, delta, err := r.issuer.Issue(pat.Param(req, "id"), body.Index)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, &IssueResponse{Index: idx, Delta: delta})
}

func (r *API) revoke(w http.ResponseWriter, req *http.Request) {
	body := &RevokeRequest{}
	if !decode(w, req, body) {
		return
	}

	delta, err := r.issuer.Revoke(pat.Param(req, "id"), body.Index)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, delta)
}

func (r *API) status(w http.ResponseWriter, req *http.Request) {
	idx, err := strconv.ParseUint(pat.Param(req, "index"), 10, 32)
	if err != nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "invalid index")
		return
	}

	st, err := r.issuer.Status(pat.Param(req, "id"), uint32(idx))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, &StatusResponse{Index: uint32(idx), Status: st.String()})
}

func (r *API) delta(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	var from *int64
	if s := q.Get("from"); s != "" {
		f, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			util.WriteErrorCode(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		from = &f
	}

	to, err := strconv.ParseInt(q.Get("to"), 10, 64)
	if err != nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "invalid to timestamp")
		return
	}

	d, err := r.deltas.DeltaBetween(pat.Param(req, "id"), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, d)
}

func (r *API) timestamp(w http.ResponseWriter, req *http.Request) {
	at, err := strconv.ParseInt(req.URL.Query().Get("at"), 10, 64)
	if err != nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "invalid timestamp")
		return
	}

	ts, err := r.deltas.LatestTimestampAtOrBefore(pat.Param(req, "id"), at)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, &TimestampResponse{Timestamp: ts})
}

func (r *API) verify(w http.ResponseWriter, req *http.Request) {
	body := &VerifyRequest{}
	if !decode(w, req, body) {
		return
	}

	if body.Proof == nil || body.ProofRequest == nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "proofRequest and proof are required")
		return
	}

	revRegDefs := map[string]*revocation.RegistryDefinition{}
	for id, def := range body.RevRegDefs {
		revRegDefs[id] = def
	}

	for _, ident := range body.Proof.Identifiers {
		if ident.RevRegID == "" || revRegDefs[ident.RevRegID] != nil {
			continue
		}

		def, err := r.defs.GetRevocRegDef(ident.RevRegID)
		if errors.Is(err, revocation.ErrItemNotFound) {
			continue
		}
		if err != nil {
			writeError(w, err)
			return
		}
		revRegDefs[ident.RevRegID] = def
	}

	deltas, err := verifier.ResolveDeltas(r.deltas, body.Proof)
	if err != nil {
		writeError(w, err)
		return
	}

	res := verifier.Verify(body.ProofRequest, body.Proof, body.Schemas, body.CredDefs, revRegDefs, deltas)
	out := &VerifyResponse{Valid: res.Valid}
	if res.Reason != nil {
		out.Reason = res.Reason.Error()
		out.Kind = revocation.Kind(res.Reason).String()
	}

	writeJSON(w, out)
}

func (r *API) submit(w http.ResponseWriter, req *http.Request) {
	d, err := ioutil.ReadAll(req.Body)
	if err != nil {
		util.WriteErrorCode(w, http.StatusBadRequest, "unreadable request")
		return
	}

	writeJSON(w, r.handler.Handle(d))
}

func decode(w http.ResponseWriter, req *http.Request, v interface{}) bool {
	err := json.NewDecoder(req.Body).Decode(v)
	if err != nil && err != io.EOF {
		util.WriteErrorCode(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	d, err := json.Marshal(v)
	if err != nil {
		util.WriteErrorf(w, "unable to encode response: %v", err)
		return
	}

	util.WriteSuccess(w, d)
}

func writeError(w http.ResponseWriter, err error) {
	kind := revocation.Kind(err)

	code := http.StatusInternalServerError
	switch kind {
	case revocation.KindStructural:
		code = http.StatusBadRequest
	case revocation.KindOrdering, revocation.KindCapacity, revocation.KindConsistency:
		code = http.StatusConflict
	case revocation.KindNotFound:
		code = http.StatusNotFound
	}

	if code == http.StatusInternalServerError {
		log.WithError(err).Errorln("request failed")
	}

	d, _ := json.Marshal(&ErrorResponse{Error: err.Error(), Kind: kind.String()})
	util.WriteErrorCode(w, code, string(d))
}
