package ledger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// HTTPSubmitter posts requests to a ledger endpoint served by a Handler.
type HTTPSubmitter struct {
	url    string
	client *http.Client
}

func NewHTTPSubmitter(url string) *HTTPSubmitter {
	return &HTTPSubmitter{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *HTTPSubmitter) Submit(req *Request) (*Reply, error) {
	d, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode ledger request")
	}

	resp, err := r.client.Post(r.url, "application/json", bytes.NewReader(d))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to reach ledger at %s", r.url)
	}
	defer resp.Body.Close()

	rply := &Reply{}
	err = json.NewDecoder(resp.Body).Decode(rply)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid ledger reply, status %d", resp.StatusCode)
	}

	return rply, nil
}

// LocalSubmitter hands requests straight to an in-process Handler.
type LocalSubmitter struct {
	Handler *Handler
}

func (r *LocalSubmitter) Submit(req *Request) (*Reply, error) {
	d, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode ledger request")
	}

	return r.Handler.Handle(d), nil
}
