/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"

	"github.com/scoir/canis-revreg/pkg/framework"
)

const (
	APIKeyHeaderName = "X-API-Key"
)

// Runner serves an API handler on the configured endpoint behind CORS and an
// optional API token.
type Runner struct {
	handler  http.Handler
	host     string
	port     int
	apiToken string
}

type provider interface {
	APIEndpoint() (*framework.Endpoint, error)
}

func New(ctx provider, h http.Handler) (*Runner, error) {
	ep, err := ctx.APIEndpoint()
	if err != nil {
		return nil, errors.Wrap(err, "unable to create controller")
	}

	r := &Runner{
		handler:  h,
		host:     ep.Host,
		port:     ep.Port,
		apiToken: ep.Token,
	}

	return r, nil
}

func (r *Runner) Handler() http.Handler {
	h := r.handler
	if r.apiToken != "" {
		h = r.basicTokenAuth(h)
	}

	return Logger(CorsHandler()(h))
}

func (r *Runner) Launch() error {
	u := framework.Endpoint{Host: r.host, Port: r.port}.Address()
	log.Printf("revocation API listening on %s\n", u)
	return http.ListenAndServe(u, r.Handler())
}

func (r *Runner) basicTokenAuth(h http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		authHeader := req.Header.Get(APIKeyHeaderName)
		if authHeader == "" {
			http.Error(w, "Not authorized", 401)
			return
		}

		givenToken := sha256.Sum256([]byte(authHeader))
		requiredToken := sha256.Sum256([]byte(r.apiToken))

		if subtle.ConstantTimeCompare(givenToken[:], requiredToken[:]) != 1 {
			http.Error(w, "Not authorized", 401)
			return
		}

		h.ServeHTTP(w, req)
	}
}

func CorsHandler() func(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin", "Content-Type", APIKeyHeaderName, "Accept", "Cache-Control"},
		ExposedHeaders: []string{"Content-Length", "Content-Type", "Cache-Control"},
	})
	return c.Handler
}

func Logger(h http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		log.WithField("method", r.Method).WithField("path", r.URL.Path).Debug("request")
		h.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
