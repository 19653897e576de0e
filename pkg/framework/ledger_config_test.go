package framework

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/scoir/canis-revreg/pkg/datastore/memory"
	"github.com/scoir/canis-revreg/pkg/revocation"
)

func TestLedgerConfig_Client(t *testing.T) {
	t.Run("no mode", func(t *testing.T) {
		lc := &LedgerConfig{}

		cl, err := lc.Client(memory.NewProvider())
		require.Error(t, err)
		require.Contains(t, err.Error(), "no ledger configuration was provided")
		require.Nil(t, cl)
	})

	t.Run("http without url", func(t *testing.T) {
		lc := &LedgerConfig{Mode: "http"}

		cl, err := lc.Client(memory.NewProvider())
		require.Error(t, err)
		require.Nil(t, cl)
	})

	t.Run("http", func(t *testing.T) {
		lc := &LedgerConfig{Mode: "http", URL: "http://localhost:7779/ledger"}

		cl, err := lc.Client(memory.NewProvider())
		require.NoError(t, err)
		require.NotNil(t, cl)
	})

	t.Run("local ledger shares the provider name space", func(t *testing.T) {
		dp := memory.NewProvider()
		lc := &LedgerConfig{Mode: "local", DID: "Th7MpTaRZVRYnPiabds81Y"}

		cl, err := lc.Client(dp)
		require.NoError(t, err)

		_, err = cl.GetRevocRegDef("Th7MpTaRZVRYnPiabds81Y:4:cd:CL_ACCUM:tag")
		require.True(t, errors.Is(err, revocation.ErrItemNotFound))

		h, err := lc.Handler(dp)
		require.NoError(t, err)
		require.NotNil(t, h)
	})
}
