package watcher

import "github.com/scoir/canis-revreg/pkg/revocation"

const QueueName = "revocation-delta"

// DeltaEvent announces a delta appended to the ledger by an issuer.
type DeltaEvent struct {
	Delta *revocation.Delta `json:"delta"`
}
