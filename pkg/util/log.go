/*
Copyright Scoir Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Logger is the notify hook of retry loops.
func Logger(err error, d time.Duration) {
	log.WithError(err).Warnf("retrying in %s", d)
}
