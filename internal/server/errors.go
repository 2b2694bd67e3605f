// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned by NewServer when no listen address is
// configured or no HTTP handler was built for it.
var errNoServersAreCreated = errors.New("no servers are created")
