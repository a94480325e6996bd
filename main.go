// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package main

import (
	"github.com/eaobservatory/hedwig2omp/cmd"
)

func main() {
	cmd.Execute()
}
