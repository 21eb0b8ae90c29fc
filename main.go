// SPDX-License-Identifier: MPL-2.0

// levorun is a CI wrapper around the levo API security-testing CLI: it
// provisions a Python environment, installs the tool, and runs scans.
package main

import cmd "levorun/cmd/levorun"

func main() {
	cmd.Execute()
}
