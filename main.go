// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/plugcheck/plugcheck/cmd/plugcheck"

func main() {
	cmd.Execute()
}
