// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"encoding/json"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/rogpeppe/go-internal/testscript"
	"gopkg.in/yaml.v3"

	"github.com/plugcheck/plugcheck/internal/report"
)

var reportDecoders = map[string]func([]byte, any) error{
	"json": json.Unmarshal,
	"yaml": yaml.Unmarshal,
	"toml": toml.Unmarshal,
}

// cmdCheckreport implements "checkreport <format> <plugins> <compatible>". It
// decodes the previous command's stdout as a single report document.
func cmdCheckreport(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("unsupported: ! checkreport")
	}
	if len(args) != 3 {
		ts.Fatalf("usage: checkreport <format> <plugins> <compatible>")
	}
	decode, ok := reportDecoders[args[0]]
	if !ok {
		ts.Fatalf("unknown report format %q", args[0])
	}
	wantPlugins, err := strconv.Atoi(args[1])
	ts.Check(err)
	wantCompatible, err := strconv.ParseBool(args[2])
	ts.Check(err)

	var rep report.Report
	if err := decode([]byte(ts.ReadFile("stdout")), &rep); err != nil {
		ts.Fatalf("stdout is not a single %s report: %v", args[0], err)
	}
	if len(rep.Plugins) != wantPlugins {
		ts.Fatalf("report lists %d plugin(s), want %d", len(rep.Plugins), wantPlugins)
	}
	if rep.Compatible != wantCompatible {
		ts.Fatalf("report compatible = %v, want %v", rep.Compatible, wantCompatible)
	}
}
