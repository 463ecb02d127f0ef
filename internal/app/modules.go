package app

import (
	"io"

	"github.com/specialistvlad/opgraph/internal/registry"
	"github.com/specialistvlad/opgraph/modules/arith"
	"github.com/specialistvlad/opgraph/modules/env_vars"
	"github.com/specialistvlad/opgraph/modules/http_request"
	"github.com/specialistvlad/opgraph/modules/print"
	"github.com/specialistvlad/opgraph/modules/signal"
	"github.com/specialistvlad/opgraph/modules/toggle"
)

// coreModules is the list of every module compiled into the binary. print
// writes to out.
func coreModules(out io.Writer) []registry.Module {
	return []registry.Module{
		&arith.Module{},
		&signal.Module{},
		&toggle.Module{},
		&print.Module{Out: out},
		&env_vars.Module{},
		&http_request.Module{},
	}
}
