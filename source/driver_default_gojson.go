package source

import (
	"github.com/reoring/typegraph"
	drvgojson "github.com/reoring/typegraph/source/gojson"
)

// init in a separate package to avoid import cycle in root. This sets go-json as default driver.
func init() { typegraph.SetJSONDriver(drvgojson.Driver()) }
