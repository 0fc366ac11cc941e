package address

import (
	_ "embed"
)

//go:embed data/units.json
var defaultData []byte

// Default returns a resolver over the bundled reference dataset. A deployment
// with a fuller dataset points ADDRESS_DATA_PATH at its own file instead.
func Default() *Resolver {
	r, err := load(defaultData)
	if err != nil {
		// The bundled dataset is validated by tests; this cannot happen at
		// runtime with a stock build.
		panic(err)
	}
	return r
}
