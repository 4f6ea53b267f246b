package catalog

import _ "embed"

//go:embed menu.json
var defaultMenu []byte
