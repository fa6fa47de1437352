package content

import (
	_ "embed"
)

//go:embed default.yaml
var defaultPack []byte

// DefaultPack returns the built-in Mina Profunda definitions. Used when no
// content file is given on the command line, and by the sim runner.
func DefaultPack() *Pack {
	p, err := Parse(defaultPack)
	if err != nil {
		// The embedded pack ships with the binary; failing to parse it
		// is a build defect, not a runtime condition.
		panic(err)
	}
	return p
}
