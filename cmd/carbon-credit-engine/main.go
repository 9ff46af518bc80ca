// Command carbon-credit-engine calculates carbon credit emission reductions
// from renewable generation data.
package main

import (
	"fmt"
	"os"

	// Timezone database for mappings with IANA zone names on hosts without one.
	_ "time/tzdata"
)

const serviceName = "carbon-credit-engine"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] Error: %v\n", serviceName, err)
		os.Exit(1)
	}
}
