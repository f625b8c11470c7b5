// Command studypals computes study analytics offline, from an exported
// history file or straight from the service database.
package main

import (
	"os"

	"github.com/studypals/studypals/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
