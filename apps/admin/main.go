package main

import (
	"fmt"
	"log"
	"os"

	"github.com/trezcool/schoolportal/core"
	logsvc "github.com/trezcool/schoolportal/services/logger"
)

func main() {
	conf := core.NewConfig()

	z, err := logsvc.NewZap(conf.Debug)
	if err != nil {
		log.Fatalf("building zap logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(z.Named("ADMIN"), conf)
	logger.Enable(!conf.Debug)

	// start CLI
	cli := newCommandLine(conf, logger, os.Stdout)
	err = cli.run(os.Args)
	cli.close()
	logger.Sync()
	if err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
