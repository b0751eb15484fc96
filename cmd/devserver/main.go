// devserver runs the in-memory auth backend and progress hub for local
// development of the capture pipeline.
package main

import (
	"flag"
	"os"

	"github.com/facegate/go-facegate/internal/config"
	"github.com/facegate/go-facegate/internal/log"
	"github.com/facegate/go-facegate/pkg/devserver"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	log.Init(config.LogLevel())

	if err := devserver.New().Listen(*addr); err != nil {
		log.Error("devserver failed", "err", err)
		os.Exit(1)
	}
}
