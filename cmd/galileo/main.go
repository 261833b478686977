package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo"
)

func main() {
	conf := galileo.DefaultConfiguration()
	flag.IntVar(&conf.Port, "port", conf.Port, "TCP listen port")
	flag.IntVar(&conf.Threads, "threads", conf.Threads, "event reactor worker count")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	conf.Logger.ToggleDebug(*debug)

	node, err := galileo.NewStorageNodeConfigured(conf)
	if err != nil {
		conf.Logger.Errorf("could not start storage node: %v", err)
		os.Exit(1)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	conf.Logger.Info("initiated shutdown")
	node.Shutdown()
	conf.Logger.Info("goodbye!")
}
