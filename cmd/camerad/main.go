package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/camd"
	"github.com/robotalks/softserial.go/pkg/framework"
)

func init() {
	camd.SetupFlags()
}

func main() {
	flag.Parse()

	daemon, err := camd.NewConfig().NewDaemon()
	if err != nil {
		glog.Exitf("camerad: %v", err)
	}
	g := framework.NewGroup(context.Background()).HandleSignals()
	g.Go("camerad", daemon)
	if err := g.Wait(); err != nil {
		glog.Exit(err)
	}
}
