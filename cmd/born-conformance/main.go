// Package main provides the born-conformance CLI, which writes and checks
// ONNX Split conformance fixtures.
package main

import (
	"context"
	"flag"
	"os"

	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	root := NewCLI()
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	if err := root.ExecuteContext(context.Background()); err != nil {
		klog.Flush()
		os.Exit(1)
	}
}
