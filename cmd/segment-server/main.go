// Command segment-server runs the segment TCP key/value server.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/segment-dev/segment/internal/applog"
	"github.com/segment-dev/segment/server"
)

const bytesPerMegabyte = 1024 * 1024

func main() {
	var (
		port        uint16
		maxMemoryMB uint64
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "segment-server",
		Short: "Run the segment in-memory key/value server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(port, maxMemoryMB, debug)
		},
	}

	cmd.Flags().Uint16Var(&port, "port", 9890, "server port")
	cmd.Flags().Uint64Var(&maxMemoryMB, "max-memory", 1024, "max memory limit in megabytes")
	cmd.Flags().BoolVar(&debug, "debug", false, "start the server in debug mode")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(port uint16, maxMemoryMB uint64, debug bool) error {
	log := applog.New(debug)

	log.Infof("Starting server on 127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return err
	}

	srv := server.New(listener, maxMemoryMB*bytesPerMegabyte, log)

	done := make(chan error, 1)
	go func() { done <- srv.Run() }()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received, shutting down")
		srv.Shutdown()
		<-done
	case err := <-done:
		if err != nil {
			return err
		}
	}

	return nil
}
