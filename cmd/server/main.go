// Command server runs the Kafka broker.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/moband/kafkabroker/internal/server"
	"github.com/moband/kafkabroker/pkg/logger"
)

// metadataLogPath is the fixed location of the cluster metadata log this
// broker answers DescribeTopicPartitions and Fetch from. No flags or env
// vars: per spec, this server takes no configuration surface at all.
const metadataLogPath = "/tmp/kraft-combined-logs/__cluster_metadata-0/00000000000000000000.log"

func main() {
	os.Exit(run())
}

func run() int {
	log := logger.New(logger.INFO)

	cfg := server.Config{
		Host:            "127.0.0.1",
		Port:            9092,
		MaxClients:      1024,
		MetadataLogPath: metadataLogPath,
	}

	srv := server.New(cfg, log)
	if err := srv.Start(); err != nil {
		log.Error("Failed to start server: %s", err.Error())
		return 1
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := srv.Stop(); err != nil {
		log.Error("Error during shutdown: %s", err.Error())
		return 1
	}
	return 0
}
