package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mickamy/apiwire/broker"
	"github.com/mickamy/apiwire/client"
	"github.com/mickamy/apiwire/config"
	"github.com/mickamy/apiwire/envelope"
	"github.com/mickamy/apiwire/metrics"
	"github.com/mickamy/apiwire/web"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Address == "" {
		cfg.Address = "localhost:7000"
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = "dev-token"
	}

	var collector *metrics.Collector
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.New(reg)
		if err := serveMetrics(ctx, cfg.MetricsAddr, reg); err != nil {
			return fmt.Errorf("serve metrics: %w", err)
		}
		fmt.Println("metrics listening on", cfg.MetricsAddr)
	}

	var b *broker.Broker
	if cfg.InspectorAddr != "" {
		b = broker.New(256)
		if err := serveInspector(ctx, cfg.InspectorAddr, b); err != nil {
			return fmt.Errorf("serve inspector: %w", err)
		}
		fmt.Println("inspector listening on", cfg.InspectorAddr)
	}

	c := client.New(client.Config{
		Address:   cfg.Address,
		AuthToken: cfg.AuthToken,
		Timeout:   cfg.Timeout,
		Metrics:   collector,
		Broker:    b,
	})
	defer func() { _ = c.Close() }()

	fmt.Println("sending SQL queries to", cfg.Address)

	ticker := time.NewTicker(3 * time.Second)
	defer ticker.Stop()

	for i := 1; ; i++ {
		fetchUserCount(c, i)

		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics serve: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}

func serveInspector(ctx context.Context, addr string, b *broker.Broker) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	srv := web.New(b)
	go func() {
		if err := srv.Serve(lis); err != nil {
			log.Printf("inspector serve: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return nil
}

func fetchUserCount(c *client.Client, i int) {
	reply, err := c.FetchWith(sqlQuery(i), true)
	if err != nil {
		log.Printf("[%d] fetch: %v", i, err)
		return
	}
	if reply.HasError() {
		log.Printf("[%d] server error: %s", i, reply.Error.Message)
		return
	}
	fmt.Printf("[%d] rows: %v\n", i, reply.Data)
}

func sqlQuery(i int) envelope.Query {
	return envelope.NewSQLQuery("analytics", fmt.Sprintf(
		"SELECT COUNT(*) FROM users WHERE created_at > NOW() - INTERVAL '%d hours'", i,
	))
}
