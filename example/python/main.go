package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/mickamy/apiwire/client"
	"github.com/mickamy/apiwire/envelope"
)

const addr = "localhost:7000"

const script = "summarize_recent_signups.py"

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := client.New(client.Config{Address: addr, AuthToken: "dev-token"})
	defer func() { _ = c.Close() }()

	fmt.Println("sending Python queries to", addr)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for i := 1; ; i++ {
		runSummary(c, i)

		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

func runSummary(c *client.Client, i int) {
	query := envelope.NewPythonQuery(script, map[string]any{
		"window_hours": i,
		"include_free": true,
	})

	reply, err := c.FetchWith(query, true)
	if err != nil {
		log.Printf("[%d] fetch: %v", i, err)
		return
	}
	if reply.HasError() {
		log.Printf("[%d] server error: %s", i, reply.Error.Message)
		return
	}
	fmt.Printf("[%d] result: %v\n", i, reply.Data)
}
