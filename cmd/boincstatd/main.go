// boincstatd polls one compute daemon over GUI RPC and republishes
// its state as Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danmuck/boincctl/internal/client"
	"github.com/danmuck/boincctl/internal/config"
	"github.com/danmuck/boincctl/internal/models"
	"github.com/danmuck/boincctl/internal/observability"
)

var startedAt = time.Now()

func main() {
	var (
		configPath string
		listenAddr string
		interval   time.Duration
	)
	flag.StringVar(&configPath, "config", "boincstatd.toml", "endpoint TOML file")
	flag.StringVar(&listenAddr, "listen", ":9177", "metrics listen address")
	flag.DurationVar(&interval, "interval", 30*time.Second, "daemon poll interval")
	flag.Parse()

	ep, err := config.LoadEndpoint(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boincstatd: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("boincstatd", ep.Addr())
	observability.RegisterMetrics()

	go pollLoop(ep, interval)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.ScrapeLogger(log.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"uptime":   time.Since(startedAt).String(),
			"service":  "boincstatd",
			"endpoint": ep.Addr(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if err := r.Run(listenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "boincstatd: %v\n", err)
		os.Exit(1)
	}
}

// pollLoop scrapes the daemon on the interval. The transport is
// sticky on failure, so every failed cycle dials fresh.
func pollLoop(ep config.Endpoint, interval time.Duration) {
	for {
		if err := pollOnce(ep, interval); err != nil {
			observability.SetDaemonUp(ep.Addr(), false)
			log.Warn().Err(err).Str("endpoint", ep.Addr()).Msg("daemon poll failed")
		}
		time.Sleep(interval)
	}
}

func pollOnce(ep config.Endpoint, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	c := client.Dial(ep)
	defer c.Close()

	results, err := c.GetResults(ctx, false)
	if err != nil {
		return err
	}

	byState := make(map[string]int)
	for _, result := range results {
		state := "unknown"
		if result.State != nil {
			state = models.ResultState(*result.State).String()
		}
		byState[state]++
	}

	observability.SetDaemonUp(ep.Addr(), true)
	observability.SetDaemonTasks(ep.Addr(), byState)
	log.Info().
		Str("endpoint", ep.Addr()).
		Int("tasks", len(results)).
		Msg("daemon polled")
	return nil
}
