package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomislav-safran/vibe-trader/internal/ai"
	"github.com/tomislav-safran/vibe-trader/internal/algo"
	"github.com/tomislav-safran/vibe-trader/internal/config"
	"github.com/tomislav-safran/vibe-trader/internal/exchange/bybit"
	"github.com/tomislav-safran/vibe-trader/internal/logger"
	"github.com/tomislav-safran/vibe-trader/internal/metrics"
	"github.com/tomislav-safran/vibe-trader/internal/position"
	"github.com/tomislav-safran/vibe-trader/internal/telegram"
	"github.com/tomislav-safran/vibe-trader/internal/trade"
)

const logFile = "vibetrader.log"

func main() {
	cfg := config.Load()
	logger.Setup(logFile, cfg.MaxLogSizeMB, cfg.MaxLogBackups)

	// Metrics endpoint (Prometheus text format at /metrics).
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			log.Printf("Metrics server stopped: %v", err)
		}
	}()

	// Wire the pipeline: exchange -> signal sources -> sizer -> executors.
	ex := bybit.NewClient()
	advisor := ai.NewClient()
	sizer := position.NewSizer(ex)
	strategies := algo.NewRegistry(ex)

	aiExecutor := trade.NewAiExecutor(ex, advisor, sizer)
	algoExecutor := trade.NewAlgoExecutor(ex, strategies, sizer)

	pool := trade.NewWorkerPool(cfg.SchedulerPool)
	shell := &Shell{
		ex:            ex,
		sizer:         sizer,
		aiExecutor:    aiExecutor,
		algoExecutor:  algoExecutor,
		aiScheduler:   trade.NewScheduler("trade", pool),
		algoScheduler: trade.NewScheduler("algo trade", pool),
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Println("Shutting down: system signal received.")
		telegram.Notify("🛑 vibe-trader shutting down.")
		os.Exit(0)
	}()

	log.Printf("vibe-trader initialized, metrics on %s", cfg.MetricsAddr)
	shell.Run(os.Stdin, os.Stdout)
}
