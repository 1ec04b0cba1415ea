package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrattend/internal/config"
	"qrattend/internal/queue"
	"qrattend/internal/store"
)

// counterTTL keeps per-office scan counters around long enough for
// dashboards without letting stale keys pile up.
const counterTTL = 48 * time.Hour

// Worker consumes scan events and maintains per-office daily counters in Redis.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, store.Key("queue", "scans"))
	}

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for scan events...")
	for msg := range messages {
		if msg.Type != "scan" {
			continue
		}

		evt, err := queue.DecodeScan(msg)
		if err != nil {
			log.Printf("decode scan event failed: %v", err)
			continue
		}

		key := store.Key("scans", evt.OfficeID, evt.Date)
		if err := redisClient.Client.Incr(ctx, key).Err(); err != nil {
			log.Printf("counter incr failed for %s: %v", key, err)
			continue
		}
		_ = redisClient.Client.Expire(ctx, key, counterTTL).Err()

		log.Printf("recorded %s for attendance %s (office %s, %s)", evt.Action, evt.AttendanceID, evt.OfficeID, evt.Date)
	}

	log.Println("worker stopped")
}
