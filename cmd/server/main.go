package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"google.golang.org/grpc"

	"github.com/rl1809/helados/internal/adapter/handler"
	"github.com/rl1809/helados/internal/adapter/server"
	"github.com/rl1809/helados/internal/adapter/storage"
	"github.com/rl1809/helados/internal/config"
	"github.com/rl1809/helados/internal/core/service"
	"github.com/rl1809/helados/internal/port"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize MySQL
	mysqlAdapter, err := storage.NewMySQLAdapter(cfg.MySQL)
	if err != nil {
		log.Fatalf("failed to configure mysql: %v", err)
	}
	if err := mysqlAdapter.EnsureSchema(ctx); err != nil {
		fmt.Println("Error setting database")
		log.Fatalf("failed to create schema: %v", err)
	}
	log.Println("schema ready")

	// Initialize Redis
	var cache port.CacheRepository
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		cache = storage.NewRedisAdapter(rdb, cfg.RedisTTL)
		log.Println("connected to redis")
	}

	// Initialize service
	heladoService := service.NewHeladoService(mysqlAdapter, cache)

	// Initialize gRPC server
	var grpcServer *grpc.Server
	if cfg.GRPCAddr != "" {
		grpcServer = grpc.NewServer()
		handler.RegisterHeladoServiceServer(grpcServer, handler.NewGRPCHandler(heladoService))

		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("failed to listen: %v", err)
		}

		go func() {
			log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
			if err := grpcServer.Serve(lis); err != nil {
				log.Printf("gRPC server error: %v", err)
			}
		}()
	}

	// Initialize TCP server
	router := handler.NewRouter(handler.NewHTTPHandler(heladoService))
	tcpServer := server.NewTCPServer(router, server.Config{
		ReadBufferSize: cfg.ReadBufferSize,
		Workers:        cfg.Workers,
	})

	lis, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	fmt.Printf("Server listening on port %s\n", listenPort(cfg.ListenAddr))

	if err := tcpServer.Serve(ctx, lis); err != nil {
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down...")

	if grpcServer != nil {
		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-time.After(5 * time.Second):
			grpcServer.Stop()
		}
		log.Println("gRPC server stopped")
	}

	if rdb != nil {
		rdb.Close()
	}
	log.Println("connections closed")
}

func listenPort(addr string) string {
	if _, p, err := net.SplitHostPort(addr); err == nil {
		return p
	}
	return addr
}
