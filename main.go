package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pongarena/server"
)

// PongArena 入口：组装注册表、协调器与 WebSocket 传输层，启动 HTTP 服务
func main() {
	var addr string
	flag.StringVar(&addr, "addr", ":8080", "server listen address, e.g. :8080")
	flag.Parse()
	// 使用第三方 zap 日志库写入 app.log（带滚动）
	if err := server.InitLogger("app.log"); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	// 显式构造并注入，不走进程级单例
	registry := server.NewRegistry()
	metrics := &server.Metrics{}
	hub := server.NewHub()
	coordinator := server.NewCoordinator(registry, hub, metrics, 0)
	hub.Bind(coordinator)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go coordinator.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	// 管理与监控接口
	mux.HandleFunc("/admin/config", server.HandleAdminConfig())
	mux.HandleFunc("/admin/rooms", server.HandleAdminRooms(registry))
	mux.HandleFunc("/metrics", server.HandleMetrics(metrics, registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		server.Log.Infof("PongArena listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")
	cancel()
	_ = srv.Shutdown(context.Background())
}
