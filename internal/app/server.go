package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
)

func (a *App) Start() <-chan struct{} {
	terminateChan := make(chan struct{})
	serverDone := make(chan struct{})

	if a.httpServer != nil {
		a.startHTTP()
	} else {
		a.startStdio(serverDone)
	}

	a.scheduler.Start()

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

		select {
		case <-sigint:
		case <-serverDone:
			// The MCP client hung up; nothing left to serve.
		}

		if a.cancel != nil {
			a.cancel()
		}

		terminateChan <- struct{}{}
		close(terminateChan)

		slog.Info("application gracefully shutdown")
	}()

	return terminateChan
}

func (a *App) startHTTP() {
	go func() {
		slog.Info("http server listening", "address", a.httpServer.Addr)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to listen and serve http server", "error", err)
			os.Exit(1)
		}
	}()
}

// startStdio serves the MCP session over stdin/stdout. Logs must stay on
// stderr here, stdout carries the protocol.
func (a *App) startStdio(done chan<- struct{}) {
	go func() {
		defer close(done)
		slog.Info("stdio server listening")

		err := server.NewStdioServer(a.mcpServer).Listen(a.ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("stdio server stopped", "error", err)
		}
	}()
}

func (a *App) Stop(ctx context.Context) {
	if a.cancel != nil {
		a.cancel()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", "HTTP Server", "error", err)
		}
	}

	for name, closer := range a.closerFn {
		if name == "HTTP Server" {
			continue
		}
		if err := closer(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to close resources", "name", name, "error", err)
		}
	}
}
