//
// Tencent is pleased to support the open source community by making trpc-flowgen-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-flowgen-go is licensed under the Apache License Version 2.0.
//
//

// Command flowgen serves the requirement-to-workflow API.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"trpc.group/trpc-go/trpc-flowgen-go/log"
	"trpc.group/trpc-go/trpc-flowgen-go/model/openai"
	"trpc.group/trpc-go/trpc-flowgen-go/server"
)

func main() {
	// Optional; credentials usually live in the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("flowgen: load .env: %v", err)
	}

	var (
		addr      = flag.String("addr", ":8090", "listen address")
		modelName = flag.String("model", "gpt-4o-mini", "model name for decomposition")
		connected = flag.String("connected", "", "comma-separated connected integrations (email,slack)")
		datasets  = flag.String("datasets", "", "comma-separated dataset names")
	)
	flag.Parse()

	opts := []server.Option{server.WithModel(openai.New(*modelName))}
	if tags := splitList(*connected); len(tags) > 0 {
		opts = append(opts, server.WithConnectedServices(tags...))
	}
	if names := splitList(*datasets); len(names) > 0 {
		opts = append(opts, server.WithDatasets(names...))
	}
	srv := server.New(opts...)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: srv.Handler(),
	}
	go func() {
		log.Infof("flowgen: listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("flowgen: serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Infof("flowgen: shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("flowgen: shutdown: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
