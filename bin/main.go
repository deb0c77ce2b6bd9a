package main

import (
	"arena/lib/server"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
)

func main() {

	arena, err := server.New()
	if err != nil {
		panic(fmt.Sprintf("cannot create server: %s", err))
	}

	if err := arena.Configure(); err != nil {
		panic(fmt.Sprintf("cannot configure server: %s", err))
	}

	arena.RegisterRoutes()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := arena.Start(ctx); err != nil {
		panic(fmt.Sprintf("cannot start server: %s", err))
	}

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		arena.Stop()
		_ = arena.Shutdown()
	}()

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}
	if err := arena.Listen(fmt.Sprintf(":%d", port)); err != nil {
		panic(fmt.Sprintf("cannot start server: %s", err))
	}
}
