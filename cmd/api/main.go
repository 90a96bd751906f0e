package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"matchduo.org/internal/auth"
	"matchduo.org/internal/httpapi"
	"matchduo.org/internal/obs"
	"matchduo.org/internal/ratelimit"
)

var version = "0.3.0"

func main() {
	obs.Init()
	obs.InitBuildInfo(version, os.Getenv("MATCHDUO_COMMIT"))

	secret := os.Getenv("MATCHDUO_AUTH_SECRET")
	if secret == "" {
		log.Fatal("missing MATCHDUO_AUTH_SECRET")
	}

	dsn := os.Getenv("MATCHDUO_PG_DSN")
	if dsn == "" {
		log.Fatal("missing MATCHDUO_PG_DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	var issuerOpts []auth.IssuerOption
	if ttl := durationEnv("MATCHDUO_ACCESS_TTL"); ttl > 0 {
		issuerOpts = append(issuerOpts, auth.WithAccessTTL(ttl))
	}
	if ttl := durationEnv("MATCHDUO_REFRESH_TTL"); ttl > 0 {
		issuerOpts = append(issuerOpts, auth.WithRefreshTTL(ttl))
	}
	issuer, err := auth.NewIssuer(secret, issuerOpts...)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	sessions := auth.NewService(auth.NewPGStore(db), issuer)

	attempts := intEnv("MATCHDUO_LOGIN_ATTEMPTS", ratelimit.DefaultCapacity)
	window := durationEnv("MATCHDUO_LOGIN_WINDOW")
	if window == 0 {
		window = ratelimit.DefaultWindow
	}
	logins := ratelimit.New(attempts, window)

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, sessions, issuer, logins)
	if os.Getenv("MATCHDUO_COOKIE_SECURE") == "true" {
		api.SetCookieCodec(httpapi.CookieCodec{Path: "/", Secure: true})
	}

	addr := os.Getenv("MATCHDUO_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting matchduo-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	_ = db.Close()
	log.Println("Stopped")
}

func durationEnv(name string) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("parse %s: %v", name, err)
	}
	return d
}

func intEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		log.Fatalf("parse %s: expected positive integer", name)
	}
	return n
}
