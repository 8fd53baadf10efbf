package main

import (
	"flag"
	"fmt"
	"os"

	"bolao-api/internal/config"
	"bolao-api/internal/domain"
	"bolao-api/internal/service/auth"
	"bolao-api/pkg/logger"
)

// token mints a bearer token for local testing of the authenticated endpoints
func main() {
	sub := flag.String("sub", "", "user identifier (required)")
	name := flag.String("name", "", "display name")
	avatar := flag.String("avatar", "", "avatar URL")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: logger.FormatConsole, Name: "token"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if !cfg.IsDevelopment() {
		log.WithField("environment", cfg.Environment).Fatal("Refusing to mint tokens outside development")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if *sub == "" {
		flag.Usage()
		os.Exit(2)
	}

	authService := auth.NewService(cfg.JWTSecret, log)
	token, err := authService.IssueToken(&domain.UserProfile{
		Sub:       *sub,
		Name:      *name,
		AvatarURL: *avatar,
	}, cfg.JWTTTL)
	if err != nil {
		log.WithError(err).Fatal("Failed to issue token")
	}

	fmt.Println(token)
}
