package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/whu92rajesh-rgb/nft-giveaway/internal/config"
	"github.com/whu92rajesh-rgb/nft-giveaway/internal/handlers"
)

func main() {
	configPath := flag.String("config", "", "path to the yaml configuration")
	username := flag.String("user", "operator", "admin username embedded in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// Secret from config, ADMIN_JWT_SECRET wins (LoadConfig applies env)
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tokens, err := handlers.NewAdminTokens(cfg.Admin.JWTSecret, cfg.Admin.JWTIssuer)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Set admin.jwtSecret or ADMIN_JWT_SECRET first")
		log.Fatalf("Error: %v", err)
	}

	tokenString, err := tokens.GenerateAdminJWTToken(*username, *ttl)
	if err != nil {
		log.Fatalf("Error generating token: %v", err)
	}

	fmt.Println("============================================================")
	fmt.Println("Admin JWT Token Generated")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(tokenString)
	fmt.Println()
	fmt.Println("Claims:")
	fmt.Printf("  Username: %s\n", *username)
	fmt.Printf("  Role: %s\n", handlers.AdminRole)
	fmt.Printf("  Issuer: %s\n", cfg.Admin.JWTIssuer)
	fmt.Printf("  Expires: %s\n", time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("============================================================")
	fmt.Println("Usage:")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://127.0.0.1:%d/api/admin/treasury\n", tokenString, cfg.Server.Port)
	fmt.Println()
}
