//go:build ignore

// This script mints an HS256 bearer token for the settlement API and, when a
// body is given, signs a provider webhook payload.
// Run with: go run scripts/generate-jwt.go -sub <user uuid> [-role admin]

package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/chainsafe/wallet-settlement/pkg/auth"
	"github.com/chainsafe/wallet-settlement/pkg/webhook"
)

func main() {
	sub := flag.String("sub", "", "User id (uuid); a random one is used when empty")
	tenant := flag.String("tenant", "", "Tenant id (uuid); defaults to the user id")
	role := flag.String("role", "user", "Caller role: user or admin")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	issuer := flag.String("iss", os.Getenv("SETTLEMENT_JWT_ISSUER"), "Issuer claim")
	audience := flag.String("aud", os.Getenv("SETTLEMENT_JWT_AUDIENCE"), "Audience claim")
	webhookSecret := flag.String("webhook-secret", "", "Also sign -webhook-body with this provider secret")
	webhookBody := flag.String("webhook-body", "", "Webhook JSON body to sign")
	flag.Parse()

	secret := os.Getenv("SETTLEMENT_JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "SETTLEMENT_JWT_SECRET must be set")
		os.Exit(1)
	}

	if *sub == "" {
		*sub = uuid.NewString()
	}
	if _, err := uuid.Parse(*sub); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -sub: %v\n", err)
		os.Exit(1)
	}

	if *tenant == "" {
		*tenant = *sub
	}

	now := time.Now()
	claims := &auth.Claims{
		TenantID: *tenant,
		Role:     *role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   *sub,
			Issuer:    *issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(*ttl)),
		},
	}
	if *audience != "" {
		claims.Audience = jwt.ClaimStrings{*audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("=== Settlement API JWT Token ===")
	fmt.Println()
	fmt.Printf("User:    %s\n", *sub)
	fmt.Printf("Role:    %s\n", *role)
	fmt.Printf("Expires: %s\n", now.Add(*ttl).Format(time.RFC3339))
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' http://localhost:8080/bridge/<id>/status-enhanced\n", token)

	if *webhookSecret != "" && *webhookBody != "" {
		ts := strconv.FormatInt(now.Unix(), 10)
		fmt.Println()
		fmt.Println("=== Webhook Signature ===")
		fmt.Printf("%s: %s\n", webhook.HeaderTimestamp, ts)
		fmt.Printf("%s: %s\n", webhook.HeaderSignature, webhook.Sign(*webhookSecret, ts, []byte(*webhookBody)))
	}
}
