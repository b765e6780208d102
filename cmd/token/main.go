package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/getmentor/rating-api/config"
	"github.com/getmentor/rating-api/pkg/jwt"
	"github.com/getmentor/rating-api/pkg/logger"
)

// Issues a client session token signed with the API's JWT settings.
// The token is printed to stdout; everything else goes to the log.
func main() {
	clientID := flag.String("client", "", "client ID the token is issued for")
	name := flag.String("name", "", "client display name")
	flag.Parse()

	if *clientID == "" {
		fmt.Fprintln(os.Stderr, "-client is required")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	err = logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		Environment: cfg.Server.AppEnv,
		ServiceName: "rating-token",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	tm := jwt.NewTokenManager(cfg.ClientSession.JWTSecret, cfg.ClientSession.JWTIssuer, cfg.ClientSession.TokenTTLHours)

	token, expiresAt, err := issueToken(tm, *clientID, *name, time.Now())
	if err != nil {
		logger.LogError(err, "Failed to issue client token", zap.String("client_id", *clientID))
		os.Exit(1)
	}

	logger.Info("Issued client token",
		zap.String("client_id", *clientID),
		zap.Time("expires_at", expiresAt))
	fmt.Println(token)
}

func issueToken(tm *jwt.TokenManager, clientID, name string, now time.Time) (string, time.Time, error) {
	token, err := tm.GenerateToken(clientID, name)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, now.Add(tm.GetExpirationTime()), nil
}
