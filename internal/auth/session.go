// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// privateKey and publicKey sign and verify player tokens. The pair is
// generated fresh at startup: tokens only need to outlive one game.
var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
)

// tokenLifetime bounds how long a player token stays valid. Long
// enough for the slowest table, short enough that codes can recycle.
const tokenLifetime = 24 * time.Hour

// Init generates a fresh ed25519 key pair at runtime.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}
}

// CreatePlayerToken issues a signed token binding a player ID to a
// game code. The WS handler verifies it before attaching a connection
// to the session.
func CreatePlayerToken(gameCode, playerID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  playerID,
		"game": gameCode,
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticatePlayerToken verifies a token and returns the player ID
// and game code it was issued for.
func AuthenticatePlayerToken(tokenString string) (playerID, gameCode string, err error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid jwt claims")
	}
	playerID, ok = claims["sub"].(string)
	if !ok {
		return "", "", fmt.Errorf("missing sub in jwt")
	}
	gameCode, ok = claims["game"].(string)
	if !ok {
		return "", "", fmt.Errorf("missing game in jwt")
	}
	return playerID, gameCode, nil
}
