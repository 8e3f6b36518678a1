package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"aplus/internal/common"
)

// tokenRequest is the body of POST /api/auth/token.
type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// tokenResponse carries a freshly minted bearer token.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// handleAuthToken mints a bearer token for a configured API client.
func (s *Server) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	cfg := s.app.Config
	if len(cfg.Auth.Clients) == 0 {
		WriteError(w, http.StatusNotImplemented, "token authentication not configured")
		return
	}

	var req tokenRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		WriteError(w, http.StatusBadRequest, "client_id and client_secret are required")
		return
	}

	// Unknown id and wrong secret produce the same response so the endpoint
	// doesn't leak which client ids exist.
	client := cfg.Auth.Client(req.ClientID)
	if client == nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid client credentials", "invalid_client")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(client.SecretHash), []byte(req.ClientSecret)); err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid client credentials", "invalid_client")
		return
	}

	token, err := signToken(req.ClientID, &cfg.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign token")
		WriteError(w, http.StatusInternalServerError, "Failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(cfg.Auth.GetTokenExpiry().Seconds()),
	})
}

// signToken creates an HS256 JWT for the given client id.
func signToken(clientID string, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"sub": clientID,
		"iss": "aplus-server",
		"iat": now.Unix(),
		"exp": now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}
