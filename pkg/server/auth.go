package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/raterudder/chargeadvisor/pkg/log"
	"github.com/raterudder/chargeadvisor/pkg/storage"
	"github.com/raterudder/chargeadvisor/pkg/types"
)

// identity is what a verified ID token says about its bearer.
type identity struct {
	UserID      string
	Email       string
	PhoneNumber string
	Expiry      time.Time
}

// tokenVerifier validates a Firebase ID token.
type tokenVerifier func(ctx context.Context, rawIDToken string) (identity, error)

// newFirebaseVerifier verifies tokens issued by Firebase Authentication for
// projectID. Firebase publishes its signing keys behind a standard OIDC
// discovery document.
func newFirebaseVerifier(ctx context.Context, projectID string) (tokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, "https://securetoken.google.com/"+projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create oidc provider for %s: %w", projectID, err)
	}
	return idTokenVerifier(provider.Verifier(&oidc.Config{ClientID: projectID})), nil
}

func idTokenVerifier(v *oidc.IDTokenVerifier) tokenVerifier {
	return func(ctx context.Context, rawIDToken string) (identity, error) {
		idToken, err := v.Verify(ctx, rawIDToken)
		if err != nil {
			return identity{}, err
		}
		var claims struct {
			Email       string `json:"email"`
			PhoneNumber string `json:"phone_number"`
		}
		if err := idToken.Claims(&claims); err != nil {
			return identity{}, fmt.Errorf("failed to parse id token claims: %w", err)
		}
		return identity{
			UserID:      idToken.Subject,
			Email:       claims.Email,
			PhoneNumber: claims.PhoneNumber,
			Expiry:      idToken.Expiry,
		}, nil
	}
}

// requestToken returns the ID token from the auth cookie or, for API
// clients, the Authorization header.
func requestToken(r *http.Request) (string, error) {
	if c, err := r.Cookie(authTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", nil
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.New("invalid auth header")
	}
	return strings.TrimPrefix(authHeader, "Bearer "), nil
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = log.WithAttrs(ctx, slog.String("reqPath", r.URL.Path))

		allowNoLogin := r.URL.Path == "/api/auth/login" || r.URL.Path == "/api/auth/status" || r.URL.Path == "/api/auth/logout"

		if s.bypassAuth {
			ctx = context.WithValue(ctx, userContextKey, types.User{ID: types.UserIDLocal})
			ctx = log.WithAttrs(ctx, slog.String("authUserID", types.UserIDLocal))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		token, err := requestToken(r)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "failed to read auth token", slog.Any("error", err))
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if token == "" {
			if !allowNoLogin {
				log.Ctx(ctx).WarnContext(ctx, "unauthenticated request")
				writeJSONError(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		id, err := s.verifier(ctx, token)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "auth token validation failed", slog.Any("error", err))
			s.clearCookie(w)
			if !allowNoLogin {
				writeJSONError(w, "invalid auth token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		var userFound bool
		user, err := s.storage.GetUser(ctx, id.UserID)
		switch {
		case err == nil:
			userFound = true
		case errors.Is(err, storage.ErrUserNotFound):
			// login registers the user, until then the token is enough
			user = types.User{ID: id.UserID, Email: id.Email, PhoneNumber: id.PhoneNumber}
		default:
			log.Ctx(ctx).ErrorContext(ctx, "user lookup failed", slog.String("userID", id.UserID), slog.Any("error", err))
			writeJSONError(w, "user lookup failed", http.StatusInternalServerError)
			return
		}

		ctx = log.WithAttrs(ctx, slog.String("authUserID", user.ID))
		log.Ctx(ctx).DebugContext(ctx, "authenticated request", slog.Bool("userFound", userFound))

		ctx = context.WithValue(ctx, userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if s.bypassAuth {
		writeJSONError(w, "authentication is disabled", http.StatusBadRequest)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		// since we failed to read, don't return JSON error
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	id, err := s.verifier(ctx, req.Token)
	if err != nil {
		log.Ctx(ctx).WarnContext(ctx, "failed to validate id token", slog.Any("error", err))
		writeJSONError(w, "invalid id token", http.StatusUnauthorized)
		return
	}
	if id.UserID == "" {
		log.Ctx(ctx).WarnContext(ctx, "missing subject in id token")
		writeJSONError(w, "invalid oidc claims", http.StatusUnauthorized)
		return
	}

	if _, err := s.storage.GetUser(ctx, id.UserID); err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			log.Ctx(ctx).ErrorContext(ctx, "user lookup failed", slog.String("userID", id.UserID), slog.Any("error", err))
			writeJSONError(w, "user lookup failed", http.StatusInternalServerError)
			return
		}
		user := types.User{ID: id.UserID, Email: id.Email, PhoneNumber: id.PhoneNumber}
		if err := s.storage.CreateUser(ctx, user); err != nil {
			log.Ctx(ctx).ErrorContext(ctx, "failed to create user", slog.String("userID", id.UserID), slog.Any("error", err))
			writeJSONError(w, "failed to create user", http.StatusInternalServerError)
			return
		}
		log.Ctx(ctx).InfoContext(ctx, "registered new user", slog.String("userID", id.UserID))
	}

	log.Ctx(ctx).InfoContext(ctx, "login token validated successfully", slog.String("userID", id.UserID))

	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    req.Token,
		Expires:  id.Expiry,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusOK)
}

func (s *Server) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authTokenCookie,
		Value:    "",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearCookie(w)
	w.WriteHeader(http.StatusOK)
}

type authStatusResponse struct {
	LoggedIn          bool   `json:"loggedIn"`
	UserID            string `json:"userID,omitempty"`
	Email             string `json:"email,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	AuthRequired      bool   `json:"authRequired"`
	FirebaseProjectID string `json:"firebaseProjectID,omitempty"`
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	user := s.getUser(r)
	writeJSON(w, authStatusResponse{
		LoggedIn:          user.ID != "",
		UserID:            user.ID,
		Email:             user.Email,
		PhoneNumber:       user.PhoneNumber,
		AuthRequired:      !s.bypassAuth,
		FirebaseProjectID: s.firebaseProjectID,
	}, http.StatusOK)
}
