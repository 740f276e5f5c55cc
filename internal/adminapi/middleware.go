package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type contextKey int

const authedCtxKey contextKey = iota

// authMiddleware validates Bearer tokens against d.Tokens with a
// stale-while-revalidate cache identical in shape to the one guarding
// the durable policy-override lookups.
func (d *Dependencies) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	cache := newAuthCache(d.CacheTTL)

	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := extractBearerToken(r)
		if !ok || len(token) < 8 {
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "missing or malformed authorization header"})
			return
		}

		valid, hit, needsRefresh := cache.get(token)
		if hit && needsRefresh {
			go d.refreshAuth(cache, token)
		}
		if hit {
			if !valid {
				writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "invalid admin token"})
				return
			}
			next(w, r.WithContext(context.WithValue(r.Context(), authedCtxKey, true)))
			return
		}

		valid, err := d.authenticate(r.Context(), token)
		cache.set(token, valid)
		if err != nil || !valid {
			d.Logger.Warn("admin auth failed", zap.Error(err))
			writeJSON(w, http.StatusUnauthorized, ErrorResp{Detail: "invalid admin token"})
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), authedCtxKey, true)))
	}
}

func (d *Dependencies) authenticate(ctx context.Context, token string) (bool, error) {
	hash, found, err := d.Tokens.LookupHash(ctx, token[:8])
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)); err != nil {
		return false, nil
	}
	return true, nil
}

func (d *Dependencies) refreshAuth(cache *authCache, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	valid, err := d.authenticate(ctx, token)
	if err != nil {
		d.Logger.Warn("background admin auth refresh failed", zap.Error(err))
		return
	}
	cache.set(token, valid)
}

func extractBearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(v)
}

func requestLogging(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Info("admin http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
