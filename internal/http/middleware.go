package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorIDMiddleware identifies the visitor whose cart and checkout
// sessions we operate on. A returning visitor presents the ID handed out
// earlier; otherwise a new one is minted. In production this would come
// from a session cookie or auth token.
func VisitorIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visitorID := r.Header.Get("X-Visitor-ID")
		if visitorID == "" {
			visitorID = uuid.NewString()
		}

		w.Header().Set("X-Visitor-ID", visitorID)
		ctx := context.WithValue(r.Context(), "visitor_id", visitorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func getVisitorIDFromContext(ctx context.Context) string {
	if visitorID, ok := ctx.Value("visitor_id").(string); ok {
		return visitorID
	}
	return ""
}
