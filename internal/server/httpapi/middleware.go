package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/common"
	"github.com/cynthia-woock354k/Nutrition-AI-FHE/internal/server/auth"
)

type ctxKey string

const actorIDKey ctxKey = "actorID"

// callbackPath authenticates by proof, not by token.
const callbackPath = "/api/oracle/callback"

// accessTokenMiddleware resolves the caller identity from either an
// Authorization bearer header or the access_token header and stores it in
// the request context.
func (s *HTTPServer) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == callbackPath {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get(common.AccessTokenHeaderName)
		if token == "" {
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			s.writeError(w, r, common.ErrInvalidToken)
			return
		}

		actorID, err := auth.GetActorIDFromToken(token, s.jwtSecret)
		if err != nil {
			s.writeError(w, r, common.ErrInvalidToken)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorIDKey, actorID)))
	})
}

// actorID returns the authenticated caller stored by the middleware.
func actorID(r *http.Request) string {
	id, _ := r.Context().Value(actorIDKey).(string)
	return id
}
