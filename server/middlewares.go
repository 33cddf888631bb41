package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sentinela-io/sentinela/colors"
)

type RequestContextKey string

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			responseStatus := colors.Green(responseWriter.Status)
			if responseWriter.Status >= 400 {
				responseStatus = colors.Red(responseWriter.Status)
			}

			logg.Infof("%v %v %v %v",
				r.Method,
				r.RequestURI,
				responseStatus,
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

// initialContextMiddleware decodes the bearer token(if any) into the
// request context, so downstream routes can enforce auth or identify
// the caller.
func (sentinelaApp *app) initialContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Content-Type", "application/json")

		ctx := context.WithValue(
			r.Context(),
			RequestContextKey("decodedJWT"),
			sentinelaApp.decodeAndVerifyAuthHeader(r.Header.Get("Authorization")),
		)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (sentinelaApp *app) protectedRouteMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		decodedJWT := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
		if decodedJWT.ErrorMsg != "" {
			writeError(w, decodedJWT.Status, decodedJWT.ErrorMsg)
			return
		}

		next.ServeHTTP(w, r)
	})
}
