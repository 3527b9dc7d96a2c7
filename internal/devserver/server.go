package devserver

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/interview-prep/studyclient/internal/auth"
	"github.com/rs/cors"
)

type Options struct {
	Prefix      string
	Secret      []byte
	CORSOrigins []string
	Logger      *log.Logger
}

// NewRouter builds the full development API: health check, authenticated
// study/plan routes under the versioned prefix, request logging and CORS.
func NewRouter(store *Store, opts Options) http.Handler {
	if opts.Prefix == "" {
		opts.Prefix = "/api/v1"
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}).Methods("GET")

	protected := r.PathPrefix(opts.Prefix).Subrouter()
	protected.Use(auth.Middleware(opts.Secret))
	NewHandler(store).RegisterRoutes(protected)

	var handler http.Handler = r
	if opts.Logger != nil {
		handler = withLogging(opts.Logger, handler)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	})
	return c.Handler(handler)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func withLogging(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Printf("[devserver] %s %s %d %s req=%s", r.Method, r.URL.Path, rec.status, time.Since(start), r.Header.Get("X-Request-ID"))
	})
}
