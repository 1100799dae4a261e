package runtime

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/taskforge/taskforge/internal/app/metrics"
	"github.com/taskforge/taskforge/internal/app/system"
	"github.com/taskforge/taskforge/pkg/logger"
)

var _ system.Service = (*opsServer)(nil)

// opsServer exposes liveness and Prometheus metrics. It is the only HTTP
// surface the application itself serves.
type opsServer struct {
	srv *http.Server
	log *logger.Logger
}

func newOpsServer(addr string, log *logger.Logger) *opsServer {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return &opsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		log: log,
	}
}

func (o *opsServer) Name() string { return "ops-server" }

func (o *opsServer) Start(ctx context.Context) error {
	go func() {
		o.log.WithField("addr", o.srv.Addr).Info("ops server listening")
		if err := o.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			o.log.WithError(err).Error("ops server failed")
		}
	}()
	return nil
}

func (o *opsServer) Stop(ctx context.Context) error {
	return o.srv.Shutdown(ctx)
}
