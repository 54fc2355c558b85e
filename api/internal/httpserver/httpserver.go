package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// New wraps h with recovery, access logging and CORS.
func New(addr string, h http.Handler, log *zap.SugaredLogger, allowOrigins []string) *http.Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &http.Server{
		Addr:              addr,
		Handler:           Recover(log, AccessLog(log, CORS(allowOrigins, h))),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func Run(ctx context.Context, srv *http.Server, log *zap.SugaredLogger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}
	return Serve(ctx, srv, ln, log)
}

func Serve(ctx context.Context, srv *http.Server, ln net.Listener, log *zap.SugaredLogger) error {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Infow("shutdown signal received")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Warnw("graceful shutdown failed", "error", err)
		if cerr := srv.Close(); cerr != nil {
			log.Errorw("forced close failed", "error", cerr)
		}
		return err
	}
	return nil
}
