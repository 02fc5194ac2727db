package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/oklog/run"

	"github.com/smartcontractkit/chainlink-common/pkg/logger"
)

// Service is a component with a start/close lifecycle.
type Service interface {
	Start(context.Context) error
	Close() error
	Name() string
}

// Run starts svcs in order and blocks until ctx is done or SIGINT/SIGTERM arrives.
// Started services are then closed in reverse order.
func Run(ctx context.Context, lggr logger.Logger, svcs ...Service) error {
	started := make([]Service, 0, len(svcs))
	closeAll := func() error {
		var errs []error
		for _, svc := range slices.Backward(started) {
			if err := svc.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %s: %w", svc.Name(), err))
			}
		}
		return errors.Join(errs...)
	}

	for _, svc := range svcs {
		if err := svc.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("failed to start %s: %w", svc.Name(), err), closeAll())
		}
		lggr.Infow("Service started", "service", svc.Name())
		started = append(started, svc)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g := &run.Group{}
	g.Add(func() error {
		<-ctx.Done()
		return nil
	}, func(error) {
		cancel()
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	g.Add(func() error {
		select {
		case s := <-sig:
			lggr.Infow("Received shutdown signal", "signal", s.String())
		case <-ctx.Done():
		}
		return nil
	}, func(error) {
		signal.Stop(sig)
		cancel()
	})

	runErr := g.Run()
	lggr.Infow("Shutting down")
	return errors.Join(runErr, closeAll())
}
