package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/cleanmart/internal/config"
	testhelpers "github.com/polkiloo/cleanmart/internal/test"
	"github.com/polkiloo/cleanmart/internal/worker"
)

func newTestWorkers() (*worker.Reconciler, *worker.Sweeper) {
	logger := testhelpers.DiscardLogger()
	facade := &testhelpers.WorkerFacadeStub{}
	return worker.NewReconciler(facade, 10*time.Millisecond, 1, 1, logger),
		worker.NewSweeper(facade, 10*time.Millisecond, logger)
}

func TestNewHTTPServer(t *testing.T) {
	cfg := &config.Config{RunAddress: ":9999"}
	router := gin.New()
	server := newHTTPServer(serverParams{Config: cfg, Router: router})
	if server.Addr != ":9999" {
		t.Fatalf("expected address :9999, got %q", server.Addr)
	}
	if server.Handler != router {
		t.Fatalf("expected handler to be router")
	}
}

func TestNewWorkersUseConfig(t *testing.T) {
	params := workerParams{
		Facade: &CheckoutFacade{},
		Config: &config.Config{ReconcileInterval: 15 * time.Second, IdempotencySweepInterval: time.Minute, MaxOrdersBatch: 3, WorkerPoolSize: 4},
		Logger: testhelpers.DiscardLogger(),
	}
	if newReconciler(params) == nil {
		t.Fatal("expected reconciler instance")
	}
	if newSweeper(params) == nil {
		t.Fatal("expected sweeper instance")
	}
}

func TestNewCheckoutFacadeReflectsGatewayConfig(t *testing.T) {
	facade := newCheckoutFacade(facadeParams{
		Config: &config.Config{GatewayKeyID: "rzp_test_key", GatewayKeySecret: "secret", Currency: "INR"},
	})
	keyID, currency, err := facade.PaymentConfig(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keyID != "rzp_test_key" || currency != "INR" {
		t.Fatalf("unexpected payment config %q %q", keyID, currency)
	}

	unconfigured := newCheckoutFacade(facadeParams{Config: &config.Config{GatewayKeyID: "rzp_test_key"}})
	if _, _, err := unconfigured.PaymentConfig(context.Background()); err == nil {
		t.Fatal("expected error without key secret")
	}
}

func TestRegisterLifecycleStartStop(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "127.0.0.1:0", Handler: http.NewServeMux()}
	reconciler, sweeper := newTestWorkers()
	cfg := &config.Config{ShutdownTimeout: 100 * time.Millisecond}

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     testhelpers.DiscardLogger(),
		Server:     server,
		Reconciler: reconciler,
		Sweeper:    sweeper,
		Config:     cfg,
	})

	if len(recorder.Hooks) != 1 {
		t.Fatalf("expected one hook registered, got %d", len(recorder.Hooks))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := recorder.Start(ctx); err != nil {
		t.Fatalf("on start failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = recorder.Stop(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected on stop to finish")
	}
	if shutdowner.Calls() != 0 {
		t.Fatalf("clean stop must not request shutdown, got %d calls", shutdowner.Calls())
	}
}

func TestRegisterLifecycleShutdownOnServerError(t *testing.T) {
	recorder := &testhelpers.LifecycleRecorder{}
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	server := &http.Server{Addr: "bad addr"}
	reconciler, sweeper := newTestWorkers()

	registerLifecycle(lifecycleParams{
		Lifecycle:  recorder,
		Shutdowner: shutdowner,
		Logger:     testhelpers.DiscardLogger(),
		Server:     server,
		Reconciler: reconciler,
		Sweeper:    sweeper,
		Config:     &config.Config{ShutdownTimeout: time.Second},
	})

	hook := recorder.Hooks[0]
	if err := hook.OnStart(context.Background()); err != nil {
		t.Fatalf("on start returned error: %v", err)
	}

	select {
	case <-shutdowner.Called:
	case <-time.After(time.Second):
		t.Fatal("expected shutdown to be triggered on server error")
	}

	_ = hook.OnStop(context.Background())
}

func TestShutdownerStub(t *testing.T) {
	shutdowner := &testhelpers.ShutdownerStub{Called: make(chan struct{}, 1)}
	if err := shutdowner.Shutdown(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-shutdowner.Called:
	default:
		t.Fatal("expected shutdown notification")
	}
	if shutdowner.Calls() != 1 {
		t.Fatalf("expected one shutdown call, got %d", shutdowner.Calls())
	}
}
