package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/MarcGrol/deliverybackend/lib/myauth"
	"github.com/MarcGrol/deliverybackend/lib/mycache"
	"github.com/MarcGrol/deliverybackend/lib/myconfig"
	"github.com/MarcGrol/deliverybackend/lib/myemail"
	"github.com/MarcGrol/deliverybackend/lib/mylog"
	"github.com/MarcGrol/deliverybackend/lib/mymetrics"
	"github.com/MarcGrol/deliverybackend/lib/mypublisher"
	"github.com/MarcGrol/deliverybackend/lib/mypubsub"
	"github.com/MarcGrol/deliverybackend/lib/myqueue"
	"github.com/MarcGrol/deliverybackend/lib/mystore"
	"github.com/MarcGrol/deliverybackend/lib/mytime"
	"github.com/MarcGrol/deliverybackend/lib/myuuid"
	"github.com/MarcGrol/deliverybackend/services/checkout"
	"github.com/MarcGrol/deliverybackend/services/notification"
	"github.com/MarcGrol/deliverybackend/services/onboarding"
	"github.com/MarcGrol/deliverybackend/services/warmup"
)

var rootCmd = &cobra.Command{
	Use:   "deliverybackend",
	Short: "Backend of the delivery marketplace: driver onboarding, checkout and notifications",
	RunE:  runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webserver (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, priceCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := myconfig.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %s", err)
	}
	mylog.SetLevel(cfg.LogLevel)

	router := mux.NewRouter()
	router.Use(mymetrics.Middleware)

	cleanup, err := registerServices(c, cfg, router)
	if err != nil {
		return err
	}
	defer cleanup()

	return startWebServerBlocking(c, cfg.Port, router)
}

func registerServices(c context.Context, cfg myconfig.Config, router *mux.Router) (func(), error) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	fail := func(format string, a ...any) (func(), error) {
		cleanup()
		return nil, fmt.Errorf(format, a...)
	}

	backend, backendCleanup, err := mystore.NewBackend(c, mystore.Options{
		GoogleCloudProject: cfg.GoogleCloudProject,
		DatabaseURL:        cfg.DatabaseURL,
	})
	if err != nil {
		return fail("error creating store backend: %s", err)
	}
	cleanups = append(cleanups, backendCleanup)

	cache, cacheCleanup, err := mycache.New(c, mycache.Options{RedisAddr: cfg.RedisAddr})
	if err != nil {
		return fail("error creating cache: %s", err)
	}
	cleanups = append(cleanups, cacheCleanup)

	queue, queueCleanup, err := myqueue.New(c, myqueue.Options{
		GoogleCloudProject: cfg.GoogleCloudProject,
		LocationID:         cfg.LocationID,
		QueueName:          cfg.QueueName,
		BaseURL:            cfg.BaseURL,
	})
	if err != nil {
		return fail("error creating task queue: %s", err)
	}
	cleanups = append(cleanups, queueCleanup)

	pubsub, pubsubCleanup, err := mypubsub.New(c, mypubsub.Options{GoogleCloudProject: cfg.GoogleCloudProject})
	if err != nil {
		return fail("error creating pubsub: %s", err)
	}
	cleanups = append(cleanups, pubsubCleanup)

	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}
	auth := myauth.New(cfg.JWTSecret)

	publisher, err := mypublisher.New(c, backend, pubsub, queue, nower)
	if err != nil {
		return fail("error creating publisher: %s", err)
	}
	err = publisher.RegisterEndpoints(c, router)
	if err != nil {
		return fail("error registering publisher: %s", err)
	}

	{
		progressStore, err := mystore.New[onboarding.Progress](c, backend, onboarding.ProgressKind)
		if err != nil {
			return fail("error creating onboarding store: %s", err)
		}
		err = onboarding.NewService(progressStore, nower, publisher, auth).RegisterEndpoints(c, router)
		if err != nil {
			return fail("error registering onboarding service: %s", err)
		}
	}

	{
		orderStore, err := mystore.New[checkout.Order](c, backend, checkout.OrdersKind)
		if err != nil {
			return fail("error creating order store: %s", err)
		}
		itemStore, err := mystore.New[checkout.OrderItem](c, backend, checkout.OrderItemsKind)
		if err != nil {
			return fail("error creating order item store: %s", err)
		}
		err = checkout.NewService(orderStore, itemStore, cache, checkout.NewPayer(cfg.StripeAPIKey), publisher, nower, uuider, auth, checkout.Options{
			CartTTL:  cfg.CartTTL,
			Currency: cfg.Currency,
			BaseURL:  cfg.BaseURL,
		}).RegisterEndpoints(c, router)
		if err != nil {
			return fail("error registering checkout service: %s", err)
		}
	}

	{
		sender, err := myemail.New(myemail.Options{ResendAPIKey: cfg.ResendAPIKey, ResendURL: cfg.ResendURL})
		if err != nil {
			return fail("error creating email sender: %s", err)
		}
		err = notification.NewService(sender, pubsub, nower, notification.Options{
			FromEmail:      cfg.ResendFromEmail,
			BaseURL:        cfg.BaseURL,
			OnboardingURL:  cfg.OnboardingURL,
			DriverGuideURL: cfg.DriverGuideURL,
		}).RegisterEndpoints(c, router)
		if err != nil {
			return fail("error registering notification service: %s", err)
		}
	}

	warmup.NewService(cache).RegisterEndpoints(c, router)

	router.Handle("/metrics", mymetrics.Handler()).Methods("GET")

	return cleanup, nil
}

func startWebServerBlocking(c context.Context, port string, router *mux.Router) error {
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-c.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Printf("Error shutting down webserver: %s", err)
		}
	}()

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("error starting webserver on port %s: %s", port, err)
	}
	return nil
}
