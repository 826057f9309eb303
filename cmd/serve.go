package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldcalc/fieldcalc/core"
	"github.com/fieldcalc/fieldcalc/server"
	"github.com/fieldcalc/fieldcalc/util"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("uri", "u", "", "Listen address (default \"0.0.0.0:7080\")")
	bindP(serveCmd.Flags(), "uri")
}

func runServe(cmd *cobra.Command, args []string) {
	configure()
	log.INFO.Printf("fieldcalc %s", Version)

	out := make(chan util.Param, 16)

	dispatcher, closeAudit, err := configureAudit(conf.Audit)
	if err != nil {
		log.FATAL.Fatal(err)
	}
	defer closeAudit()

	calc, err := configureCalculator(conf.Calculator, dispatcher)
	if err != nil {
		log.FATAL.Fatal(err)
	}

	svc := server.Services{
		Calculator:  calc,
		Preferences: core.NewSettings(conf.Settings),
		Audit:       dispatcher,
	}

	ls, err := configureLogsheet(conf.Logsheet)
	if err != nil {
		log.FATAL.Fatalf("logsheet: %v", err)
	}
	if ls != nil {
		defer ls.Close()
		svc.Logsheet = ls
	}

	hub := server.NewSocketHub()
	go hub.Run(out)

	httpd := server.NewHTTPd(conf.URI, Version, svc, hub, out)

	// publish warnings and errors of all loggers created so far to the ui
	util.CaptureLogs(out)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-stop
		log.INFO.Println("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpd.Shutdown(ctx); err != nil {
			log.ERROR.Println(err)
		}
	}()

	log.INFO.Printf("listening at %s", httpd.Addr())

	if err := httpd.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.ERROR.Println(err)
	}
}
