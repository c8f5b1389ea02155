package main

import (
	_ "time/tzdata"

	"rentabook/internal/reservations/handler"
	"rentabook/internal/reservations/setup"
	"rentabook/pkg/app"
	"rentabook/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	setup.Connect(cfg)

	cfg.Log.Info("Starting Reservations service")
	locker, err := setup.NewLocker(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create property lock", "error", err)
	}
	publisher, closePublisher, err := setup.NewPublisher(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to create event publisher", "error", err)
	}

	reservationService := setup.NewService(cfg, locker, publisher)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.OnShutdown(closePublisher)
	serverApp.Run()
}
