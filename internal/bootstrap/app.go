package bootstrap

import (
	"context"
	"time"

	"github.com/Domenick1991/skyline/api"
	"github.com/Domenick1991/skyline/config"
	"github.com/Domenick1991/skyline/internal/email"
	"github.com/Domenick1991/skyline/internal/kafka"
	"github.com/Domenick1991/skyline/internal/notification"
	"github.com/Domenick1991/skyline/internal/repository"
	"github.com/Domenick1991/skyline/internal/service/booking"
	"github.com/Domenick1991/skyline/internal/service/flights"
	"github.com/Domenick1991/skyline/internal/session"
	"github.com/Domenick1991/skyline/internal/store"
	"github.com/Domenick1991/skyline/internal/syncqueue"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const kafkaCheckTimeout = 5 * time.Second

// App is the wired booking application.
type App struct {
	Router    *gin.Engine
	Queue     *syncqueue.Queue
	Scheduler *syncqueue.Scheduler

	Airports     *repository.AirportRepository
	Aircraft     *repository.AircraftRepository
	Crews        *repository.CrewRepository
	Flights      *repository.FlightRepository
	Reservations *repository.ReservationRepository
	Tickets      *repository.TicketRepository

	Bookings *booking.BookingService

	closers []func()
}

// NewApp loads the collections and wires services and routes. Start must be
// called to run the sync scheduler.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{}

	rem, closeRemote, err := OpenRemote(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeRemote)

	o := repository.Options{
		Medium:        store.NewFileMedium(cfg.Storage.DataDir),
		Remote:        rem,
		RemoteTimeout: cfg.Remote.Timeout(),
		Seed:          cfg.Storage.Seed,
		Logger:        log,
	}
	if rem != nil {
		app.Queue = syncqueue.New(rem,
			syncqueue.WithUpsertTimeout(cfg.Remote.Timeout()),
			syncqueue.WithLogger(log.Named("sync")))
		app.Scheduler = syncqueue.NewScheduler(app.Queue, cfg.Sync.FlushInterval(), log.Named("sync"))
		o.Queue = app.Queue
	}

	// tickets first: every other collection refreshes them after a delete
	if app.Tickets, err = repository.NewTicketRepository(o); err != nil {
		app.Close()
		return nil, err
	}
	if app.Reservations, err = repository.NewReservationRepository(o, app.Tickets); err != nil {
		app.Close()
		return nil, err
	}
	if app.Flights, err = repository.NewFlightRepository(o, app.Reservations, app.Tickets); err != nil {
		app.Close()
		return nil, err
	}
	if app.Airports, err = repository.NewAirportRepository(o, app.Flights, app.Reservations, app.Tickets); err != nil {
		app.Close()
		return nil, err
	}
	if app.Aircraft, err = repository.NewAircraftRepository(o, app.Flights, app.Reservations, app.Tickets); err != nil {
		app.Close()
		return nil, err
	}
	if app.Crews, err = repository.NewCrewRepository(o, app.Flights, app.Reservations, app.Tickets); err != nil {
		app.Close()
		return nil, err
	}

	dispatcher := notification.NewDispatcher(log.Named("notifications"))
	if len(cfg.Kafka.Brokers) > 0 {
		// the worker delivers the emails
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log.Named("kafka"))
		app.closers = append(app.closers, func() { _ = producer.Close() })
		checkCtx, cancel := context.WithTimeout(ctx, kafkaCheckTimeout)
		if err := producer.CheckConnection(checkCtx); err != nil {
			// publishing retries per message, so a late broker is not fatal
			log.Warn("kafka is not reachable yet", zap.Strings("brokers", cfg.Kafka.Brokers), zap.Error(err))
		}
		cancel()
		dispatcher.Subscribe("kafka", producer.NotificationPublisher(cfg.Kafka.NotificationsTopic))
	} else {
		sender := email.NewSender(email.NewLogTransport(log.Named("email")))
		dispatcher.Subscribe("email", sender.Send)
	}

	app.Bookings = booking.NewBookingService(app.Flights, app.Reservations, app.Tickets, dispatcher,
		booking.WithLogger(log.Named("booking")),
		booking.WithStaffHold(cfg.Booking.StaffHold()))
	flightService := flights.NewFlightService(app.Flights, app.Airports, app.Aircraft, app.Crews,
		app.Reservations, app.Tickets, log.Named("flights"))
	sessions := session.NewManager(app.Reservations)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	app.Router = api.NewRouter(log.Named("http"),
		api.NewFlightHandler(flightService, app.Bookings, api.Deleters{
			Flights:  app.Flights,
			Airports: app.Airports,
			Aircraft: app.Aircraft,
			Crews:    app.Crews,
		}),
		api.NewBookingHandler(app.Bookings, flightService, app.Reservations, app.Tickets, nil),
		api.NewSessionHandler(sessions, flightService, app.Bookings),
	)

	log.Info("application loaded",
		zap.Int("airports", app.Airports.Count()),
		zap.Int("aircraft", app.Aircraft.Count()),
		zap.Int("crews", app.Crews.Count()),
		zap.Int("flights", app.Flights.Count()),
		zap.Int("reservations", app.Reservations.Count()),
		zap.Int("tickets", app.Tickets.Count()))
	return app, nil
}

// Start launches the sync scheduler when a remote store is configured.
func (a *App) Start(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Start(ctx)
	}
}

// Close stops the scheduler after its final flush and releases connections.
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
