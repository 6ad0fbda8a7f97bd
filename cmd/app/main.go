package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flyair/flyair-backend/config"
	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/bootstrap"
	"github.com/flyair/flyair-backend/internal/cache"
	"github.com/flyair/flyair-backend/internal/kafka"
	"github.com/flyair/flyair-backend/internal/repository"
	"github.com/flyair/flyair-backend/internal/service/airports"
	"github.com/flyair/flyair-backend/internal/service/booking"
	"github.com/flyair/flyair-backend/internal/service/dashboard"
	"github.com/flyair/flyair-backend/internal/service/flights"
	"github.com/flyair/flyair-backend/internal/service/flightseats"
	"github.com/flyair/flyair-backend/internal/service/seats"
	"github.com/flyair/flyair-backend/internal/service/tickets"
	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)

	userRepo := repository.NewUserRepository(pool)
	airportRepo := repository.NewAirportRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	flightSeatRepo := repository.NewFlightSeatRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	tokens := auth.NewTokenIssuer(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTTLMin)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
		time.Duration(cfg.Auth.TempTTLMin)*time.Minute,
	)
	totp := auth.NewTOTPService(cfg.Auth.TOTPIssuer)

	userService := users.NewUserService(
		userRepo,
		tokens,
		totp,
		cfg.Auth.BcryptCost,
		users.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
	)
	airportService := airports.NewAirportService(airportRepo)
	seatService := seats.NewSeatService(seatRepo)
	flightService := flights.NewFlightService(flightRepo, airportRepo, flights.WithCache(redisCache))
	flightSeatService := flightseats.NewFlightSeatService(flightSeatRepo, flightRepo, seatRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		userRepo,
		flightSeatRepo,
		time.Duration(cfg.Booking.LeadTimeHours)*time.Hour,
		time.Duration(cfg.Booking.CancelCutoffHours)*time.Hour,
		booking.WithSeatHolds(redisCache, time.Duration(cfg.Booking.SeatHoldTTLSeconds)*time.Second),
		booking.WithNotifications(producer, cfg.Kafka.NotificationsTopic),
	)
	ticketService := tickets.NewTicketService(ticketRepo, bookingRepo, flightSeatRepo)
	dashboardService := dashboard.NewDashboardService(userRepo, airportRepo, flightRepo, bookingRepo, ticketRepo)

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Tokens:      tokens,
		Users:       userService,
		Airports:    airportService,
		Seats:       seatService,
		Flights:     flightService,
		FlightSeats: flightSeatService,
		Bookings:    bookingService,
		Tickets:     ticketService,
		Dashboard:   dashboardService,
	})
	if err != nil {
		log.Fatalf("server error: %v", err)
	}
}
