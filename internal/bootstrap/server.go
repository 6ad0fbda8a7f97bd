package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/flyair/flyair-backend/api"
	"github.com/flyair/flyair-backend/config"
	"github.com/flyair/flyair-backend/internal/auth"
	"github.com/flyair/flyair-backend/internal/service/airports"
	"github.com/flyair/flyair-backend/internal/service/booking"
	"github.com/flyair/flyair-backend/internal/service/dashboard"
	"github.com/flyair/flyair-backend/internal/service/flights"
	"github.com/flyair/flyair-backend/internal/service/flightseats"
	"github.com/flyair/flyair-backend/internal/service/seats"
	"github.com/flyair/flyair-backend/internal/service/tickets"
	"github.com/flyair/flyair-backend/internal/service/users"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Tokens      *auth.TokenIssuer
	Users       users.UserUseCase
	Airports    airports.AirportUseCase
	Seats       seats.SeatUseCase
	Flights     flights.FlightUseCase
	FlightSeats flightseats.FlightSeatUseCase
	Bookings    booking.BookingUseCase
	Tickets     tickets.TicketUseCase
	Dashboard   dashboard.DashboardUseCase
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: newRouter(cfg, svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newRouter(cfg *config.Config, svc Services) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	authHandler := api.NewAuthHandler(svc.Users)
	userHandler := api.NewUserHandler(svc.Users)
	airportHandler := api.NewAirportHandler(svc.Airports)
	seatHandler := api.NewSeatHandler(svc.Seats)
	flightHandler := api.NewFlightHandler(svc.Flights)
	flightSeatHandler := api.NewFlightSeatHandler(svc.FlightSeats)
	bookingHandler := api.NewBookingHandler(svc.Bookings, svc.Users)
	ticketHandler := api.NewTicketHandler(svc.Tickets)
	dashboardHandler := api.NewDashboardHandler(svc.Dashboard)

	base := router.Group("/api/v1")

	// unauthenticated: account entry points and the public catalog
	authHandler.Register(base.Group("/auth"))
	airportHandler.Register(base.Group("/airports"))
	flightHandler.Register(base.Group("/flights"))
	seatHandler.Register(base.Group("/seats"))
	flightSeatHandler.Register(base.Group("/flight-seats"))

	authed := base.Group("", api.AuthMiddleware(svc.Tokens))
	authHandler.RegisterProtected(authed.Group("/auth"))
	userHandler.Register(authed.Group("/users"))
	bookingHandler.Register(authed.Group("/bookings"))
	ticketHandler.Register(authed.Group("/tickets"))

	admin := authed.Group("/admin", api.RequireAdmin())
	userHandler.RegisterAdmin(admin.Group("/users"))
	airportHandler.RegisterAdmin(admin.Group("/airports"))
	seatHandler.RegisterAdmin(admin.Group("/seats"))
	flightHandler.RegisterAdmin(admin.Group("/flights"))
	flightSeatHandler.RegisterAdmin(admin.Group("/flight-seats"))
	bookingHandler.RegisterAdmin(admin.Group("/bookings"))
	ticketHandler.RegisterAdmin(admin.Group("/tickets"))
	dashboardHandler.RegisterAdmin(admin.Group("/dashboard"))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/openapi.json"),
		)))
	}

	return router
}
