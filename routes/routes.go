package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/league-system/docs"
	"github.com/Dosada05/league-system/handlers"
	"github.com/Dosada05/league-system/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Format        *handlers.FormatHandler
	League        *handlers.LeagueHandler
	Standing      *handlers.StandingHandler
	Discipline    *handlers.DisciplineHandler
	Configuration *handlers.ConfigurationHandler
	Invite        *handlers.InviteHandler
	WebSocket     *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func SetupRoutes(r chi.Router, h Handlers, opts Options) {
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// The websocket route stays outside the timeout middleware.
	r.Get("/ws/leagues/{leagueID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	organizer := middleware.RequireRole(middleware.RoleAdmin, middleware.RoleOrganizer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/formats", func(r chi.Router) {
			r.Get("/", h.Format.ListFormats)
			r.Get("/slug/{slug}", h.Format.GetFormatBySlug)
			r.Get("/{formatID}", h.Format.GetFormatByID)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, organizer)
				r.Post("/", h.Format.CreateFormat)
				r.Patch("/{formatID}", h.Format.UpdateFormat)
				r.Delete("/{formatID}", h.Format.DeleteFormat)
			})
		})

		r.Route("/leagues", func(r chi.Router) {
			r.Get("/", h.League.ListLeagues)
			r.With(authenticate, organizer).Post("/", h.League.CreateLeague)

			r.Route("/{leagueID}", func(r chi.Router) {
				r.Get("/", h.League.GetLeague)
				r.Get("/teams", h.League.ListTeams)
				r.Get("/phases", h.League.ListPhases)
				r.Get("/configuration-status", h.Configuration.GetConfigurationStatus)
				r.Get("/discipline-rules", h.Discipline.GetRules)
				r.Get("/players/{playerID}/suspension", h.Discipline.CheckPlayerSuspension)

				r.Group(func(r chi.Router) {
					r.Use(authenticate, organizer)
					r.Post("/format", h.Format.ApplyFormatToLeague)
					r.Post("/teams", h.League.LinkTeam)

					r.Get("/invites", h.Invite.ListLeagueInvites)
					r.Post("/invites", h.Invite.CreateInvite)

					r.Post("/discipline-rules", h.Discipline.CreateRules)
					r.Put("/discipline-rules", h.Discipline.UpsertRules)
					r.Patch("/discipline-rules", h.Discipline.UpdateRules)
					r.Delete("/discipline-rules", h.Discipline.DeleteRules)
					r.Post("/discipline-rules/reset-yellows", h.Discipline.ResetYellowCards)
				})
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Use(authenticate, organizer)
			r.Post("/", h.League.CreateTeam)
			r.Post("/{teamID}/players", h.League.AddPlayerToTeam)
		})

		r.Route("/phases/{phaseID}", func(r chi.Router) {
			r.Get("/groups", h.League.ListGroups)
			r.Get("/standings", h.Standing.GetStandings)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, organizer)
				r.Patch("/status", h.League.UpdatePhaseStatus)
				r.Post("/groups", h.League.CreateGroup)
				r.Post("/matches", h.League.CreateMatch)
				r.Post("/results", h.Standing.ProcessMatchResult)
				r.Post("/standings", h.Standing.InitializeStandings)
				r.Delete("/standings", h.Standing.ResetStandings)
				r.Post("/standings/recalculate", h.Standing.RecalculatePositions)
				r.Post("/standings/export", h.Standing.ExportStandings)
			})
		})

		r.With(authenticate, organizer).Patch("/standings/{standingID}", h.Standing.UpdateStanding)

		r.Route("/invites", func(r chi.Router) {
			r.Get("/{token}", h.Invite.GetInvite)
			r.With(authenticate).Post("/{token}/accept", h.Invite.AcceptInvite)
			r.With(authenticate, organizer).Delete("/id/{inviteID}", h.Invite.DeleteInvite)
		})
	})
}
