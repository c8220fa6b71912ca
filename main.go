package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"canvascrafters/core"
	"canvascrafters/handlers/api/canvases"
	"canvascrafters/handlers/auth"
	"canvascrafters/handlers/websocket"
	authMiddleware "canvascrafters/middleware"
	"canvascrafters/stores"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	socketio "github.com/zishang520/socket.io/v2/socket"
)

func setupRouter(store core.CanvasStore) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length", "X-CSRF-Token", "Token", "session", "Origin", "Host", "Connection", "Accept-Encoding", "Accept-Language", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Route("/api/v2", func(r chi.Router) {
		// Canvas documents, protected by JWT auth.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthJWT)
			r.Route("/canvases", func(r chi.Router) {
				r.Post("/", canvases.HandleCreate(store))
				r.Get("/", canvases.HandleList(store))
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", canvases.HandleUpdateMeta(store))
					r.Put("/snapshot", canvases.HandleSaveSnapshot(store))
					r.Post("/like", canvases.HandleLike(store))
					r.Post("/collaborators", canvases.HandleAddCollaborator(store))
					r.Delete("/", canvases.HandleDelete(store))
				})
			})
		})

		// Public routes; auth is optional so private canvases stay
		// reachable for their owners and collaborators.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.OptionalAuthJWT)
			r.Get("/canvases/explore", canvases.HandleExplore(store))
			r.Get("/canvases/{id}", canvases.HandleGet(store))
		})

		r.Get("/rooms", func(w http.ResponseWriter, req *http.Request) {
			render.JSON(w, req, websocket.GetActiveRooms())
		})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Get("/login", auth.HandleLogin)
		r.Get("/callback", auth.HandleCallback)
	})

	return r
}

func waitForShutdown(ioo *socketio.Server) {
	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case os.Interrupt, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	ioo.Close(nil)
	logrus.Info("Shutting down...")
	os.Exit(0)
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	listenAddress := flag.String("listen", ":3002", "The address to listen on.")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	auth.InitAuth()
	store := stores.GetStore()

	r := setupRouter(store)

	ioo := websocket.SetupSocketIO(store)
	r.Mount("/socket.io/", ioo.ServeHandler(nil))

	logrus.WithField("addr", *listenAddress).Info("starting server")
	go func() {
		if err := http.ListenAndServe(*listenAddress, r); err != nil {
			logrus.WithField("event", "start server").Fatal(err)
		}
	}()

	logrus.Debug("Server is running in the background")
	waitForShutdown(ioo)
}
