package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "animal-registry/internal/adapters/storage/memory"
	pg "animal-registry/internal/adapters/storage/postgres"
	"animal-registry/internal/domain/animals"
	"animal-registry/internal/domain/events"
	"animal-registry/internal/domain/transfers"
	"animal-registry/internal/middleware"
	"animal-registry/internal/platform/logger"
	"animal-registry/internal/ports/auth"
	"animal-registry/internal/ports/registrylookup"

	_ "animal-registry/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: chequeo de unicidad contra el registro nacional.
	// Si es nil, la unicidad se chequea contra el store local.
	RegistryLookup registrylookup.Lookup

	// Opcional: si es nil, se crea desde env.
	Logger logger.Logger
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	var (
		animalRepo   animals.Repository
		eventRepo    events.Repository
		transferRepo transfers.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory store", map[string]any{"err": err.Error()})
			}
		}
	}

	if db != nil {
		animalRepo = pg.NewAnimalsRepo(db)
		eventRepo = pg.NewEventsRepo(db)
		transferRepo = pg.NewTransfersRepo(db)
	} else {
		animalRepo = mem.NewAnimalRepo()
		eventRepo = mem.NewEventRepo()
		transferRepo = mem.NewTransferRepo()
	}

	// Services por módulo
	animalsSvc := animals.NewService(animalRepo, opts.RegistryLookup, animals.DefaultConfig())
	eventsSvc := events.NewService(eventRepo)
	transfersSvc := transfers.NewService(transferRepo)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc, eventsSvc)
	events.RegisterRoutes(r, eventsSvc)
	transfers.RegisterRoutes(r, transfersSvc, animalsSvc, eventsSvc)

	return r
}
