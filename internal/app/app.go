package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ponggrid/authsvc/internal/pkg/clock"
	"github.com/ponggrid/authsvc/internal/pkg/config"
	"github.com/ponggrid/authsvc/internal/pkg/goroutine"
	"github.com/ponggrid/authsvc/internal/pkg/hash"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/pkg/jwt"
	"github.com/ponggrid/authsvc/internal/pkg/mail"
	"github.com/ponggrid/authsvc/internal/pkg/mfa"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/pkg/ratelimit"
	"github.com/ponggrid/authsvc/internal/pkg/router"
	"github.com/ponggrid/authsvc/internal/pkg/uid"
	"github.com/ponggrid/authsvc/internal/pkg/validator"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine    *goroutine.Manager
	validator    validator.Validator
	clock        clock.Clocker
	hmac         hash.Hash
	oid          uid.StringID
	uuid         uid.StringID
	totp         otp.OTP
	jwt          jwt.JWT
	mfaEncryptor mfa.Encryptor

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	mail       mail.Mail
	limiter    ratelimit.Limiter
	limiterMem *ratelimit.MemoryStore

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initMail()
	app.initRateLimiter()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
