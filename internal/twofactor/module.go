package twofactor

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ponggrid/authsvc/internal/pkg/clock"
	"github.com/ponggrid/authsvc/internal/pkg/config"
	"github.com/ponggrid/authsvc/internal/pkg/hash"
	"github.com/ponggrid/authsvc/internal/pkg/instrument"
	"github.com/ponggrid/authsvc/internal/pkg/jwt"
	"github.com/ponggrid/authsvc/internal/pkg/mail"
	"github.com/ponggrid/authsvc/internal/pkg/mfa"
	"github.com/ponggrid/authsvc/internal/pkg/otp"
	"github.com/ponggrid/authsvc/internal/pkg/router"
	"github.com/ponggrid/authsvc/internal/pkg/uid"
	"github.com/ponggrid/authsvc/internal/pkg/validator"
	"github.com/ponggrid/authsvc/internal/twofactor/inbound"
	"github.com/ponggrid/authsvc/internal/twofactor/outbound/cache"
	"github.com/ponggrid/authsvc/internal/twofactor/outbound/db"
	"github.com/ponggrid/authsvc/internal/twofactor/outbound/users"
	"github.com/ponggrid/authsvc/internal/twofactor/usecase"
	"github.com/redis/go-redis/v9"
)

type Dependency struct {
	DBConn     *pgxpool.Pool `validate:"required"`
	CacheConn  *redis.Client
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	OID        uid.StringID               `validate:"required"`
	HMAC       hash.Hash                  `validate:"required"`
	Encryptor  mfa.Encryptor              `validate:"required"`
	Mailer     mail.Mail                  `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	vault := db.NewDB(dep.DBConn, dep.Instrument)

	resolver := users.NewClient(users.Config{
		BaseURL:    dep.Config.GetString("users_service.base_url"),
		Timeout:    dep.Config.GetSecond("users_service.timeout_seconds"),
		MaxRetries: dep.Config.GetUint64("users_service.max_retries"),
	}, dep.Instrument)

	ucDep := usecase.Dependency{
		RepoDB:     vault,
		Users:      resolver,
		Mailer:     dep.Mailer,
		Validator:  dep.Validator,
		Config:     dep.Config,
		OID:        dep.OID,
		HMAC:       dep.HMAC,
		Encryptor:  dep.Encryptor,
		Totp:       dep.Totp,
		Clock:      dep.Clock,
		JWT:        dep.JWT,
		Instrument: dep.Instrument,
	}

	if dep.Config.GetString("modules.twofactor.store_driver") == "redis" && dep.CacheConn != nil {
		ucDep.Store = cache.NewRedis(dep.CacheConn, dep.Instrument)
	} else {
		ucDep.Store = cache.NewMemory()
	}

	uc := usecase.New(ucDep)

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
