package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jinzhu/copier"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-verify/pkg/account"
	"github.com/tendant/simple-verify/pkg/config"
	"github.com/tendant/simple-verify/pkg/notification"
	"github.com/tendant/simple-verify/pkg/resetpassword"
	resetapi "github.com/tendant/simple-verify/pkg/resetpassword/api"
	"github.com/tendant/simple-verify/pkg/verification"
	verifyapi "github.com/tendant/simple-verify/pkg/verification/api"
)

type VerifyDbConfig struct {
	Host     string `env:"VERIFY_PG_HOST" env-default:"localhost"`
	Port     uint16 `env:"VERIFY_PG_PORT" env-default:"5432"`
	Database string `env:"VERIFY_PG_DATABASE" env-default:"verify_db"`
	User     string `env:"VERIFY_PG_USER" env-default:"verify"`
	Password string `env:"VERIFY_PG_PASSWORD" env-default:"pwd"`
}

type JwtConfig struct {
	JwtSecret string `env:"JWT_SECRET" env-default:"very-secure-jwt-secret"`
}

type EnvConfig struct {
	VerifyDbConfig VerifyDbConfig
	AppConfig      app.AppConfig
	JwtConfig      JwtConfig
	ConfigFile     string `env:"VERIFY_CONFIG_FILE"`
	AppRole        string `env:"VERIFY_APP_ROLE"`
}

func main() {

	envCfg := EnvConfig{}
	cleanenv.ReadEnv(&envCfg)

	cfg, err := config.Load(envCfg.ConfigFile)
	if err != nil {
		slog.Error("Failed loading config", "err", err)
		os.Exit(-1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	var dbConfig dbutils.DbConfig
	copier.Copy(&dbConfig, &envCfg.VerifyDbConfig)
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	channelKeys := make([]string, 0, len(cfg.Verification.Keys))
	for key := range cfg.Verification.Keys {
		channelKeys = append(channelKeys, key)
	}

	if cfg.Verification.ModifySchema {
		schemaManager := account.NewSchemaManager(pool)
		schemaManager.AppRole = envCfg.AppRole
		if err := schemaManager.EnsureVerifiedFlags(context.Background(), channelKeys); err != nil {
			slog.Error("Failed ensuring verified flag columns", "err", err)
			os.Exit(-1)
		}
	}

	accountRepo := account.NewPostgresRepository(pool, channelKeys)
	codeRepo := verification.NewPostgresCodeRepository(pool)

	// The mail sender is optional. Without SMTP_HOST the reset flow reports
	// a misconfiguration on use instead of failing startup, so a deployment
	// that only uses SMS verification still boots.
	var resetSender resetpassword.MailSender
	sender, err := notification.NewMailSender(cfg.SMTP,
		cfg.Reset.SenderName, cfg.Reset.ReplyTo, cfg.Reset.ReplyToName)
	if err != nil {
		slog.Warn("Mail sender unavailable, reset emails disabled", "err", err)
	} else {
		resetSender = sender
	}
	resetService := resetpassword.NewService(accountRepo, resetSender, cfg.Reset)

	verifyOpts := []verification.ServiceOption{
		verification.WithAppInfo(cfg.Reset.AppName, cfg.Reset.URLPrefix),
	}
	if err == nil && cfg.Reset.WelcomeEnabled {
		verifyOpts = append(verifyOpts, verification.WithWelcomeMailer(sender))
	}
	verifyService, err := verification.NewService(accountRepo, codeRepo, &cfg.Verification, verifyOpts...)
	if err != nil {
		slog.Error("Failed creating verification service", "err", err)
		os.Exit(-1)
	}

	resetHandle := resetapi.NewHandler(resetService, cfg.Reset)
	verifyHandle := verifyapi.NewHandler(verifyService, &cfg.Verification)

	server.R.Group(resetHandle.Routes)
	server.R.Group(verifyHandle.FormRoutes)

	tokenAuth := jwtauth.New("HS256", []byte(envCfg.JwtConfig.JwtSecret), nil)

	server.R.Route("/verify", func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		verifyHandle.Routes(r)
	})

	server.Run()

}
