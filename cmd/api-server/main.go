package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/petroshong/calofeed-sub001/config"
	"github.com/petroshong/calofeed-sub001/pkg/log"
	"github.com/petroshong/calofeed-sub001/pkg/server"
	"github.com/petroshong/calofeed-sub001/types"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	path := fmt.Sprintf("configs/config.%s.yaml", env)
	cfg := config.New(path)
	log.SetLevel(cfg.App.LogLevel)

	appProvider, cleanup, err := InitServer(cfg)
	if err != nil {
		log.L.Fatal("failed to init app", zap.Error(err))
	}
	defer cleanup()

	cliApp := &cli.App{
		Name:  "api-server",
		Usage: "calofeed local companion",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start http server",
				Action: func(ctx *cli.Context) error {
					return server.Run(ctx, appProvider)
				},
			},
			{
				Name:  "login",
				Usage: "sign in and keep the session locally",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"CALOFEED_PASSWORD"}},
				},
				Action: func(ctx *cli.Context) error {
					view, err := appProvider.Session.Login(ctx.Context, types.LoginRequest{
						Email:    ctx.String("email"),
						Password: ctx.String("password"),
					})
					if err != nil {
						return err
					}
					defer appProvider.Session.Close()
					return printJSON(view)
				},
			},
			{
				Name:  "stats",
				Usage: "print today's totals for the stored session",
				Action: func(ctx *cli.Context) error {
					if err := appProvider.Session.Bootstrap(ctx.Context); err != nil {
						return err
					}
					defer appProvider.Session.Close()
					if appProvider.Session.UserID() == "" {
						return fmt.Errorf("not signed in, run login first")
					}
					return printJSON(map[string]any{
						"daily":  appProvider.Calorie.DailyStats(),
						"weekly": appProvider.Calorie.WeeklyAverage(),
						"streak": appProvider.Calorie.Streak(),
					})
				},
			},
		},
	}
	if err := cliApp.Run(os.Args); err != nil {
		log.L.Fatal("command failed", zap.Error(err))
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
