package main

import (
	"log"
	"os"

	"arcadeshell/internal/app"
	"arcadeshell/internal/config"
	"arcadeshell/internal/infrastructure/errors"
	"arcadeshell/internal/infrastructure/logging"
	"arcadeshell/internal/platform"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
)

func main() {
	cfg, err := config.Load(os.LookupEnv)
	if err != nil {
		log.Fatal(err)
	}

	appLogger := logging.NewConsoleLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	errors.SetDefaultRetryLogger(appLogger)

	platformAPI := platform.NewWindowAPI()
	if err := platformAPI.PrepareForegroundHandoff(); err != nil {
		appLogger.Warn("Foreground handoff unavailable", "error", err)
	}

	icon, err := cfg.LoadIcon()
	if err != nil {
		appLogger.Warn("Failed to load window icon", "path", cfg.IconPath, "error", err)
	}

	// Create an instance of the app structure
	application, err := app.NewApp(cfg, platformAPI.Name(), appLogger)
	if err != nil {
		log.Fatal(err)
	}

	startState := options.Normal
	if cfg.Window.Fullscreen {
		startState = options.Fullscreen
	}

	// Create application with options
	err = wails.Run(&options.App{
		Title:             cfg.Window.Title,
		Width:             cfg.Window.Width,
		Height:            cfg.Window.Height,
		MinWidth:          cfg.Window.MinWidth,
		MinHeight:         cfg.Window.MinHeight,
		Fullscreen:        cfg.Window.Fullscreen,
		HideWindowOnClose: false,
		BackgroundColour:  &options.RGBA{R: 26, G: 26, B: 46, A: 255},
		AssetServer: &assetserver.Options{
			Handler: application.Gateway(),
		},
		Logger:           logging.NewWailsLoggerAdapter(appLogger),
		LogLevel:         wailsLogLevel(cfg.LogLevel),
		OnStartup:        application.Startup,
		OnDomReady:       application.DomReady,
		OnBeforeClose:    application.BeforeClose,
		OnShutdown:       application.Shutdown,
		WindowStartState: startState,
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               cfg.InstanceID,
			OnSecondInstanceLaunch: application.SecondInstance,
		},
		Bind: []interface{}{
			application.Bridge(),
		},
		Windows: &windows.Options{
			ZoomFactor: 1.0,
		},
		Mac: &mac.Options{
			About: &mac.AboutInfo{
				Title: cfg.Window.Title,
				Icon:  icon,
			},
		},
		Linux: &linux.Options{
			Icon:        icon,
			ProgramName: "infinity-arcade",
		},
	})

	if err != nil {
		log.Fatal(err)
	}
}

func wailsLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARNING
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
