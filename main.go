package main

import (
	"embed"
	"log"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"girder/pkg/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	prefs := config.Load()
	app := NewAppWithPrefs(prefs)

	err := wails.Run(&options.App{
		Title:  "girder",
		Width:  prefs.WindowWidth,
		Height: prefs.WindowHeight,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		log.Fatal(err)
	}
}
