package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/ragaweb/internal/app"
	"github.com/abelbrown/ragaweb/internal/config"
	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/coord"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/ui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Optional start page: ragaweb /pdf, ragaweb /dashboard/example_com
	start := controller.DashboardRoute()
	if len(os.Args) > 1 {
		start, err = controller.ParseRoute(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "usage: ragaweb [/dashboard[/name] | /pdf[/id]]\n%v\n", err)
			os.Exit(2)
		}
	}

	ui.UseTheme(cfg.UI.Theme)

	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	rt, err := app.Open(cfg, app.Options{Ring: ring, Comp: "tui"})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())

	// Controllers report navigation and toasts through the bridge
	bridge := ui.NewBridge(rt.Log)
	dashboard := controller.NewDashboard(rt.Sites, rt.Backend, bridge, bridge, rt.Log)
	siteChat := controller.NewWebsiteChat(rt.Sites, rt.Backend, bridge, rt.Log)
	documents := controller.NewDocumentList(rt.Docs, rt.Backend, bridge, bridge, rt.Log)
	docChat := controller.NewDocumentChat(rt.Docs, rt.Backend, bridge, bridge, rt.Log)

	application := ui.NewApp(ui.AppConfig{
		Context:         ctx,
		Sites:           dashboard,
		SiteChat:        siteChat,
		Documents:       documents,
		DocumentChat:    docChat,
		Bridge:          bridge,
		Obs:             ui.ObsConfig{Logger: rt.Log, Ring: ring},
		Start:           start,
		RecentDocuments: cfg.UI.RecentDocuments,
	})

	program := tea.NewProgram(application, tea.WithAltScreen())

	// Health checks and periodic refresh
	coordinator := coord.NewCoordinator(rt.Backend, rt.Log)
	coordinator.Start(ctx, program)

	// Run UI (blocks until quit)
	if _, err := program.Run(); err != nil {
		log.Printf("Error running program: %v", err)
	}

	// Graceful shutdown
	cancel()
	if err := coordinator.Wait(); err != nil {
		log.Printf("Background work: %v", err)
	}
	bridge.Close()
	if err := rt.Close(); err != nil {
		log.Printf("Shutdown: %v", err)
	}
}
