package controller

import (
	"context"
	"net/url"

	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/abelbrown/ragaweb/internal/otel"
	"github.com/abelbrown/ragaweb/internal/state"
)

// Dashboard drives the website list page.
type Dashboard struct {
	sites *state.WebsiteStore
	api   Backend
	nav   Navigator
	note  Notifier
	log   *otel.Logger
}

// NewDashboard creates the website list controller.
func NewDashboard(sites *state.WebsiteStore, api Backend, nav Navigator, note Notifier, log *otel.Logger) *Dashboard {
	return &Dashboard{sites: sites, api: api, nav: nav, note: note, log: log}
}

// Submit indexes rawURL. If a collection with the same url already exists
// locally, it navigates there without calling the backend. On failure the
// caller keeps its input; nothing is added to the store.
func (d *Dashboard) Submit(ctx context.Context, rawURL string) (model.WebsiteCollection, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		d.log.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindRejected, Comp: "controller", Msg: rawURL, Err: err.Error()})
		d.note.Notify(failure("Invalid URL", "Please enter a full address such as https://example.com"))
		return model.WebsiteCollection{}, err
	}

	if existing, ok := d.sites.FindByURL(u); ok {
		d.log.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindShortCircuit, Comp: "controller", Collection: existing.Name, Msg: u})
		d.nav.Navigate(WebsiteChatRoute(existing.Name))
		return existing, nil
	}

	d.sites.SetProcessing(true)
	defer d.sites.SetProcessing(false)

	res, err := d.api.IngestURL(ctx, u)
	if err != nil {
		d.note.Notify(failure("Failed to process website", "Please check the URL and try again"))
		return model.WebsiteCollection{}, err
	}

	d.sites.AddCollection(u, res.CollectionName)
	d.note.Notify(success("Website successfully indexed!", "Ready to chat with "+hostname(u)))
	d.nav.Navigate(WebsiteChatRoute(res.CollectionName))

	c, _ := d.sites.Collection(res.CollectionName)
	return c, nil
}

// Open navigates to the chat of the named collection.
func (d *Dashboard) Open(collectionName string) {
	d.nav.Navigate(WebsiteChatRoute(collectionName))
}

// Remove deletes a collection by id.
func (d *Dashboard) Remove(id string) {
	d.sites.RemoveCollection(id)
}

// Collections lists indexed websites, most recent first.
func (d *Dashboard) Collections() []model.WebsiteCollection {
	return d.sites.Collections()
}

// Processing reports whether an ingestion is in flight.
func (d *Dashboard) Processing() bool {
	return d.sites.IsProcessing()
}

func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return u.Hostname()
}
