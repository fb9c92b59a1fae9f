package controller

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Page identifies one of the four screens.
type Page int

const (
	PageDashboard Page = iota
	PageWebsiteChat
	PageDocuments
	PageDocumentChat
)

func (p Page) String() string {
	switch p {
	case PageDashboard:
		return "dashboard"
	case PageWebsiteChat:
		return "website-chat"
	case PageDocuments:
		return "documents"
	case PageDocumentChat:
		return "document-chat"
	}
	return fmt.Sprintf("page(%d)", int(p))
}

// Route is a page plus its key: the backend collection name for a website
// chat, the local collection id for a document chat, empty otherwise.
type Route struct {
	Page Page
	Key  string
}

// DashboardRoute is /dashboard.
func DashboardRoute() Route { return Route{Page: PageDashboard} }

// WebsiteChatRoute is /dashboard/{collectionName}.
func WebsiteChatRoute(collectionName string) Route {
	return Route{Page: PageWebsiteChat, Key: collectionName}
}

// DocumentsRoute is /pdf.
func DocumentsRoute() Route { return Route{Page: PageDocuments} }

// DocumentChatRoute is /pdf/{collectionId}.
func DocumentChatRoute(id string) Route {
	return Route{Page: PageDocumentChat, Key: id}
}

// Path renders the route with its key path-escaped.
func (r Route) Path() string {
	switch r.Page {
	case PageWebsiteChat:
		return "/dashboard/" + url.PathEscape(r.Key)
	case PageDocuments:
		return "/pdf"
	case PageDocumentChat:
		return "/pdf/" + url.PathEscape(r.Key)
	}
	return "/dashboard"
}

func (r Route) String() string { return r.Path() }

// ErrUnknownRoute is returned by ParseRoute for paths outside the route table.
var ErrUnknownRoute = errors.New("controller: unknown route")

// ParseRoute maps a path back to its Route. "/" is the dashboard.
func ParseRoute(path string) (Route, error) {
	p := strings.Trim(path, "/")
	if p == "" {
		return DashboardRoute(), nil
	}
	head, rest, _ := strings.Cut(p, "/")
	if strings.Contains(rest, "/") {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
	}

	switch head {
	case "dashboard":
		if key == "" {
			return DashboardRoute(), nil
		}
		return WebsiteChatRoute(key), nil
	case "pdf":
		if key == "" {
			return DocumentsRoute(), nil
		}
		return DocumentChatRoute(key), nil
	}
	return Route{}, fmt.Errorf("%w: %s", ErrUnknownRoute, path)
}
