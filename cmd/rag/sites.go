package main

import (
	"encoding/json"
	"fmt"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
)

func (c *cli) runSites(args []string) error {
	fs := c.flags("sites", "[-json]")
	asJSON := fs.Bool("json", false, "Output collections as JSON")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	sites := rt.Sites.Collections()
	if *asJSON {
		if sites == nil {
			sites = []model.WebsiteCollection{}
		}
		return writeJSON(c, sites)
	}
	if len(sites) == 0 {
		fmt.Fprintln(c.out, "No websites yet. Index one with: rag ingest <url>")
		return nil
	}
	for _, s := range sites {
		fmt.Fprintf(c.out, "%-28s %-40s %3d msgs  %s  id=%s\n",
			s.Name, truncate(s.URL, 40), len(s.ChatHistory), age(s.Created()), s.ID)
	}
	return nil
}

func (c *cli) runIngest(args []string) error {
	fs := c.flags("ingest", "<url>")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	term := terminal{w: c.errOut}
	dash := controller.NewDashboard(rt.Sites, rt.Backend, term, term, rt.Log)
	col, err := dash.Submit(c.ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, col.Name)
	return nil
}

func (c *cli) runAsk(args []string) error {
	fs := c.flags("ask", "<collection_name> <question>")
	if err := parse(fs, args, 2); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	name := fs.Arg(0)
	chat := controller.NewWebsiteChat(rt.Sites, rt.Backend, terminal{w: c.errOut}, rt.Log)
	reply, err := chat.Send(c.ctx, name, question(fs.Args()[1:]))
	if err != nil {
		return fmt.Errorf("ask %s: %w", name, err)
	}
	fmt.Fprintln(c.out, reply.Content)
	return nil
}

func (c *cli) runHistory(args []string) error {
	fs := c.flags("history", "[--pdf] <collection_name|id>")
	pdf := fs.Bool("pdf", false, "Key is a PDF id")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	key := fs.Arg(0)
	if *pdf {
		col, ok := rt.Docs.Collection(key)
		if !ok {
			return fmt.Errorf("pdf %s: %w", key, controller.ErrCollectionNotFound)
		}
		printTranscript(c.out, col.ChatHistory)
		return nil
	}
	col, ok := rt.Sites.Collection(key)
	if !ok {
		return fmt.Errorf("website %s: %w", key, controller.ErrCollectionNotFound)
	}
	printTranscript(c.out, col.ChatHistory)
	return nil
}

func (c *cli) runClear(args []string) error {
	fs := c.flags("clear", "[--pdf] <collection_name|id>")
	pdf := fs.Bool("pdf", false, "Key is a PDF id")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	key := fs.Arg(0)
	term := terminal{w: c.errOut}
	if *pdf {
		if _, ok := rt.Docs.Collection(key); !ok {
			return fmt.Errorf("pdf %s: %w", key, controller.ErrCollectionNotFound)
		}
		controller.NewDocumentChat(rt.Docs, rt.Backend, term, term, rt.Log).Clear(key)
		return nil
	}
	if _, ok := rt.Sites.Collection(key); !ok {
		return fmt.Errorf("website %s: %w", key, controller.ErrCollectionNotFound)
	}
	controller.NewWebsiteChat(rt.Sites, rt.Backend, term, rt.Log).Clear(key)
	fmt.Fprintln(c.errOut, "✓ Chat cleared")
	return nil
}

func (c *cli) runRemove(args []string) error {
	fs := c.flags("rm", "[--pdf] <id>")
	pdf := fs.Bool("pdf", false, "Id is a PDF id")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	id := fs.Arg(0)
	term := terminal{w: c.errOut}
	if *pdf {
		if _, ok := rt.Docs.Collection(id); !ok {
			return fmt.Errorf("pdf %s: %w", id, controller.ErrCollectionNotFound)
		}
		controller.NewDocumentList(rt.Docs, rt.Backend, term, term, rt.Log).Remove(id)
		return nil
	}
	if _, ok := siteByID(rt.Sites.Collections(), id); !ok {
		return fmt.Errorf("website %s: %w", id, controller.ErrCollectionNotFound)
	}
	controller.NewDashboard(rt.Sites, rt.Backend, term, term, rt.Log).Remove(id)
	fmt.Fprintln(c.errOut, "✓ Website removed")
	return nil
}

func siteByID(sites []model.WebsiteCollection, id string) (model.WebsiteCollection, bool) {
	for _, s := range sites {
		if s.ID == id {
			return s, true
		}
	}
	return model.WebsiteCollection{}, false
}

func writeJSON(c *cli, v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
