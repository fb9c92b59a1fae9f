package main

import (
	"fmt"

	"github.com/abelbrown/ragaweb/internal/controller"
	"github.com/abelbrown/ragaweb/internal/model"
	"github.com/dustin/go-humanize"
)

func (c *cli) runPDFs(args []string) error {
	fs := c.flags("pdfs", "[-n N] [-json]")
	limit := fs.Int("n", 0, "Show only the N most recent uploads (0 = all)")
	asJSON := fs.Bool("json", false, "Output collections as JSON")
	if err := parse(fs, args, 0); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	term := terminal{w: c.errOut}
	list := controller.NewDocumentList(rt.Docs, rt.Backend, term, term, rt.Log)
	docs := list.All()
	if *limit > 0 {
		docs = list.Recent(*limit)
	}

	if *asJSON {
		if docs == nil {
			docs = []model.PDFCollection{}
		}
		return writeJSON(c, docs)
	}
	if len(docs) == 0 {
		fmt.Fprintln(c.out, "No PDFs uploaded yet. Upload one with: rag upload <file.pdf>")
		return nil
	}
	for _, d := range docs {
		fmt.Fprintf(c.out, "%-36s %-32s %9s %3d msgs  %s\n",
			d.ID, truncate(d.FileName, 32), humanize.IBytes(uint64(max(d.FileSize, 0))),
			len(d.ChatHistory), age(d.Uploaded()))
	}
	return nil
}

func (c *cli) runUpload(args []string) error {
	fs := c.flags("upload", "<file.pdf>")
	if err := parse(fs, args, 1); err != nil {
		return err
	}

	f, err := controller.FileFromPath(fs.Arg(0))
	if err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	term := terminal{w: c.errOut}
	list := controller.NewDocumentList(rt.Docs, rt.Backend, term, term, rt.Log)
	col, err := list.Upload(c.ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, col.ID)
	return nil
}

func (c *cli) runAskPDF(args []string) error {
	fs := c.flags("ask-pdf", "<id> <question>")
	if err := parse(fs, args, 2); err != nil {
		return err
	}

	rt, err := c.open()
	if err != nil {
		return err
	}
	defer c.close(rt)

	id := fs.Arg(0)
	term := terminal{w: c.errOut}
	chat := controller.NewDocumentChat(rt.Docs, rt.Backend, term, term, rt.Log)
	if _, st := chat.Open(id); st != controller.StateReady {
		return fmt.Errorf("pdf %s: %w", id, controller.ErrCollectionNotFound)
	}
	reply, err := chat.Send(c.ctx, id, question(fs.Args()[1:]))
	if err != nil {
		return fmt.Errorf("ask %s: %w", id, err)
	}
	fmt.Fprintln(c.out, reply.Content)
	return nil
}
