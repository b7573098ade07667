package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"slidedeck/export"
	"slidedeck/i18n"
	"slidedeck/model"
	"slidedeck/native"
	"slidedeck/pack"
	"slidedeck/templates"
)

const usage = `Usage: slidedeck [-dir DIR] [-metrics FILE] [-v] <command> [flags]

Commands:
  convert    export a deck:           convert -in deck.json -format pdf [-out deck.pdf]
  import     import a foreign deck:   import -in slides.pptx -out deck.json
  info       describe a deck:         info -in deck.json
  templates  list the built-in templates and themes
  new        start from a template:   new -template business-pitch -out deck.json
  decks      list stored decks
  save       store a deck:            save -in deck.json -name pitch
  load       read a stored deck:      load -name pitch -out deck.json
  versions   deck history:            versions -name pitch [-save [-m text]] [-restore ID]
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type command func(ctx context.Context, a *App, args []string, out io.Writer) error

var commands = map[string]command{
	"convert":   runConvert,
	"import":    runImport,
	"info":      runInfo,
	"templates": runTemplates,
	"new":       runNew,
	"decks":     runDecks,
	"save":      runSave,
	"load":      runLoad,
	"versions":  runVersions,
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("slidedeck", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	dir := global.String("dir", "", "storage directory (default ~/SlideDeck)")
	metricsPath := global.String("metrics", "", "write Prometheus metrics to this file on exit")
	verbose := global.Bool("v", false, "echo log lines to stderr")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}
	name, rest := global.Arg(0), global.Args()[1:]
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", name, usage)
		return exitUsage
	}

	a := NewApp(*dir)
	if *verbose {
		a.SetEcho(stderr)
	}
	if err := a.startup(ctx); err != nil {
		fmt.Fprintf(stderr, "startup: %v\n", err)
		a.shutdown("")
		return exitCode(err)
	}
	err := cmd(ctx, a, rest, stdout)
	a.shutdown(*metricsPath)
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%s: %v\n", name, err)
		}
		return exitCode(err)
	}
	return exitOK
}

func newFlags(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func parse(fs *flag.FlagSet, args []string, required ...string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	for _, name := range required {
		if fs.Lookup(name).Value.String() == "" {
			fmt.Fprintf(fs.Output(), "%s: -%s is required\n", fs.Name(), name)
			return errUsage
		}
	}
	return nil
}

func baseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// writeDeck writes p as a package when path ends in .deck and as a native
// document otherwise.
func writeDeck(path string, p model.Presentation, title, password string) error {
	if err := ValidateFileExtension(path, []string{"json", "deck"}); err != nil {
		return err
	}
	if strings.EqualFold(filepath.Ext(path), pack.Extension) {
		return pack.WriteFile(path, p, title, password)
	}
	data, err := native.Encode(p)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data, 0644)
}

func runConvert(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("convert", out)
	in := fs.String("in", "", "input deck (.json, .pptx or .deck)")
	format := fs.String("format", "pptx", "pptx, pdf, print-pdf, html, images, json or handout")
	dst := fs.String("out", "", "output file or directory")
	password := fs.String("password", "", "password of an encrypted .deck input")
	if err := parse(fs, args, "in"); err != nil {
		return err
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	imported, err := a.importer.ImportFile(*in, *password)
	if err != nil {
		return err
	}

	outcome := <-a.exporter.ExportDeckAsync(ctx, f, imported.Presentation, baseName(*in))
	if outcome.Err != nil {
		return outcome.Err
	}
	path, err := a.exporter.WriteResult(outcome.Result, *dst)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", i18n.T("export.success", path, humanize.Bytes(uint64(len(outcome.Result.Data)))))
	if diags := outcome.Result.Diagnostics; len(diags) > 0 {
		fmt.Fprintln(out, i18n.T("export.diagnostics", len(diags)))
		for _, d := range diags {
			fmt.Fprintf(out, "  %s\n", d)
		}
	}
	return nil
}

func runImport(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("import", out)
	in := fs.String("in", "", "file to import")
	dst := fs.String("out", "", "native .json or .deck output")
	password := fs.String("password", "", "password of an encrypted .deck input, also used for a .deck output")
	if err := parse(fs, args, "in", "out"); err != nil {
		return err
	}
	res, err := a.importer.ImportFile(*in, *password)
	if err != nil {
		return err
	}
	if err := writeDeck(*dst, res.Presentation, baseName(*in), *password); err != nil {
		return WrapOperationError("write "+*dst, err)
	}
	fmt.Fprintln(out, i18n.T("import.success", res.Presentation.Len()))
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "  %s\n", w)
	}
	return nil
}

func runInfo(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("info", out)
	in := fs.String("in", "", "deck to describe")
	password := fs.String("password", "", "password of an encrypted .deck")
	if err := parse(fs, args, "in"); err != nil {
		return err
	}
	data, err := os.ReadFile(*in)
	if err != nil {
		return WrapOperationError("read "+*in, err)
	}

	fmt.Fprintf(out, "%s (%s)\n", filepath.Base(*in), humanize.Bytes(uint64(len(data))))
	switch strings.ToLower(filepath.Ext(*in)) {
	case ".json":
		if doc, err := native.DecodeDocument(data); err == nil {
			if t, ok := doc.CreatedAt(); ok {
				fmt.Fprintln(out, i18n.T("info.created", humanize.Time(t)))
			}
		}
	case pack.Extension:
		meta, err := pack.ReadMetadata(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%q, encrypted: %v\n", meta.Title, meta.Encrypted)
		if meta.Encrypted && *password == "" {
			fmt.Fprintln(out, i18n.T("info.slides", meta.SlideCount))
			return nil
		}
	}

	res, err := a.importer.ImportData(filepath.Base(*in), data, *password)
	if err != nil {
		return err
	}
	p := res.Presentation
	elements := 0
	for _, s := range p.Slides {
		elements += len(s.Elements)
	}
	fmt.Fprintf(out, "%s, %s\n", i18n.T("info.slides", p.Len()), i18n.T("info.elements", elements))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for i, s := range p.Slides {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", i+1, s.Title, s.Layout, len(s.Elements))
	}
	return tw.Flush()
}

func runTemplates(ctx context.Context, a *App, args []string, out io.Writer) error {
	lib, err := templates.Builtin()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range lib.Categories {
		fmt.Fprintf(tw, "%s\n", c.Name)
		for _, t := range lib.InCategory(c.ID) {
			fmt.Fprintf(tw, "  %s\t%s\t%d slides\n", t.ID, t.Description, len(t.Slides))
		}
	}
	fmt.Fprintln(tw, "Themes")
	for _, th := range lib.Themes {
		fmt.Fprintf(tw, "  %s\t%s on %s\t%s\n", th.Name, th.TextColor, th.Background, th.Layout)
	}
	return tw.Flush()
}

func runNew(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("new", out)
	id := fs.String("template", "", "template id, see 'slidedeck templates'")
	dst := fs.String("out", "", "native .json or .deck output")
	password := fs.String("password", "", "encrypt a .deck output")
	if err := parse(fs, args, "out"); err != nil {
		return err
	}
	p := model.New(i18n.SlideDefaults())
	if *id != "" {
		lib, err := templates.Builtin()
		if err != nil {
			return err
		}
		if p, err = lib.Instantiate(*id, i18n.SlideDefaults()); err != nil {
			return err
		}
	}
	if err := writeDeck(*dst, p, baseName(*dst), *password); err != nil {
		return WrapOperationError("write "+*dst, err)
	}
	fmt.Fprintf(out, "%s: %s\n", *dst, i18n.T("info.slides", p.Len()))
	return nil
}

func runDecks(ctx context.Context, a *App, args []string, out io.Writer) error {
	entries, err := a.decks.ListDecks()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, humanize.Bytes(uint64(e.Size)), humanize.Time(e.SavedAt))
	}
	return tw.Flush()
}

func runSave(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("save", out)
	in := fs.String("in", "", "deck file to store")
	name := fs.String("name", "", "name to store it under (default: file name)")
	password := fs.String("password", "", "password of an encrypted .deck input")
	if err := parse(fs, args, "in"); err != nil {
		return err
	}
	if *name == "" {
		*name = baseName(*in)
	}
	res, err := a.importer.ImportFile(*in, *password)
	if err != nil {
		return err
	}
	if err := a.decks.SaveDeck(*name, res.Presentation); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", *name, i18n.T("info.slides", res.Presentation.Len()))
	return nil
}

func runLoad(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("load", out)
	name := fs.String("name", "", "stored deck")
	dst := fs.String("out", "", "native .json or .deck output")
	password := fs.String("password", "", "encrypt a .deck output")
	if err := parse(fs, args, "name", "out"); err != nil {
		return err
	}
	p, err := a.decks.LoadDeck(*name)
	if err != nil {
		return err
	}
	if err := writeDeck(*dst, p, *name, *password); err != nil {
		return WrapOperationError("write "+*dst, err)
	}
	fmt.Fprintf(out, "%s: %s\n", *dst, i18n.T("info.slides", p.Len()))
	return nil
}

func runVersions(ctx context.Context, a *App, args []string, out io.Writer) error {
	fs := newFlags("versions", out)
	name := fs.String("name", "", "stored deck")
	save := fs.Bool("save", false, "save the stored deck as a new version")
	message := fs.String("m", "", "version description")
	author := fs.String("author", "", "version author")
	restore := fs.String("restore", "", "restore this version id over its deck")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if err := ValidateStringLength("m", *message, 0, 200); err != nil {
		return err
	}

	switch {
	case *restore != "":
		v, err := a.decks.RestoreVersion(*restore)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, i18n.T("version.restored", v.Description))
		return nil
	case *name == "":
		fmt.Fprintln(out, "versions: -name is required")
		return errUsage
	case *save:
		v, err := a.decks.SaveVersion(*name, *message, *author)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", v.ID, i18n.T("version.saved", v.Description, *name))
		return nil
	}

	list, err := a.decks.ListVersions(*name)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(out, i18n.T("version.none"))
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, v := range list {
		created := time.UnixMilli(v.CreatedAt)
		fmt.Fprintf(tw, "%s\t%s\t%d slides\t%s\t%s\n", v.ID, v.Description, v.SlideCount, v.Author, humanize.Time(created))
	}
	return tw.Flush()
}
