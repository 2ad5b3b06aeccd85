package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/dataroom/internal/logger"
	"github.com/marmos91/dataroom/pkg/dataroom"
	"github.com/marmos91/dataroom/pkg/store"
)

type command func(a *app, ctx context.Context, args []string) error

var commands map[string]command

func init() {
	commands = map[string]command{
		"serve":  (*app).serve,
		"shell":  (*app).shell,
		"mkdir":  (*app).mkdir,
		"upload": (*app).upload,
		"ls":     (*app).ls,
		"tree":   (*app).tree,
		"path":   (*app).path,
		"rename": (*app).rename,
		"rm":     (*app).rm,
		"get":    (*app).get,
		"export": (*app).export,
		"import": (*app).importSnapshot,
	}
}

func (a *app) dispatch(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (run with -h for usage)", name)
	}
	return cmd(a, ctx, args)
}

// emit prints res and converts a failed envelope into an error.
func emit[T any](a *app, res dataroom.Result[T], text func(T)) error {
	if a.json {
		if err := a.encode(res); err != nil {
			return err
		}
		return res.Err()
	}
	if !res.Success {
		return res.Err()
	}
	text(res.Data)
	return nil
}

func (a *app) encode(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseFlags(fs *flag.FlagSet, args []string, want int) ([]string, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != want {
		fs.Usage()
		return nil, fmt.Errorf("%s: expected %d argument(s), got %d", fs.Name(), want, fs.NArg())
	}
	return fs.Args(), nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("serve", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	if a.metrics.Server == nil {
		return errors.New("serve requires metrics.enabled in the configuration")
	}

	logger.Info("Serving store %s. Press Ctrl+C to stop.", a.cfg.Store.Type)
	if err := a.metrics.Server.Start(ctx); err != nil {
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// shell runs one command per input line until EOF, "exit" or cancellation.
func (a *app) shell(ctx context.Context, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("shell", flag.ContinueOnError), args, 0); err != nil {
		return err
	}
	return a.runShell(ctx, os.Stdin, os.Stderr)
}

func (a *app) runShell(ctx context.Context, in io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(errOut, "dataroom> ")
		if !scanner.Scan() {
			fmt.Fprintln(errOut)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fields, err := splitArgs(scanner.Text())
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "exit", "quit":
			return nil
		case "shell", "serve":
			fmt.Fprintf(errOut, "Error: %s is not available inside the shell\n", fields[0])
			continue
		}

		if err := a.dispatch(ctx, fields[0], fields[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(errOut, "Error: %v\n", err)
		}
	}
}

func (a *app) mkdir(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mkdir", flag.ContinueOnError)
	parent := fs.String("parent", store.RootID, "Parent folder id (default: top level)")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	res := a.room.Folders.CreateFolder(ctx, rest[0], *parent)
	return emit(a, res, func(f *store.Folder) {
		fmt.Fprintf(a.out, "%s\t%s\n", f.ID, f.Name)
	})
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	parent := fs.String("parent", store.RootID, "Parent folder id (default: top level)")
	name := fs.String("name", "", "Display name (default: base name of the file)")
	mimeType := fs.String("type", "", "Declared media type (default: derived from the extension)")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}

	path := rest[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	req := dataroom.UploadRequest{
		Name:     *name,
		MimeType: *mimeType,
		Content:  f,
	}
	if req.Name == "" {
		req.Name = filepath.Base(path)
	}
	if req.MimeType == "" {
		req.MimeType = declaredType(path)
	}

	res := a.room.Files.UploadFile(ctx, req, *parent)
	return emit(a, res, func(file *store.File) {
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", file.ID, file.Name, dataroom.FormatSize(file.Size))
	})
}

// declaredType derives a media type from the file extension, the way a
// browser fills in an upload form.
func declaredType(path string) string {
	t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if t == "" {
		return "application/octet-stream"
	}
	if mediaType, _, err := mime.ParseMediaType(t); err == nil {
		return mediaType
	}
	return t
}

func (a *app) ls(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("ls: expected at most 1 argument, got %d", fs.NArg())
	}
	folderID := fs.Arg(0)

	res := a.room.Folders.GetFolderContents(ctx, folderID)
	return emit(a, res, func(c dataroom.FolderContents) {
		w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		for _, f := range c.Folders {
			fmt.Fprintf(w, "%s/\t-\t%s\t%s\n", f.Name, humanize.Time(f.UpdatedAt), f.ID)
		}
		for _, f := range c.Files {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, dataroom.FormatSize(f.Size), humanize.Time(f.UpdatedAt), f.ID)
		}
		_ = w.Flush()
		fmt.Fprintf(a.out, "%d item(s)\n", c.TotalItems)
	})
}

// treeNode is the JSON form of the tree command.
type treeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Size     int64       `json:"size,omitempty"`
	Children []*treeNode `json:"children,omitempty"`
}

func (a *app) tree(ctx context.Context, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("tree", flag.ContinueOnError), args, 0); err != nil {
		return err
	}

	root := &treeNode{Name: "/", Type: string(store.ItemTypeFolder)}
	if err := a.walk(ctx, root); err != nil {
		return err
	}

	if a.json {
		return a.encode(dataroom.Result[*treeNode]{Success: true, Data: root})
	}
	fmt.Fprintln(a.out, "/")
	a.printTree(root, "")
	return nil
}

func (a *app) walk(ctx context.Context, node *treeNode) error {
	res := a.room.Folders.GetFolderContents(ctx, node.ID)
	if err := res.Err(); err != nil {
		return err
	}

	for _, f := range res.Data.Folders {
		child := &treeNode{ID: f.ID, Name: f.Name, Type: string(store.ItemTypeFolder)}
		if err := a.walk(ctx, child); err != nil {
			return err
		}
		node.Children = append(node.Children, child)
	}
	for _, f := range res.Data.Files {
		node.Children = append(node.Children, &treeNode{
			ID:   f.ID,
			Name: f.Name,
			Type: string(store.ItemTypeFile),
			Size: f.Size,
		})
	}
	return nil
}

func (a *app) printTree(node *treeNode, indent string) {
	for i, child := range node.Children {
		branch, next := "├── ", "│   "
		if i == len(node.Children)-1 {
			branch, next = "└── ", "    "
		}

		label := child.Name + "/"
		if child.Type == string(store.ItemTypeFile) {
			label = fmt.Sprintf("%s (%s)", child.Name, dataroom.FormatSize(child.Size))
		}
		fmt.Fprintf(a.out, "%s%s%s\n", indent, branch, label)
		a.printTree(child, indent+next)
	}
}

func (a *app) path(ctx context.Context, args []string) error {
	rest, err := parseFlags(flag.NewFlagSet("path", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}

	res := a.room.Folders.GetBreadcrumbs(ctx, rest[0])
	return emit(a, res, func(crumbs []*store.Folder) {
		names := make([]string, 0, len(crumbs))
		for _, f := range crumbs {
			names = append(names, f.Name)
		}
		fmt.Fprintf(a.out, "/%s\n", strings.Join(names, "/"))
	})
}

// isFolder reports whether id names a folder. Anything else is treated as
// a file and left to the file service to resolve.
func (a *app) isFolder(ctx context.Context, id string) bool {
	return a.room.Folders.GetFolderByID(ctx, id).Success
}

func (a *app) rename(ctx context.Context, args []string) error {
	rest, err := parseFlags(flag.NewFlagSet("rename", flag.ContinueOnError), args, 2)
	if err != nil {
		return err
	}
	id, name := rest[0], rest[1]

	if a.isFolder(ctx, id) {
		return emit(a, a.room.Folders.UpdateFolder(ctx, id, name), func(f *store.Folder) {
			fmt.Fprintf(a.out, "%s\t%s\n", f.ID, f.Name)
		})
	}
	return emit(a, a.room.Files.UpdateFileName(ctx, id, name), func(f *store.File) {
		fmt.Fprintf(a.out, "%s\t%s\n", f.ID, f.Name)
	})
}

func (a *app) rm(ctx context.Context, args []string) error {
	rest, err := parseFlags(flag.NewFlagSet("rm", flag.ContinueOnError), args, 1)
	if err != nil {
		return err
	}
	id := rest[0]

	if !a.isFolder(ctx, id) {
		return emit(a, a.room.Files.DeleteFile(ctx, id), func(id string) {
			fmt.Fprintf(a.out, "Deleted %s\n", id)
		})
	}

	res := a.room.Folders.DeleteFolder(ctx, id)
	if a.json {
		if err := a.encode(res); err != nil {
			return err
		}
		return res.Err()
	}
	if !res.Success {
		if len(res.DeletedIDs) > 0 {
			logger.Warn("Folder %s partially deleted: %d item(s) removed", id, len(res.DeletedIDs))
		}
		return res.Err()
	}
	fmt.Fprintf(a.out, "Deleted %d item(s)\n", len(res.DeletedIDs))
	return nil
}

func (a *app) get(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	output := fs.String("o", "", "Output path, - for stdout (default: the file name in the current directory)")
	rest, err := parseFlags(fs, args, 1)
	if err != nil {
		return err
	}
	id := rest[0]

	file := a.room.Files.GetFileByID(ctx, id)
	if err := file.Err(); err != nil {
		return err
	}
	content := a.room.Files.GetFileContent(ctx, id)
	if err := content.Err(); err != nil {
		return err
	}

	data, err := dataroom.DecodeContent(content.Data)
	if err != nil {
		return err
	}

	target := *output
	if target == "" {
		target = file.Data.Name
	}
	if target == "-" {
		_, err := a.out.Write(data)
		return err
	}

	if err := os.WriteFile(target, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	fmt.Fprintf(a.out, "Wrote %s to %s\n", humanize.IBytes(uint64(len(data))), target)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	if _, err := parseFlags(flag.NewFlagSet("export", flag.ContinueOnError), args, 0); err != nil {
		return err
	}

	manager, err := a.snapshots(ctx)
	if err != nil {
		return err
	}
	summary, err := manager.Export(ctx)
	if err != nil {
		return err
	}

	if a.json {
		return a.encode(dataroom.Result[any]{Success: true, Data: summary})
	}
	fmt.Fprintf(a.out, "Exported %d item(s), %s\n", summary.Items, humanize.IBytes(uint64(summary.Bytes)))
	return nil
}

func (a *app) importSnapshot(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	parent := fs.String("parent", store.RootID, "Folder to restore under (default: top level)")
	if _, err := parseFlags(fs, args, 0); err != nil {
		return err
	}

	manager, err := a.snapshots(ctx)
	if err != nil {
		return err
	}
	summary, err := manager.Import(ctx, *parent)
	if err != nil {
		return err
	}

	if a.json {
		return a.encode(dataroom.Result[any]{Success: true, Data: summary})
	}
	fmt.Fprintf(a.out, "Imported %d item(s)\n", summary.Items)
	if len(summary.Skipped) > 0 {
		fmt.Fprintf(a.out, "Skipped %d orphaned item(s)\n", len(summary.Skipped))
	}
	return nil
}
