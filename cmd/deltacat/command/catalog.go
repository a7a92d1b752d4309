package command

import (
	"strings"

	"github.com/IvanPartsunev/deltacat-cli/internal/catalog"
	"github.com/IvanPartsunev/deltacat-cli/internal/console"
	"github.com/IvanPartsunev/deltacat-cli/internal/session"
	"github.com/IvanPartsunev/deltacat-cli/internal/storage"
	"github.com/fatih/color"
)

type CatalogCmd struct {
	Init    CatalogInitCmd    `cmd:"" help:"Create and set a new catalog."`
	Set     CatalogSetCmd     `cmd:"" help:"Set the current catalog for this session."`
	Current CatalogCurrentCmd `cmd:"" help:"Show the current catalog."`
	Clear   CatalogClearCmd   `cmd:"" help:"Clear the current catalog configuration."`
	List    CatalogListCmd    `cmd:"" help:"List the catalogs used before."`
	Switch  CatalogSwitchCmd  `cmd:"" help:"Make a previously used catalog current."`
	Remove  CatalogRemoveCmd  `cmd:"" help:"Forget a previously used catalog.  Its data is left in place."`
}

func fullPath(root string, name string) string {
	return strings.TrimRight(root, "/") + "/" + name
}

func printLocation(out *console.Console, root string, name string) {
	out.Info("Root: %s", root)
	out.Info("Full path: %s", fullPath(root, name))
}

type CatalogInitCmd struct {
	Name     string `help:"Catalog name.  Prompted for when missing."`
	Root     string `help:"Full catalog root path.  Prompted for when missing."`
	ShowHelp bool   `help:"Show catalog root path options and exit."`
}

func (c *CatalogInitCmd) Run(rt *Runtime) error {
	out := rt.Console
	if c.ShowHelp {
		showRootHelp(out)
		return nil
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		value, err := out.Prompt("Enter Catalog name")
		if err != nil {
			return NewCommandError("initializing catalog", err)
		}
		name = value
	}
	root := strings.TrimSpace(c.Root)
	if root == "" {
		value, err := out.Prompt("Enter full Catalog root path")
		if err != nil {
			return NewCommandError("initializing catalog", err)
		}
		root = value
	}

	root, err := storage.ResolveRoot(root)
	if err != nil {
		return NewCommandError("initializing catalog", err)
	}

	out.Loading("Initializing catalog %q at %q...", name, root)
	handle, created, err := catalog.Create(rt.Context, name, root)
	if err != nil {
		return NewCommandError("initializing catalog", err)
	}
	defer handle.Close()

	if err := rt.Session.Set(name, root); err != nil {
		return NewCommandError("initializing catalog", err)
	}

	if created {
		out.Success("Catalog initialized and set as current!")
	} else {
		out.Success("Catalog already initialized, set as current!")
	}
	printLocation(out, root, name)
	return nil
}

var rootExamples = []struct {
	label   string
	example string
	color   color.Attribute
}{
	{label: "Local filesystem:", example: "~/.deltacat", color: color.FgGreen},
	{label: "AWS S3:", example: "s3://my-bucket/deltacat-root", color: color.FgBlue},
	{label: "Google Cloud Storage:", example: "gs://my-bucket/deltacat-root", color: color.FgYellow},
	{label: "Azure Blob Storage:", example: "azblob://my-container/deltacat-root", color: color.FgMagenta},
	{label: "In memory (testing):", example: "mem://", color: color.FgCyan},
}

func showRootHelp(out *console.Console) {
	lines := []string{}
	for _, root := range rootExamples {
		lines = append(lines,
			out.Paint(root.label, root.color, color.Bold),
			out.Paint("  "+root.example, color.Faint),
			"",
		)
	}
	out.Panel("Catalog Root Path Options", strings.Join(lines[:len(lines)-1], "\n"))
}

type CatalogSetCmd struct {
	Name string `arg:"" help:"Catalog name."`
	Root string `required:"" help:"Full catalog root path."`
}

func (c *CatalogSetCmd) Run(rt *Runtime) error {
	root, err := storage.ResolveRoot(c.Root)
	if err != nil {
		return NewCommandError("setting catalog", err)
	}
	if err := rt.Session.Set(c.Name, root); err != nil {
		return NewCommandError("setting catalog", err)
	}
	rt.Console.Success("Catalog set to: %s", c.Name)
	printLocation(rt.Console, root, c.Name)
	return nil
}

type CatalogCurrentCmd struct{}

func (c *CatalogCurrentCmd) Run(rt *Runtime) error {
	pointer, err := rt.Session.Current()
	if err != nil {
		return err
	}
	rt.Console.Item(console.Catalog, "Current catalog: %s", pointer.Name)
	printLocation(rt.Console, pointer.Root, pointer.Name)
	return nil
}

type CatalogClearCmd struct{}

func (c *CatalogClearCmd) Run(rt *Runtime) error {
	if err := rt.Session.Clear(); err != nil {
		return NewCommandError("clearing catalog", err)
	}
	rt.Console.Success("Catalog configuration cleared")
	return nil
}

type CatalogListCmd struct{}

func (c *CatalogListCmd) Run(rt *Runtime) error {
	out := rt.Console
	pointers, err := rt.Session.Store().List()
	if err != nil {
		return NewCommandError("listing catalogs", err)
	}
	if len(pointers) == 0 {
		out.Empty("No catalogs found")
		return nil
	}

	current, _ := rt.Session.Current()

	rows := make([][]string, len(pointers))
	for i, pointer := range pointers {
		marker := ""
		if pointer == current {
			marker = out.Symbol(console.Catalog)
		}
		rows[i] = []string{marker, pointer.Name, pointer.Root}
	}
	out.Rows([]string{"Current", "Name", "Root"}, rows)
	out.Success("Found %d catalog(s)", len(pointers))
	return nil
}

type CatalogSwitchCmd struct {
	Name string `arg:"" help:"Name of a previously used catalog."`
}

func (c *CatalogSwitchCmd) Run(rt *Runtime) error {
	pointer, err := rt.Session.Switch(c.Name)
	if err != nil {
		return NewCommandError("switching catalog", err)
	}
	rt.Console.Success("Switched to catalog: %s", pointer.Name)
	printLocation(rt.Console, pointer.Root, pointer.Name)
	return nil
}

type CatalogRemoveCmd struct {
	Name string `arg:"" help:"Name of a previously used catalog."`
}

func (c *CatalogRemoveCmd) Run(rt *Runtime) error {
	out := rt.Console
	current, err := rt.Session.Remove(c.Name)
	if err != nil {
		return NewCommandError("removing catalog", err)
	}
	out.Success("Catalog %s removed", c.Name)
	if current.Configured() {
		out.Info("Current catalog: %s", current.Name)
	} else {
		out.Info("No current catalog.  %s", session.NotConfiguredHint)
	}
	return nil
}
