package command

import (
	"errors"
	"strings"

	"github.com/IvanPartsunev/deltacat-cli/internal/console"
)

type NamespaceCmd struct {
	Create NamespaceCreateCmd `cmd:"" help:"Create a new namespace in the current catalog."`
	Alter  NamespaceAlterCmd  `cmd:"" help:"Rename a namespace or change its properties."`
	Drop   NamespaceDropCmd   `cmd:"" help:"Drop the namespace with the given name."`
	Get    NamespaceGetCmd    `cmd:"" help:"Get the namespace with the given name."`
	List   NamespaceListCmd   `cmd:"" help:"List all namespaces in the current catalog."`
}

type NamespaceCreateCmd struct {
	Name     string            `arg:"" help:"Namespace name to create."`
	Property map[string]string `help:"Namespace property as key=value.  May be repeated." placeholder:"KEY=VALUE"`
}

func (c *NamespaceCreateCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Creating namespace %q in catalog %q...", c.Name, handle.Name())
	namespace, err := handle.CreateNamespace(rt.Context, c.Name, c.Property)
	if err != nil {
		return NewCommandError("creating namespace", err)
	}
	if err := out.JSON(out.Symbol(console.Namespace)+" Namespace", namespace); err != nil {
		return err
	}
	out.Success("Namespace %q created successfully", c.Name)
	return nil
}

type NamespaceAlterCmd struct {
	Name     string            `arg:"" help:"Current namespace name."`
	NewName  string            `help:"New namespace name."`
	Property map[string]string `help:"Namespace property as key=value.  Replaces the existing properties.  May be repeated." placeholder:"KEY=VALUE"`
}

func (c *NamespaceAlterCmd) Run(rt *Runtime) error {
	properties := c.Property
	if len(properties) == 0 {
		properties = nil
	}
	if strings.TrimSpace(c.NewName) == "" && properties == nil {
		return NewCommandError("altering namespace", errors.New("nothing to alter, provide --new-name or --property"))
	}

	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	if c.NewName != "" {
		out.Loading("Renaming namespace %q to %q...", c.Name, c.NewName)
	} else {
		out.Loading("Altering namespace %q...", c.Name)
	}
	namespace, err := handle.AlterNamespace(rt.Context, c.Name, c.NewName, properties)
	if err != nil {
		return NewCommandError("altering namespace", err)
	}
	if err := out.JSON(out.Symbol(console.Namespace)+" Namespace", namespace); err != nil {
		return err
	}
	if c.NewName != "" {
		out.Success("Namespace renamed: %s → %s", c.Name, c.NewName)
	} else {
		out.Success("Namespace %q altered successfully", c.Name)
	}
	return nil
}

type NamespaceDropCmd struct {
	Name  string `arg:"" help:"Namespace name to drop."`
	Purge bool   `help:"Also drop the tables of the namespace and their data."`
	Yes   bool   `short:"y" help:"Drop without asking for confirmation."`
}

func (c *NamespaceDropCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}
	if err := confirm(rt, c.Yes, "Drop namespace \""+c.Name+"\"?"); err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Dropping namespace %q. Purge: %t...", c.Name, c.Purge)
	if err := handle.DropNamespace(rt.Context, c.Name, c.Purge); err != nil {
		return NewCommandError("dropping namespace", err)
	}
	out.Success("Namespace %q dropped successfully", c.Name)
	return nil
}

type NamespaceGetCmd struct {
	Name string `arg:"" help:"Namespace name to get."`
}

func (c *NamespaceGetCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Get namespace %q", c.Name)
	namespace, err := handle.GetNamespace(rt.Context, c.Name)
	if err != nil {
		return NewCommandError("getting namespace", err)
	}
	if namespace == nil {
		out.Empty("No namespace with name %s found in this catalog", c.Name)
		return nil
	}
	if err := out.JSON(out.Symbol(console.Namespace)+" Namespace", namespace); err != nil {
		return err
	}
	out.Success("Namespace %q retrieved successfully", c.Name)
	return nil
}

type NamespaceListCmd struct{}

func (c *NamespaceListCmd) Run(rt *Runtime) error {
	handle, err := rt.Catalog()
	if err != nil {
		return err
	}

	out := rt.Console
	out.Loading("Listing namespaces in catalog %q...", handle.Name())
	namespaces, err := handle.ListNamespaces(rt.Context)
	if err != nil {
		return NewCommandError("listing namespaces", err)
	}
	if len(namespaces) == 0 {
		out.Empty("No namespaces found in this catalog")
		return nil
	}
	for _, namespace := range namespaces {
		if err := out.JSON(out.Symbol(console.Namespace)+" Namespace", namespace); err != nil {
			return err
		}
	}
	out.Success("Found %d namespace(s)", len(namespaces))
	return nil
}
