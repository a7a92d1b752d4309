package command_test

import (
	"os"
	"path/filepath"
)

func (s *Suite) TestCatalogInit() {
	s.Equal(0, s.run("catalog", "init", "--name", "c", "--root", s.root))

	output := s.readStdout()
	s.Contains(output, "Initializing catalog \"c\"")
	s.Contains(output, "✓ Catalog initialized and set as current!")
	s.Contains(output, "Full path: "+s.root+"/c")

	_, err := os.Stat(filepath.Join(s.root, "c", "catalog.json"))
	s.NoError(err)

	s.clearOutput()
	s.Equal(0, s.run("catalog", "init", "--name", "c", "--root", s.root))
	s.Contains(s.readStdout(), "Catalog already initialized, set as current!")

	s.clearOutput()
	s.Equal(0, s.run("catalog", "current"))
	s.Contains(s.readStdout(), "Current catalog: c")
}

func (s *Suite) TestCatalogInitPrompts() {
	s.writeStdin("prompted\n" + s.root + "\n")

	s.Equal(0, s.run("catalog", "init"))

	output := s.readStdout()
	s.Contains(output, "Enter Catalog name: ")
	s.Contains(output, "Enter full Catalog root path: ")
	s.Contains(output, "Catalog initialized and set as current!")

	_, err := os.Stat(filepath.Join(s.root, "prompted", "catalog.json"))
	s.NoError(err)
}

func (s *Suite) TestCatalogInitPromptWithoutInput() {
	s.Equal(1, s.run("catalog", "init"))
	s.Contains(s.readStderr(), "✗ Error initializing catalog: no value entered")
}

func (s *Suite) TestCatalogInitShowHelp() {
	s.Equal(0, s.run("catalog", "init", "--show-help"))

	output := s.readStdout()
	s.Contains(output, "Catalog Root Path Options")
	s.Contains(output, "~/.deltacat")
	s.Contains(output, "s3://my-bucket/deltacat-root")
	s.Contains(output, "gs://my-bucket/deltacat-root")

	_, err := os.Stat(s.sessionFile)
	s.True(os.IsNotExist(err), "show help does not touch the session")
}

func (s *Suite) TestCatalogInitInvalidRoot() {
	s.Equal(1, s.run("catalog", "init", "--name", "c", "--root", "bogus://nowhere"))
	s.Contains(s.readStderr(), "✗ Error initializing catalog:")

	_, err := os.Stat(s.sessionFile)
	s.True(os.IsNotExist(err), "a failed init does not change the session")
}

func (s *Suite) TestCatalogSetAndClear() {
	s.Equal(0, s.run("catalog", "set", "other", "--root", "s3://bucket/root"))
	output := s.readStdout()
	s.Contains(output, "✓ Catalog set to: other")
	s.Contains(output, "Full path: s3://bucket/root/other")

	s.clearOutput()
	s.Equal(0, s.run("catalog", "current"))
	s.Contains(s.readStdout(), "Current catalog: other")

	s.clearOutput()
	s.Equal(0, s.run("catalog", "clear"))
	s.Contains(s.readStdout(), "Catalog configuration cleared")

	s.clearOutput()
	s.Equal(1, s.run("catalog", "current"))
	s.Contains(s.readStderr(), "No catalog configured or available")
}

func (s *Suite) TestCatalogSetRequiresRoot() {
	s.Equal(1, s.run("catalog", "set", "other"))
	s.Contains(s.readStderr(), "--root")
}

func (s *Suite) TestCatalogRegistry() {
	s.Equal(0, s.run("catalog", "list"))
	s.Contains(s.readStdout(), "No catalogs found")
	s.clearOutput()

	s.runOK("catalog", "set", "dev", "--root", "/tmp/dev")
	s.runOK("catalog", "set", "prod", "--root", "s3://prod")

	s.Equal(0, s.run("catalog", "list"))
	output := s.readStdout()
	s.Contains(output, "dev")
	s.Contains(output, "s3://prod")
	s.Contains(output, "Found 2 catalog(s)")
	s.clearOutput()

	s.Equal(0, s.run("catalog", "switch", "dev"))
	s.Contains(s.readStdout(), "Switched to catalog: dev")
	s.clearOutput()

	s.Equal(1, s.run("catalog", "switch", "missing"))
	s.Contains(s.readStderr(), "✗ Error switching catalog: unknown catalog: missing")
	s.clearOutput()

	s.Equal(0, s.run("catalog", "remove", "dev"))
	output = s.readStdout()
	s.Contains(output, "Catalog dev removed")
	s.Contains(output, "Current catalog: prod")
	s.clearOutput()

	s.Equal(0, s.run("catalog", "remove", "prod"))
	s.Contains(s.readStdout(), "No current catalog.")
}

func (s *Suite) TestCatalogInitRelativeRoot() {
	s.T().Chdir(s.root)
	s.runOK("catalog", "init", "--name", "c", "--root", "./data")
	s.runOK("namespace", "create", "ns")

	content, err := os.ReadFile(s.sessionFile)
	s.Require().NoError(err)
	s.Contains(string(content), filepath.Join(s.root, "data"))

	s.T().Chdir(s.T().TempDir())
	s.Equal(0, s.run("namespace", "get", "ns"))
	output := s.readStdout()
	s.NotContains(output, "No namespace with name ns found")
	s.Contains(output, `Namespace "ns" retrieved successfully`)
	s.clearOutput()

	s.Equal(0, s.run("catalog", "current"))
	s.Contains(s.readStdout(), "Full path: "+filepath.Join(s.root, "data", "c"))
}

func (s *Suite) TestCatalogSetRelativeRoot() {
	s.T().Chdir(s.root)
	s.Equal(0, s.run("catalog", "set", "other", "--root", "catalogs"))
	s.Contains(s.readStdout(), "Root: "+filepath.Join(s.root, "catalogs"))
}

func (s *Suite) TestCatalogNotInitialized() {
	s.runOK("catalog", "set", "ghost", "--root", s.root)

	s.Equal(1, s.run("namespace", "list"))
	s.Contains(s.readStderr(), "catalog not initialized: ghost at "+s.root)
	s.Contains(s.readStdout(), "Create it with: deltacat catalog init")

	_, err := os.Stat(filepath.Join(s.root, "ghost"))
	s.True(os.IsNotExist(err), "commands other than init do not create a catalog")
	s.clearOutput()

	s.runOK("catalog", "init", "--name", "ghost", "--root", s.root)
	s.Equal(0, s.run("namespace", "list"))
	s.Contains(s.readStdout(), "No namespaces found in this catalog")
}
