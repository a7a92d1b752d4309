package command_test

func (s *Suite) TestNamespaceLifecycle() {
	s.initCatalog()

	s.Equal(0, s.run("namespace", "create", "ns", "--property", "owner=me"))
	output := s.readStdout()
	s.Contains(output, `Creating namespace "ns" in catalog "c"`)
	s.Contains(output, `"name": "ns"`)
	s.Contains(output, `"owner": "me"`)
	s.Contains(output, `✓ Namespace "ns" created successfully`)
	s.clearOutput()

	s.Equal(0, s.run("namespace", "get", "ns"))
	s.Contains(s.readStdout(), `"owner": "me"`)
	s.clearOutput()

	s.Equal(0, s.run("namespace", "list"))
	output = s.readStdout()
	s.Contains(output, `"name": "ns"`)
	s.Contains(output, "Found 1 namespace(s)")
	s.clearOutput()

	s.Equal(0, s.run("namespace", "alter", "ns", "--new-name", "renamed"))
	s.Contains(s.readStdout(), "Namespace renamed: ns → renamed")
	s.clearOutput()

	s.Equal(0, s.run("namespace", "get", "ns"))
	s.Contains(s.readStdout(), "No namespace with name ns found in this catalog")
	s.clearOutput()

	s.Equal(0, s.run("namespace", "alter", "renamed", "--property", "owner=you"))
	s.Contains(s.readStdout(), `"owner": "you"`)
	s.clearOutput()

	s.Equal(0, s.run("namespace", "drop", "renamed", "--yes"))
	s.Contains(s.readStdout(), `Namespace "renamed" dropped successfully`)
	s.clearOutput()

	s.Equal(0, s.run("namespace", "list"))
	s.Contains(s.readStdout(), "No namespaces found in this catalog")
}

func (s *Suite) TestNamespaceCreateDuplicate() {
	s.initCatalog()
	s.runOK("namespace", "create", "ns")

	s.Equal(1, s.run("namespace", "create", "ns"))
	s.Contains(s.readStderr(), "✗ Error creating namespace: namespace already exists")
}

func (s *Suite) TestNamespaceAlterNothing() {
	s.initCatalog()
	s.runOK("namespace", "create", "ns")

	s.Equal(1, s.run("namespace", "alter", "ns"))
	s.Contains(s.readStderr(), "nothing to alter")
}

func (s *Suite) TestNamespaceAlterMissing() {
	s.initCatalog()

	s.Equal(1, s.run("namespace", "alter", "missing", "--new-name", "other"))
	s.Contains(s.readStderr(), "✗ Error altering namespace: namespace not found: missing")
}

func (s *Suite) TestNamespaceDropConfirmation() {
	s.initCatalog()
	s.runOK("namespace", "create", "ns")

	s.writeStdin("n\n")
	s.Equal(1, s.run("namespace", "drop", "ns"))
	s.Contains(s.readStdout(), `Drop namespace "ns"? [y/N]: `)
	s.Contains(s.readStderr(), "✗ Aborted")
	s.clearOutput()

	s.Equal(0, s.run("namespace", "get", "ns"))
	s.Contains(s.readStdout(), `"name": "ns"`, "declined drop leaves the namespace")
	s.clearOutput()

	s.writeStdin("y\n")
	s.Equal(0, s.run("namespace", "drop", "ns"))
	s.Contains(s.readStdout(), `Namespace "ns" dropped successfully`)
}

func (s *Suite) TestNamespaceDropNotEmpty() {
	s.initCatalog()
	s.runOK("table", "create", "--name", "t", "--namespace", "ns")

	s.Equal(1, s.run("namespace", "drop", "ns", "--yes"))
	s.Contains(s.readStderr(), "✗ Error dropping namespace: namespace is not empty")
	s.clearOutput()

	s.Equal(0, s.run("namespace", "drop", "ns", "--yes", "--purge"))
	s.Contains(s.readStdout(), "Purge: true")
}
