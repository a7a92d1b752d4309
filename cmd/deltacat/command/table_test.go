package command_test

import (
	"os"
	"path/filepath"
	"strings"
)

func (s *Suite) createTable(args ...string) {
	base := []string{"table", "create", "--name", "t", "--namespace", "ns", "--schema", "id:int64,name:string", "--merge-keys", "id"}
	s.runOK(append(base, args...)...)
}

func (s *Suite) TestTableCreate() {
	s.initCatalog()

	s.Equal(0, s.run(
		"table", "create",
		"--name", "t",
		"--namespace", "ns",
		"--table-description", "test table",
		"--schema", "id:int64,name:string,ts:timestamp[ms]",
		"--merge-keys", "id",
		"--records-per-compacted-file", "1000",
		"--default-compaction-hash-bucket-count", "4",
	))

	output := s.readStdout()
	s.Contains(output, `Creating table "t"`)
	s.Contains(output, `"description": "test table"`)
	s.Contains(output, `"type": "timestamp[ms, tz=UTC]"`)
	s.Contains(output, `"merge_key": true`)
	s.Contains(output, `"lifecycle_state": "ACTIVE"`)
	s.Contains(output, `"latest_version": "1"`)
	s.Contains(output, `"appended_record_count_compaction_trigger": 8000`)
	s.Contains(output, `✓ Table "t" created successfully`)
	s.clearOutput()

	s.Equal(0, s.run("namespace", "get", "ns"))
	s.Contains(s.readStdout(), `"name": "ns"`, "the namespace is created with the table")
	s.clearOutput()

	s.Equal(1, s.run("table", "create", "--name", "t", "--namespace", "ns"))
	s.Contains(s.readStderr(), "✗ Error creating table: table already exists: ns.t")
}

func (s *Suite) TestTableCreateNoCompaction() {
	s.initCatalog()

	s.Equal(0, s.run("table", "create", "--name", "t", "--namespace", "ns", "--schema", "id:int64", "--merge-keys", "id", "--no-compaction"))

	s.Contains(s.readStderr(), "! Compaction is disabled, merge keys are not set")
	output := s.readStdout()
	s.Contains(output, `"read_optimization_level": "NONE"`)
	s.NotContains(output, `"merge_key": true`)
}

func (s *Suite) TestTableCreateErrors() {
	s.initCatalog()

	cases := []struct {
		args []string
		err  string
	}{
		{
			args: []string{"--name", "t"},
			err:  "missing flags: --namespace",
		},
		{
			args: []string{"--name", "t", "--namespace", "ns", "--schema", "id:int64", "--merge-keys", "other"},
			err:  `merge key "other" is not a column of the schema`,
		},
		{
			args: []string{"--name", "t", "--namespace", "ns", "--merge-keys", "id"},
			err:  "merge keys require a schema",
		},
		{
			args: []string{"--name", "t", "--namespace", "ns", "--lifecycle-state", "retired"},
			err:  `invalid lifecycle state "retired"`,
		},
		{
			args: []string{"--name", "t", "--namespace", "ns", "--read-optimization-level", "fastest"},
			err:  `invalid read_optimization_level "FASTEST"`,
		},
		{
			args: []string{"--name", "t", "--namespace", "ns", "--records-per-compacted-file", "0"},
			err:  "records_per_compacted_file must be positive",
		},
	}

	for _, c := range cases {
		s.clearOutput()
		s.Equal(1, s.run(append([]string{"table", "create"}, c.args...)...), c.args)
		s.Contains(s.readStderr(), "✗ Error creating table: "+c.err, c.args)
	}
}

func (s *Suite) TestTableCreateShowTypesHelp() {
	s.Equal(0, s.run("table", "create", "--show-types-help"))

	output := s.readStdout()
	s.Contains(output, "timestamp[ms]")
	s.Contains(output, "large_string")
	s.Contains(output, "Unknown types are stored as large_string")
}

func (s *Suite) TestTableGet() {
	s.initCatalog()
	s.createTable()

	s.Equal(0, s.run("table", "get", "t", "--namespace", "ns"))
	output := s.readStdout()
	s.Contains(output, `"name": "t"`)
	s.Contains(output, `Table "t" retrieved successfully`)
	s.clearOutput()

	s.Equal(0, s.run("table", "get", "missing", "--namespace", "ns"))
	s.Contains(s.readStdout(), "No table with name missing found in namespace: ns in catalog: c")
	s.clearOutput()

	s.Equal(0, s.run("table", "get", "t", "--namespace", "ns", "--table-version", "9"))
	s.Contains(s.readStdout(), "No table with name t found")
}

func (s *Suite) TestTableList() {
	s.initCatalog()
	s.createTable()
	s.runOK("table", "create", "--name", "other", "--namespace", "ns")

	s.Equal(0, s.run("table", "list", "--namespace", "ns"))
	s.Contains(s.readStdout(), "Found 2 table(s)")
	s.clearOutput()

	s.Equal(0, s.run("table", "list", "--namespace", "ns", "--table", "t"))
	s.Contains(s.readStdout(), `Found 1 version(s) of table "t"`)
	s.clearOutput()

	s.runOK("namespace", "create", "empty")
	s.Equal(0, s.run("table", "list", "--namespace", "empty"))
	s.Contains(s.readStdout(), "No tables found in namespace: empty in catalog: c")
	s.clearOutput()

	s.Equal(1, s.run("table", "list", "--namespace", "missing"))
	s.Contains(s.readStderr(), "✗ Error listing tables: namespace not found: missing")
}

func (s *Suite) TestTableAlter() {
	s.initCatalog()
	s.createTable()

	s.Equal(0, s.run(
		"table", "alter",
		"--name", "t",
		"--namespace", "ns",
		"--schema-updates", "score:float64",
		"--remove-columns", "name",
		"--table-description", "altered",
		"--lifecycle-state", "beta",
		"--appended-file-count-compaction-trigger", "50",
	))

	output := s.readStdout()
	s.Contains(output, `Table "t" altered successfully.`)
	s.Contains(output, `"name": "score"`)
	s.NotContains(output, `"name": "name"`)
	s.Contains(output, `"description": "altered"`)
	s.Contains(output, `"lifecycle_state": "BETA"`)
	s.Contains(output, `"appended_file_count_compaction_trigger": 50`)
}

func (s *Suite) TestTableAlterErrors() {
	s.initCatalog()
	s.createTable("--schema-evolution-mode", "disabled")

	s.Equal(1, s.run("table", "alter", "--name", "t", "--namespace", "ns", "--schema-updates", "score:float64"))
	s.Contains(s.readStderr(), "✗ Error altering table: schema evolution is disabled")
	s.clearOutput()

	s.Equal(1, s.run("table", "alter", "--name", "missing", "--namespace", "ns", "--table-description", "x"))
	s.Contains(s.readStderr(), "✗ Error altering table: table not found: ns.missing")
	s.clearOutput()

	s.Equal(1, s.run("table", "alter", "--name", "t", "--namespace", "ns", "--remove-columns", "bogus"))
	s.Contains(s.readStderr(), `cannot remove column "bogus"`)
}

func (s *Suite) TestTableDrop() {
	s.initCatalog()
	s.createTable()

	s.writeStdin("no\n")
	s.Equal(1, s.run("table", "drop", "--name", "t", "--namespace", "ns"))
	s.Contains(s.readStderr(), "✗ Aborted")
	s.clearOutput()

	s.Equal(0, s.run("table", "drop", "--name", "t", "--namespace", "ns", "--yes", "--purge"))
	s.Contains(s.readStdout(), `Table "t" dropped successfully`)
	s.clearOutput()

	s.Equal(0, s.run("table", "get", "t", "--namespace", "ns"))
	s.Contains(s.readStdout(), "No table with name t found")
	s.clearOutput()

	s.Equal(1, s.run("table", "drop", "--name", "t", "--namespace", "ns", "--yes"))
	s.Contains(s.readStderr(), "✗ Error dropping table: table not found: ns.t")
}

func (s *Suite) TestTableAppendAndRead() {
	s.initCatalog()
	s.createTable()

	s.writeStdin(`[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}, {"id": 3}]`)
	s.Equal(0, s.run("table", "append", "--name", "t", "--namespace", "ns"))
	s.Contains(s.readStdout(), `Appended 3 row(s) to table "t"`)
	s.clearOutput()

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns", "--format", "json"))
	s.JSONEq(`[
		{"id": 1, "name": "a"},
		{"id": 2, "name": "b"},
		{"id": 3, "name": null}
	]`, s.readStdout())
	s.clearOutput()

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns", "--format", "json", "--columns", "name", "--num-rows", "2"))
	s.JSONEq(`[{"name": "a"}, {"name": "b"}]`, s.readStdout())
	s.clearOutput()

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns", "--format", "markdown"))
	output := s.readStdout()
	s.Contains(output, `Table "t" read successfully`)
	s.Contains(strings.ToLower(output), "| id | name |")
	s.Contains(output, "| 2 | b |")
	s.clearOutput()

	s.Equal(1, s.run("table", "read", "--name", "t", "--namespace", "ns", "--columns", "bogus"))
	s.Contains(s.readStderr(), "✗ Error reading table:")
}

func (s *Suite) TestTableAppendFromFile() {
	s.initCatalog()
	s.runOK("table", "create", "--name", "t", "--namespace", "ns")

	input := filepath.Join(s.T().TempDir(), "rows.ndjson")
	s.Require().NoError(os.WriteFile(input, []byte("{\"id\": 1, \"ok\": true}\n{\"id\": 2, \"ok\": false}\n"), 0o644))

	s.Equal(0, s.run("table", "append", "--name", "t", "--namespace", "ns", "--file", input, "--compression", "snappy"))
	s.Contains(s.readStdout(), `Appended 2 row(s) to table "t"`)
	s.clearOutput()

	s.Equal(0, s.run("table", "get", "t", "--namespace", "ns"))
	output := s.readStdout()
	s.Contains(output, `"name": "ok"`, "the schema is taken from the first rows")
	s.Contains(output, `"rows": 2`)
}

func (s *Suite) TestTableAppendMismatch() {
	s.initCatalog()
	s.createTable()

	s.writeStdin(`{"id": 1, "unknown": "x"}`)
	s.Equal(1, s.run("table", "append", "--name", "t", "--namespace", "ns"))
	s.Contains(s.readStderr(), `✗ Error appending to table: row 1 has unknown column "unknown"`)
}

func (s *Suite) TestTableReadEmpty() {
	s.initCatalog()
	s.createTable()

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns"))
	s.Contains(s.readStdout(), "No rows found in table t")
	s.clearOutput()

	s.runOK("table", "create", "--name", "bare", "--namespace", "ns")
	s.Equal(0, s.run("table", "read", "--name", "bare", "--namespace", "ns"))
	output := s.readStdout()
	s.Contains(output, "Table bare has no schema yet")
	s.NotContains(output, "No rows found")
	s.clearOutput()

	s.Equal(0, s.run("table", "read", "--name", "bare", "--namespace", "ns", "--format", "json"))
	s.JSONEq(`[]`, s.readStdout())
}

func (s *Suite) TestTableReadAddedColumn() {
	s.initCatalog()
	s.createTable()

	s.writeStdin(`[{"id": 1, "name": "a"}, {"id": 2, "name": "b"}]`)
	s.runOK("table", "append", "--name", "t", "--namespace", "ns")
	s.runOK("table", "alter", "--name", "t", "--namespace", "ns", "--schema-updates", "extra:string")

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns", "--format", "json", "--columns", "extra"))
	s.JSONEq(`[{"extra": null}, {"extra": null}]`, s.readStdout())
	s.clearOutput()

	s.Equal(0, s.run("table", "read", "--name", "t", "--namespace", "ns", "--format", "json", "--columns", "id,extra"))
	s.JSONEq(`[{"id": 1, "extra": null}, {"id": 2, "extra": null}]`, s.readStdout())
}

func (s *Suite) TestTableAppendCompressionChoices() {
	s.Equal(0, s.run("table", "append", "--help"))
	output := s.readStdout()
	for _, codec := range []string{"uncompressed", "snappy", "gzip", "brotli", "zstd", "lz4"} {
		s.Contains(output, codec)
	}
	s.clearOutput()

	s.Equal(1, s.run("table", "append", "--name", "t", "--namespace", "ns", "--compression", "lzo"))
	s.Contains(s.readStderr(), "must be one of")
}
