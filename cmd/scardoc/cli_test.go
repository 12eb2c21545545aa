package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sourcegraph/scip/bindings/go/scip"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"google.golang.org/protobuf/proto"

	"scardoc/internal/errors"
	"scardoc/internal/output"
	"scardoc/internal/scardoc"
	"scardoc/internal/storage"
)

const utilSource = `--? @shortdesc Converts a 2D position to a ScarPosition.
--? @result Position
--? @args Real xpos, Real zpos[, Real ypos]
function Util_ScarPos(xpos, zpos, ypos)
	return World_Pos(xpos, ypos, zpos)
end

function Util_Undocumented()
end
`

const dumpText = `[ScarDoc:Functions]
Util_ScarPos
Player_GetRaceName
[ScarDoc:Globals]
MAX_PLAYERS=8
[ScarDoc:Unknowns]
RACE_ALLIES=Race(0)
RACE_AXIS=Race(1)
`

// resetFlags restores every flag of cmd and its children to its default so
// package-level flag variables do not leak between runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, root string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(append([]string{"--root", root, "-q"}, args...))
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	scarDir := filepath.Join(root, "scar")
	if err := os.MkdirAll(scarDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scarDir, "util.scar"), []byte(utilSource), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "dump.txt"), []byte(dumpText), 0644); err != nil {
		t.Fatal(err)
	}
	return root
}

func functionNames(doc *scardoc.Document) []string {
	var names []string
	for _, fn := range doc.Functions() {
		names = append(names, fn.Name)
	}
	return names
}

func TestGenerateCommand(t *testing.T) {
	root := setupProject(t)
	out := filepath.Join(root, "gen.json")

	if _, stderr, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", out); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}

	doc, err := output.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Util_ScarPos"}, functionNames(doc)); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
	fn := doc.Functions()[0]
	if got := scardoc.Deref(fn.SourceOrigin); got != "util.scar" {
		t.Errorf("SourceOrigin = %q, want util.scar", got)
	}
	if len(fn.Parameters) != 3 || fn.Parameters[2].Required {
		t.Errorf("unexpected parameters: %+v", fn.Parameters)
	}
}

func TestGenerateToStdoutYAML(t *testing.T) {
	root := setupProject(t)
	stdout, stderr, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", "-", "--format", "yaml")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stdout, "category_name: Util") {
		t.Errorf("expected YAML document on stdout, got:\n%s", stdout)
	}
}

func TestGenerateWatchRejectsStdout(t *testing.T) {
	root := setupProject(t)
	stdout, _, err := run(t, root, "generate", filepath.Join(root, "scar"), "--watch", "-o", "-")
	if err == nil || !strings.Contains(err.Error(), "--watch cannot write to stdout") {
		t.Fatalf("err = %v, want stdout rejection", err)
	}
	if stdout != "" {
		t.Errorf("nothing should be generated before the rejection, got:\n%s", stdout)
	}
}

func TestGenerateStrictArgs(t *testing.T) {
	root := setupProject(t)
	src := "--? @shortdesc Spawns\n--? @args Real x,\nfunction Util_Spawn(x)\nend\n"
	if err := os.WriteFile(filepath.Join(root, "scar", "spawn.scar"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(root, "gen.json")

	if _, stderr, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", out); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	doc, err := output.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Util_Spawn", "Util_ScarPos"}, functionNames(doc)); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}

	_, _, err = run(t, root, "generate", filepath.Join(root, "scar"), "-o", out, "--strict")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Fatalf("err = %v, want one failed file", err)
	}
	doc, err = output.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Util_ScarPos"}, functionNames(doc)); diff != "" {
		t.Errorf("functions after strict run (-want +got):\n%s", diff)
	}
}

func TestGenerateDefaultOutputPath(t *testing.T) {
	root := setupProject(t)
	if _, stderr, err := run(t, root, "generate", filepath.Join(root, "scar")); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	if _, err := os.Stat(filepath.Join(root, "scardoc.json")); err != nil {
		t.Errorf("default output not written: %v", err)
	}
}

func TestDumpAndMerge(t *testing.T) {
	root := setupProject(t)
	gen := filepath.Join(root, "gen.json")
	dumped := filepath.Join(root, "dump.json.zst")
	merged := filepath.Join(root, "merged.toml")

	if _, stderr, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", gen); err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	if _, stderr, err := run(t, root, "dump", filepath.Join(root, "dump.txt"), "-o", dumped); err != nil {
		t.Fatalf("dump failed: %v\n%s", err, stderr)
	}
	if _, stderr, err := run(t, root, "merge", gen, dumped, "-o", merged); err != nil {
		t.Fatalf("merge failed: %v\n%s", err, stderr)
	}

	doc, err := output.ReadFile(merged)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff([]string{"Player_GetRaceName", "Util_ScarPos"}, functionNames(doc)); diff != "" {
		t.Errorf("functions (-want +got):\n%s", diff)
	}
	// The dump carries no descriptions, so the generated one survives.
	for _, fn := range doc.Functions() {
		if fn.Name == "Util_ScarPos" && fn.ShortDescription == nil {
			t.Error("Util_ScarPos lost its short description")
		}
	}
	if len(doc.Enums) != 1 || len(doc.Globals) != 1 {
		t.Errorf("enums=%d globals=%d, want 1 and 1", len(doc.Enums), len(doc.Globals))
	}
}

func TestMergeRequiresInput(t *testing.T) {
	root := setupProject(t)
	if _, _, err := run(t, root, "merge"); err == nil {
		t.Error("merge without inputs should fail")
	}
}

func TestSnapshotLifecycle(t *testing.T) {
	root := setupProject(t)
	scarDir := filepath.Join(root, "scar")

	_, stderr, err := run(t, root, "generate", scarDir, "-o", filepath.Join(root, "a.json"), "--snapshot", "first")
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "Stored snapshot") {
		t.Errorf("expected stored message, got %q", stderr)
	}
	_, stderr, err = run(t, root, "generate", scarDir, "-o", filepath.Join(root, "b.json"), "--snapshot", "again")
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}
	if !strings.Contains(stderr, "already holds") {
		t.Errorf("identical document should reuse the snapshot, got %q", stderr)
	}

	stdout, _, err := run(t, root, "snapshot", "list", "--format", "json")
	if err != nil {
		t.Fatalf("snapshot list failed: %v", err)
	}
	var snaps []storage.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snaps); err != nil {
		t.Fatalf("invalid list output: %v\n%s", err, stdout)
	}
	if len(snaps) != 1 || snaps[0].Label != "first" || snaps[0].Functions != 1 {
		t.Fatalf("unexpected snapshots: %+v", snaps)
	}
	id := snaps[0].ID

	stdout, _, err = run(t, root, "snapshot", "show", id[:8])
	if err != nil {
		t.Fatalf("snapshot show failed: %v", err)
	}
	if !strings.Contains(stdout, `"Util_ScarPos"`) {
		t.Errorf("show output missing function:\n%s", stdout)
	}

	merged := filepath.Join(root, "merged.json")
	if _, _, err := run(t, root, "merge", filepath.Join(root, "a.json"), "--snapshot", id, "-o", merged); err != nil {
		t.Fatalf("merge with snapshot failed: %v", err)
	}

	stdout, _, err = run(t, root, "snapshot", "rm", id)
	if err != nil {
		t.Fatalf("snapshot rm failed: %v", err)
	}
	if !strings.Contains(stdout, id) {
		t.Errorf("rm output = %q", stdout)
	}

	_, _, err = run(t, root, "snapshot", "show", id)
	if !errors.HasCode(err, errors.SnapshotNotFound) {
		t.Errorf("show after rm: got %v, want SNAPSHOT_NOT_FOUND", err)
	}
}

func TestCoverageCommand(t *testing.T) {
	root := setupProject(t)
	scarDir := filepath.Join(root, "scar")

	stdout, _, err := run(t, root, "coverage", scarDir)
	if err != nil {
		t.Fatalf("coverage failed: %v", err)
	}
	var report struct {
		TotalDeclared int     `json:"totalDeclared"`
		Documented    int     `json:"documented"`
		Percent       float64 `json:"coveragePercent"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid report: %v\n%s", err, stdout)
	}
	if report.TotalDeclared != 2 || report.Documented != 1 || report.Percent != 50 {
		t.Errorf("unexpected report: %+v", report)
	}

	stdout, _, err = run(t, root, "coverage", scarDir, "--format", "human", "--fail-under", "75")
	if exitCode(err) != 2 {
		t.Errorf("exit code = %d (err %v), want 2", exitCode(err), err)
	}
	if !strings.Contains(stdout, "Util_Undocumented") {
		t.Errorf("human output missing undocumented function:\n%s", stdout)
	}
}

func TestExportSCIPCommand(t *testing.T) {
	root := setupProject(t)
	gen := filepath.Join(root, "gen.json")
	out := filepath.Join(root, "index.scip")

	if _, _, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", gen); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, _, err := run(t, root, "export", "scip", gen, "-o", out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var idx scip.Index
	if err := proto.Unmarshal(data, &idx); err != nil {
		t.Fatalf("invalid SCIP index: %v", err)
	}
	if len(idx.Documents) != 1 || idx.Documents[0].RelativePath != "util.scar" {
		t.Errorf("unexpected documents: %v", idx.Documents)
	}
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()

	stdout, _, err := run(t, root, "init")
	if err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if !strings.Contains(stdout, "scardoc initialized.") {
		t.Errorf("unexpected output: %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(root, ".scardoc", "config.toml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	stdout, _, err = run(t, root, "init")
	if err != nil || !strings.Contains(stdout, "already initialized") {
		t.Errorf("second init: err=%v output=%q", err, stdout)
	}
}

func TestInvalidConfig(t *testing.T) {
	root := setupProject(t)
	dir := filepath.Join(root, ".scardoc")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[output]\nformat = \"xml\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", "-")
	if !errors.HasCode(err, errors.ConfigInvalid) {
		t.Errorf("got %v, want CONFIG_INVALID", err)
	}

	// init --force repairs it.
	if _, _, err := run(t, root, "init", "--force"); err != nil {
		t.Fatalf("init --force failed: %v", err)
	}
	if _, _, err := run(t, root, "generate", filepath.Join(root, "scar"), "-o", "-"); err != nil {
		t.Errorf("generate after repair failed: %v", err)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, errors.Errorf(errors.SnapshotNotFound, "no snapshot matches %q", "zz"))
	got := buf.String()
	for _, want := range []string{`Error: `, "Code: SNAPSHOT_NOT_FOUND", "Try: scardoc snapshot list"} {
		if !strings.Contains(got, want) {
			t.Errorf("printError output missing %q:\n%s", want, got)
		}
	}
}
