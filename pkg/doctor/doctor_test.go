package doctor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const busPart = `<module moduleId="m">
  <buses>
    <bus id="gnd">
      <nodeMember connectorId="connector0"/>
    </bus>
    <bus id="empty"/>
    <bus id="hollow">
    </bus>
  </buses>
</module>
`

func TestRemoveEmptyBuses(t *testing.T) {
	got, fixes := RemoveEmptyBuses([]string{"empty", "hollow", "absent"})(busPart)

	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d: %v", len(fixes), fixes)
	}
	want := `<module moduleId="m">
  <buses>
    <bus id="gnd">
      <nodeMember connectorId="connector0"/>
    </bus>
  </buses>
</module>
`
	if got != want {
		t.Errorf("unexpected content:\n%s", got)
	}

	again, fixes := RemoveEmptyBuses([]string{"empty", "hollow"})(got)
	if len(fixes) != 0 || again != got {
		t.Error("second run should change nothing")
	}
}

func TestRemoveEmptyBusesMatchesOwnID(t *testing.T) {
	in := `<buses>
  <bus id="keep" data-id="gnd"><nodeMember connectorId="c0"/></bus>
  <bus id="gnd"/>
</buses>`

	got, fixes := RemoveEmptyBuses([]string{"gnd"})(in)

	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %v", fixes)
	}
	want := `<buses>
  <bus id="keep" data-id="gnd"><nodeMember connectorId="c0"/></bus>
</buses>`
	if got != want {
		t.Errorf("unexpected content:\n%s", got)
	}
}

const terminalPart = `<module>
 <connectors>
  <connector id="connector1" name="A">
   <views>
    <breadboardView><p layer="breadboard" svgId="connector1pin" terminalId="connector1terminal"/></breadboardView>
    <schematicView><p layer="schematic" svgId="connector1pin" terminalId="connector1terminal"/></schematicView>
   </views>
  </connector>
  <connector id="connector10" name="B">
   <views>
    <schematicView><p layer="schematic" svgId="connector10pin" terminalId="connector10terminal"/></schematicView>
   </views>
  </connector>
 </connectors>
</module>`

func TestRemoveTerminalIDs(t *testing.T) {
	got, fixes := RemoveTerminalIDs([]TerminalRef{{ConnectorID: "connector1", TerminalID: "connector1terminal"}})(terminalPart)

	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %v", fixes)
	}
	if !strings.Contains(got, `<breadboardView><p layer="breadboard" svgId="connector1pin" terminalId="connector1terminal"/>`) {
		t.Error("breadboard view must be left untouched")
	}
	if !strings.Contains(got, `<schematicView><p layer="schematic" svgId="connector1pin"/></schematicView>`) {
		t.Errorf("schematic terminal not removed:\n%s", got)
	}
	if !strings.Contains(got, `terminalId="connector10terminal"`) {
		t.Error("other connector must be left untouched")
	}
}

func TestRemoveTerminalIDsMatchesOwnID(t *testing.T) {
	in := `<connectors>
  <connector data-id="connector1" id="connector2"><views><schematicView><p terminalId="t1"/></schematicView></views></connector>
  <connector id="connector1"><views><schematicView><p terminalId="t1"/></schematicView></views></connector>
</connectors>`

	got, fixes := RemoveTerminalIDs([]TerminalRef{{ConnectorID: "connector1", TerminalID: "t1"}})(in)

	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %v", fixes)
	}
	if !strings.Contains(got, `<connector data-id="connector1" id="connector2"><views><schematicView><p terminalId="t1"/>`) {
		t.Errorf("decoy connector was modified:\n%s", got)
	}
	if !strings.Contains(got, `<connector id="connector1"><views><schematicView><p/>`) {
		t.Errorf("terminal not removed:\n%s", got)
	}
}

func TestReplaceFonts(t *testing.T) {
	table := map[string]string{"DroidSans": "Noto Sans", "ArialMT": DefaultFont}
	in := `<svg>
<text font-family="DroidSans">a</text>
<text font-family="'ArialMT'">b</text>
<text style="font-size:3;font-family:'ArialMT'">c</text>
<text font-family='Comic Sans'>d</text>
</svg>`

	got, fixes := ReplaceFonts(table, "OCR-Fritzing-mono")(in)

	if len(fixes) != 3 {
		t.Fatalf("expected 3 fixes, got %d: %v", len(fixes), fixes)
	}
	for _, want := range []string{
		`<text font-family="Noto Sans">a</text>`,
		`<text font-family="OCR-Fritzing-mono">b</text>`,
		`font-family:'OCR-Fritzing-mono'`,
		`<text font-family='Comic Sans'>d</text>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestApplyWritesBackupOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.fzp")
	if err := os.WriteFile(path, []byte(busPart), 0o600); err != nil {
		t.Fatal(err)
	}

	fixes, err := Apply(path, RemoveEmptyBuses([]string{"empty"}))
	if err != nil {
		t.Fatal(err)
	}
	if len(fixes) != 1 || fixes[0].File != path {
		t.Fatalf("unexpected fixes %v", fixes)
	}

	if _, err := Apply(path, RemoveEmptyBuses([]string{"hollow"})); err != nil {
		t.Fatal(err)
	}
	backup, err := os.ReadFile(path + BackupSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != busPart {
		t.Error("backup must hold the original content")
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0o600 {
		t.Errorf("permissions changed to %v", fi.Mode().Perm())
	}
}

func TestApplyNoChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "part.fzp")
	if err := os.WriteFile(path, []byte(busPart), 0o644); err != nil {
		t.Fatal(err)
	}
	fixes, err := Apply(path, RemoveEmptyBuses([]string{"gone"}))
	if err != nil || fixes != nil {
		t.Fatalf("expected no fixes, got %v, %v", fixes, err)
	}
	if _, err := os.Stat(path + BackupSuffix); !os.IsNotExist(err) {
		t.Error("no backup expected when nothing changed")
	}
}

func TestApplyMissingFile(t *testing.T) {
	if _, err := Apply(filepath.Join(t.TempDir(), "nope.fzp"), RemoveEmptyBuses([]string{"x"})); err == nil {
		t.Error("expected an error")
	}
}
