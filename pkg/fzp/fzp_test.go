package fzp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePart = `<?xml version="1.0" encoding="UTF-8"?>
<module moduleId="sample_module" fritzingVersion="0.9.6">
  <title>Sample</title>
  <properties>
    <property name="family"> LEDs </property>
  </properties>
  <views>
    <breadboardView><layers image="breadboard/sample.svg"><layer layerId="breadboard"/></layers></breadboardView>
    <schematicView><layers image="schematic/sample.svg"><layer layerId="schematic"/></layers></schematicView>
    <pcbView><layers image="pcb/sample.svg"><layer layerId="copper0"/><layer layerId="silkscreen"/></layers></pcbView>
    <iconView/>
  </views>
  <connectors>
    <connector id="connector0">
      <views>
        <breadboardView><p layer="breadboard" svgId="connector0pin" legId="connector0leg"/></breadboardView>
        <schematicView><p layer="schematic" svgId="connector0pin" terminalId="connector0terminal"/></schematicView>
        <pcbView><p layer="copper0" svgId="connector0pad" hybrid="yes"/></pcbView>
      </views>
    </connector>
  </connectors>
  <buses>
    <bus id="b"><nodeMember connectorId="connector0"/></bus>
  </buses>
</module>`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePart))
	require.NoError(t, err)

	assert.Equal(t, "sample_module", p.ModuleID())
	assert.Equal(t, "0.9.6", p.FritzingVersion())
	assert.True(t, p.Has("title"))
	assert.False(t, p.Has("author"))

	props := p.Properties()
	require.Len(t, props, 1)
	assert.Equal(t, "LEDs", props[0].Value)

	buses := p.Buses()
	require.Len(t, buses, 1)
	assert.Equal(t, []NodeMember{{ConnectorID: "connector0"}}, buses[0].Nodes)
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte(`<module><title>x</module>`))
	assert.Error(t, err)
}

func TestViews(t *testing.T) {
	p, err := Parse([]byte(samplePart))
	require.NoError(t, err)

	type summary struct {
		Name     string
		Layers   bool
		Image    string
		LayerIDs []string
	}
	var got []summary
	for _, v := range p.Views() {
		got = append(got, summary{v.Name, v.Layers, v.Image, v.LayerIDs})
	}
	want := []summary{
		{BreadboardView, true, "breadboard/sample.svg", []string{"breadboard"}},
		{SchematicView, true, "schematic/sample.svg", []string{"schematic"}},
		{PCBView, true, "pcb/sample.svg", []string{"copper0", "silkscreen"}},
		{IconView, false, "", nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("views mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectors(t *testing.T) {
	p, err := Parse([]byte(samplePart))
	require.NoError(t, err)

	c, ok := p.Connector("connector0")
	require.True(t, ok)
	require.Len(t, c.Views, 3)

	bb := c.Views[0].Entries[0]
	assert.True(t, bb.HasLegID)
	assert.Equal(t, "connector0leg", bb.LegID)

	sch := c.Views[1].Entries[0]
	assert.Equal(t, "connector0terminal", sch.TerminalID)

	pcb := c.Views[2].Entries[0]
	assert.True(t, pcb.Exempt())

	_, ok = p.Connector("connector9")
	assert.False(t, ok)
}

func TestIsTemplate(t *testing.T) {
	tests := []struct {
		path string
		view string
		want bool
	}{
		{"svg/core/breadboard/generic_ic_dip_8_300mil.svg", BreadboardView, true},
		{"generic_female_pin_header_4_100mil_bread.svg", BreadboardView, true},
		{"generic_female_pin_header_4_100mil.svg", BreadboardView, false},
		{"generic_ic_dip_8.svg", IconView, true},
		{"generic_sip_3_300mil.svg", SchematicView, true},
		{"dip_8_300mil_pcb.svg", PCBView, true},
		{"jumper_2_400mil_pcb.svg", PCBView, true},
		{"generic_ic_dip_8.svg", PCBView, false},
		{"resistor.svg", SchematicView, false},
	}
	for _, tt := range tests {
		t.Run(tt.view+"/"+filepath.Base(tt.path), func(t *testing.T) {
			assert.Equal(t, tt.want, IsTemplate(tt.path, tt.view))
		})
	}
}

func TestGraphicPathLibraryLayout(t *testing.T) {
	root := t.TempDir()
	part := filepath.Join(root, "core", "sample.fzp")

	got, ok := GraphicPath(part, "pcb/sample.svg", PCBView)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "svg", "core", "pcb", "sample.svg"), got)
}

func TestGraphicPathFlatLayout(t *testing.T) {
	dir := t.TempDir()
	part := filepath.Join(dir, "part.sample.fzp")
	flat := filepath.Join(dir, "sample_pcb.svg")
	require.NoError(t, os.WriteFile(flat, []byte("<svg/>"), 0o644))

	got, ok := GraphicPath(part, "pcb/sample_pcb.svg", PCBView)
	require.True(t, ok)
	assert.Equal(t, flat, got)
}

func TestGraphicPathTemplate(t *testing.T) {
	_, ok := GraphicPath("core/a.fzp", "schematic/generic_sip.svg", SchematicView)
	assert.False(t, ok)
}

func TestGraphicPathForView(t *testing.T) {
	root := t.TempDir()
	part := filepath.Join(root, "core", "sample.fzp")
	p, err := Parse([]byte(samplePart))
	require.NoError(t, err)

	got, ok := p.GraphicPathForView(part, PCBView, "silkscreen")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "svg", "core", "pcb", "sample.svg"), got)

	_, ok = p.GraphicPathForView(part, PCBView, "copper1")
	assert.False(t, ok, "no view declares copper1")

	_, ok = p.GraphicPathForView(part, IconView, "")
	assert.False(t, ok, "icon view has no layers")
}
