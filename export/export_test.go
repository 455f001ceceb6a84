package export_test

import (
	"strings"
	"testing"

	"mindmap/diagram"
	"mindmap/export"

	"github.com/google/go-cmp/cmp"
)

func sampleDoc() diagram.Document {
	return diagram.Document{
		Nodes: []diagram.Node{
			{ID: 1, Label: "Project", Stroke: "#1e88e5", Bold: true},
			{ID: 2, Label: "Design \"v2\"", Stroke: "#000000", Fill: "#ffeb3b"},
			{ID: 3, Label: "Build\nand ship"},
		},
		Edges: []diagram.Edge{
			{ID: 1, Source: 1, Target: 2, Label: "needs"},
			{ID: 2, Source: 1, Target: 3, Dashed: true},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected export.Format
		wantErr  bool
	}{
		{"mermaid", export.FormatMermaid, false},
		{"mmd", export.FormatMermaid, false},
		{"dot", export.FormatGraphviz, false},
		{"Graphviz", export.FormatGraphviz, false},
		{"d2", export.FormatD2, false},
		{"md", export.FormatMarkdown, false},
		{"ascii", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := export.ParseFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
				return
			}
			if got != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewExporter(t *testing.T) {
	extensions := map[export.Format]string{
		export.FormatMermaid:  ".mmd",
		export.FormatGraphviz: ".dot",
		export.FormatD2:       ".d2",
		export.FormatMarkdown: ".md",
	}

	for _, format := range export.GetAvailableFormats() {
		t.Run(string(format), func(t *testing.T) {
			exporter, err := export.NewExporter(format)
			if err != nil {
				t.Fatalf("NewExporter(%v) returned error: %v", format, err)
			}
			if got := exporter.GetFileExtension(); got != extensions[format] {
				t.Errorf("Expected extension %s, got %s", extensions[format], got)
			}
			if exporter.GetFormatName() == "" {
				t.Error("Expected a format name")
			}
			if _, ok := export.GetFormatDescriptions()[format]; !ok {
				t.Errorf("Missing description for %s", format)
			}
		})
	}

	if _, err := export.NewExporter("svg"); err == nil {
		t.Error("Expected an error for an unsupported format")
	}
}

func TestMermaidExporter(t *testing.T) {
	got, err := export.NewMermaidExporter().Export(sampleDoc())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	want := strings.Join([]string{
		"flowchart LR",
		`    N1["Project"]`,
		`    N2["Design #quot;v2#quot;"]`,
		`    N3["Build<br/>and ship"]`,
		"",
		`    N1 -->|"needs"| N2`,
		"    N1 -.-> N3",
		"",
		"    style N1 stroke:#1e88e5,font-weight:bold",
		"    style N2 fill:#ffeb3b,stroke:#000000",
		"",
	}, "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Mermaid output mismatch (-want +got):\n%s", diff)
	}
}

func TestGraphvizExporter(t *testing.T) {
	got, err := export.NewGraphvizExporter().Export(sampleDoc())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, line := range []string{
		"digraph G {",
		"rankdir=LR;",
		`N1 [label="Project", fontname="Helvetica-Bold", color="#1e88e5", style="rounded,bold"];`,
		`N2 [label="Design \"v2\"", fillcolor="#ffeb3b", color="#000000", style="rounded,filled"];`,
		`N3 [label="Build\nand ship"];`,
		`N1 -> N2 [label="needs"];`,
		`N1 -> N3 [style=dashed];`,
	} {
		if !strings.Contains(got, line) {
			t.Errorf("Missing %q in:\n%s", line, got)
		}
	}
	if !strings.HasSuffix(got, "}\n") {
		t.Error("Expected the graph to be closed")
	}
}

func TestD2Exporter(t *testing.T) {
	doc := sampleDoc()
	doc.Edges = append(doc.Edges, diagram.Edge{ID: 3, Source: 1, Target: 3, Dashed: true})

	got, err := export.NewD2Exporter().Export(doc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, line := range []string{
		"node_1: Project\n",
		"node_1.style.bold: true\n",
		`node_2: "Design \"v2\""` + "\n",
		`node_2.style.fill: "#ffeb3b"` + "\n",
		`node_3: "Build\nand ship"` + "\n",
		"node_1 -> node_2: needs\n",
		"(node_1 -> node_3)[0].style.stroke-dash: 5\n",
		"(node_1 -> node_3)[1].style.stroke-dash: 5\n",
	} {
		if !strings.Contains(got, line) {
			t.Errorf("Missing %q in:\n%s", line, got)
		}
	}
}

func TestMarkdownExporter(t *testing.T) {
	doc := sampleDoc()
	doc.Nodes = append(doc.Nodes, diagram.Node{ID: 4, Label: "Loose"})

	got, err := export.NewMarkdownExporter().Export(doc)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	want := "- **Project**\n  - Design \"v2\"\n  - Build and ship\n- Loose\n"
	if got != want {
		t.Errorf("Expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestOutlineCycle(t *testing.T) {
	doc := diagram.Document{
		Nodes: []diagram.Node{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}},
		Edges: []diagram.Edge{{ID: 1, Source: 1, Target: 2}, {ID: 2, Source: 2, Target: 1}},
	}

	var got []int
	for _, e := range export.Outline(doc) {
		got = append(got, e.Node.ID, e.Depth)
	}
	if diff := cmp.Diff([]int{1, 0, 2, 1}, got); diff != "" {
		t.Errorf("Outline mismatch (-want +got):\n%s", diff)
	}
}

func TestEmptyDocument(t *testing.T) {
	for _, format := range export.GetAvailableFormats() {
		exporter, _ := export.NewExporter(format)
		if _, err := exporter.Export(diagram.Document{}); err != nil {
			t.Errorf("%s: Expected an empty document to export, got %v", format, err)
		}
	}
}
