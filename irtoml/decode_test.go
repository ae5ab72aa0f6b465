package irtoml

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kr/pretty"
	"golang.org/x/tools/txtar"

	"irbackend/ir"
	"irbackend/lower"
	"irbackend/report"
)

// TestDecode runs the archives under testdata/decode.  Each archive holds a
// module.toml and either a want file listing fragments which must appear in
// the rendered module, one per line, or an error file holding the expected
// error message.
func TestDecode(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "decode", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}

	if len(paths) == 0 {
		t.Fatal("no test archives")
	}

	for _, path := range paths {
		path := path
		t.Run(strings.TrimSuffix(filepath.Base(path), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatal(err)
			}

			files := make(map[string]string)
			for _, f := range ar.Files {
				files[f.Name] = string(f.Data)
			}

			module, err := Decode([]byte(files["module.toml"]))

			if want, ok := files["error"]; ok {
				if err == nil {
					t.Fatalf("decoding succeeded, want error %q", strings.TrimSpace(want))
				}

				if got := err.Error(); got != strings.TrimSpace(want) {
					t.Errorf("error = %q, want %q", got, strings.TrimSpace(want))
				}

				return
			}

			if err != nil {
				t.Fatalf("decoding failed: %v", err)
			}

			rendered := ir.Render(module)
			for _, line := range strings.Split(strings.TrimSpace(files["want"]), "\n") {
				if !strings.Contains(rendered, line) {
					t.Errorf("rendered module lacks %q", line)
				}
			}

			if t.Failed() {
				t.Log(rendered)
			}
		})
	}
}

const lowerable = `
module = "demo"

[[files]]
name = "src/main.kt"
package = "demo"

[[files.classes]]
name = "Color"
kind = "enum"
entries = ["RED", "GREEN"]

[[files.classes]]
name = "Registry"
kind = "object"

[[files.classes.functions]]
name = "touch"
body = []

[[files.properties]]
name = "greeting"
type = "String"
init = { string = "hello" }

[[files.functions]]
name = "main"
body = [
    { var = "c", init = { enum = "Color.RED" } },
    { call = "touch", receiver = { object = "Registry" } },
    { var = "s", init = { template = [{ string = "a" }, { string = "b" }, { get = "c" }] } },
]
`

func TestDecodedModuleLowers(t *testing.T) {
	module, err := Decode([]byte(lowerable))
	if err != nil {
		t.Fatal(err)
	}

	if lerr := lower.Validate(module, "decoded", false); lerr != nil {
		t.Fatalf("decoded module is invalid: %v", lerr)
	}

	diagnostics := report.NewDiagnosticSink()
	if _, err := lower.Run(context.Background(), module, lower.DefaultConfig(), diagnostics); err != nil {
		t.Fatalf("lowering failed: %v", err)
	}

	var names []string
	for _, decl := range module.Files[0].Decls {
		names = append(names, decl.DeclName())
	}

	if diff := pretty.Diff(names, []string{"Color", "Registry", "MainKt"}); len(diff) > 0 {
		t.Errorf("top-level declarations differ: %v", diff)
	}

	rendered := ir.Render(module)
	for _, absent := range []string{"GET_ENUM ", "GET_OBJECT ", "PROPERTY "} {
		if strings.Contains(rendered, absent) {
			t.Errorf("lowered module still contains %q", strings.TrimSpace(absent))
		}
	}
}

func TestDecodeIsolatesModules(t *testing.T) {
	first, err := Decode([]byte(lowerable))
	if err != nil {
		t.Fatal(err)
	}

	second, err := Decode([]byte(lowerable))
	if err != nil {
		t.Fatal(err)
	}

	if ir.Render(first) != ir.Render(second) {
		t.Error("decoding the same description twice renders differently")
	}

	c1 := first.Files[0].Decls[0].(*ir.Class)
	c2 := second.Files[0].Decls[0].(*ir.Class)
	if c1.Symbol == c2.Symbol {
		t.Error("decoded modules share symbols")
	}
}

func TestParseType(t *testing.T) {
	d := newDecoder("test")

	tests := []struct {
		text string
		want string
	}{
		{"Int", "Int"},
		{"Int?", "Int?"},
		{"Array<Int>", "IntArray"},
		{"Array<String?>", "Array<kotlin.String?>"},
		{"Throwable", "kotlin.Throwable"},
		{"kotlin.collections.List", "kotlin.collections.List"},
	}

	for _, test := range tests {
		typ, err := d.parseType(test.text, nil)
		if err != nil {
			t.Errorf("parseType(%q) failed: %v", test.text, err)
			continue
		}

		if got := typ.Repr(); got != test.want {
			t.Errorf("parseType(%q) = %s, want %s", test.text, got, test.want)
		}
	}

	if _, err := d.parseType("Missing", nil); err == nil {
		t.Error("parseType accepted an unknown type")
	}
}
