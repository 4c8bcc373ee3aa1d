package render

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/lithammer/dedent"

	"schemaflow/internal/index"
	"schemaflow/internal/textutil"
)

// TypeScript renders index.ts files: namespace re-exports, symbol
// re-exports, a const enum of ids and, at the root, ID_MAX and a frozen
// id -> name map keyed by the qualified enum members.
type TypeScript struct{}

var tsTemplate = template.Must(template.New("index.ts").Parse(strings.TrimLeft(dedent.Dedent(`
	{{range .Namespaces}}import * as {{.Name}} from "{{.Path}}";
	export * as {{.Name}} from "{{.Path}}";
	{{end}}{{range .Exports}}export { {{.Symbol}} } from "./{{.File}}";
	{{end}}export const enum Id {
	{{range .IDs}}    {{.Symbol}} = {{.ID}},
	{{end}}}
	{{with .Root}}export const ID_MAX = {{.IDMax}};
	export const Name = Object.freeze({
	{{range .Names}}    [{{.Qualified}}]: "{{.Symbol}}",
	{{end}}});
	export type Name = typeof Name;
	{{end}}`), "\n")))

func (TypeScript) Name() string { return "ts" }

func (TypeScript) Ext() string { return ".ts" }

func (TypeScript) Render(a index.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	if err := tsTemplate.Execute(&buf, a); err != nil {
		return nil, err
	}
	return textutil.Normalize(buf.Bytes()), nil
}
