package render

import (
	json "github.com/goccy/go-json"

	"schemaflow/internal/index"
	"schemaflow/internal/textutil"
)

// JSON renders index.json files for tooling that cannot import TypeScript.
type JSON struct{}

type jsonDocument struct {
	Namespaces []index.Namespace  `json:"namespaces"`
	Exports    []index.Export     `json:"exports"`
	IDs        []index.Assignment `json:"ids"`
	Root       *jsonRoot          `json:"root,omitempty"`
}

type jsonRoot struct {
	IDMax int          `json:"idMax"`
	Names []index.Name `json:"names"`
}

func (JSON) Name() string { return "json" }

func (JSON) Ext() string { return ".json" }

func (JSON) Render(a index.Artifact) ([]byte, error) {
	// Ensure non-nil slices for JSON ([] instead of null)
	doc := jsonDocument{
		Namespaces: append([]index.Namespace{}, a.Namespaces...),
		Exports:    append([]index.Export{}, a.Exports...),
		IDs:        append([]index.Assignment{}, a.IDs...),
	}
	if a.Root != nil {
		doc.Root = &jsonRoot{
			IDMax: a.Root.IDMax,
			Names: append([]index.Name{}, a.Root.Names...),
		}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return textutil.Normalize(b), nil
}
