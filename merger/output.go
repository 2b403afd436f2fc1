package merger

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"github.com/gosimple/slug"

	"arxmerge/arxml"
	"arxmerge/config"
)

const defaultOutputName = "merged.arxml"

// Values holds variables available for output name template expansion.
type Values struct {
	Context string
	// Package is short name of the first top level package of merged model.
	Package string
	// Count is number of merged fragments.
	Count int
	// First is base name of the first fragment without extension.
	First string
}

func templateValues(tree *arxml.Tree, uris []string) Values {
	v := Values{Context: string(config.OutputNameTemplateFieldName), Count: len(uris)}
	if root := tree.Root(); root != arxml.InvalidNode {
		for _, pkgs := range tree.ChildrenByTag(root, arxml.TagPackages) {
			if pkg, ok := tree.Child(pkgs, arxml.TagPackage); ok {
				v.Package = tree.Node(pkg).ShortName
				break
			}
		}
	}
	if len(uris) > 0 {
		base := filepath.Base(filepath.FromSlash(uris[0]))
		v.First = base[:len(base)-len(filepath.Ext(base))]
	}
	return v
}

func expandTemplate(field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()
	funcMap["slug"] = slug.Make

	tmpl, err := template.New(values.Context).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", values.Context, err)
	}
	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// outputName expands configured template into file name of the merged
// model, falling back to default name when expansion does not produce
// anything usable.
func outputName(field string, values Values) (string, error) {
	name, err := expandTemplate(field, values)
	if err != nil {
		return defaultOutputName, err
	}
	name = config.SanitizeFileName(name, defaultOutputName)
	if filepath.Ext(name) == "" {
		name += ".arxml"
	}
	return name, nil
}

// outputPath decides where merged model goes. Empty dst means current
// directory, existing directory gets generated name, anything else is
// treated as file path.
func outputPath(dst, name string) (string, error) {
	if len(dst) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to get working directory: %w", err)
		}
		return filepath.Join(wd, name), nil
	}
	dst, err := filepath.Abs(dst)
	if err != nil {
		return "", err
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return filepath.Join(dst, name), nil
	}
	return dst, nil
}
