package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

const hashcodeModule = "github.com/starfederation/hashcode-go"

type packageInfo struct {
	Dir     string
	Name    string
	Structs []structInfo
}

type structInfo struct {
	Name   string
	Fields []fieldInfo
}

// fieldInfo carries everything the template needs for one tagged
// field: the key folded before the value, and the statements that fold
// the value itself.
type fieldInfo struct {
	Name  string
	Key   string
	Lines []string

	typeName  string
	isPointer bool
}

//go:embed templates/hash_gen.gotemplate
var hashGenTemplate string

func findModuleRoot(start string) (string, string, error) {
	dir := start
	for {
		modPath := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(modPath)
		if err == nil {
			modulePath, err := parseModulePath(data)
			if err != nil {
				return "", "", err
			}
			return dir, modulePath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("go.mod not found starting from %s", start)
		}
		dir = parent
	}
}

func parseModulePath(data []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "module ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], nil
			}
			return "", fmt.Errorf("module declaration malformed")
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in go.mod")
}

func collectPackageInfos(root string) ([]*packageInfo, error) {
	dirs := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		if strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		dirs[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	var infos []*packageInfo
	for dir := range dirs {
		pkgInfos, err := parsePackageDir(dir)
		if err != nil {
			return nil, err
		}
		infos = append(infos, pkgInfos...)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Dir == infos[j].Dir {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Dir < infos[j].Dir
	})
	return infos, nil
}

func parsePackageDir(dir string) ([]*packageInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, err
	}

	var infos []*packageInfo
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			if isSkippablePackageErrors(pkg.Errors) {
				log.Printf("hashgen: skipping %s (no buildable Go files for current tags)", dir)
				continue
			}
			return nil, fmt.Errorf("package load error in %s: %v", dir, pkg.Errors[0])
		}
		if pkg.Name == "" {
			continue
		}
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		info := &packageInfo{Dir: dir, Name: pkg.Name}
		for _, file := range pkg.Syntax {
			if pkg.Fset != nil {
				filename := pkg.Fset.Position(file.Pos()).Filename
				if filename != "" {
					base := filepath.Base(filename)
					if strings.HasSuffix(base, "_test.go") || strings.HasSuffix(base, "hash_gen.go") {
						continue
					}
				}
			}
			ast.Inspect(file, func(n ast.Node) bool {
				ts, ok := n.(*ast.TypeSpec)
				if !ok {
					return true
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					return false
				}
				if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
					log.Printf("hashgen: skipping %s in %s (generic structs not supported)", ts.Name.Name, dir)
					return false
				}
				fields := collectTaggedFields(st, ts.Name.Name, dir)
				if len(fields) == 0 {
					return false
				}
				info.Structs = append(info.Structs, structInfo{Name: ts.Name.Name, Fields: fields})
				return false
			})
		}

		sort.Slice(info.Structs, func(i, j int) bool {
			return info.Structs[i].Name < info.Structs[j].Name
		})
		resolveFieldStatements(info)
		infos = append(infos, info)
	}

	return infos, nil
}

func isSkippablePackageErrors(errs []packages.Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		msg := strings.ToLower(err.Msg)
		if strings.Contains(msg, "build constraints exclude all go files") {
			continue
		}
		if strings.Contains(msg, "no go files") {
			continue
		}
		return false
	}
	return true
}

func collectTaggedFields(st *ast.StructType, structName, dir string) []fieldInfo {
	var fields []fieldInfo
	for _, field := range st.Fields.List {
		if field.Tag == nil || len(field.Names) == 0 {
			continue
		}
		tagValue, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflect.StructTag(tagValue)
		hashTag := tag.Get("hash")
		if hashTag == "" || hashTag == "-" {
			continue
		}
		typeName, isPointer, ok := fieldTypeName(field.Type)
		if !ok {
			log.Printf("hashgen: skipping field %s.%s in %s (unsupported type)", structName, field.Names[0].Name, dir)
			continue
		}
		for _, name := range field.Names {
			key := strings.Split(hashTag, ",")[0]
			if key == "" {
				key = name.Name
			}
			fields = append(fields, fieldInfo{
				Name:      name.Name,
				Key:       key,
				typeName:  typeName,
				isPointer: isPointer,
			})
		}
	}
	return fields
}

// resolveFieldStatements turns each tagged field into the statements
// that fold its value, now that every generated type in the package is
// known: a field whose type also gets a Hash32 method folds through
// that method instead of a scalar key helper.
func resolveFieldStatements(info *packageInfo) {
	generated := make(map[string]struct{}, len(info.Structs))
	for _, st := range info.Structs {
		generated[st.Name] = struct{}{}
	}
	for i := range info.Structs {
		for j := range info.Structs[i].Fields {
			field := &info.Structs[i].Fields[j]
			field.Lines = foldStatements(field, generated, info.Structs[i].Name, info.Dir)
		}
	}
}

func foldStatements(f *fieldInfo, generated map[string]struct{}, structName, dir string) []string {
	access := "x." + f.Name
	if _, ok := generated[f.typeName]; ok {
		if f.isPointer {
			return []string{
				"if " + access + " != nil {",
				"h.AddUint32(" + access + ".Hash32())",
				"} else {",
				"h.AddUint32(0)",
				"}",
			}
		}
		return []string{"h.AddUint32(" + access + ".Hash32())"}
	}
	expr, ok := scalarFoldExpr(f.typeName, access)
	if !ok {
		log.Printf("hashgen: field %s.%s in %s has no scalar mapping, folding zero", structName, f.Name, dir)
		return []string{"h.AddUint32(0)"}
	}
	if f.isPointer {
		deref := strings.Replace(expr, access, "(*"+access+")", 1)
		return []string{
			"if " + access + " != nil {",
			"h.AddUint32(" + deref + ")",
			"} else {",
			"h.AddUint32(0)",
			"}",
		}
	}
	return []string{"h.AddUint32(" + expr + ")"}
}

func scalarFoldExpr(typeName, access string) (string, bool) {
	switch typeName {
	case "string":
		return "hashcode.StringKey(" + access + ")", true
	case "bool":
		return "hashcode.BoolKey(" + access + ")", true
	case "int", "int8", "int16", "int32", "int64", "rune":
		return "hashcode.IntKey(int64(" + access + "))", true
	case "uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte":
		return "hashcode.UintKey(uint64(" + access + "))", true
	case "float32", "float64":
		return "hashcode.FloatKey(float64(" + access + "))", true
	case "[]byte":
		return "hashcode.BytesKey(" + access + ")", true
	default:
		return "", false
	}
}

func fieldTypeName(expr ast.Expr) (name string, isPointer bool, ok bool) {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name, false, true
	case *ast.StarExpr:
		if ident, isIdent := t.X.(*ast.Ident); isIdent {
			return ident.Name, true, true
		}
	case *ast.ArrayType:
		if t.Len == nil {
			if elem, isIdent := t.Elt.(*ast.Ident); isIdent && (elem.Name == "byte" || elem.Name == "uint8") {
				return "[]byte", false, true
			}
		}
	}
	return "", false, false
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	switch name {
	case "vendor", "node_modules", "testdata":
		return true
	default:
		return false
	}
}

func generatePackage(info *packageInfo) ([]byte, error) {
	var buf bytes.Buffer
	tmpl, err := template.New("hash_gen").Parse(hashGenTemplate)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Execute(&buf, templateData{
		PackageName: info.Name,
		Imports:     []string{strconv.Quote(hashcodeModule)},
		Structs:     info.Structs,
	}); err != nil {
		return nil, err
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return formatted, nil
}

type templateData struct {
	PackageName string
	Imports     []string
	Structs     []structInfo
}

func writeFileIfChanged(filePath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(filePath)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func removeGeneratedFile(dir string) (bool, error) {
	filePath := filepath.Join(dir, "hash_gen.go")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !bytes.HasPrefix(data, []byte("// Code generated by hashgen; DO NOT EDIT.")) {
		return false, nil
	}
	if err := os.Remove(filePath); err != nil {
		return false, err
	}
	return true, nil
}
