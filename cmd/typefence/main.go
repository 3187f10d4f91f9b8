package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	gojson "github.com/goccy/go-json"

	typefence "github.com/reoring/typefence"
	"github.com/reoring/typefence/schemafile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "check":
		checkCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "typefence CLI\n\nUsage:\n  typefence check -schema spec.yaml [-input value.json] [-max-depth N] [-max-bytes N] [-bool-from-number] [-use-number]\n\nReads a JSON value (from -input or stdin), validates it against the declared\ntype, and prints the conforming value as JSON. Exit status: 0 ok, 1 invalid\ninput, 2 usage or schema error.")
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var (
		schemaPath     string
		inputPath      string
		maxDepth       int
		maxBytes       int64
		boolFromNumber bool
		useNumber      bool
	)
	fs.StringVar(&schemaPath, "schema", "", "YAML type declaration file")
	fs.StringVar(&inputPath, "input", "", "JSON value file (default: stdin)")
	fs.IntVar(&maxDepth, "max-depth", 0, "descriptor nesting bound (0 = default)")
	fs.Int64Var(&maxBytes, "max-bytes", 0, "input byte budget (0 = unlimited)")
	fs.BoolVar(&boolFromNumber, "bool-from-number", false, "enable zero/non-zero bool coercion")
	fs.BoolVar(&useNumber, "use-number", false, "decode JSON numbers as text for exact integers")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}

	desc, err := schemafile.Load(schemaPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	src, err := openSource(inputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	opt := typefence.ParseOpt{
		Options: typefence.Options{
			MaxDepth:       maxDepth,
			BoolFromNumber: boolFromNumber,
		},
		MaxBytes:  maxBytes,
		UseNumber: useNumber,
	}
	v, err := typefence.ParseFrom(context.Background(), desc, src, opt)
	if err != nil {
		printDiagnostics(err)
		os.Exit(1)
	}

	out, err := gojson.Marshal(jsonReady(v))
	if err != nil {
		fmt.Fprintln(os.Stderr, "typefence: encode:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func openSource(path string) (typefence.Source, error) {
	if path == "" {
		return typefence.JSONReader(os.Stdin), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return typefence.JSONBytes(data), nil
}

func printDiagnostics(err error) {
	ds, ok := typefence.AsDiagnostics(err)
	if !ok {
		fmt.Fprintln(os.Stderr, "typefence:", err)
		return
	}
	for _, d := range ds {
		fmt.Fprintf(os.Stderr, "%s at %s", d.Code, d.Pointer())
		if d.Expected.Kind() != typefence.KindInvalid {
			fmt.Fprintf(os.Stderr, ": expected %s, got %s", d.Expected, d.Received)
		}
		if d.Value != "" {
			fmt.Fprintf(os.Stderr, " (%s)", d.Value)
		}
		fmt.Fprintln(os.Stderr)
	}
}

// jsonReady rewrites coerced containers into encodable shapes. Ordered maps
// become JSON objects keyed by their rendered keys; sets become arrays.
func jsonReady(v any) any {
	switch t := v.(type) {
	case *typefence.Map:
		out := make(map[string]any, t.Len())
		t.Range(func(k, vv any) bool {
			out[fmt.Sprint(k)] = jsonReady(vv)
			return true
		})
		return out
	case *typefence.Set:
		elems := t.Elems()
		out := make([]any, len(elems))
		for i := range elems {
			out[i] = jsonReady(elems[i])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = jsonReady(t[i])
		}
		return out
	default:
		return v
	}
}
