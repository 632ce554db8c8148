// Command delbin is the host program for the delbin schema language:
// it reads a schema file plus an environment and a directory of
// section blobs, and writes the generated binary header (or a merged
// header+image, or a hex dump) to a file or stdout.
//
// The language engine itself never touches a filesystem or a flag;
// everything in this file is the "host program" spec.md §1 explicitly
// scopes out of the core.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/delbin-lang/delbin"
	"github.com/delbin-lang/delbin/internal/cli"
	"github.com/delbin-lang/delbin/internal/delbin/watch"
)

func main() {
	if len(os.Args) < 2 {
		printTopUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "generate":
		runGenerate(os.Args[2:])
	case "merge":
		runMerge(os.Args[2:])
	case "hex":
		runHex(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "explain":
		runExplain(os.Args[2:])
	case "-version", "--version", "-v":
		cli.PrintVersion("delbin", hasFlag(os.Args[2:], "json"))
	case "-h", "--help", "help":
		printTopUsage()
	default:
		fmt.Fprintf(os.Stderr, "delbin: unknown command %q\n\n", os.Args[1])
		printTopUsage()
		os.Exit(1)
	}
}

func printTopUsage() {
	cli.PrintUsage("delbin", []cli.CommandInfo{
		{Name: "generate", Description: "emit a binary header from a schema"},
		{Name: "merge", Description: "emit a header, then append an image file after it"},
		{Name: "hex", Description: "emit a binary header as uppercase hex to stdout"},
		{Name: "watch", Description: "regenerate a header every time the schema file changes"},
		{Name: "explain", Description: "print a schema's field layout (offset/size), optionally with a hex dump"},
	})
}

func hasFlag(args []string, name string) bool {
	for _, a := range args {
		if a == "-"+name || a == "--"+name {
			return true
		}
	}
	return false
}

// commonFlags are shared across generate/merge/watch: the schema file,
// an optional JSON environment file, and an optional sections
// directory (each regular file's basename, extension stripped,
// becomes a section name bound to that file's contents).
type commonFlags struct {
	schema   string
	envPath  string
	sections string
	out      string
}

func bindCommon(fs *flag.FlagSet) *commonFlags {
	c := &commonFlags{}
	fs.StringVar(&c.schema, "schema", "", "path to the .delbin schema file")
	fs.StringVar(&c.envPath, "env", "", "path to a JSON file of ${NAME} environment values")
	fs.StringVar(&c.sections, "sections", "", "directory of files to bind as named sections")
	fs.StringVar(&c.out, "o", "", "output file path (default: stdout)")
	return c
}

func (c *commonFlags) load() (string, delbin.Environment, delbin.Sections) {
	if c.schema == "" {
		cli.ExitWithError("generate: -schema is required")
	}

	srcBytes, err := os.ReadFile(c.schema)
	if err != nil {
		cli.ExitWithError("reading schema %s: %v", c.schema, err)
	}

	env, err := loadEnv(c.envPath)
	if err != nil {
		cli.ExitWithError("reading env %s: %v", c.envPath, err)
	}

	sections, err := loadSections(c.sections)
	if err != nil {
		cli.ExitWithError("reading sections %s: %v", c.sections, err)
	}

	return string(srcBytes), env, sections
}

// loadEnv parses a JSON object of name -> (number|string) into a
// delbin.Environment. An empty path yields an empty environment.
func loadEnv(path string) (delbin.Environment, error) {
	env := delbin.Environment{}
	if path == "" {
		return env, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid env JSON: %w", err)
	}

	for name, v := range raw {
		switch val := v.(type) {
		case float64:
			env[name] = delbin.IntValue(uint64(val))
		case string:
			env[name] = delbin.StringValue(val)
		default:
			return nil, fmt.Errorf("env %q: unsupported JSON value type %T", name, v)
		}
	}
	return env, nil
}

// loadSections binds every regular file directly inside dir as a
// section named by its basename with the extension stripped. An empty
// dir yields no sections.
func loadSections(dir string) (delbin.Sections, error) {
	sections := delbin.Sections{}
	if dir == "" {
		return sections, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, ent.Name()))
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(ent.Name(), filepath.Ext(ent.Name()))
		sections[name] = data
	}
	return sections, nil
}

func writeOutput(out string, data []byte) {
	if out == "" {
		os.Stdout.Write(data)
		return
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		cli.ExitWithError("writing %s: %v", out, err)
	}
}

func printWarnings(warnings []delbin.Warning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: [%s] %s\n", w.Code, w.Message)
	}
}

func runGenerate(args []string) {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	c := bindCommon(fs)
	fs.Parse(args)

	src, env, sections := c.load()
	res, err := delbin.Generate(src, env, sections)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	printWarnings(res.Warnings)
	writeOutput(c.out, res.Data)
}

func runMerge(args []string) {
	fs := flag.NewFlagSet("merge", flag.ExitOnError)
	c := bindCommon(fs)
	image := fs.String("image", "", "path to the image file appended after the generated header")
	fs.Parse(args)

	if *image == "" {
		cli.ExitWithError("merge: -image is required")
	}
	imageData, err := os.ReadFile(*image)
	if err != nil {
		cli.ExitWithError("reading image %s: %v", *image, err)
	}

	src, env, _ := c.load()
	res, err := delbin.Merge(src, env, imageData)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	printWarnings(res.Warnings)
	writeOutput(c.out, res.Data)
}

func runHex(args []string) {
	fs := flag.NewFlagSet("hex", flag.ExitOnError)
	c := bindCommon(fs)
	dump := fs.Bool("dump", false, "render a 16-byte-per-line hex dump instead of a continuous hex string")
	fs.Parse(args)

	src, env, sections := c.load()
	res, err := delbin.Generate(src, env, sections)
	if err != nil {
		cli.ExitWithError("%v", err)
	}
	printWarnings(res.Warnings)

	if *dump {
		fmt.Print(delbin.HexDump(res.Data))
		return
	}
	fmt.Println(strings.ToUpper(delbin.ToHexString(res.Data)))
}

func runExplain(args []string) {
	fs := flag.NewFlagSet("explain", flag.ExitOnError)
	c := bindCommon(fs)
	hexdump := fs.Bool("hexdump", false, "also print a hex dump of the generated bytes")
	fs.Parse(args)

	src, env, sections := c.load()
	fields, total, err := delbin.Explain(src, env, sections)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	fmt.Printf("struct size: %d bytes\n\n", total)
	fmt.Printf("%-24s %8s %8s\n", "FIELD", "OFFSET", "SIZE")
	for _, f := range fields {
		fmt.Printf("%-24s %8d %8d\n", f.Name, f.Offset, f.Size)
	}

	if *hexdump {
		res, err := delbin.Generate(src, env, sections)
		if err != nil {
			cli.ExitWithError("%v", err)
		}
		fmt.Println()
		fmt.Print(delbin.HexDump(res.Data))
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	c := bindCommon(fs)
	fs.Parse(args)

	if c.schema == "" {
		cli.ExitWithError("watch: -schema is required")
	}

	generate := func() ([]byte, error) {
		src, err := os.ReadFile(c.schema)
		if err != nil {
			return nil, err
		}
		env, err := loadEnv(c.envPath)
		if err != nil {
			return nil, err
		}
		sections, err := loadSections(c.sections)
		if err != nil {
			return nil, err
		}
		res, err := delbin.Generate(string(src), env, sections)
		if err != nil {
			return nil, err
		}
		printWarnings(res.Warnings)
		return res.Data, nil
	}

	events := make(chan watch.Event)
	stop := make(chan struct{})
	go func() {
		if err := watch.Run(c.schema, generate, events, stop); err != nil {
			cli.ExitWithError("watch: %v", err)
		}
	}()

	for ev := range events {
		if ev.Err != nil {
			fmt.Fprintf(os.Stderr, "regenerate failed: %v\n", ev.Err)
			continue
		}
		writeOutput(c.out, ev.Data)
		fmt.Fprintf(os.Stderr, "regenerated %d bytes from %s\n", len(ev.Data), ev.Path)
	}
}
