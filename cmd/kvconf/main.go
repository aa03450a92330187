// Command kvconf decodes a key=value configuration file and prints it.
//
//	kvconf [-format yaml|json] [-dump] [file]
//
// With no file, the document is read from standard input. Repeated keys are
// printed as lists. The exit status is 1 if the document does not decode.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"roseh.moe/pkg/kvconf"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("kvconf", flag.ContinueOnError)
	flags.SetOutput(stderr)
	format := flags.String("format", "yaml", "output format: yaml or json")
	dump := flags.Bool("dump", false, "print the decoded entries with go-spew instead")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one file may be given")
		return 2
	}

	in, name := stdin, "<stdin>"
	if flags.NArg() == 1 {
		name = flags.Arg(0)
		f, err := os.Open(name)
		if err != nil {
			fmt.Fprintf(stderr, "Error opening file: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	var doc kvconf.Document
	if err := kvconf.NewDecoder(in).Decode(&doc); err != nil {
		fmt.Fprintf(stderr, "Error decoding %s: %v\n", name, err)
		return 1
	}

	if *dump {
		spew.Fdump(stdout, doc)
		return 0
	}

	var err error
	switch *format {
	case "yaml":
		err = writeYAML(stdout, doc)
	case "json":
		err = writeJSON(stdout, doc)
	default:
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 2
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// writeYAML keeps keys in document order, which a plain map would lose.
func writeYAML(w io.Writer, doc kvconf.Document) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range doc.Groups() {
		val := strNode(g.Values[0])
		if len(g.Values) > 1 {
			val = &yaml.Node{Kind: yaml.SequenceNode}
			for _, v := range g.Values {
				val.Content = append(val.Content, strNode(v))
			}
		}
		root.Content = append(root.Content, strNode(g.Key), val)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return err
	}
	return enc.Close()
}

func writeJSON(w io.Writer, doc kvconf.Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc.Tree())
}
