package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loomworks/loom/engine/bom"
	"github.com/loomworks/loom/engine/document"
	"github.com/loomworks/loom/engine/enrich"
	"github.com/loomworks/loom/engine/harness"
	"github.com/loomworks/loom/engine/render"
	"github.com/loomworks/loom/pkg/fn"
)

var (
	formats    string
	prepend    []string
	outputDir  string
	outputName string
	useEnrich  bool
)

var buildCmd = &cobra.Command{
	Use:   "build <file>...",
	Short: "Build harness files into graph, diagram and BOM outputs",
	Long: `Build parses each YAML harness document and writes the selected output
formats next to it (or into --output-dir).

Formats:
  g  Graphviz diagram source (.gv)
  t  bill of materials, tab separated (.tsv)
  j  structural graph description (.json)

Examples:
  loom build harness.yml
  loom build -f j --output-dir out/ harness.yml
  loom build --prepend colors.yml left.yml right.yml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&formats, "format", "f", "gt",
		"output formats, any of g/t/j")
	buildCmd.Flags().StringSliceVarP(&prepend, "prepend", "p", nil,
		"YAML documents prepended to every input file")
	buildCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "",
		"directory for output files (default: next to each input)")
	buildCmd.Flags().StringVar(&outputName, "output-name", "",
		"base name for output files (single input only)")
	buildCmd.Flags().BoolVar(&useEnrich, "enrich", false,
		"fill missing part numbers from supplier APIs (needs env credentials)")
}

func runBuild(cmd *cobra.Command, args []string) error {
	for _, f := range formats {
		if !strings.ContainsRune("gtj", f) {
			return fmt.Errorf("unknown output format %q", string(f))
		}
	}
	if outputName != "" && len(args) > 1 {
		return fmt.Errorf("--output-name needs exactly one input file")
	}

	log := newLogger()
	ctx := cmd.Context()

	var enricher *enrich.Enricher
	if useEnrich {
		enricher = enrich.New(enrich.FromEnv(), log)
		if !enricher.Enabled() {
			log.Warn("enrichment requested but no supplier credentials set")
		}
	}

	header, err := readAll(prepend)
	if err != nil {
		return err
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return err
		}
	}

	results := fn.ParMapResult(args, 4, func(path string) fn.Result[string] {
		if err := buildOne(ctx, path, header, enricher); err != nil {
			return fn.Err[string](fmt.Errorf("%s: %w", path, err))
		}
		return fn.Ok(path)
	})

	failed := 0
	for _, r := range results {
		path, err := r.Unwrap()
		if err != nil {
			failed++
			fmt.Fprintln(os.Stderr, "error:", err)
			continue
		}
		log.Info("built", "file", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

func buildOne(ctx context.Context, path string, header []byte, enricher *enrich.Enricher) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data := body
	if len(header) > 0 {
		data = append(append([]byte{}, header...), body...)
	}

	doc, err := document.Parse(data)
	if err != nil {
		return err
	}
	if enricher != nil && enricher.Enabled() {
		enricher.Apply(ctx, doc)
	}
	h, err := harness.Build(ctx, doc)
	if err != nil {
		return err
	}

	base := outputBase(path)

	if strings.ContainsAny(formats, "gj") {
		g, err := h.Describe()
		if err != nil {
			return err
		}
		if strings.Contains(formats, "g") {
			if err := os.WriteFile(base+".gv", []byte(render.DOT(g)), 0o644); err != nil {
				return err
			}
		}
		if strings.Contains(formats, "j") {
			data, err := g.JSON()
			if err != nil {
				return err
			}
			if err := os.WriteFile(base+".json", data, 0o644); err != nil {
				return err
			}
		}
	}

	if strings.Contains(formats, "t") {
		items, err := bom.Aggregate(h)
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".tsv", render.BOMTSV(items), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// outputBase is the output path without extension for an input file.
func outputBase(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if outputName != "" {
		name = outputName
	}
	dir := filepath.Dir(path)
	if outputDir != "" {
		dir = outputDir
	}
	return filepath.Join(dir, name)
}

// readAll concatenates the given files, each terminated by a newline so
// prepended documents never fuse with the next one.
func readAll(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("prepend %s: %w", p, err)
		}
		buf.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}
