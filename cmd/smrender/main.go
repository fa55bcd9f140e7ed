// Command smrender loads an OSM/XML data file and a rules file, applies
// the compiled rules to the data in version-ascending passes, and
// writes the resulting object tree back out as OSM/XML.
package main

import (
	"fmt"
	"os"

	"github.com/gedex/inflector"

	"github.com/rahra/smrender"
	_ "github.com/rahra/smrender/internal/action"
	"github.com/rahra/smrender/internal/cli"
	"github.com/rahra/smrender/rlog"
)

func main() {
	opts, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "smrender: %v\n", err)
		os.Exit(1)
	}

	log := rlog.Default()
	if opts.Debug {
		log.SetLevel(rlog.LevelDebug)
	}

	if err := run(opts, log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(opts cli.Options, log *rlog.Logger) error {
	if len(opts.InputFiles) == 0 {
		return fmt.Errorf("no input file given (-i)")
	}
	if opts.RulesFile == "" {
		return fmt.Errorf("no rules file given (-r)")
	}

	stats := smrender.NewLoadStats()
	ids := smrender.NewIDAllocator()
	store := smrender.NewTrie()

	loaderOpts := smrender.LoaderOptions{Stats: stats, Log: log}
	if opts.BBoxFilter != "" {
		minLat, minLon, maxLat, maxLon, err := cli.ParseBBox(opts.BBoxFilter)
		if err != nil {
			return err
		}
		loaderOpts.HasFilter = true
		loaderOpts.Filter = smrender.BBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
	}

	for _, path := range opts.InputFiles {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		p := smrender.NewReaderParser(f, smrender.SuggestReaderChunkSize())
		loader := smrender.NewLoader(store, ids, loaderOpts)
		n, err := loader.Load(p)
		f.Close()
		if err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		log.Infof("loaded %d objects from %s", n, path)
	}

	rf, err := os.Open(opts.RulesFile)
	if err != nil {
		return fmt.Errorf("open rules %s: %w", opts.RulesFile, err)
	}
	rulesTrie := smrender.NewTrie()
	rulesLoader := smrender.NewLoader(rulesTrie, smrender.NewIDAllocator(), smrender.LoaderOptions{Stats: smrender.NewLoadStats(), Log: log})
	_, err = rulesLoader.Load(smrender.NewReaderParser(rf, smrender.SuggestReaderChunkSize()))
	rf.Close()
	if err != nil {
		return fmt.Errorf("load rules %s: %w", opts.RulesFile, err)
	}

	rules := smrender.CompileRules(rulesTrie, smrender.DefaultRegistry, log)
	ruleWord := "rule"
	if len(rules) != 1 {
		ruleWord = inflector.Pluralize(ruleWord)
	}
	log.Infof("compiled %d %s", len(rules), ruleWord)

	rev := smrender.Build(store)
	if rev.Unresolved > 0 {
		log.Warnf("reverse index: %d unresolved member reference(s)", rev.Unresolved)
	}

	cancel := &smrender.CancelFlag{}
	stop := smrender.WatchInterrupt(cancel)
	defer stop()

	ex := smrender.NewExecutor(store, rules, cancel, log)
	if err := ex.Run(); err != nil {
		return fmt.Errorf("execute: %w", err)
	}

	out := os.Stdout
	if opts.OutputFile != "" {
		f, err := os.Create(opts.OutputFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", opts.OutputFile, err)
		}
		defer f.Close()
		out = f
	}

	serOpts := smrender.SerializeOptions{
		Info:        opts.GenComment,
		WriteBounds: opts.GenBounds,
		Bounds:      stats.BBox,
		IDOffset:    opts.IDOffset,
	}
	if err := smrender.Output(out, store, serOpts); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
