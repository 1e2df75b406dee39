// Package engine owns one project's database, planner, chosen adapter,
// and cache, and exposes the query surface every transport (CLI, LSP)
// is built on. Grounded on the teacher's orchestration style: a single
// build-serializing mutex guarding writes, query methods that only
// take the database's read lock.
package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/hdl-checker/adapter"
	"github.com/flanksource/hdl-checker/adapter/fallback"
	"github.com/flanksource/hdl-checker/adapter/ghdl"
	"github.com/flanksource/hdl-checker/adapter/msim"
	"github.com/flanksource/hdl-checker/adapter/xvhdl"
	"github.com/flanksource/hdl-checker/cache"
	"github.com/flanksource/hdl-checker/checker"
	"github.com/flanksource/hdl-checker/models"
	"github.com/flanksource/hdl-checker/planner"
	"github.com/flanksource/hdl-checker/sourcedb"
)

// maxRebuildIterations bounds get_diagnostics's plan-build-replan loop
// (spec §4.6).
const maxRebuildIterations = 20

// buildTimeout is the per-adapter-invocation default (spec §5).
const buildTimeout = 60 * time.Second

// DefinitionLocation is a resolved (path, position) pair — the
// engine's own exported shape, since models.Location carries no path.
type DefinitionLocation struct {
	Path   string
	Line   int
	Column int
}

// Engine is a single project's build orchestrator. The zero value is
// not usable; call Configure before any query method.
type Engine struct {
	mu sync.Mutex // serializes GetDiagnostics per spec §5

	db       *sourcedb.DB
	cache    *cache.Cache
	throttle *adapter.Throttle
	chosen   adapter.Adapter
	root     string // per-project adapter working directory
}

// New returns an unconfigured engine.
func New() *Engine {
	return &Engine{db: sourcedb.New()}
}

// Configure loads cfg's sources into the database, opens the project
// cache, and selects an adapter by probe and preference order
// msim > ghdl > xvhdl > fallback (spec §4.6).
func (e *Engine) Configure(cfg models.ProjectConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.root = workingRoot(cfg)
	e.throttle = adapter.NewThrottle(4, 1)

	cachePath := filepath.Join(e.root, ".hdl-checker-cache.db")
	c, err := cache.Open(cachePath)
	if err != nil {
		return fmt.Errorf("engine: open cache: %w", err)
	}
	e.cache = c
	e.loadFromCache()

	for _, entry := range cfg.Sources {
		kind, ok := models.KindFromExt(entry.Path)
		if !ok {
			logger.Warnf("engine: skipping %s: unrecognized extension", entry.Path)
			continue
		}
		flags := languageFlags(cfg, kind)
		single := append(append([]string(nil), flags.Global...), flags.Single...)
		deps := append(append([]string(nil), flags.Global...), entry.Flags...)
		deps = append(deps, flags.Dependencies...)
		e.db.PutFile(models.StatPath(entry.Path), kind, entry.Library, single, deps)
	}

	e.chosen = e.selectAdapter(context.Background(), cfg.Builder)
	logger.Infof("engine: using adapter %s", e.chosen.Name())
	return nil
}

// selectAdapter probes candidates in preference order, honoring an
// explicit cfg.Builder override if it probes available.
func (e *Engine) selectAdapter(ctx context.Context, preferred models.BuilderName) adapter.Adapter {
	candidates := []adapter.Adapter{
		msim.New(e.throttle),
		ghdl.New(e.throttle),
		xvhdl.New(e.throttle),
	}

	if preferred != "" {
		for _, c := range candidates {
			if models.BuilderName(c.Name()) == preferred {
				a := c.Probe(ctx)
				if a.Available {
					return c
				}
				logger.Warnf("engine: configured builder %q unavailable: %s", preferred, a.Reason)
				break
			}
		}
	}

	for _, c := range candidates {
		if a := c.Probe(ctx); a.Available {
			return c
		}
	}
	return fallback.New()
}

func languageFlags(cfg models.ProjectConfig, kind models.SourceKind) models.LanguageFlags {
	switch kind {
	case models.VHDL:
		return cfg.VHDL.Flags
	case models.Verilog:
		return cfg.Verilog.Flags
	default:
		return cfg.SystemVerilog.Flags
	}
}

func workingRoot(cfg models.ProjectConfig) string {
	if cfg.WorkingDir != "" {
		return cfg.WorkingDir
	}
	return "."
}

// loadFromCache registers every fresh cache row's path, plus its library
// when that library was explicitly configured (inferred libraries are
// recomputed by the database's inference pass); the next Refresh call
// re-parses each from disk since a cache-loaded file's MtimeAtParse
// starts unset (spec §4.7 — the cache only needs to survive a restart,
// not skip the first parse pass).
func (e *Engine) loadFromCache() {
	files, _, _, err := e.cache.Load()
	if err != nil {
		logger.Warnf("engine: cache load failed, starting cold: %v", err)
		return
	}
	for _, f := range files {
		library := ""
		if f.ExplicitLibrary {
			library = f.Library
		}
		e.db.PutFile(models.StatPath(f.Path), models.SourceKind(f.Kind), library, nil, nil)
	}
}

// GetDiagnostics ensures the database is fresh, plans and builds
// target's dependency chain, and returns every diagnostic in the
// stable order spec §5 requires.
func (e *Engine) GetDiagnostics(path string) ([]models.Diagnostic, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	target := models.StatPath(path)
	if !target.Exists() {
		return e.registerMissing(target), nil
	}

	e.db.Refresh()

	var diags []models.Diagnostic
	extra := map[string]models.Path{}

	for iter := 0; iter < maxRebuildIterations; iter++ {
		plan := planner.Build(e.db, target)

		diags = e.collectStaticDiagnostics(plan, target)
		diags = append(diags, diagnosticsFor(plan)...)

		order := append(append([]models.Path(nil), plan.Order...), sortedExtras(extra)...)

		var hints []models.RebuildHint
		for _, p := range order {
			if !p.Refreshed().Exists() {
				diags = append(diags, fileNotFoundDiagnostic(p.String()))
				continue
			}
			report := e.buildOne(p, target)
			diags = append(diags, report.Diagnostics...)
			hints = append(hints, report.Hints...)
		}

		added := e.resolveHints(hints, extra)
		if !added {
			break
		}
		if iter == maxRebuildIterations-1 {
			logger.Warnf("engine: %s did not reach a fixed point after %d rebuild iterations", path, maxRebuildIterations)
		}
	}

	diags = dedupeAndSort(diags)
	return diags, nil
}

// registerMissing records a query target that doesn't exist on disk so
// later queries against it resolve instead of re-erroring, and returns
// its sole diagnostic (spec.md §8 boundary #8: a missing file is
// reported, not an engine-level error).
func (e *Engine) registerMissing(target models.Path) []models.Diagnostic {
	kind, ok := models.KindFromExt(target.String())
	if !ok {
		kind = models.VHDL
	}
	e.db.PutFile(target, kind, "", nil, nil)
	return []models.Diagnostic{fileNotFoundDiagnostic(target.String())}
}

func fileNotFoundDiagnostic(path string) models.Diagnostic {
	return models.Diagnostic{
		Path: path, Line: 0, Severity: models.Error, Code: "file-not-found",
		Message: fmt.Sprintf("%s does not exist", path),
		Source:  "engine",
	}
}

// buildOne compiles one planned file, creating its library first.
func (e *Engine) buildOne(p models.Path, target models.Path) models.BuildReport {
	sf, ok := e.db.Get(p)
	if !ok {
		return models.BuildReport{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	lib := sf.Library
	if lib.IsZero() {
		lib = models.NewIdentifier(models.UnresolvedLibrary, sf.Kind)
	}
	if err := e.chosen.CreateLibrary(ctx, e.root, lib); err != nil {
		logger.Debugf("engine: create library %s: %v", lib, err)
	}

	scratch := p.Equal(target)
	flags := sf.FlagsDependencies
	if scratch {
		flags = sf.FlagsSingle
	}

	report := e.chosen.Build(ctx, e.root, p, lib, flags, scratch)
	if ctx.Err() != nil {
		report.TimedOut = true
		report.Diagnostics = append(report.Diagnostics, models.Diagnostic{
			Path: p.String(), Severity: models.Error, Code: "timeout",
			Message: fmt.Sprintf("%s timed out after %s", e.chosen.Name(), buildTimeout),
			Source:  e.chosen.Name(),
		})
	}
	return report
}

// collectStaticDiagnostics runs the checker package and surfaces
// library-inference/dependency-resolution problems from the plan.
func (e *Engine) collectStaticDiagnostics(plan planner.Plan, target models.Path) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, p := range plan.Order {
		sf, ok := e.db.Get(p)
		if !ok {
			continue
		}
		data, err := readFile(p.String())
		if err == nil {
			diags = append(diags, checker.Check(p.String(), data, sf.Kind)...)
		}
		if sf.Library.IsZero() || sf.Library.Key() == models.UnresolvedLibrary {
			diags = append(diags, models.Diagnostic{
				Path: p.String(), Severity: models.Warning, Code: "unresolved-library",
				Message: "library could not be inferred", Source: "engine",
			})
		}
	}
	return diags
}

func diagnosticsFor(plan planner.Plan) []models.Diagnostic {
	var diags []models.Diagnostic
	for _, u := range plan.Unresolved {
		diags = append(diags, models.Diagnostic{
			Path: u.From.String(), Severity: models.Error, Code: "unresolved-dependency",
			Message: fmt.Sprintf("no unit named %q found in library %q", u.Dep.Name.String(), u.Dep.Library.String()),
			Source:  "engine",
		})
	}
	for _, a := range plan.Ambiguous {
		diags = append(diags, models.Diagnostic{
			Path: a.From.String(), Severity: models.Note, Code: "ambiguous-dependency",
			Message: fmt.Sprintf("%d candidates declare %q in library %q", len(a.Candidates), a.Dep.Name.String(), a.Dep.Library.String()),
			Source:  "engine",
		})
	}
	for _, b := range plan.BrokenCycles {
		diags = append(diags, models.Diagnostic{
			Path: b.Src.String(), Severity: models.Note, Code: "broken-cycle",
			Message: fmt.Sprintf("dependency on %s ignored to break a cycle", b.Dst.String()),
			Source:  "engine",
		})
	}
	return diags
}

// resolveHints maps rebuild hints to known paths and adds any not
// already scheduled to extra, reporting whether anything new was added.
func (e *Engine) resolveHints(hints []models.RebuildHint, extra map[string]models.Path) bool {
	added := false
	for _, h := range hints {
		var resolved models.Path
		var ok bool
		switch h.Kind {
		case models.RebuildPath:
			resolved = models.StatPath(h.Name)
			ok = resolved.Exists()
		case models.RebuildUnit:
			resolved, ok = e.findByUnitName(h.Name)
		}
		if !ok {
			continue
		}
		if _, exists := extra[resolved.String()]; exists {
			continue
		}
		extra[resolved.String()] = resolved
		added = true
	}
	return added
}

// findByUnitName scans every known file for a design unit matching
// name, returning the lexicographically-smallest owning path when
// more than one matches (deterministic, mirroring the planner's
// tie-break rule).
func (e *Engine) findByUnitName(name string) (models.Path, bool) {
	var matches []models.Path
	for _, sf := range e.db.All() {
		for _, du := range sf.DesignUnits {
			if strings.EqualFold(du.Name.String(), name) {
				matches = append(matches, sf.Path)
				break
			}
		}
	}
	if len(matches) == 0 {
		return models.Path{}, false
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].String() < matches[j].String() })
	return matches[0], true
}

// GetDefinition finds the reference at pos (a dependency or a design
// unit's own declaration) and returns the declaring location(s).
func (e *Engine) GetDefinition(path string, pos models.Location) []DefinitionLocation {
	p := models.StatPath(path)
	sf, ok := e.db.Get(p)
	if !ok {
		return nil
	}

	dep, ok := nearestDependency(sf.Dependencies, pos)
	if !ok {
		if du, ok := nearestDesignUnit(sf.DesignUnits, pos); ok {
			loc := firstLocation(du.Locations)
			return []DefinitionLocation{{Path: sf.Path.String(), Line: loc.Line, Column: loc.Column}}
		}
		return nil
	}

	candidates := e.db.PathsByDesignUnit(dep.Library.String(), dep.Name.String(), p)
	var out []DefinitionLocation
	for _, c := range candidates {
		if csf, ok := e.db.Get(c); ok {
			loc := models.Location{}
			for _, du := range csf.DesignUnits {
				if strings.EqualFold(du.Name.String(), dep.Name.String()) {
					loc = firstLocation(du.Locations)
					break
				}
			}
			out = append(out, DefinitionLocation{Path: c.String(), Line: loc.Line, Column: loc.Column})
		}
	}
	return out
}

// GetHover describes the reference at pos: a dependency's resolved
// library/path, or a design unit's planned compilation sequence.
func (e *Engine) GetHover(path string, pos models.Location) string {
	p := models.StatPath(path)
	sf, ok := e.db.Get(p)
	if !ok {
		return ""
	}

	if dep, ok := nearestDependency(sf.Dependencies, pos); ok {
		candidates := e.db.PathsByDesignUnit(dep.Library.String(), dep.Name.String(), p)
		if len(candidates) == 0 {
			return fmt.Sprintf("%s.%s: unresolved", dep.Library.String(), dep.Name.String())
		}
		return fmt.Sprintf("%s.%s -> %s", dep.Library.String(), dep.Name.String(), candidates[0].String())
	}

	if du, ok := nearestDesignUnit(sf.DesignUnits, pos); ok {
		plan := planner.Build(e.db, p)
		names := make([]string, len(plan.Order))
		for i, o := range plan.Order {
			names[i] = filepath.Base(o.String())
		}
		return fmt.Sprintf("%s %s: compiled as [%s]", du.Kind, du.Name.String(), strings.Join(names, ", "))
	}
	return ""
}

// Shutdown flushes the database to the cache and closes it.
func (e *Engine) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cache == nil {
		return nil
	}
	if err := e.cache.Save(e.db.All()); err != nil {
		return fmt.Errorf("engine: flush cache: %w", err)
	}
	return e.cache.Close()
}

func dedupeAndSort(diags []models.Diagnostic) []models.Diagnostic {
	seen := map[string]bool{}
	var out []models.Diagnostic
	for _, d := range diags {
		key := d.DedupeKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sortedExtras(extra map[string]models.Path) []models.Path {
	out := make([]models.Path, 0, len(extra))
	for _, p := range extra {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

func nearestDependency(deps []models.Dependency, pos models.Location) (models.Dependency, bool) {
	for _, d := range deps {
		for _, loc := range d.Locations {
			if loc.Line == pos.Line {
				return d, true
			}
		}
	}
	return models.Dependency{}, false
}

func nearestDesignUnit(units []models.DesignUnit, pos models.Location) (models.DesignUnit, bool) {
	for _, u := range units {
		for _, loc := range u.Locations {
			if loc.Line == pos.Line {
				return u, true
			}
		}
	}
	return models.DesignUnit{}, false
}

func firstLocation(locs []models.Location) models.Location {
	if len(locs) == 0 {
		return models.Location{}
	}
	return locs[0]
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
