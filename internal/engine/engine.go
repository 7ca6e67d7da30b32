// Package engine orchestrates a scan: walking the tree, matching rules across
// a worker pool, optionally traversing git history, and assembling the final
// result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	gogit "github.com/go-git/go-git/v5"
	"github.com/google/uuid"

	"github.com/leakhound/leakhound/internal/artifacts"
	"github.com/leakhound/leakhound/internal/cache"
	"github.com/leakhound/leakhound/internal/filter"
	"github.com/leakhound/leakhound/internal/git"
	"github.com/leakhound/leakhound/internal/ignore"
	"github.com/leakhound/leakhound/internal/rules"
	"github.com/leakhound/leakhound/internal/types"
)

// Config controls a single scan invocation.
type Config struct {
	Root string
	Deep bool

	// Rules defaults to the full table when empty.
	Rules   []rules.Rule
	Rotated []string

	// Filter, when non-nil, reviews candidates before they are reported.
	// FilterTimeout bounds the review; on timeout or error the unfiltered
	// candidates are reported.
	Filter        filter.FalsePositiveFilter
	FilterTimeout time.Duration

	Threads         int
	IncludeGlobs    string
	ExcludeGlobs    string
	MaxBytes        int64
	NoCache         bool
	DefaultExcludes bool

	// Images are container image references scanned in addition to Root.
	Images []string

	// Progress, when set, is called once per file handed to the pool.
	Progress func(path string)
}

const defaultMaxBytes = 1 << 20

type fileJob struct {
	rel  string
	data []byte
	hash string
}

// Scan runs one scan and returns its result. Fatal errors are limited to an
// unusable root and requesting a deep scan outside a git repository; per-file
// problems become warnings on the result instead.
func Scan(ctx context.Context, cfg Config) (types.ScanResult, error) {
	start := time.Now()

	res := types.ScanResult{
		ScanID:   uuid.NewString(),
		Mode:     types.ModeQuick,
		Findings: []types.Finding{},
	}
	if cfg.Deep {
		res.Mode = types.ModeDeep
	}

	root, err := normalizeRoot(cfg.Root)
	if err != nil {
		return res, err
	}
	cfg.Root = root
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = defaultMaxBytes
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.GOMAXPROCS(0)
	}
	set := cfg.Rules
	if len(set) == 0 {
		set = rules.All
	}

	var repo *gogit.Repository
	if cfg.Deep {
		repo, err = git.Open(root)
		if err != nil {
			return res, err
		}
	}

	ign, _ := ignore.Load(filepath.Join(root, ignore.FileName))

	db := cache.DB{Entries: map[string]string{}}
	if !cfg.NoCache {
		if loaded, err := cache.Load(root); err == nil {
			db = loaded
		}
	}

	var mu sync.Mutex
	clean := map[string]string{}
	warn := func(path, msg string) {
		mu.Lock()
		res.Warnings = append(res.Warnings, types.Warning{Path: path, Message: msg})
		mu.Unlock()
	}

	jobs := make(chan fileJob, 64)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Threads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				found := rules.ScanContent(job.rel, job.data, set)
				mu.Lock()
				if len(found) == 0 {
					clean[job.rel] = job.hash
				} else {
					for i := range found {
						found[i].Source = types.SourceCurrent
						found[i].Status = types.StatusActive
					}
					res.Findings = append(res.Findings, found...)
				}
				mu.Unlock()
			}
		}()
	}

	filesScanned := 0
	truncated, werr := walkFiles(ctx, cfg, ign, func(rel string, data []byte) {
		filesScanned++
		if cfg.Progress != nil {
			cfg.Progress(rel)
		}
		h := cache.Hash(data)
		if !cfg.NoCache {
			if prev, ok := db.Entries[rel]; ok && prev == h {
				mu.Lock()
				clean[rel] = h
				mu.Unlock()
				return
			}
		}
		jobs <- fileJob{rel: rel, data: data, hash: h}
	}, warn)
	close(jobs)
	wg.Wait()
	if werr != nil {
		return res, fmt.Errorf("scanning %s: %w", cfg.Root, werr)
	}
	res.Truncated = truncated
	res.FilesScanned = filesScanned

	if cfg.Deep && repo != nil && !res.Truncated {
		scanHistory(ctx, &res, repo, cfg, ign, set, warn)
	}

	for _, img := range cfg.Images {
		n, err := scanImage(ctx, &res, img, cfg, set)
		filesScanned += n
		res.FilesScanned = filesScanned
		if err != nil {
			warn(img, "image scan failed: "+err.Error())
		}
	}

	markRotated(res.Findings, cfg.Rotated)
	markRotated(res.HistoryFindings, cfg.Rotated)

	sortFindings(res.Findings)
	sortFindings(res.HistoryFindings)

	applyFilter(ctx, &res, cfg, warn)

	if !cfg.NoCache && len(clean) > 0 && !res.Truncated {
		if err := cache.Save(root, cache.DB{Entries: clean}); err != nil {
			warn("", "cannot persist scan cache: "+err.Error())
		}
	}

	res.Duration = time.Since(start)
	res.DurationMS = res.Duration.Milliseconds()
	res.Summary = summarize(res)
	return res, nil
}

func normalizeRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	if strings.ContainsRune(root, 0) {
		return "", errors.New("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// scanHistory runs the sequential history pass. Findings are deduplicated by
// (category, match) so a secret that sat unchanged across many commits yields
// one finding. Mid-stream failures degrade the pass with a warning; partial
// history findings collected so far are kept.
func scanHistory(ctx context.Context, res *types.ScanResult, repo *gogit.Repository, cfg Config, ign ignore.Matcher, set []rules.Rule, warn func(path, msg string)) {
	seen := map[uint64]struct{}{}
	err := git.ForEachHistoryBlob(ctx, repo, cfg.MaxBytes, func(commit, path string, data []byte) bool {
		if !historyPathAllowed(path, cfg, ign) {
			return true
		}
		for _, f := range rules.ScanContent(path, data, set) {
			key := dedupKey(f.Category, f.Match)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			f.Source = types.SourceHistory
			f.Status = types.StatusActive
			f.Commit = commit
			res.HistoryFindings = append(res.HistoryFindings, f)
		}
		return true
	})
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		res.Truncated = true
		warn("", "history scan interrupted before completion")
		return
	}
	warn("", "history scan incomplete: "+err.Error())
}

func historyPathAllowed(path string, cfg Config, ign ignore.Matcher) bool {
	p := strings.ReplaceAll(path, "\\", "/")
	if ign.Match(p) {
		return false
	}
	if !allowedByGlobs(p, cfg) {
		return false
	}
	if cfg.DefaultExcludes {
		for _, part := range strings.Split(p, "/") {
			if isDefaultDirExcluded(part) {
				return false
			}
		}
		if isDefaultFileExcluded(strings.ToLower(p)) {
			return false
		}
	}
	return true
}

func scanImage(ctx context.Context, res *types.ScanResult, ref string, cfg Config, set []rules.Rule) (int, error) {
	visited := 0
	err := artifacts.ScanImage(ctx, ref, cfg.MaxBytes, func(path string, data []byte) bool {
		visited++
		vp := ref + "::" + path
		found := rules.ScanContent(vp, data, set)
		for i := range found {
			found[i].Source = types.SourceCurrent
			found[i].Status = types.StatusActive
		}
		res.Findings = append(res.Findings, found...)
		return true
	})
	return visited, err
}

func dedupKey(category, match string) uint64 {
	d := xxhash.New()
	d.WriteString(category)
	d.Write([]byte{0})
	d.WriteString(match)
	return d.Sum64()
}

// markRotated downgrades findings whose exact match value appears in the
// rotated list. The finding is kept, annotated, and dropped from failure
// threshold checks downstream.
func markRotated(findings []types.Finding, rotated []string) {
	if len(rotated) == 0 {
		return
	}
	rot := map[string]bool{}
	for _, v := range rotated {
		if v != "" {
			rot[v] = true
		}
	}
	for i := range findings {
		if rot[findings[i].Match] {
			findings[i].Severity = types.SevInfo
			findings[i].Status = types.StatusRotated
			findings[i].Recommendation = "Credential already rotated - remove the stale reference."
		}
	}
}

func applyFilter(ctx context.Context, res *types.ScanResult, cfg Config, warn func(path, msg string)) {
	if cfg.Filter == nil {
		return
	}
	all := res.AllFindings()
	if len(all) == 0 {
		res.FilteringApplied = true
		return
	}
	fctx := ctx
	if cfg.FilterTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, cfg.FilterTimeout)
		defer cancel()
	}
	verdicts, err := cfg.Filter.Review(fctx, all)
	if err != nil {
		warn("", "false-positive review unavailable, reporting unfiltered results: "+err.Error())
		return
	}
	kept := filter.Apply(all, verdicts)
	res.Findings = res.Findings[:0]
	res.HistoryFindings = res.HistoryFindings[:0]
	for _, f := range kept {
		if f.Source == types.SourceHistory {
			res.HistoryFindings = append(res.HistoryFindings, f)
		} else {
			res.Findings = append(res.Findings, f)
		}
	}
	res.FilteringApplied = true
}

func sortFindings(fs []types.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		if fs[i].Path != fs[j].Path {
			return fs[i].Path < fs[j].Path
		}
		if fs[i].Line != fs[j].Line {
			return fs[i].Line < fs[j].Line
		}
		return fs[i].Category < fs[j].Category
	})
}

func summarize(res types.ScanResult) string {
	counts := map[types.Severity]int{}
	all := res.AllFindings()
	for _, f := range all {
		counts[f.Severity]++
	}
	s := fmt.Sprintf("%d finding(s) (%d critical, %d high, %d medium, %d low, %d info) across %d file(s)",
		len(all),
		counts[types.SevCritical], counts[types.SevHigh], counts[types.SevMedium],
		counts[types.SevLow], counts[types.SevInfo],
		res.FilesScanned)
	if res.Mode == types.ModeDeep {
		s += fmt.Sprintf(", %d from history", len(res.HistoryFindings))
	}
	if res.Truncated {
		s += " (truncated)"
	}
	return s
}
