package engine

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/leakhound/leakhound/internal/ignore"
)

const fileIgnoreDirective = "leakhound:ignore-file"

// sniffLen is how many leading bytes are checked for NUL when deciding
// whether a file is binary.
const sniffLen = 8000

// walkFiles walks the current tree under cfg.Root and calls visit with the
// content of every scannable file. Files that look like secrets could hide in
// but cannot be scanned (unreadable, empty, binary, non-UTF-8, oversized) are
// reported through warn and skipped. Noise excluded by extension or directory
// name is skipped silently. Returns true when the walk was cut short by ctx.
func walkFiles(ctx context.Context, cfg Config, ign ignore.Matcher, visit func(rel string, data []byte), warn func(path, msg string)) (bool, error) {
	truncated := false
	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			truncated = true
			return filepath.SkipAll
		default:
		}
		if err != nil {
			if path == cfg.Root {
				return err
			}
			warn(relTo(cfg.Root, path), "cannot access: "+err.Error())
			return nil
		}
		rel := relTo(cfg.Root, path)
		if d.IsDir() {
			if path == cfg.Root {
				return nil
			}
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			if cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
				return fs.SkipDir
			}
			if ign.Match(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		// own metadata written next to non-git roots
		if rel == ".leakhoundcache.json" || rel == ".leakhound_last_scan.json" {
			return nil
		}
		if ign.Match(rel) {
			return nil
		}
		if !allowedByGlobs(rel, cfg) {
			return nil
		}
		if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
			return nil
		}
		info, ierr := d.Info()
		if ierr != nil {
			warn(rel, "cannot stat: "+ierr.Error())
			return nil
		}
		if info.Size() == 0 {
			warn(rel, "empty file, skipped")
			return nil
		}
		if cfg.MaxBytes > 0 && info.Size() > cfg.MaxBytes {
			warn(rel, "exceeds size limit, skipped")
			return nil
		}
		data, rerr := os.ReadFile(path)
		if rerr != nil {
			warn(rel, "cannot read: "+rerr.Error())
			return nil
		}
		head := data
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		if bytes.IndexByte(head, 0) >= 0 {
			warn(rel, "binary content, skipped")
			return nil
		}
		if !utf8.Valid(data) {
			warn(rel, "not valid UTF-8, skipped")
			return nil
		}
		if bytes.Contains(head, []byte(fileIgnoreDirective)) {
			return nil
		}
		visit(rel, data)
		return nil
	})
	return truncated, err
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
