// Package artifacts scans container image layers for leaked credentials.
// Layers are streamed from the registry and never written to disk.
package artifacts

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	v1 "github.com/google/go-containerregistry/pkg/v1"
	"github.com/google/go-containerregistry/pkg/v1/remote"
)

const (
	// maxEntriesPerLayer caps how many files are read out of one layer.
	maxEntriesPerLayer = 50000
	sniffLen           = 8000
)

// ScanImage pulls the image manifest for ref, streams every layer, and calls
// visit for each text file found inside. Returning false from visit stops the
// scan. Layer entries that are binary, oversized, or unreadable are skipped
// without error; only registry level failures are returned.
func ScanImage(ctx context.Context, ref string, maxBytes int64, visit func(path string, data []byte) bool) error {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return fmt.Errorf("invalid image reference %q: %w", ref, err)
	}
	img, err := remote.Image(parsed,
		remote.WithAuthFromKeychain(authn.DefaultKeychain),
		remote.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetching image %s: %w", ref, err)
	}
	layers, err := img.Layers()
	if err != nil {
		return fmt.Errorf("reading layers of %s: %w", ref, err)
	}
	for i, layer := range layers {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		keep, err := scanLayer(layer, maxBytes, visit)
		if err != nil {
			return fmt.Errorf("reading layer %d of %s: %w", i, ref, err)
		}
		if !keep {
			return nil
		}
	}
	return nil
}

func scanLayer(layer v1.Layer, maxBytes int64, visit func(path string, data []byte) bool) (bool, error) {
	rc, err := layer.Uncompressed()
	if err != nil {
		return false, err
	}
	defer rc.Close()
	return scanLayerTar(rc, maxBytes, visit)
}

// scanLayerTar walks one uncompressed layer tarball and hands scannable text
// entries to visit. Factored out of scanLayer so it can be tested against
// constructed tar streams.
func scanLayerTar(r io.Reader, maxBytes int64, visit func(path string, data []byte) bool) (bool, error) {
	tr := tar.NewReader(r)
	entries := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return true, nil
		}
		if err != nil {
			return false, err
		}
		entries++
		if entries > maxEntriesPerLayer {
			return true, nil
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if hdr.Size == 0 || (maxBytes > 0 && hdr.Size > maxBytes) {
			continue
		}
		p := strings.TrimPrefix(hdr.Name, "./")
		if skipLayerPath(p) {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(tr, hdr.Size))
		if err != nil {
			continue
		}
		head := data
		if len(head) > sniffLen {
			head = head[:sniffLen]
		}
		if bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(data) {
			continue
		}
		if !visit(p, data) {
			return false, nil
		}
	}
}

var layerSkipPrefixes = []string{
	"usr/share/", "usr/lib/", "usr/libexec/", "usr/include/",
	"lib/", "lib64/", "var/lib/", "var/cache/",
	"proc/", "sys/", "dev/",
}

func skipLayerPath(p string) bool {
	for _, pre := range layerSkipPrefixes {
		if strings.HasPrefix(p, pre) {
			return true
		}
	}
	return false
}
