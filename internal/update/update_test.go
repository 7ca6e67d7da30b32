package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCheckSkipsInCI(t *testing.T) {
	t.Setenv("CI", "1")
	latest, newer, err := Check("1.0.0", false)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if latest != "" || newer {
		t.Fatalf("CI check must be a no-op, got latest=%q newer=%v", latest, newer)
	}
}

func TestCheckSkipsWhenOffline(t *testing.T) {
	_, newer, err := Check("1.0.0", true)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if newer {
		t.Fatal("offline check must not report an update")
	}
}

func TestCheckUsesFreshCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("CI", "")
	saveCache(cache{LastChecked: time.Now(), Latest: "9.9.9"})

	latest, newer, err := Check("v1.0.0", false)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if latest != "9.9.9" || !newer {
		t.Fatalf("expected cached 9.9.9 to be newer, got latest=%q newer=%v", latest, newer)
	}
	if _, err := os.Stat(filepath.Join(dir, "leakhound", cacheFileName)); err != nil {
		t.Fatalf("cache file missing: %v", err)
	}
}

func TestIsNewer(t *testing.T) {
	cases := []struct {
		latest, current string
		want            bool
	}{
		{"1.2.3", "1.2.2", true},
		{"1.2.3", "1.2.3", false},
		{"1.2.3", "1.3.0", false},
		{"2.0.0", "1.9.9", true},
		{"not-a-version", "1.0.0", false},
	}
	for _, c := range cases {
		if got := isNewer(c.latest, c.current); got != c.want {
			t.Fatalf("isNewer(%q, %q) = %v, want %v", c.latest, c.current, got, c.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	if normalize(" v1.2.3 ") != "1.2.3" {
		t.Fatal("normalize should strip whitespace and v prefix")
	}
}
