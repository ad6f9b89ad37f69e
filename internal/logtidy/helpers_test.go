package logtidy_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"logtidy/internal/logtidy"
	"logtidy/internal/staging"
	"logtidy/internal/testutil"
)

type harness struct {
	dir     string
	root    *logtidy.Path
	fsys    *testutil.ScriptedFilesystem
	clock   *testutil.StubClock
	service *logtidy.Service
}

// newHarness wires a Service over a temp directory with the real staging area
// and zip store, a scripted filesystem and a fixed clock.
func newHarness(t *testing.T, archives logtidy.ArchiveStore) *harness {
	t.Helper()

	h := &harness{
		dir:   t.TempDir(),
		fsys:  testutil.NewScriptedFilesystem(testutil.MiB(1 << 20)),
		clock: testutil.FixedClock(),
	}
	if archives == nil {
		archives = testutil.NewTestArchiveStore()
	}
	h.service = logtidy.NewService(
		h.fsys,
		staging.NewDayBucketStaging(h.fsys),
		archives,
		logtidy.NewNopLogger(),
		h.clock,
		testutil.NewStubIDGenerator(),
	)

	root, err := h.fsys.Resolve(h.dir)
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	h.root = root
	return h
}

func (h *harness) path(elem ...string) string {
	return filepath.Join(append([]string{h.dir}, elem...)...)
}

// names lists the directory entries under the harness root.
func (h *harness) names(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		t.Fatalf("reading %s: %v", h.dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected %s to be gone, stat err = %v", path, err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
