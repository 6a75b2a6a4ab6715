package atomicfile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/shopctl/internal/atomicfile"
)

type record struct {
	Name  string            `yaml:"name"`
	Items map[string]string `yaml:"items"`
}

// leftovers lists the in-flight temp siblings of path.
func leftovers(c *qt.C, path string) []string {
	c.TB.Helper()
	matches, err := filepath.Glob(path + atomicfile.TempPattern)
	c.Assert(err, qt.IsNil)
	return matches
}

// ---------------------------------------------------------------------------
// SaveYAML / LoadYAML
// ---------------------------------------------------------------------------

func TestSaveLoad_HappyPath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "a", "b", "rec.yaml")
	in := record{Name: "acme", Items: map[string]string{"z": "1", "a": "2"}}

	c.Assert(atomicfile.SaveYAML(path, in), qt.IsNil)

	var out record
	found, err := atomicfile.LoadYAML(path, &out)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsTrue)
	c.Assert(out, qt.DeepEquals, in)

	c.Assert(leftovers(c, path), qt.HasLen, 0, qt.Commentf("temp file must not survive a save"))
}

func TestSave_OverwritesPreviousContent(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "rec.yaml")
	c.Assert(atomicfile.SaveYAML(path, record{Name: "first"}), qt.IsNil)
	c.Assert(atomicfile.SaveYAML(path, record{Name: "second"}), qt.IsNil)

	var out record
	_, err := atomicfile.LoadYAML(path, &out)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Name, qt.Equals, "second")
}

func TestSave_DeterministicKeyOrder(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "rec.yaml")
	c.Assert(atomicfile.SaveYAML(path, record{Name: "x", Items: map[string]string{"b": "1", "a": "2", "c": "3"}}), qt.IsNil)

	data, err := os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "name: x\nitems:\n    a: \"2\"\n    b: \"1\"\n    c: \"3\"\n")
}

func TestLoad_Absent(t *testing.T) {
	c := qt.New(t)

	var out record
	found, err := atomicfile.LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"), &out)
	c.Assert(err, qt.IsNil)
	c.Assert(found, qt.IsFalse)
}

func TestLoad_FailurePath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	c.Assert(os.WriteFile(path, []byte("name: [unterminated\n"), 0o600), qt.IsNil)

	var out record
	found, err := atomicfile.LoadYAML(path, &out)
	c.Assert(found, qt.IsFalse)
	c.Assert(err, qt.ErrorIs, atomicfile.ErrMalformed)
}

func TestSave_FailurePath(t *testing.T) {
	c := qt.New(t)

	c.Run("filesystem root is rejected", func(c *qt.C) {
		c.Assert(atomicfile.SaveYAML("/", record{}), qt.ErrorIs, atomicfile.ErrRootPath)
	})

	c.Run("empty path is rejected", func(c *qt.C) {
		c.Assert(atomicfile.SaveYAML("", record{}), qt.ErrorIs, atomicfile.ErrRootPath)
	})

	c.Run("parent is a regular file", func(c *qt.C) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		c.Assert(os.WriteFile(blocker, []byte("x"), 0o600), qt.IsNil)
		c.Assert(atomicfile.SaveYAML(filepath.Join(blocker, "rec.yaml"), record{}), qt.IsNotNil)
	})
}

// A crash after the temp file is written but before the rename must leave
// the destination as it was.
func TestCrashBeforeRename_PreservesDestination(t *testing.T) {
	c := qt.New(t)

	c.Run("prior content intact", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), "rec.yaml")
		c.Assert(atomicfile.SaveYAML(path, record{Name: "stable"}), qt.IsNil)
		c.Assert(os.WriteFile(path+".123.tmp", []byte("name: half"), 0o600), qt.IsNil)

		var out record
		found, err := atomicfile.LoadYAML(path, &out)
		c.Assert(err, qt.IsNil)
		c.Assert(found, qt.IsTrue)
		c.Assert(out.Name, qt.Equals, "stable")

		c.Assert(atomicfile.SaveYAML(path, record{Name: "next"}), qt.IsNil)
		_, err = atomicfile.LoadYAML(path, &out)
		c.Assert(err, qt.IsNil)
		c.Assert(out.Name, qt.Equals, "next")
	})

	c.Run("prior absence intact", func(c *qt.C) {
		path := filepath.Join(t.TempDir(), "rec.yaml")
		c.Assert(os.WriteFile(path+".123.tmp", []byte("name: half"), 0o600), qt.IsNil)

		var out record
		found, err := atomicfile.LoadYAML(path, &out)
		c.Assert(err, qt.IsNil)
		c.Assert(found, qt.IsFalse)
	})
}

func TestExists_HappyPath(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "rec.yaml")
	ok, err := atomicfile.Exists(path)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)

	c.Assert(atomicfile.Write(path, []byte("name: x\n")), qt.IsNil)
	ok, err = atomicfile.Exists(path)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func TestWrite_ConcurrentWriters(t *testing.T) {
	c := qt.New(t)

	path := filepath.Join(t.TempDir(), "context.yaml")
	big := bytes.Repeat([]byte("a"), 256<<10)
	small := bytes.Repeat([]byte("b"), 1<<10)
	c.Assert(atomicfile.Write(path, small), qt.IsNil)

	const iterations = 300
	var (
		writers sync.WaitGroup
		mu      sync.Mutex
		errs    []error
	)
	for _, data := range [][]byte{big, small} {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for range iterations {
				if err := atomicfile.Write(path, data); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

	done := make(chan struct{})
	torn := 0
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-done:
				return
			default:
			}
			got, err := os.ReadFile(path)
			if err != nil || (!bytes.Equal(got, big) && !bytes.Equal(got, small)) {
				torn++
			}
		}
	}()

	writers.Wait()
	close(done)
	<-readerDone

	c.Assert(errs, qt.HasLen, 0)
	c.Assert(torn, qt.Equals, 0, qt.Commentf("a reader saw a partial or missing file"))
	c.Assert(leftovers(c, path), qt.HasLen, 0)
}
