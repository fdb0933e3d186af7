package coverage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeWriter(meta, counters string) Writer {
	return Writer{
		Meta: func(w io.Writer) error {
			_, err := io.WriteString(w, meta)
			return err
		},
		Counters: func(w io.Writer) error {
			_, err := io.WriteString(w, counters)
			return err
		},
	}
}

func TestResolve_UnavailableWithoutMeta(t *testing.T) {
	w := fakeWriter("", "")
	w.Meta = func(io.Writer) error { return errors.New("no meta-data available") }

	_, err := Resolve(w)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "Is the binary built with -cover?", Hint(err))
}

func TestResolve_NilWriters(t *testing.T) {
	_, err := Resolve(Writer{})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDump_WritesCountersAndMeta(t *testing.T) {
	d, err := Resolve(fakeWriter("meta", "counters"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "nested", DefaultFileName)

	require.NoError(t, d.Dump(path))

	counters, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "counters", string(counters))
	meta, err := os.ReadFile(path + MetaSuffix)
	require.NoError(t, err)
	assert.Equal(t, "meta", string(meta))
}

func TestDump_CounterFailure(t *testing.T) {
	w := fakeWriter("meta", "")
	w.Counters = func(io.Writer) error { return errors.New("disk on fire") }
	d, err := Resolve(w)
	require.NoError(t, err)

	err = d.Dump(filepath.Join(t.TempDir(), DefaultFileName))

	assert.ErrorContains(t, err, "disk on fire")
	assert.Empty(t, Hint(err))
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath("/data/app")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/app", DefaultFileName), path)
}
