package cmd

import (
	"io"
	"os"

	"github.com/kilianp07/plb/core/model"
	"github.com/kilianp07/plb/pkg/instance"
)

// openInput opens path, with "-" standing for stdin.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	return os.Open(path)
}

func readInstances(path string, stdin io.Reader) ([]model.Instance, error) {
	rc, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return instance.ParseAll(rc)
}

// createOutput creates path, with "" and "-" standing for stdout.
func createOutput(path string, stdout io.Writer) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopWriteCloser{stdout}, nil
	}
	return os.Create(path)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
