package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/erraggy/swaggen/discovery"
	"github.com/erraggy/swaggen/internal/fileutil"
	"github.com/erraggy/swaggen/internal/pathutil"
	"github.com/erraggy/swaggen/swagerrors"
)

// ArtifactPath returns the path of the artifact of specID in format.
func ArtifactPath(outputRoot, specID string, format Format) string {
	return discovery.OutputPath(outputRoot, specID) + format.Ext()
}

// Write serializes doc in every format and writes it under outputRoot as
// "<specID>.<ext>", creating intermediate directories. All formats are
// serialized and staged in temporary files before the first one is renamed
// into place. It returns the paths written.
//
// Failures are reported as *swagerrors.WriteError; a cancelled context as
// *swagerrors.CancelledError.
func Write(ctx context.Context, outputRoot, specID string, doc *Document, formats []Format) ([]string, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}

	type staged struct{ tmp, final string }
	var files []staged
	cleanup := func() {
		for _, f := range files {
			_ = os.Remove(f.tmp)
		}
	}

	for _, format := range formats {
		target, err := pathutil.SanitizeOutputPath(outputRoot, ArtifactPath(outputRoot, specID, format))
		if err != nil {
			cleanup()
			return nil, &swagerrors.WriteError{Spec: specID, Path: ArtifactPath(outputRoot, specID, format), Cause: err}
		}
		data, err := Marshal(doc, format)
		if err != nil {
			cleanup()
			return nil, &swagerrors.WriteError{Spec: specID, Path: target, Cause: err}
		}
		tmp, err := stage(target, data)
		if err != nil {
			cleanup()
			return nil, &swagerrors.WriteError{Spec: specID, Path: target, Cause: err}
		}
		files = append(files, staged{tmp: tmp, final: target})
	}

	written := make([]string, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			for _, rest := range files[i:] {
				_ = os.Remove(rest.tmp)
			}
			return written, &swagerrors.CancelledError{Stage: "write", Cause: err}
		}
		if err := os.Rename(f.tmp, f.final); err != nil {
			for _, rest := range files[i:] {
				_ = os.Remove(rest.tmp)
			}
			return written, &swagerrors.WriteError{Spec: specID, Path: f.final, Cause: err}
		}
		written = append(written, f.final)
	}
	return written, nil
}

// stage writes data to a temporary file next to target and returns its path.
func stage(target string, data []byte) (string, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, fileutil.DirMode); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write temporary file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("sync temporary file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Chmod(tmp, fileutil.ArtifactMode); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("set permissions: %w", err)
	}
	return tmp, nil
}
