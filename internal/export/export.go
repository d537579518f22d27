package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/voxelizer/internal/voxel"
)

// Options selects the outputs written by Write.
type Options struct {
	Dir        string
	Snapshot   bool
	Slices     string // "" disables the slice atlas
	SliceScale int
	GLB        bool
	CellSize   float32
}

// Write stores g under opts.Dir using name as the file stem and returns
// the paths written. It stops at the first failing output.
func Write(g *voxel.Grid, name string, opts Options, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export dir: %w", err)
	}

	var written []string
	stem := filepath.Join(opts.Dir, name)

	if opts.Snapshot {
		path := stem + ".vxsn"
		if err := SaveSnapshot(path, g); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if opts.Slices != "" {
		f, err := ParseSliceFormat(opts.Slices)
		if err != nil {
			return written, err
		}
		path := stem + "_slices" + f.Ext()
		if err := SaveSlices(path, g, opts.SliceScale); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if opts.GLB {
		path := stem + ".glb"
		err := SaveGLB(path, g, opts.CellSize)
		switch {
		case errors.Is(err, ErrEmptyGrid):
			log.Warn("skipping glb export of empty grid", zap.String("path", path))
		case err != nil:
			return written, err
		default:
			written = append(written, path)
		}
	}

	for _, p := range written {
		log.Info("exported", zap.String("path", p), zap.Stringer("dims", g.Dims))
	}
	return written, nil
}
