// Package export writes voxelization results to disk: compressed volume
// snapshots, slice atlases and GLB meshes.
package export

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/Faultbox/voxelizer/internal/gpu"
	"github.com/Faultbox/voxelizer/internal/voxel"
)

// Snapshot format errors.
var (
	ErrInvalidSnapshotMagic       = errors.New("invalid snapshot magic: expected 'VXSN'")
	ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")
	ErrTruncatedSnapshot          = errors.New("truncated snapshot data")
	ErrSnapshotChecksum           = errors.New("snapshot checksum mismatch")
)

const (
	snapshotMagic   = "VXSN"
	snapshotVersion = 1

	// magic, version, format, 3 x uint32 dims, uint64 checksum, uint32 payload length
	snapshotHeaderSize = 4 + 1 + 1 + 12 + 8 + 4

	maxSnapshotDim = 4096
	// maxSnapshotBytes bounds the decoded texels, 512^3 RGBA8 plus room.
	maxSnapshotBytes = 1 << 30
)

// snapshotHeader follows the magic and version bytes.
type snapshotHeader struct {
	Format   uint8
	W, H, D  uint32
	Checksum uint64
	PLen     uint32
}

// MarshalSnapshot encodes a grid as a zstd-compressed snapshot. The
// checksum covers the uncompressed texels.
func MarshalSnapshot(g *voxel.Grid) ([]byte, error) {
	if !g.Dims.Valid() {
		return nil, fmt.Errorf("snapshot %v: %w", g.Dims, voxel.ErrInvalidDimensions)
	}
	if want := g.Dims.Count() * g.Format.BytesPerTexel(); len(g.Data) != want {
		return nil, fmt.Errorf("snapshot: grid holds %d bytes, want %d", len(g.Data), want)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("snapshot encoder: %w", err)
	}
	defer enc.Close()
	payload := enc.EncodeAll(g.Data, nil)

	hdr := snapshotHeader{
		Format:   uint8(g.Format),
		W:        uint32(g.Dims.W),
		H:        uint32(g.Dims.H),
		D:        uint32(g.Dims.D),
		Checksum: xxhash.Sum64(g.Data),
		PLen:     uint32(len(payload)),
	}

	var buf bytes.Buffer
	buf.Grow(snapshotHeaderSize + len(payload))
	buf.WriteString(snapshotMagic)
	buf.WriteByte(snapshotVersion)
	_ = binary.Write(&buf, binary.LittleEndian, hdr)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// UnmarshalSnapshot decodes a snapshot written by MarshalSnapshot.
func UnmarshalSnapshot(data []byte) (*voxel.Grid, error) {
	if len(data) < snapshotHeaderSize {
		return nil, ErrTruncatedSnapshot
	}
	if string(data[:4]) != snapshotMagic {
		return nil, ErrInvalidSnapshotMagic
	}
	if data[4] != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSnapshotVersion, data[4])
	}

	var hdr snapshotHeader
	if err := binary.Read(bytes.NewReader(data[5:snapshotHeaderSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedSnapshot)
	}

	dims := voxel.Dims{W: int(hdr.W), H: int(hdr.H), D: int(hdr.D)}
	if !dims.Valid() || dims.Max() > maxSnapshotDim {
		return nil, fmt.Errorf("snapshot %v: %w", dims, voxel.ErrInvalidDimensions)
	}
	format := gpu.Format(hdr.Format)
	if format.BytesPerTexel() == 0 {
		return nil, fmt.Errorf("snapshot format %d: %w", hdr.Format, gpu.ErrInvalidValue)
	}

	size := dims.Count() * format.BytesPerTexel()
	if size > maxSnapshotBytes {
		return nil, fmt.Errorf("snapshot %v: %d texel bytes above %d: %w",
			dims, size, maxSnapshotBytes, voxel.ErrResourceExhausted)
	}

	payload := data[snapshotHeaderSize:]
	if uint32(len(payload)) != hdr.PLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, header says %d", ErrTruncatedSnapshot, len(payload), hdr.PLen)
	}

	// The payload may not expand past what the header promises.
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(size)))
	if err != nil {
		return nil, fmt.Errorf("snapshot decoder: %w", err)
	}
	defer dec.Close()

	texels, err := dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing snapshot: %w", err)
	}
	if len(texels) != size {
		return nil, fmt.Errorf("%w: %d texel bytes, want %d", ErrTruncatedSnapshot, len(texels), size)
	}
	if xxhash.Sum64(texels) != hdr.Checksum {
		return nil, ErrSnapshotChecksum
	}

	return &voxel.Grid{Dims: dims, Format: format, Data: texels}, nil
}

// WriteSnapshot writes a snapshot of g to w.
func WriteSnapshot(w io.Writer, g *voxel.Grid) error {
	data, err := MarshalSnapshot(g)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveSnapshot writes a snapshot of g to path.
func SaveSnapshot(path string, g *voxel.Grid) error {
	data, err := MarshalSnapshot(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*voxel.Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}
	return UnmarshalSnapshot(data)
}
