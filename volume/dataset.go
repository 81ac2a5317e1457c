package volume

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxscope/voxscope/core"
)

// Metadata mirrors the converter's metadata.json. Patient and study fields
// are carried opaquely; only the geometry and HU fields are interpreted
// here.
type Metadata struct {
	NumSlices int    `json:"numSlices"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`

	PixelSpacing   []string `json:"pixelSpacing"`
	SliceThickness string   `json:"sliceThickness"`

	WindowCenter string `json:"windowCenter"`
	WindowWidth  string `json:"windowWidth"`

	HuMin float64 `json:"huMin"`
	HuMax float64 `json:"huMax"`

	ChunkSize   int `json:"chunkSize"`
	NumChunksX  int `json:"numChunksX"`
	NumChunksY  int `json:"numChunksY"`
	NumChunksZ  int `json:"numChunksZ"`
	TotalChunks int `json:"totalChunks"`

	PatientName       string `json:"patientName"`
	SeriesDescription string `json:"seriesDescription"`
	Modality          string `json:"modality"`
}

// Dataset is a fully loaded converter output directory.
type Dataset struct {
	Meta   Metadata
	Volume *Volume
	Chunks *ChunkGrid
}

// LoadDataset reads metadata.json, every slice_NNNN.raw and chunk_minmax.bin
// from dir. Missing metadata or slices are fatal; a missing chunk blob is
// recovered by building the grid from the loaded volume.
func LoadDataset(dir string, log core.Logger) (*Dataset, error) {
	metaPath := filepath.Join(dir, "metadata.json")
	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", metaPath, err)
	}

	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", metaPath, err)
	}
	if meta.Width <= 0 || meta.Height <= 0 || meta.NumSlices <= 0 {
		return nil, fmt.Errorf("metadata has invalid dimensions %dx%dx%d", meta.Width, meta.Height, meta.NumSlices)
	}
	if meta.Format != "" && meta.Format != "float16" {
		return nil, fmt.Errorf("unsupported slice format %q", meta.Format)
	}

	vol, err := NewVolume(meta.Width, meta.Height, meta.NumSlices)
	if err != nil {
		return nil, err
	}
	vol.HuMin = float32(meta.HuMin)
	vol.HuMax = float32(meta.HuMax)
	vol.Spacing = spacingFromMeta(meta, log)

	sliceFloats := make([]float32, meta.Width*meta.Height)
	for z := 0; z < meta.NumSlices; z++ {
		slicePath := filepath.Join(dir, fmt.Sprintf("slice_%04d.raw", z))
		raw, err := os.ReadFile(slicePath)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", slicePath, err)
		}
		if len(raw) != meta.Width*meta.Height*2 {
			return nil, fmt.Errorf("%s is %d bytes, want %d", slicePath, len(raw), meta.Width*meta.Height*2)
		}
		for i := range sliceFloats {
			sliceFloats[i] = Float16ToFloat32(uint16(raw[i*2]) | uint16(raw[i*2+1])<<8)
		}
		if err := vol.SetSlice(z, sliceFloats); err != nil {
			return nil, err
		}
	}

	chunkSize := meta.ChunkSize
	if chunkSize == 0 {
		chunkSize = 32
	}
	var chunks *ChunkGrid
	blobPath := filepath.Join(dir, "chunk_minmax.bin")
	blob, err := os.ReadFile(blobPath)
	switch {
	case err == nil:
		chunks, err = ParseChunkBlob(blob, meta.NumChunksX, meta.NumChunksY, meta.NumChunksZ, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", blobPath, err)
		}
	case os.IsNotExist(err):
		log.Warnf("chunk blob %s missing, rebuilding from volume", blobPath)
		chunks, err = BuildChunkGrid(vol, chunkSize)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("reading %s: %w", blobPath, err)
	}

	log.Infof("loaded dataset %s: %dx%dx%d voxels, %dx%dx%d chunks of %d, HU [%g, %g]",
		dir, vol.Width, vol.Height, vol.Depth, chunks.NX, chunks.NY, chunks.NZ, chunkSize, vol.HuMin, vol.HuMax)

	return &Dataset{Meta: meta, Volume: vol, Chunks: chunks}, nil
}

// InitialWindow returns the metadata window/level if present, otherwise a
// percentile-based estimate from the volume histogram.
func (d *Dataset) InitialWindow(log core.Logger) (center, width float32) {
	c, okC := parseFloat(d.Meta.WindowCenter)
	w, okW := parseFloat(d.Meta.WindowWidth)
	if okC && okW && w > 0 {
		return float32(c), float32(w)
	}

	hist := BuildHistogram(d.Volume)
	center, width, err := hist.AutoWindow(0.05, 0.995)
	if err != nil {
		log.Warnf("auto window failed: %v, falling back to full range", err)
		return (d.Volume.HuMin + d.Volume.HuMax) / 2, d.Volume.HuMax - d.Volume.HuMin
	}
	log.Infof("auto window/level: center %g width %g", center, width)
	return center, width
}

func spacingFromMeta(meta Metadata, log core.Logger) mgl32.Vec3 {
	spacing := mgl32.Vec3{1, 1, 1}
	if len(meta.PixelSpacing) == 2 {
		if sx, ok := parseFloat(meta.PixelSpacing[1]); ok {
			spacing[0] = float32(sx)
		}
		if sy, ok := parseFloat(meta.PixelSpacing[0]); ok {
			spacing[1] = float32(sy)
		}
	}
	if st, ok := parseFloat(meta.SliceThickness); ok && st > 0 {
		spacing[2] = float32(st)
	}
	if spacing.X() <= 0 || spacing.Y() <= 0 || spacing.Z() <= 0 {
		log.Warnf("non-positive voxel spacing %v in metadata, using unit spacing", spacing)
		return mgl32.Vec3{1, 1, 1}
	}
	return spacing
}

func parseFloat(s string) (float64, bool) {
	var f float64
	if _, err := fmt.Sscanf(s, "%g", &f); err != nil {
		return 0, false
	}
	return f, true
}
