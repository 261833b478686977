package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cespare/xxhash/v2"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// BlockExtension is the on-disk suffix for stored blocks; recovery
// scans the storage root recursively for files carrying it.
const BlockExtension = ".gblock"

var (
	ErrReadOnly         = errors.New("file system is read-only")
	ErrChecksumMismatch = errors.New("block checksum mismatch")
)

// PhysicalGraph is the surface the storage node consumes: block
// persistence plus metadata query evaluation.
type PhysicalGraph interface {
	StoreBlock(block *types.Block) (string, error)
	LoadBlock(path string) (*types.Block, error)
	LoadMetadata(path string) (*types.Metadata, error)
	Query(query string) (types.MetaArray, error)
	IsReadOnly() bool
	Shutdown()
}

// FileSystem stores blocks under a root directory and keeps an
// in-memory feature index over their metadata. Blocks are written with
// a leading checksum that is verified on load.
type FileSystem struct {
	logger           types.Logger
	storageDirectory string
	readOnly         bool
	index            *metadataIndex
}

func NewFileSystem(logger types.Logger, storageRoot string) (*FileSystem, error) {
	logger.Info("initializing galileo file system")
	logger.Infof("storage directory: %s", storageRoot)

	if err := os.MkdirAll(storageRoot, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create storage directory: %w", err)
	}

	f := &FileSystem{
		logger:           logger,
		storageDirectory: storageRoot,
		index:            newMetadataIndex(),
	}

	if free, err := f.FreeSpace(); err != nil {
		logger.Warnf("could not determine free space: %v", err)
	} else {
		logger.Infof("free space: %d bytes", free)
	}

	if !writable(storageRoot) {
		logger.Warn("storage directory is read-only, starting file system in read-only mode")
		f.readOnly = true
	}
	return f, nil
}

// writable probes the directory with a throwaway file; permission bits
// alone do not account for ownership or mount options.
func writable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return false
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return true
}

// storedBlock is the on-disk layout: checksum over the serialized
// block, then the block itself.
type storedBlock struct {
	block *types.Block
}

func (s *storedBlock) Serialize(w *serialization.Writer) error {
	body, err := serialization.Serialize(s.block)
	if err != nil {
		return err
	}
	if err := w.WriteUint64(xxhash.Sum64(body)); err != nil {
		return err
	}
	return w.WriteBytes(body)
}

func readStoredBlock(r *serialization.Reader) (*serialization.Reader, error) {
	sum, err := r.ReadUint64()
	if err != nil {
		return nil, err
	}
	body, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(body) != sum {
		return nil, ErrChecksumMismatch
	}
	return serialization.NewReader(body), nil
}

// StoreBlock persists a block and indexes its metadata. Unnamed blocks
// get a content-derived name so repeated stores of the same data land
// on the same path.
func (f *FileSystem) StoreBlock(block *types.Block) (string, error) {
	if f.readOnly {
		return "", ErrReadOnly
	}

	name := block.Metadata.Name
	if name == "" {
		name = fmt.Sprintf("%016x", xxhash.Sum64(block.Data))
	}
	blockPath := filepath.Join(f.storageDirectory, name+BlockExtension)

	if err := serialization.Persist(&storedBlock{block: block}, blockPath); err != nil {
		return "", err
	}

	f.index.insert(&block.Metadata, blockPath)
	return blockPath, nil
}

func (f *FileSystem) LoadBlock(path string) (*types.Block, error) {
	var block *types.Block
	err := serialization.Restore(path, func(r *serialization.Reader) error {
		body, err := readStoredBlock(r)
		if err != nil {
			return err
		}
		block, err = types.DeserializeBlock(body)
		return err
	})
	return block, err
}

// LoadMetadata decodes only the metadata portion of a block file. The
// whole file is still read and its checksum verified; metadata is
// serialized first so the payload is never decoded.
func (f *FileSystem) LoadMetadata(path string) (*types.Metadata, error) {
	var metadata *types.Metadata
	err := serialization.Restore(path, func(r *serialization.Reader) error {
		body, err := readStoredBlock(r)
		if err != nil {
			return err
		}
		metadata, err = types.DeserializeBlockMetadata(body)
		return err
	})
	return metadata, err
}

// Query evaluates a feature predicate expression against the metadata
// index.
func (f *FileSystem) Query(query string) (types.MetaArray, error) {
	predicates, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	return f.index.evaluate(predicates), nil
}

// RecoverMetadata scans the storage root for blocks and rebuilds the
// metadata index. Blocks that fail to load are skipped with a warning.
func (f *FileSystem) RecoverMetadata() error {
	f.logger.Info("recovering metadata and building index")
	var scanned, failed int
	err := filepath.WalkDir(f.storageDirectory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, BlockExtension) {
			return nil
		}
		metadata, err := f.LoadMetadata(path)
		if err != nil {
			failed++
			f.logger.Warnf("failed to recover metadata for block %s: %v", path, err)
			return nil
		}
		f.index.insert(metadata, path)
		scanned++
		if scanned%10000 == 0 {
			f.logger.Infof("%d blocks scanned", scanned)
		}
		return nil
	})
	if err != nil {
		return err
	}
	f.logger.Infof("recovery complete: %d blocks indexed, %d failed", scanned, failed)
	return nil
}

func (f *FileSystem) IsReadOnly() bool {
	return f.readOnly
}

// FreeSpace reports how many bytes are available to the node in the
// root storage directory.
func (f *FileSystem) FreeSpace() (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(f.storageDirectory, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Shutdown flushes nothing today; the index is rebuilt from disk on
// the next start. Kept on the interface so callers do not depend on
// that staying true.
func (f *FileSystem) Shutdown() {
	f.logger.Info("file system shutdown")
}
