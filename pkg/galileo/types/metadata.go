package types

import (
	"fmt"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
)

// Feature is a named scalar attribute attached to a block, indexed for
// query evaluation.
type Feature struct {
	Name  string
	Value float64
}

func (f Feature) String() string {
	return fmt.Sprintf("%s=%g", f.Name, f.Value)
}

func (f *Feature) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(f.Name); err != nil {
		return err
	}
	return w.WriteFloat64(f.Value)
}

func DeserializeFeature(r *serialization.Reader) (Feature, error) {
	name, err := r.ReadString()
	if err != nil {
		return Feature{}, err
	}
	value, err := r.ReadFloat64()
	if err != nil {
		return Feature{}, err
	}
	return Feature{Name: name, Value: value}, nil
}

// SpatialProperties locates a block on the globe; used by the
// partitioner to place the block on the overlay.
type SpatialProperties struct {
	Latitude  float64
	Longitude float64
}

// Metadata describes a single block: its name, where it was produced
// and the features extracted from it.
type Metadata struct {
	Name     string
	Spatial  *SpatialProperties
	Features []Feature
}

func (m *Metadata) Feature(name string) (Feature, bool) {
	for _, f := range m.Features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature{}, false
}

func (m *Metadata) Serialize(w *serialization.Writer) error {
	if err := w.WriteString(m.Name); err != nil {
		return err
	}
	if err := w.WriteBool(m.Spatial != nil); err != nil {
		return err
	}
	if m.Spatial != nil {
		if err := w.WriteFloat64(m.Spatial.Latitude); err != nil {
			return err
		}
		if err := w.WriteFloat64(m.Spatial.Longitude); err != nil {
			return err
		}
	}
	if err := w.WriteInt32(int32(len(m.Features))); err != nil {
		return err
	}
	for i := range m.Features {
		if err := m.Features[i].Serialize(w); err != nil {
			return err
		}
	}
	return nil
}

func DeserializeMetadata(r *serialization.Reader) (*Metadata, error) {
	m := &Metadata{}
	var err error
	if m.Name, err = r.ReadString(); err != nil {
		return nil, err
	}
	hasSpatial, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasSpatial {
		sp := &SpatialProperties{}
		if sp.Latitude, err = r.ReadFloat64(); err != nil {
			return nil, err
		}
		if sp.Longitude, err = r.ReadFloat64(); err != nil {
			return nil, err
		}
		m.Spatial = sp
	}
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	for i := int32(0); i < count; i++ {
		f, err := DeserializeFeature(r)
		if err != nil {
			return nil, err
		}
		m.Features = append(m.Features, f)
	}
	return m, nil
}

// MetaArray is a collection of metadata instances, the result shape of
// a file system query.
type MetaArray []*Metadata

func (a MetaArray) Serialize(w *serialization.Writer) error {
	if err := w.WriteInt32(int32(len(a))); err != nil {
		return err
	}
	for _, m := range a {
		if err := w.WriteSerializable(m); err != nil {
			return err
		}
	}
	return nil
}

func DeserializeMetaArray(r *serialization.Reader) (MetaArray, error) {
	count, err := r.ReadInt32()
	if err != nil {
		return nil, err
	}
	var out MetaArray
	for i := int32(0); i < count; i++ {
		nested, err := r.ReadSerializable()
		if err != nil {
			return nil, err
		}
		m, err := DeserializeMetadata(nested)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
